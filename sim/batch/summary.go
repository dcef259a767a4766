package batch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/assembly-sim/assembly-sim/sim"
)

// Estimate is a point estimate across replications with a Student-t
// confidence interval of half-width HalfWidth.
type Estimate struct {
	Name      string
	Mean      float64
	StdDev    float64 // sample standard deviation (n-1)
	HalfWidth float64 // NaN with fewer than two observations
	N         int
}

// Low and High bound the confidence interval.
func (e Estimate) Low() float64  { return e.Mean - e.HalfWidth }
func (e Estimate) High() float64 { return e.Mean + e.HalfWidth }

// Row is one line of flattened statistics, named by Columns.
type Row struct {
	Columns []string
	Values  []float64
}

// Summarize returns one Estimate per record column at the given two-sided
// confidence level (e.g. 0.95).
func Summarize(records []*sim.ReplicationRecord, confidence float64) ([]Estimate, error) {
	rows, err := rowsOf(records)
	if err != nil {
		return nil, err
	}
	return summarizeRows(rows, confidence)
}

func summarizeRows(rows []Row, confidence float64) ([]Estimate, error) {
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence must be in (0,1), got %v", sim.ErrConfig, confidence)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := rows[0].Columns
	n := len(rows)
	var tq float64
	if n > 1 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
		tq = t.Quantile(1 - (1-confidence)/2)
	}
	out := make([]Estimate, len(cols))
	column := make([]float64, n)
	for j, name := range cols {
		for i, row := range rows {
			column[i] = row.Values[j]
		}
		e := Estimate{Name: name, N: n, HalfWidth: math.NaN()}
		if n > 1 {
			e.Mean, e.StdDev = stat.MeanStdDev(column, nil)
			e.HalfWidth = tq * e.StdDev / math.Sqrt(float64(n))
		} else {
			e.Mean = column[0]
		}
		out[j] = e
	}
	return out, nil
}

// BatchMeans averages consecutive groups of batchSize records. A trailing
// partial group is dropped.
func BatchMeans(records []*sim.ReplicationRecord, batchSize int) ([]Row, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", sim.ErrConfig, batchSize)
	}
	rows, err := rowsOf(records)
	if err != nil {
		return nil, err
	}
	var out []Row
	for start := 0; start+batchSize <= len(rows); start += batchSize {
		group := rows[start : start+batchSize]
		mean := Row{Columns: group[0].Columns, Values: make([]float64, len(group[0].Values))}
		column := make([]float64, batchSize)
		for j := range mean.Values {
			for i, row := range group {
				column[i] = row.Values[j]
			}
			mean.Values[j] = stat.Mean(column, nil)
		}
		out = append(out, mean)
	}
	return out, nil
}

// SummarizeBatches treats each batch mean as one observation.
func SummarizeBatches(batches []Row, confidence float64) ([]Estimate, error) {
	return summarizeRows(batches, confidence)
}

func rowsOf(records []*sim.ReplicationRecord) ([]Row, error) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Columns: rec.Columns(), Values: rec.Values()}
		if i > 0 && len(rows[i].Columns) != len(rows[0].Columns) {
			return nil, fmt.Errorf("record %d has %d columns, record 0 has %d", i, len(rows[i].Columns), len(rows[0].Columns))
		}
	}
	return rows, nil
}
