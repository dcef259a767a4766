package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/batch"
)

// writeRecordsCSV writes one row per replication, prefixed by its 1-based
// index.
func writeRecordsCSV(path string, records []*sim.ReplicationRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]batch.Row, len(records))
	for i, rec := range records {
		rows[i] = batch.Row{Columns: rec.Columns(), Values: rec.Values()}
	}
	return writeRowsCSV(path, "replication", rows)
}

// writeBatchesCSV writes one row per batch mean.
func writeBatchesCSV(path string, batches []batch.Row) error {
	if len(batches) == 0 {
		return nil
	}
	return writeRowsCSV(path, "batch", batches)
}

func writeRowsCSV(path, indexColumn string, rows []batch.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := encodeRows(f, indexColumn, rows); err != nil {
		return err
	}
	return f.Close()
}

func encodeRows(w io.Writer, indexColumn string, rows []batch.Row) error {
	cw := csv.NewWriter(w)
	header := append([]string{indexColumn}, rows[0].Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		line := make([]string, 0, len(row.Values)+1)
		line = append(line, strconv.Itoa(i+1))
		for _, v := range row.Values {
			line = append(line, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// printSummary displays the cross-replication estimates.
func printSummary(w io.Writer, records []*sim.ReplicationRecord, confidence float64) error {
	estimates, err := batch.Summarize(records, confidence)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "=== Replication Summary (%d replications, %.0f%% CI) ===\n", len(records), confidence*100)
	printEstimates(w, estimates)
	return nil
}

// printBatchSummary displays estimates computed over batch means.
func printBatchSummary(w io.Writer, batches []batch.Row, confidence float64) error {
	estimates, err := batch.SummarizeBatches(batches, confidence)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "=== Batch Means Summary (%d batches, %.0f%% CI) ===\n", len(batches), confidence*100)
	printEstimates(w, estimates)
	return nil
}

func printEstimates(w io.Writer, estimates []batch.Estimate) {
	for _, e := range estimates {
		if math.IsNaN(e.HalfWidth) {
			fmt.Fprintf(w, "%-18s: %12.6f\n", e.Name, e.Mean)
			continue
		}
		fmt.Fprintf(w, "%-18s: %12.6f ± %.6f  [%.6f, %.6f]\n", e.Name, e.Mean, e.HalfWidth, e.Low(), e.High())
	}
}
