package sim

import (
	"fmt"
	"sort"
)

// ReplicationRecord is the steady-state statistics of one completed run.
// It is immutable; accessors return copies.
type ReplicationRecord struct {
	throughput     float64
	steadyDuration float64
	busy           map[int]float64 // workstation id -> busy fraction
	products       map[int]int     // workstation id -> products in steady state
	blocked        map[int]float64 // inspector id -> blocked fraction
	occupancy      map[int]float64 // buffer id -> time-averaged size
}

// Throughput is products completed per minute of steady-state time.
func (r *ReplicationRecord) Throughput() float64 { return r.throughput }

// SteadyStateDuration is the length of the measured window.
func (r *ReplicationRecord) SteadyStateDuration() float64 { return r.steadyDuration }

// WorkstationBusyProbability maps workstation id to minutesBusy / steady duration.
func (r *ReplicationRecord) WorkstationBusyProbability() map[int]float64 { return copyMap(r.busy) }

// InspectorBlockedProbability maps inspector id to timeBlocked / steady duration.
func (r *ReplicationRecord) InspectorBlockedProbability() map[int]float64 {
	return copyMap(r.blocked)
}

// AvgBufferOccupancy maps buffer id to cumulative occupancy / steady duration.
func (r *ReplicationRecord) AvgBufferOccupancy() map[int]float64 { return copyMap(r.occupancy) }

// ProductsCreated maps workstation id to products completed in steady state.
func (r *ReplicationRecord) ProductsCreated() map[int]int {
	out := make(map[int]int, len(r.products))
	for k, v := range r.products {
		out[k] = v
	}
	return out
}

// Columns names the entries of Values, in the same order: throughput, then
// workstations, inspectors and buffers by ascending id.
func (r *ReplicationRecord) Columns() []string {
	cols := []string{"throughput"}
	for _, id := range sortedKeys(r.busy) {
		cols = append(cols, fmt.Sprintf("ws%d_busy", id))
	}
	for _, id := range sortedKeys(r.blocked) {
		cols = append(cols, fmt.Sprintf("ins%d_blocked", id))
	}
	for _, id := range sortedKeys(r.occupancy) {
		cols = append(cols, fmt.Sprintf("buf%d_occupancy", id))
	}
	return cols
}

// Values flattens the record in Columns order.
func (r *ReplicationRecord) Values() []float64 {
	vals := []float64{r.throughput}
	for _, id := range sortedKeys(r.busy) {
		vals = append(vals, r.busy[id])
	}
	for _, id := range sortedKeys(r.blocked) {
		vals = append(vals, r.blocked[id])
	}
	for _, id := range sortedKeys(r.occupancy) {
		vals = append(vals, r.occupancy[id])
	}
	return vals
}

func copyMap(m map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
