// Package sim provides the discrete-event simulation engine for a small
// manufacturing line: two inspectors feeding five bounded buffers that
// supply three assembly workstations.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: the closed set of event types and their timing fields
//   - fel.go: the future event list (start time, then insertion order)
//   - inspector.go, workstation.go: the entity state machines
//   - simulator.go: the dispatch loop, the cutover and final statistics
//
// # Determinism
//
// Every entity draws from its own Generator (rng.go), a Lehmer congruential
// generator seeded from a partition of one base sequence. A replication
// hands the state of every generator to the next one (Simulator.NextSeeds),
// so a run of N replications is one continued sequence, reproducible from
// the initial SeedMap alone. Equal start times are dispatched in the order
// the events were scheduled.
//
// # Statistics
//
// Nothing accumulates before the SteadyStateStart event. Buffer occupancy,
// the in-system population, blocked time and busy time are time-weighted
// over the steady-state window only; products are counted on completion.
// ReplicationRecord is the read-only result, and sim/batch aggregates
// records across replications.
package sim
