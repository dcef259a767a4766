// Token bookkeeping across a replication: conservation of components and the
// quantities needed to check Little's law.

package sim

import "fmt"

// Audit counts where every picked-up component is at the current clock.
type Audit struct {
	Arrivals        int // components picked up by inspectors
	Departures      int // components consumed into finished products
	InBuffers       int
	HeldByBlocked   int // tokens held by blocked inspectors
	PendingCleaning int // tokens behind a scheduled InspectorDone
	PendingAssembly int // tokens behind a scheduled WorkstationDone
}

// Balanced reports whether arrivals equal everything accounted for.
func (a Audit) Balanced() bool {
	return a.Arrivals == a.Departures+a.InBuffers+a.HeldByBlocked+a.PendingCleaning+a.PendingAssembly
}

func (a Audit) String() string {
	return fmt.Sprintf("arrivals=%d departures=%d buffers=%d blocked=%d cleaning=%d assembly=%d",
		a.Arrivals, a.Departures, a.InBuffers, a.HeldByBlocked, a.PendingCleaning, a.PendingAssembly)
}

// Audit takes the conservation census, reading pending work from the FEL.
func (s *Simulator) Audit() Audit {
	var a Audit
	for _, in := range s.inspectors {
		a.Arrivals += in.PickedUp()
		if in.Blocked() {
			a.HeldByBlocked++
		}
	}
	for _, ws := range s.workstations {
		a.Departures += len(ws.Completed())
	}
	for _, b := range s.buffers {
		a.InBuffers += b.Len()
	}
	components := make(map[int]int, len(s.workstations))
	for _, ws := range s.workstations {
		components[ws.ID] = ws.Components()
	}
	for _, ev := range s.fel.Pending() {
		switch e := ev.(type) {
		case *InspectorDoneEvent:
			a.PendingCleaning++
		case *WorkstationDoneEvent:
			a.PendingAssembly += components[e.WorkstationID]
		}
	}
	return a
}

// Summary holds the steady-state quantities of Little's law, L = λW.
type Summary struct {
	ArrivalRate     float64 // λ: steady-state pickups per minute
	AvgTimeInSystem float64 // W: mean departure - arrival of tokens departed in steady state
	AvgInSystem     float64 // L: time-averaged tokens in the line
	Departed        int     // tokens departed in steady state
}

// LittlesProduct returns λ·W, to be compared against AvgInSystem.
func (sm Summary) LittlesProduct() float64 { return sm.ArrivalRate * sm.AvgTimeInSystem }

// Summary computes the Little's law quantities over the steady-state window.
func (s *Simulator) Summary() Summary {
	var sm Summary
	d := s.cfg.SteadyStateDuration()
	warmup := s.cfg.Warmup

	arrivals := 0
	var total float64
	for _, ws := range s.workstations {
		for _, t := range ws.Completed() {
			if t.ArrivalTime >= warmup {
				arrivals++
			}
			if dep, ok := t.Departure(); ok && dep >= warmup {
				sm.Departed++
				total += t.TimeInSystem()
			}
		}
	}
	// Tokens still in the line do not appear in any completed log.
	arrivals += s.inLineSince(warmup)

	sm.ArrivalRate = float64(arrivals) / d
	if sm.Departed > 0 {
		sm.AvgTimeInSystem = total / float64(sm.Departed)
	}
	sm.AvgInSystem = s.populationTime / d
	return sm
}

func (s *Simulator) inLineSince(t float64) int {
	n := 0
	for _, b := range s.buffers {
		for _, tok := range b.queue {
			if tok.ArrivalTime >= t {
				n++
			}
		}
	}
	for _, in := range s.inspectors {
		if in.current != nil && in.current.ArrivalTime >= t {
			n++
		}
	}
	for _, ws := range s.workstations {
		if !ws.busy {
			continue
		}
		for _, tok := range ws.inFlight {
			if tok.ArrivalTime >= t {
				n++
			}
		}
	}
	return n
}
