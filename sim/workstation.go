package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Workstation assembles a product from one token of each assigned buffer.
//
// States: idle → busy → idle, gated by every assigned buffer being
// non-empty. While busy it holds exactly one token per buffer.
type Workstation struct {
	ID int

	buffers []*Buffer
	gen     *Generator
	stream  StreamID

	busy     bool
	starting bool // a WorkstationStarted is scheduled but not yet dispatched
	inFlight []*Token

	minutesBusy float64
	products    int
	completed   []*Token

	steady      bool
	steadySince float64
	busySince   float64
}

// NewWorkstation wires a workstation to its buffers and seeds its service
// time generator.
func NewWorkstation(spec WorkstationSpec, buffers []*Buffer, seeds SeedMap) (*Workstation, error) {
	if len(buffers) == 0 {
		return nil, configErrorf("workstation %d: no buffers assigned", spec.ID)
	}
	seed, ok := seeds[spec.Stream]
	if !ok {
		return nil, configErrorf("workstation %d: no seed for stream %d", spec.ID, spec.Stream)
	}
	g, err := NewGenerator(seed, spec.Rate)
	if err != nil {
		return nil, err
	}
	return &Workstation{
		ID:       spec.ID,
		buffers:  buffers,
		gen:      g,
		stream:   spec.Stream,
		inFlight: make([]*Token, len(buffers)),
	}, nil
}

// Ready reports whether every assigned buffer holds at least one token.
func (ws *Workstation) Ready() bool {
	for _, b := range ws.buffers {
		if b.IsEmpty() {
			return false
		}
	}
	return true
}

func (ws *Workstation) Busy() bool { return ws.busy }

// Components is the number of tokens consumed per product.
func (ws *Workstation) Components() int { return len(ws.buffers) }

// MinutesBusy returns the steady-state busy time.
func (ws *Workstation) MinutesBusy() float64 { return ws.minutesBusy }

// ProductsCreated returns the products completed in steady state.
func (ws *Workstation) ProductsCreated() int { return ws.products }

// Completed returns the departed tokens, oldest first. The slice must not be
// modified.
func (ws *Workstation) Completed() []*Token { return ws.completed }

// SetSteadyState starts statistic accumulation at now.
func (ws *Workstation) SetSteadyState(now float64) {
	ws.steady = true
	ws.steadySince = now
}

// OnBufferFilled schedules an immediate start if the workstation is idle and
// every buffer now holds a token. It does not touch the buffers itself.
func (ws *Workstation) OnBufferFilled(now float64) []Event {
	if ws.busy || ws.starting || !ws.Ready() {
		return nil
	}
	ws.starting = true
	return []Event{NewWorkstationStartedEvent(now, now, ws.ID)}
}

// OnWorkstationStarted drains one token from every buffer and schedules the
// end of assembly.
func (ws *Workstation) OnWorkstationStarted(ev *WorkstationStartedEvent) []Event {
	now := ev.StartTime()
	if ws.busy {
		violate(now, "workstation %d started while busy", ws.ID)
	}
	for _, b := range ws.buffers {
		if b.IsEmpty() {
			violate(now, "workstation %d started with buffer %d empty", ws.ID, b.ID)
		}
	}
	ws.starting = false
	ws.busy = true
	ws.busySince = now
	for i, b := range ws.buffers {
		ws.inFlight[i] = b.Dequeue()
	}
	service := ws.gen.Exponential()
	logrus.Debugf("[t=%10.3f] workstation %d assembling until %.3f", now, ws.ID, now+service)
	return []Event{NewWorkstationDoneEvent(now, now+service, ws.ID)}
}

// OnWorkstationDone completes the product, stamps the departure of every
// held token and starts again straight away if the buffers allow it.
func (ws *Workstation) OnWorkstationDone(ev *WorkstationDoneEvent) []Event {
	now := ev.StartTime()
	if !ws.busy {
		violate(now, "workstation %d finished while idle", ws.ID)
	}
	ws.busy = false
	if ws.steady {
		ws.products++
		ws.minutesBusy += now - math.Max(ev.CreatedTime(), ws.steadySince)
	}
	for i, t := range ws.inFlight {
		t.Depart(now)
		ws.completed = append(ws.completed, t)
		ws.inFlight[i] = nil
	}
	return ws.OnBufferFilled(now)
}

// InFlight returns the number of tokens currently being assembled.
func (ws *Workstation) InFlight() int {
	if ws.busy {
		return len(ws.inFlight)
	}
	return 0
}

// closeBusy accounts for an assembly still running at the end of the
// horizon. No product is counted for it.
func (ws *Workstation) closeBusy(now float64) {
	if ws.busy && ws.steady {
		ws.minutesBusy += now - math.Max(ws.busySince, ws.steadySince)
		ws.busySince = now
	}
}
