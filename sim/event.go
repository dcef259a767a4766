package sim

import "fmt"

// EventKind tags the variant of an Event.
type EventKind int

const (
	KindInspectorStarted EventKind = iota
	KindInspectorDone
	KindWorkstationStarted
	KindWorkstationDone
	KindSteadyStateStart
	KindSimulationDone

	numEventKinds
)

var eventKindNames = [numEventKinds]string{
	"InspectorStarted",
	"InspectorDone",
	"WorkstationStarted",
	"WorkstationDone",
	"SteadyStateStart",
	"SimulationDone",
}

func (k EventKind) String() string {
	if k >= 0 && k < numEventKinds {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a scheduled occurrence. The set of implementations is closed:
// one struct per EventKind, each carrying only what that kind needs.
// Events are immutable values consumed exactly once by the FEL.
type Event interface {
	Kind() EventKind
	// CreatedTime is the clock value when the event was scheduled.
	CreatedTime() float64
	// StartTime is when the event fires; never before CreatedTime.
	StartTime() float64
	// Owner returns the id of the addressed entity, if any.
	Owner() (int, bool)
	sealed()
}

// baseEvent provides the timing fields shared by every event.
type baseEvent struct {
	created float64
	start   float64
}

func (e baseEvent) CreatedTime() float64 { return e.created }
func (e baseEvent) StartTime() float64   { return e.start }
func (baseEvent) sealed()                {}

// InspectorStartedEvent tells an inspector to pick up its next component.
type InspectorStartedEvent struct {
	baseEvent
	InspectorID int
}

func NewInspectorStartedEvent(created, start float64, inspectorID int) *InspectorStartedEvent {
	return &InspectorStartedEvent{baseEvent{created, start}, inspectorID}
}

func (*InspectorStartedEvent) Kind() EventKind       { return KindInspectorStarted }
func (e *InspectorStartedEvent) Owner() (int, bool) { return e.InspectorID, true }

// InspectorDoneEvent marks the end of a cleaning period.
type InspectorDoneEvent struct {
	baseEvent
	InspectorID int
}

func NewInspectorDoneEvent(created, start float64, inspectorID int) *InspectorDoneEvent {
	return &InspectorDoneEvent{baseEvent{created, start}, inspectorID}
}

func (*InspectorDoneEvent) Kind() EventKind       { return KindInspectorDone }
func (e *InspectorDoneEvent) Owner() (int, bool) { return e.InspectorID, true }

// WorkstationStartedEvent tells a workstation to drain its buffers and
// begin assembly.
type WorkstationStartedEvent struct {
	baseEvent
	WorkstationID int
}

func NewWorkstationStartedEvent(created, start float64, workstationID int) *WorkstationStartedEvent {
	return &WorkstationStartedEvent{baseEvent{created, start}, workstationID}
}

func (*WorkstationStartedEvent) Kind() EventKind       { return KindWorkstationStarted }
func (e *WorkstationStartedEvent) Owner() (int, bool) { return e.WorkstationID, true }

// WorkstationDoneEvent marks the end of an assembly. Its CreatedTime is the
// instant assembly began.
type WorkstationDoneEvent struct {
	baseEvent
	WorkstationID int
}

func NewWorkstationDoneEvent(created, start float64, workstationID int) *WorkstationDoneEvent {
	return &WorkstationDoneEvent{baseEvent{created, start}, workstationID}
}

func (*WorkstationDoneEvent) Kind() EventKind       { return KindWorkstationDone }
func (e *WorkstationDoneEvent) Owner() (int, bool) { return e.WorkstationID, true }

// SteadyStateStartEvent is the warm-up cutover.
type SteadyStateStartEvent struct{ baseEvent }

func NewSteadyStateStartEvent(at float64) *SteadyStateStartEvent {
	return &SteadyStateStartEvent{baseEvent{0, at}}
}

func (*SteadyStateStartEvent) Kind() EventKind    { return KindSteadyStateStart }
func (*SteadyStateStartEvent) Owner() (int, bool) { return 0, false }

// SimulationDoneEvent terminates the dispatch loop.
type SimulationDoneEvent struct{ baseEvent }

func NewSimulationDoneEvent(at float64) *SimulationDoneEvent {
	return &SimulationDoneEvent{baseEvent{0, at}}
}

func (*SimulationDoneEvent) Kind() EventKind    { return KindSimulationDone }
func (*SimulationDoneEvent) Owner() (int, bool) { return 0, false }

func describe(ev Event) string {
	if id, ok := ev.Owner(); ok {
		return fmt.Sprintf("%s #%d (created %.3f)", ev.Kind(), id, ev.CreatedTime())
	}
	return ev.Kind().String()
}
