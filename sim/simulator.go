// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// handlerFunc reacts to one event and returns the events it schedules.
type handlerFunc func(Event) []Event

// route is the dispatch entry for one event kind. The owner handler, looked
// up by the event's addressed id, runs first; observers run after it in
// topology order.
type route struct {
	owners    map[int]handlerFunc
	observers []handlerFunc
}

// Simulator owns every entity of one replication and the FEL that drives
// them. It is single-threaded: all mutation happens inside one handler call
// at a time on the goroutine calling Run.
type Simulator struct {
	Clock float64

	cfg          Config
	buffers      []*Buffer
	inspectors   []*Inspector
	workstations []*Workstation
	fel          *FutureEventList
	routes       [numEventKinds]route

	steady         bool
	populationTime float64 // integral of tokens in system over steady-state time
	dispatched     int
	done           bool
}

// NewSimulator validates cfg, builds the entities with generators resumed
// from seeds and schedules the bootstrap events. Every stream the topology
// uses must be present in seeds.
func NewSimulator(cfg Config, seeds SeedMap) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Topology = cfg.Topology.Clone()
	topo := cfg.Topology
	s := &Simulator{cfg: cfg, fel: NewFutureEventList()}

	byID := make(map[int]*Buffer, len(topo.Buffers))
	for _, spec := range topo.Buffers {
		b := NewBuffer(spec.ID, spec.Capacity, spec.Accepts)
		s.buffers = append(s.buffers, b)
		byID[spec.ID] = b
	}
	resolve := func(ids []int) []*Buffer {
		out := make([]*Buffer, len(ids))
		for i, id := range ids {
			out[i] = byID[id]
		}
		return out
	}
	for _, spec := range topo.Inspectors {
		in, err := NewInspector(spec, resolve(spec.Buffers), cfg.Policy, seeds)
		if err != nil {
			return nil, err
		}
		s.inspectors = append(s.inspectors, in)
	}
	for _, spec := range topo.Workstations {
		ws, err := NewWorkstation(spec, resolve(spec.Buffers), seeds)
		if err != nil {
			return nil, err
		}
		s.workstations = append(s.workstations, ws)
	}

	s.buildRoutes()

	for _, in := range s.inspectors {
		s.fel.Schedule(NewInspectorStartedEvent(0, 0, in.ID))
	}
	s.fel.Schedule(NewSteadyStateStartEvent(cfg.Warmup))
	s.fel.Schedule(NewSimulationDoneEvent(cfg.Horizon))
	return s, nil
}

// buildRoutes fills the kind → handler table.
//
//   - InspectorStarted: owning inspector.
//   - InspectorDone: owning inspector places its token, then every
//     workstation checks readiness.
//   - WorkstationStarted: owning workstation drains its buffers, then blocked
//     inspectors retry, then workstations re-check readiness for the tokens
//     those inspectors just placed.
//   - WorkstationDone: owning workstation.
//
// SteadyStateStart and SimulationDone are handled by the engine itself.
func (s *Simulator) buildRoutes() {
	for k := range s.routes {
		s.routes[k].owners = make(map[int]handlerFunc)
	}
	for _, in := range s.inspectors {
		s.routes[KindInspectorStarted].owners[in.ID] = func(ev Event) []Event {
			return in.OnInspectorStarted(ev.(*InspectorStartedEvent))
		}
		s.routes[KindInspectorDone].owners[in.ID] = func(ev Event) []Event {
			return in.OnInspectorDone(ev.(*InspectorDoneEvent))
		}
	}
	for _, ws := range s.workstations {
		s.routes[KindWorkstationStarted].owners[ws.ID] = func(ev Event) []Event {
			return ws.OnWorkstationStarted(ev.(*WorkstationStartedEvent))
		}
		s.routes[KindWorkstationDone].owners[ws.ID] = func(ev Event) []Event {
			return ws.OnWorkstationDone(ev.(*WorkstationDoneEvent))
		}
		s.routes[KindInspectorDone].observers = append(s.routes[KindInspectorDone].observers, func(ev Event) []Event {
			return ws.OnBufferFilled(ev.StartTime())
		})
	}
	for _, in := range s.inspectors {
		s.routes[KindWorkstationStarted].observers = append(s.routes[KindWorkstationStarted].observers, func(ev Event) []Event {
			return in.OnWorkstationStarted(ev.(*WorkstationStartedEvent))
		})
	}
	for _, ws := range s.workstations {
		s.routes[KindWorkstationStarted].observers = append(s.routes[KindWorkstationStarted].observers, func(ev Event) []Event {
			return ws.OnBufferFilled(ev.StartTime())
		})
	}
}

// Schedule pushes an event into the FEL.
func (s *Simulator) Schedule(ev Event) {
	s.fel.Schedule(ev)
}

// Done reports whether SimulationDone has fired.
func (s *Simulator) Done() bool { return s.done }

// Step dispatches the earliest pending event. It returns false once the
// terminal event has fired.
func (s *Simulator) Step() bool {
	if s.done {
		return false
	}
	ev := s.fel.PopNext()
	if ev == nil {
		violate(s.Clock, "event list drained before SimulationDone")
	}
	if ev.StartTime() < s.Clock {
		violate(s.Clock, "clock went backwards: %s at %.6f", describe(ev), ev.StartTime())
	}

	elapsed := ev.StartTime() - s.Clock
	s.timeWeight(elapsed)
	s.Clock = ev.StartTime()
	s.dispatched++
	logrus.Debugf("[t=%10.3f] %s", s.Clock, describe(ev))

	switch ev.Kind() {
	case KindSteadyStateStart:
		s.enterSteadyState()
	case KindSimulationDone:
		s.finish()
		return false
	default:
		s.dispatch(ev)
	}
	return true
}

// Run dispatches events until SimulationDone. An invariant violation raised
// by a handler aborts the replication and is returned as an error.
func (s *Simulator) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*InvariantViolation)
			if !ok {
				panic(r)
			}
			err = v
		}
	}()
	for s.Step() {
	}
	logrus.Infof("[t=%10.3f] replication ended after %d events", s.Clock, s.dispatched)
	return nil
}

func (s *Simulator) dispatch(ev Event) {
	r := &s.routes[ev.Kind()]
	id, _ := ev.Owner()
	owner, ok := r.owners[id]
	if !ok {
		violate(s.Clock, "%s addressed to unknown entity %d", ev.Kind(), id)
	}
	s.scheduleAll(owner(ev))
	for _, h := range r.observers {
		s.scheduleAll(h(ev))
	}
}

func (s *Simulator) scheduleAll(events []Event) {
	for _, ev := range events {
		s.fel.Schedule(ev)
	}
}

// timeWeight integrates buffer occupancy and the in-system population over
// the interval that ends at the next event.
func (s *Simulator) timeWeight(elapsed float64) {
	for _, b := range s.buffers {
		b.Accumulate(elapsed)
	}
	if !s.steady {
		return
	}
	s.populationTime += float64(s.InSystem()) * elapsed
}

// InSystem returns the number of tokens currently in the line: in buffers,
// held by inspectors and being assembled.
func (s *Simulator) InSystem() int {
	n := 0
	for _, b := range s.buffers {
		n += b.Len()
	}
	for _, in := range s.inspectors {
		if in.Holding() {
			n++
		}
	}
	for _, ws := range s.workstations {
		n += ws.InFlight()
	}
	return n
}

func (s *Simulator) enterSteadyState() {
	s.steady = true
	for _, b := range s.buffers {
		b.SetSteadyState()
	}
	for _, in := range s.inspectors {
		in.SetSteadyState(s.Clock)
	}
	for _, ws := range s.workstations {
		ws.SetSteadyState(s.Clock)
	}
	logrus.Infof("[t=%10.3f] warm-up over, collecting statistics", s.Clock)
}

func (s *Simulator) finish() {
	for _, in := range s.inspectors {
		in.closeBlocked(s.Clock)
	}
	for _, ws := range s.workstations {
		ws.closeBusy(s.Clock)
	}
	s.done = true
}

// Buffers, Inspectors and Workstations expose the entities in topology order.
func (s *Simulator) Buffers() []*Buffer           { return s.buffers }
func (s *Simulator) Inspectors() []*Inspector     { return s.inspectors }
func (s *Simulator) Workstations() []*Workstation { return s.workstations }

// Pending returns the events still in the FEL, in dispatch order.
func (s *Simulator) Pending() []Event { return s.fel.Pending() }

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// NextSeeds returns every generator's current state, keyed by stream. A
// replication seeded with it continues the same sequences.
func (s *Simulator) NextSeeds() SeedMap {
	out := make(SeedMap, DefaultStreamCount)
	for _, in := range s.inspectors {
		in.seeds(out)
	}
	for _, ws := range s.workstations {
		out[ws.stream] = ws.gen.State()
	}
	return out
}

// Record derives the steady-state statistics. It must only be called after
// Run has returned without error.
func (s *Simulator) Record() *ReplicationRecord {
	if !s.done {
		panic(fmt.Sprintf("Record: replication not finished (clock %.3f)", s.Clock))
	}
	d := s.cfg.SteadyStateDuration()
	rec := &ReplicationRecord{
		steadyDuration: d,
		busy:           make(map[int]float64, len(s.workstations)),
		products:       make(map[int]int, len(s.workstations)),
		blocked:        make(map[int]float64, len(s.inspectors)),
		occupancy:      make(map[int]float64, len(s.buffers)),
	}
	total := 0
	for _, ws := range s.workstations {
		rec.busy[ws.ID] = ws.MinutesBusy() / d
		rec.products[ws.ID] = ws.ProductsCreated()
		total += ws.ProductsCreated()
	}
	for _, in := range s.inspectors {
		rec.blocked[in.ID] = in.TimeBlocked() / d
	}
	for _, b := range s.buffers {
		rec.occupancy[b.ID] = b.CumulativeOccupancy() / d
	}
	rec.throughput = float64(total) / d
	return rec
}

// RunReplication executes one full horizon from seeds and returns the
// statistics together with the seeds for the next replication.
func RunReplication(cfg Config, seeds SeedMap) (*ReplicationRecord, SeedMap, error) {
	s, err := NewSimulator(cfg, seeds)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Run(); err != nil {
		return nil, nil, err
	}
	return s.Record(), s.NextSeeds(), nil
}
