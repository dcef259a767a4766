package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Inspector cleans components and deposits them into its buffers.
//
// States: idle → cleaning → idle (placed) or blocked; blocked → idle once a
// downstream workstation frees a slot. It holds at most one token at a time.
type Inspector struct {
	ID int

	buffers    []*Buffer
	types      []ComponentType
	generators [NumComponentTypes]*Generator
	streams    [NumComponentTypes]StreamID
	chooser    *Generator
	typeStream StreamID
	policy     SelectionPolicy
	rotation   int

	current      *Token
	blocked      bool
	blockedSince float64
	timeBlocked  float64
	pickedUp     int

	steady      bool
	steadySince float64
}

// NewInspector wires an inspector to its buffers and seeds one generator per
// handled type, plus a type-choice generator when it handles more than one.
func NewInspector(spec InspectorSpec, buffers []*Buffer, policy SelectionPolicy, seeds SeedMap) (*Inspector, error) {
	if len(spec.Components) == 0 {
		return nil, configErrorf("inspector %d: no component types assigned", spec.ID)
	}
	if len(buffers) == 0 {
		return nil, configErrorf("inspector %d: no buffers assigned", spec.ID)
	}
	in := &Inspector{ID: spec.ID, buffers: buffers, policy: policy}
	for _, c := range spec.Components {
		seed, ok := seeds[c.Stream]
		if !ok {
			return nil, configErrorf("inspector %d: no seed for stream %d (%s)", spec.ID, c.Stream, c.Type)
		}
		g, err := NewGenerator(seed, c.Rate)
		if err != nil {
			return nil, err
		}
		in.types = append(in.types, c.Type)
		in.generators[c.Type] = g
		in.streams[c.Type] = c.Stream
	}
	if len(in.types) > 1 {
		seed, ok := seeds[spec.TypeStream]
		if !ok {
			return nil, configErrorf("inspector %d: no seed for type-choice stream %d", spec.ID, spec.TypeStream)
		}
		// The rate is irrelevant; only uniforms are drawn from this stream.
		g, err := NewGenerator(seed, 1)
		if err != nil {
			return nil, err
		}
		in.chooser = g
		in.typeStream = spec.TypeStream
	}
	return in, nil
}

// Blocked reports whether the inspector is holding a token it cannot place.
func (in *Inspector) Blocked() bool { return in.blocked }

// Holding reports whether a token is picked up and not yet placed.
func (in *Inspector) Holding() bool { return in.current != nil }

// TimeBlocked returns the steady-state blocked time.
func (in *Inspector) TimeBlocked() float64 { return in.timeBlocked }

// PickedUp returns the number of components picked up since the start of
// the replication, warm-up included.
func (in *Inspector) PickedUp() int { return in.pickedUp }

// SetSteadyState starts statistic accumulation at now. A blocked period
// already open is counted from the cutover onwards.
func (in *Inspector) SetSteadyState(now float64) {
	in.steady = true
	in.steadySince = now
}

// OnInspectorStarted picks up the next component and schedules the end of
// its cleaning.
func (in *Inspector) OnInspectorStarted(ev *InspectorStartedEvent) []Event {
	if in.blocked {
		return nil
	}
	now := ev.StartTime()
	if in.current != nil {
		violate(now, "inspector %d started while still holding a %s", in.ID, in.current.Type)
	}
	c := in.chooseType()
	g := in.generators[c]
	if g == nil {
		violate(now, "inspector %d has no generator for %s", in.ID, c)
	}
	cleaning := g.Exponential()
	in.current = NewToken(c, now)
	in.pickedUp++
	return []Event{NewInspectorDoneEvent(now, now+cleaning, in.ID)}
}

// OnInspectorDone tries to place the cleaned token. Failing that, the
// inspector blocks until a workstation drains one of its buffers.
func (in *Inspector) OnInspectorDone(ev *InspectorDoneEvent) []Event {
	now := ev.StartTime()
	if in.current == nil {
		violate(now, "inspector %d finished cleaning without a token", in.ID)
	}
	if in.place(now) {
		return []Event{NewInspectorStartedEvent(now, now, in.ID)}
	}
	in.blocked = true
	in.blockedSince = now
	logrus.Debugf("[t=%10.3f] inspector %d blocked holding %s", now, in.ID, in.current.Type)
	return nil
}

// OnWorkstationStarted retries placement for a blocked inspector; the
// starting workstation has just drained one token from each of its buffers.
func (in *Inspector) OnWorkstationStarted(ev *WorkstationStartedEvent) []Event {
	if !in.blocked {
		return nil
	}
	now := ev.StartTime()
	if !in.place(now) {
		return nil
	}
	if in.steady {
		in.timeBlocked += now - math.Max(in.blockedSince, in.steadySince)
	}
	in.blocked = false
	logrus.Debugf("[t=%10.3f] inspector %d unblocked", now, in.ID)
	return []Event{NewInspectorStartedEvent(now, now, in.ID)}
}

// closeBlocked accounts for a blocked period still open at the end of the
// horizon.
func (in *Inspector) closeBlocked(now float64) {
	if in.blocked && in.steady {
		in.timeBlocked += now - math.Max(in.blockedSince, in.steadySince)
		in.blockedSince = now
	}
}

func (in *Inspector) chooseType() ComponentType {
	if len(in.types) == 1 {
		return in.types[0]
	}
	i := int(in.chooser.Uniform() * float64(len(in.types)))
	if i >= len(in.types) {
		i = len(in.types) - 1
	}
	return in.types[i]
}

func (in *Inspector) place(now float64) bool {
	candidates := make([]Candidate, len(in.buffers))
	for i, b := range in.buffers {
		candidates[i] = Candidate{Eligible: b.Accepts == in.current.Type, Full: b.IsFull(), Len: b.Len()}
	}
	i, ok := SelectBuffer(in.policy, candidates, in.rotation)
	if !ok {
		return false
	}
	if !in.buffers[i].TryEnqueue(in.current) {
		violate(now, "inspector %d: buffer %d selected but full", in.ID, in.buffers[i].ID)
	}
	if in.policy == RoundRobin {
		in.rotation = (i + 1) % len(in.buffers)
	}
	in.current = nil
	return true
}

// seeds reports the current state of every stream this inspector owns.
func (in *Inspector) seeds(out SeedMap) {
	for _, c := range in.types {
		out[in.streams[c]] = in.generators[c].State()
	}
	if in.chooser != nil {
		out[in.typeStream] = in.chooser.State()
	}
}
