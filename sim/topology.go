package sim

import "fmt"

// BufferSpec describes one buffer of the line.
type BufferSpec struct {
	ID       int
	Capacity int
	Accepts  ComponentType
}

// ComponentSpec is one component type an inspector handles, with the rate of
// its cleaning-time distribution and the stream that drives it.
type ComponentSpec struct {
	Type   ComponentType
	Rate   float64
	Stream StreamID
}

// InspectorSpec describes one inspector: the types it cleans, the buffers it
// feeds (in policy order) and, when it handles more than one type, the
// stream used to choose which type to pick up next.
type InspectorSpec struct {
	ID         int
	Components []ComponentSpec
	Buffers    []int
	TypeStream StreamID
}

// WorkstationSpec describes one workstation and the buffers it drains, one
// component from each per product.
type WorkstationSpec struct {
	ID      int
	Buffers []int
	Rate    float64
	Stream  StreamID
}

// Topology is the wiring of the line. It is validated once and never
// mutated by the engine.
type Topology struct {
	Buffers      []BufferSpec
	Inspectors   []InspectorSpec
	Workstations []WorkstationSpec
}

// BufferCapacity is the capacity of every buffer in the default line.
const BufferCapacity = 2

// DefaultTopology returns the two-inspector, five-buffer, three-workstation
// line.
func DefaultTopology() Topology {
	return Topology{
		Buffers: []BufferSpec{
			{ID: 1, Capacity: BufferCapacity, Accepts: C1},
			{ID: 2, Capacity: BufferCapacity, Accepts: C1},
			{ID: 3, Capacity: BufferCapacity, Accepts: C1},
			{ID: 4, Capacity: BufferCapacity, Accepts: C2},
			{ID: 5, Capacity: BufferCapacity, Accepts: C3},
		},
		Inspectors: []InspectorSpec{
			{
				ID:         1,
				Components: []ComponentSpec{{Type: C1, Rate: 0.096545, Stream: StreamInspector1C1}},
				Buffers:    []int{1, 2, 3},
			},
			{
				ID: 2,
				Components: []ComponentSpec{
					{Type: C2, Rate: 0.064363, Stream: StreamInspector2C2},
					{Type: C3, Rate: 0.048467, Stream: StreamInspector2C3},
				},
				Buffers:    []int{4, 5},
				TypeStream: StreamInspector2Type,
			},
		},
		Workstations: []WorkstationSpec{
			{ID: 1, Buffers: []int{1}, Rate: 0.217183, Stream: StreamWorkstation1},
			{ID: 2, Buffers: []int{2, 4}, Rate: 0.090150, Stream: StreamWorkstation2},
			{ID: 3, Buffers: []int{3, 5}, Rate: 0.113688, Stream: StreamWorkstation3},
		},
	}
}

// Clone returns a deep copy so callers can adjust rates without aliasing.
func (t Topology) Clone() Topology {
	out := Topology{
		Buffers:      append([]BufferSpec(nil), t.Buffers...),
		Inspectors:   make([]InspectorSpec, len(t.Inspectors)),
		Workstations: make([]WorkstationSpec, len(t.Workstations)),
	}
	for i, in := range t.Inspectors {
		in.Components = append([]ComponentSpec(nil), in.Components...)
		in.Buffers = append([]int(nil), in.Buffers...)
		out.Inspectors[i] = in
	}
	for i, ws := range t.Workstations {
		ws.Buffers = append([]int(nil), ws.Buffers...)
		out.Workstations[i] = ws
	}
	return out
}

// Streams returns every stream the topology draws from.
func (t Topology) Streams() []StreamID {
	var ids []StreamID
	for _, in := range t.Inspectors {
		for _, c := range in.Components {
			ids = append(ids, c.Stream)
		}
		if len(in.Components) > 1 {
			ids = append(ids, in.TypeStream)
		}
	}
	for _, ws := range t.Workstations {
		ids = append(ids, ws.Stream)
	}
	return ids
}

// Validate checks the wiring. Each buffer must be fed by exactly one
// inspector and drained by exactly one workstation; this is what lets a
// workstation's readiness survive between scheduling its start and
// dispatching it.
func (t Topology) Validate() error {
	if len(t.Buffers) == 0 || len(t.Inspectors) == 0 || len(t.Workstations) == 0 {
		return configErrorf("topology needs at least one buffer, inspector and workstation")
	}

	buffers := make(map[int]BufferSpec, len(t.Buffers))
	for _, b := range t.Buffers {
		if _, dup := buffers[b.ID]; dup {
			return configErrorf("duplicate buffer id %d", b.ID)
		}
		if b.Capacity < 1 {
			return configErrorf("buffer %d: capacity must be at least 1, got %d", b.ID, b.Capacity)
		}
		if !b.Accepts.Valid() {
			return configErrorf("buffer %d: invalid component type %v", b.ID, b.Accepts)
		}
		buffers[b.ID] = b
	}

	streams := make(map[StreamID]string)
	claim := func(id StreamID, owner string) error {
		if prev, dup := streams[id]; dup {
			return configErrorf("stream %d used by both %s and %s", id, prev, owner)
		}
		streams[id] = owner
		return nil
	}

	feeders := make(map[int]int)
	seenInspectors := make(map[int]bool)
	for _, in := range t.Inspectors {
		if seenInspectors[in.ID] {
			return configErrorf("duplicate inspector id %d", in.ID)
		}
		seenInspectors[in.ID] = true
		if len(in.Components) == 0 {
			return configErrorf("inspector %d: no component types assigned", in.ID)
		}
		if len(in.Buffers) == 0 {
			return configErrorf("inspector %d: no buffers assigned", in.ID)
		}
		for _, id := range in.Buffers {
			if _, ok := buffers[id]; !ok {
				return configErrorf("inspector %d: unknown buffer %d", in.ID, id)
			}
			feeders[id]++
		}
		var handled [NumComponentTypes]bool
		for _, c := range in.Components {
			if !c.Type.Valid() {
				return configErrorf("inspector %d: invalid component type %v", in.ID, c.Type)
			}
			if handled[c.Type] {
				return configErrorf("inspector %d: component type %s listed twice", in.ID, c.Type)
			}
			handled[c.Type] = true
			if !(c.Rate > 0) {
				return configErrorf("inspector %d: rate for %s must be positive, got %v", in.ID, c.Type, c.Rate)
			}
			accepted := false
			for _, id := range in.Buffers {
				if buffers[id].Accepts == c.Type {
					accepted = true
					break
				}
			}
			if !accepted {
				return configErrorf("inspector %d: no assigned buffer accepts %s", in.ID, c.Type)
			}
			if err := claim(c.Stream, fmt.Sprintf("inspector %d/%s", in.ID, c.Type)); err != nil {
				return err
			}
		}
		for _, id := range in.Buffers {
			if !handled[buffers[id].Accepts] {
				return configErrorf("inspector %d: buffer %d accepts %s, which it does not handle", in.ID, id, buffers[id].Accepts)
			}
		}
		if len(in.Components) > 1 {
			if err := claim(in.TypeStream, fmt.Sprintf("inspector %d/type", in.ID)); err != nil {
				return err
			}
		}
	}

	drains := make(map[int]int)
	seenWorkstations := make(map[int]bool)
	for _, ws := range t.Workstations {
		if seenWorkstations[ws.ID] {
			return configErrorf("duplicate workstation id %d", ws.ID)
		}
		seenWorkstations[ws.ID] = true
		if len(ws.Buffers) == 0 {
			return configErrorf("workstation %d: no buffers assigned", ws.ID)
		}
		if !(ws.Rate > 0) {
			return configErrorf("workstation %d: rate must be positive, got %v", ws.ID, ws.Rate)
		}
		for _, id := range ws.Buffers {
			if _, ok := buffers[id]; !ok {
				return configErrorf("workstation %d: unknown buffer %d", ws.ID, id)
			}
			drains[id]++
		}
		if err := claim(ws.Stream, fmt.Sprintf("workstation %d", ws.ID)); err != nil {
			return err
		}
	}

	for _, b := range t.Buffers {
		if feeders[b.ID] != 1 {
			return configErrorf("buffer %d must be fed by exactly one inspector, found %d", b.ID, feeders[b.ID])
		}
		if drains[b.ID] != 1 {
			return configErrorf("buffer %d must be drained by exactly one workstation, found %d", b.ID, drains[b.ID])
		}
	}
	return nil
}
