package sim

import (
	"fmt"
	"math"
)

// ComponentType identifies a kind of raw part and which buffers accept it.
type ComponentType int

const (
	C1 ComponentType = iota
	C2
	C3

	// NumComponentTypes sizes the per-type arrays held by inspectors.
	NumComponentTypes
)

var componentTypeNames = [NumComponentTypes]string{"C1", "C2", "C3"}

func (c ComponentType) String() string {
	if c.Valid() {
		return componentTypeNames[c]
	}
	return fmt.Sprintf("ComponentType(%d)", int(c))
}

// Valid reports whether c is one of the declared component types.
func (c ComponentType) Valid() bool {
	return c >= 0 && c < NumComponentTypes
}

// ParseComponentType maps "C1".."C3" to a ComponentType.
func ParseComponentType(s string) (ComponentType, error) {
	for i, name := range componentTypeNames {
		if s == name {
			return ComponentType(i), nil
		}
	}
	return 0, configErrorf("unknown component type %q", s)
}

// Token is one component flowing inspector → buffer → workstation.
// The inspector that picks it up stamps ArrivalTime; the workstation that
// consumes it stamps the departure once, after which it is immutable.
type Token struct {
	Type        ComponentType
	ArrivalTime float64

	departureTime float64
	departed      bool
}

// NewToken creates a token of type c picked up at arrival.
func NewToken(c ComponentType, arrival float64) *Token {
	return &Token{Type: c, ArrivalTime: arrival, departureTime: math.NaN()}
}

// Depart stamps the departure time. Stamping twice is a state-machine bug.
func (t *Token) Depart(now float64) {
	if t.departed {
		violate(now, "token %s (arrived %.6f) departed twice", t.Type, t.ArrivalTime)
	}
	t.departureTime = now
	t.departed = true
}

// Departure returns the departure time and whether it has been set.
func (t *Token) Departure() (float64, bool) {
	return t.departureTime, t.departed
}

// TimeInSystem returns departure minus arrival, or NaN while in flight.
func (t *Token) TimeInSystem() float64 {
	if !t.departed {
		return math.NaN()
	}
	return t.departureTime - t.ArrivalTime
}
