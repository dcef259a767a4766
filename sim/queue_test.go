package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_TryEnqueue_RespectsCapacity(t *testing.T) {
	// GIVEN an empty buffer of capacity 2
	b := NewBuffer(1, 2, C1)

	// WHEN three tokens are offered
	ok1 := b.TryEnqueue(NewToken(C1, 0))
	ok2 := b.TryEnqueue(NewToken(C1, 1))
	ok3 := b.TryEnqueue(NewToken(C1, 2))

	// THEN the first two are accepted and the third is refused
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
	assert.Equal(t, 2, b.Len())
	assert.True(t, b.IsFull())
	assert.False(t, b.IsEmpty())
}

func TestBuffer_Dequeue_IsFIFO(t *testing.T) {
	b := NewBuffer(4, 2, C2)
	first := NewToken(C2, 1)
	second := NewToken(C2, 3)
	b.TryEnqueue(first)
	b.TryEnqueue(second)

	if got := b.Dequeue(); got != first {
		t.Errorf("Dequeue: got token arriving at %v, want %v", got.ArrivalTime, first.ArrivalTime)
	}
	if got := b.Dequeue(); got != second {
		t.Errorf("Dequeue: got token arriving at %v, want %v", got.ArrivalTime, second.ArrivalTime)
	}
	if !b.IsEmpty() {
		t.Errorf("buffer should be empty, has %d tokens", b.Len())
	}
}

func TestBuffer_RefusedTokenLeavesBufferUntouched(t *testing.T) {
	b := NewBuffer(1, 1, C1)
	kept := NewToken(C1, 0)
	b.TryEnqueue(kept)

	b.TryEnqueue(NewToken(C1, 5))

	assert.Equal(t, 1, b.Len())
	assert.Same(t, kept, b.Dequeue())
}

func TestBuffer_Dequeue_EmptyPanics(t *testing.T) {
	b := NewBuffer(2, 2, C1)
	assert.Panics(t, func() { b.Dequeue() })
}

func TestBuffer_TryEnqueue_WrongTypePanics(t *testing.T) {
	b := NewBuffer(5, 2, C3)
	assert.Panics(t, func() { b.TryEnqueue(NewToken(C1, 0)) })
}

func TestBuffer_Accumulate_OnlyInSteadyState(t *testing.T) {
	// GIVEN a buffer holding one token
	b := NewBuffer(1, 2, C1)
	b.TryEnqueue(NewToken(C1, 0))

	// WHEN time passes before the cutover
	b.Accumulate(10)

	// THEN nothing is recorded
	assert.Equal(t, 0.0, b.CumulativeOccupancy())

	// WHEN the buffer enters steady state and two more intervals pass
	b.SetSteadyState()
	b.Accumulate(4)
	b.TryEnqueue(NewToken(C1, 14))
	b.Accumulate(3)

	// THEN the integral is 1*4 + 2*3
	assert.Equal(t, 10.0, b.CumulativeOccupancy())
}

func TestBuffer_String(t *testing.T) {
	b := NewBuffer(3, 2, C1)
	assert.Equal(t, "B3[]", b.String())
	b.TryEnqueue(NewToken(C1, 0))
	b.TryEnqueue(NewToken(C1, 0))
	assert.Equal(t, "B3[C1 C1]", b.String())
}

func TestToken_DepartTwiceViolates(t *testing.T) {
	tok := NewToken(C2, 2)
	tok.Depart(7)

	dep, ok := tok.Departure()
	assert.True(t, ok)
	assert.Equal(t, 7.0, dep)
	assert.Equal(t, 5.0, tok.TimeInSystem())

	v := expectViolation(t, func() { tok.Depart(9) })
	assert.Equal(t, 9.0, v.Clock)
}

func TestToken_TimeInSystemNaNWhileInFlight(t *testing.T) {
	tok := NewToken(C1, 1)
	_, ok := tok.Departure()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(tok.TimeInSystem()))
}

func TestParseComponentType(t *testing.T) {
	for _, c := range []ComponentType{C1, C2, C3} {
		got, err := ParseComponentType(c.String())
		assert.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseComponentType("C4")
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, "ComponentType(7)", ComponentType(7).String())
}
