// Implements the Buffer, a bounded FIFO of tokens of one component type
// sitting between inspectors and workstations.

package sim

import (
	"fmt"
	"strings"
)

// Buffer holds at most Capacity tokens of one accepted type in arrival order.
// It is touched only by the engine's dispatch loop, so there is no locking.
type Buffer struct {
	ID       int
	Capacity int
	Accepts  ComponentType

	queue     []*Token
	occupancy float64 // integral of size over steady-state time
	steady    bool
}

// NewBuffer creates an empty buffer.
func NewBuffer(id, capacity int, accepts ComponentType) *Buffer {
	return &Buffer{ID: id, Capacity: capacity, Accepts: accepts, queue: make([]*Token, 0, capacity)}
}

// TryEnqueue appends t to the back of the buffer. It returns false, leaving
// the buffer untouched, when the buffer is full.
func (b *Buffer) TryEnqueue(t *Token) bool {
	if t.Type != b.Accepts {
		panic(fmt.Sprintf("TryEnqueue: buffer %d accepts %s, got %s", b.ID, b.Accepts, t.Type))
	}
	if b.IsFull() {
		return false
	}
	b.queue = append(b.queue, t)
	return true
}

// Dequeue removes the oldest token. Callers must know the buffer is non-empty.
func (b *Buffer) Dequeue() *Token {
	if len(b.queue) == 0 {
		panic(fmt.Sprintf("Dequeue: buffer %d is empty", b.ID))
	}
	t := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return t
}

// Len returns the number of tokens currently held.
func (b *Buffer) Len() int { return len(b.queue) }

func (b *Buffer) IsFull() bool  { return len(b.queue) >= b.Capacity }
func (b *Buffer) IsEmpty() bool { return len(b.queue) == 0 }

// Accumulate adds size*elapsed to the occupancy integral once the engine is
// in steady state; warm-up intervals are skipped.
func (b *Buffer) Accumulate(elapsed float64) {
	if !b.steady {
		return
	}
	b.occupancy += float64(len(b.queue)) * elapsed
}

// CumulativeOccupancy returns the steady-state occupancy integral.
func (b *Buffer) CumulativeOccupancy() float64 { return b.occupancy }

// SetSteadyState turns on statistic accumulation.
func (b *Buffer) SetSteadyState() { b.steady = true }

func (b *Buffer) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B%d[", b.ID)
	for i, t := range b.queue {
		sb.WriteString(t.Type.String())
		if i < len(b.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
