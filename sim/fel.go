package sim

import (
	"container/heap"
	"sort"
)

// felItem pairs an event with the sequence number stamped on insertion.
type felItem struct {
	ev  Event
	seq uint64
}

// eventHeap implements heap.Interface.
// Ordering: start time → insertion sequence.
type eventHeap []felItem

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	si, sj := h[i].ev.StartTime(), h[j].ev.StartTime()
	if si != sj {
		return si < sj
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(felItem))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = felItem{}
	*h = old[:n-1]
	return item
}

// FutureEventList is the ordered multiset of pending events. Events with
// equal start times come out in the order they were scheduled.
type FutureEventList struct {
	items   eventHeap
	nextSeq uint64
}

// NewFutureEventList creates an empty FEL.
func NewFutureEventList() *FutureEventList {
	f := &FutureEventList{items: make(eventHeap, 0)}
	heap.Init(&f.items)
	return f
}

// Schedule inserts ev. An event that starts before it was created is a
// scheduling bug.
func (f *FutureEventList) Schedule(ev Event) {
	if ev.StartTime() < ev.CreatedTime() {
		violate(ev.CreatedTime(), "%s starts at %.6f, before its creation", describe(ev), ev.StartTime())
	}
	heap.Push(&f.items, felItem{ev: ev, seq: f.nextSeq})
	f.nextSeq++
}

// PopNext removes and returns the earliest event, or nil when empty.
func (f *FutureEventList) PopNext() Event {
	if f.items.Len() == 0 {
		return nil
	}
	return heap.Pop(&f.items).(felItem).ev
}

// Peek returns the next event without removing it.
func (f *FutureEventList) Peek() Event {
	if f.items.Len() == 0 {
		return nil
	}
	return f.items[0].ev
}

// Len returns the number of pending events.
func (f *FutureEventList) Len() int { return f.items.Len() }

// Pending returns the pending events in dispatch order without disturbing
// the list.
func (f *FutureEventList) Pending() []Event {
	items := make(eventHeap, len(f.items))
	copy(items, f.items)
	sort.Slice(items, items.Less)
	out := make([]Event, len(items))
	for i, it := range items {
		out[i] = it.ev
	}
	return out
}
