package sim

import "container/heap"

// eventQueue is a min-heap keyed on event time, ties broken by insertion
// sequence number so equal-time events pop in insertion order and runs
// stay deterministic. It never searches for entries to invalidate; that
// is the owning ball's job via event.invalidate().
type eventQueue struct {
	items []*event
	seq   uint64
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(q)
	return q
}

// push assigns the next insertion sequence number and adds e to the heap.
func (q *eventQueue) push(e *event) {
	q.seq++
	e.seq = q.seq
	heap.Push(q, e)
}

// pop removes and returns the earliest-time event, or nil if empty.
func (q *eventQueue) pop() *event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*event)
}

// --- container/heap.Interface ---

func (q *eventQueue) Len() int { return len(q.items) }

func (q *eventQueue) Less(a, b int) bool {
	ea, eb := q.items[a], q.items[b]
	if ea.time != eb.time {
		return ea.time < eb.time
	}
	return ea.seq < eb.seq
}

func (q *eventQueue) Swap(a, b int) {
	q.items[a], q.items[b] = q.items[b], q.items[a]
}

func (q *eventQueue) Push(x any) {
	q.items = append(q.items, x.(*event))
}

func (q *eventQueue) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return e
}
