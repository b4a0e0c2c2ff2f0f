package notes

import "sync"

// Queue hands events from the MIDI driver's thread to the tick loop. Push
// may be called from any goroutine; Drain is meant for a single consumer.
type Queue struct {
	mu      sync.Mutex
	pending []Event
}

// Push appends ev.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Drain removes and returns every queued event in arrival order. Events
// pushed while the caller processes the result are kept for the next call.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	out := q.pending
	q.pending = nil
	q.mu.Unlock()
	return out
}

// Len reports how many events are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
