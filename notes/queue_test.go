package notes

import (
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Push(Event{NoteOn, 60})
	q.Push(Event{NoteOff, 60})
	q.Push(Event{NoteOn, 62})

	got := q.Drain()
	want := []Event{{NoteOn, 60}, {NoteOff, 60}, {NoteOn, 62}}
	if len(got) != len(want) {
		t.Fatalf("drained %d events", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if q.Len() != 0 || len(q.Drain()) != 0 {
		t.Fatal("queue not empty after drain")
	}
}

func TestQueueConcurrentPushDrain(t *testing.T) {
	const producers, each = 4, 500
	var q Queue
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Push(Event{NoteOn, p*each + i})
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	seen := make(map[int]bool)
	last := make(map[int]int)
	collect := func(evs []Event) {
		for _, ev := range evs {
			if seen[ev.Note] {
				t.Fatalf("event %d drained twice", ev.Note)
			}
			seen[ev.Note] = true
			// per-producer order must be preserved
			p := ev.Note / each
			if prev, ok := last[p]; ok && ev.Note < prev {
				t.Fatalf("producer %d out of order: %d after %d", p, ev.Note, prev)
			}
			last[p] = ev.Note
		}
	}
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		collect(q.Drain())
	}
	collect(q.Drain())

	if len(seen) != producers*each {
		t.Fatalf("drained %d events, want %d", len(seen), producers*each)
	}
}
