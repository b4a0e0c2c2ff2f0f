package main

import (
	"context"
	"time"

	"github.com/chase3718/lou-leds/adalight"
	"github.com/chase3718/lou-leds/notes"
)

// lightLoop is the single goroutine that owns the animator and the frame.
// The only thing it shares with the MIDI thread is the queue.
type lightLoop struct {
	queue *notes.Queue
	anim  *notes.Animator
	frame *adalight.Frame
	out   adalight.Sender
}

// onNote is handed to the MIDI input and runs on its thread.
func (l *lightLoop) onNote(on bool, note int) {
	kind := notes.NoteOff
	if on {
		kind = notes.NoteOn
	}
	logger.Debug("midi: note", "kind", kind, "note", note, "name", pitchName(note))
	l.queue.Push(notes.Event{Kind: kind, Note: note})
}

// onDisconnect releases every light when the keyboard goes away so held
// notes do not stay lit.
func (l *lightLoop) onDisconnect() {
	logger.Warn("midi: disconnect, turning all lights off")
	l.queue.Push(notes.Event{Kind: notes.AllOff})
}

// tick drains the queue, advances every fade and sends at most one frame.
func (l *lightLoop) tick() error {
	events := l.queue.Drain()
	if !l.anim.Advance(events) {
		return nil
	}
	return l.frame.Emit(l.out)
}

// run ticks every interval until ctx is done or a frame cannot be sent.
// idle is called on every tick after the frame went out.
func (l *lightLoop) run(ctx context.Context, interval time.Duration, idle func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.tick(); err != nil {
				return err
			}
			if idle != nil {
				idle()
			}
		}
	}
}
