package notes

import (
	"log/slog"
	"sort"

	"github.com/chase3718/lou-leds/adalight"
)

// Direction is the way a note's brightness is moving.
type Direction uint8

const (
	FadingIn Direction = iota
	FadingOut
)

func (d Direction) String() string {
	if d == FadingIn {
		return "in"
	}
	return "out"
}

// FadeState is the animation state of one sounding (or just released) note.
type FadeState struct {
	Direction Direction
	Progress  float64
}

// Options configures an Animator.
type Options struct {
	Mapper Mapper
	// FadeIn and FadeOut are the progress added or removed per tick.
	FadeIn  float64
	FadeOut float64
	// Snap switches to instant full-colour/black writes instead of fades.
	Snap   bool
	Logger *slog.Logger
}

// Animator owns the per-note fade states and paints them into a frame. It
// is not safe for concurrent use; the tick loop is its only caller.
type Animator struct {
	frame   *adalight.Frame
	mapper  Mapper
	fadeIn  float64
	fadeOut float64
	snap    bool
	log     *slog.Logger

	fades map[int]*FadeState
}

// NewAnimator creates an animator painting into frame.
func NewAnimator(frame *adalight.Frame, opts Options) *Animator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Animator{
		frame:   frame,
		mapper:  opts.Mapper,
		fadeIn:  opts.FadeIn,
		fadeOut: opts.FadeOut,
		snap:    opts.Snap,
		log:     log,
		fades:   make(map[int]*FadeState),
	}
}

// Advance runs one tick: events are applied in order, then every active
// fade moves one step and is painted. It reports whether the frame changed
// and should be emitted.
func (a *Animator) Advance(events []Event) bool {
	dirty := false
	for _, ev := range events {
		if a.apply(ev) {
			dirty = true
		}
	}
	if a.step() {
		dirty = true
	}
	return dirty
}

// State returns the fade state for note, if it has one.
func (a *Animator) State(note int) (FadeState, bool) {
	st, ok := a.fades[note]
	if !ok {
		return FadeState{}, false
	}
	return *st, true
}

// Active is the number of notes currently fading.
func (a *Animator) Active() int { return len(a.fades) }

// Reset drops every fade and blacks out the frame.
func (a *Animator) Reset() {
	a.fades = make(map[int]*FadeState)
	a.frame.SetAll(adalight.Black)
}

// apply reports whether it painted anything directly.
func (a *Animator) apply(ev Event) bool {
	if ev.Kind == AllOff {
		a.Reset()
		a.log.Info("fade: all lights off")
		return true
	}
	if a.snap {
		return a.applySnap(ev)
	}
	dir := FadingIn
	switch ev.Kind {
	case NoteOn:
	case NoteOff:
		dir = FadingOut
	default:
		return false
	}
	if st, ok := a.fades[ev.Note]; ok {
		// keep progress so a re-triggered note resumes from its current level
		st.Direction = dir
		a.log.Debug("fade: direction changed", "note", ev.Note, "dir", dir, "progress", st.Progress)
		return false
	}
	st := &FadeState{Direction: dir}
	if dir == FadingOut {
		st.Progress = 1
	}
	a.fades[ev.Note] = st
	a.log.Debug("fade: started", "note", ev.Note, "dir", dir)
	return false
}

func (a *Animator) applySnap(ev Event) bool {
	var c adalight.RGB
	switch ev.Kind {
	case NoteOn:
		c = ColorForNote(ev.Note)
	case NoteOff:
		c = adalight.Black
	default:
		return false
	}
	delete(a.fades, ev.Note)
	a.paint(ev.Note, c)
	return true
}

// step advances all fades. The set of notes is snapshotted first and
// finished notes are removed only after every note has been painted.
func (a *Animator) step() bool {
	if len(a.fades) == 0 {
		return false
	}
	keys := make([]int, 0, len(a.fades))
	for note := range a.fades {
		keys = append(keys, note)
	}
	sort.Ints(keys)

	var done []int
	for _, note := range keys {
		st := a.fades[note]
		p := st.Progress
		if st.Direction == FadingIn {
			p += a.fadeIn
		} else {
			p -= a.fadeOut
		}
		a.paint(note, Dim(ColorForNote(note), p))

		if (st.Direction == FadingIn && p >= 1) || (st.Direction == FadingOut && p <= 0) {
			done = append(done, note)
			continue
		}
		st.Progress = p
	}
	for _, note := range done {
		delete(a.fades, note)
		a.log.Debug("fade: finished", "note", note)
	}
	return true
}

func (a *Animator) paint(note int, c adalight.RGB) {
	for _, idx := range a.mapper.LightsForNote(note) {
		if err := a.frame.SetLight(idx, c); err != nil {
			a.log.Warn("fade: light skipped", "note", note, "light", idx, "err", err)
		}
	}
}
