package notes

import (
	"math"
	"testing"

	"github.com/chase3718/lou-leds/adalight"
)

func newTestAnimator(t *testing.T, opts Options) (*Animator, *adalight.Frame) {
	t.Helper()
	f, err := adalight.NewFrame(140)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mapper == (Mapper{}) {
		opts.Mapper = piano
	}
	return NewAnimator(f, opts), f
}

func lightsOf(t *testing.T, f *adalight.Frame, note int) [2]adalight.RGB {
	t.Helper()
	var out [2]adalight.RGB
	for i, idx := range piano.LightsForNote(note) {
		c, err := f.Light(idx)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = c
	}
	return out
}

func TestFadeInCompletesInTwoTicks(t *testing.T) {
	a, f := newTestAnimator(t, Options{FadeIn: 0.5, FadeOut: 0.5})
	full := ColorForNote(60)

	if got := lightsOf(t, f, 60); got != [2]adalight.RGB{} {
		t.Fatalf("before first tick lights = %v", got)
	}

	if !a.Advance([]Event{{NoteOn, 60}}) {
		t.Fatal("tick 1 reported no change")
	}
	st, ok := a.State(60)
	if !ok || st.Progress != 0.5 || st.Direction != FadingIn {
		t.Fatalf("after tick 1 state = %+v, %v", st, ok)
	}
	half := Dim(full, 0.5)
	if got := lightsOf(t, f, 60); got != [2]adalight.RGB{half, half} {
		t.Fatalf("tick 1 lights = %v, want %v", got, half)
	}

	if !a.Advance(nil) {
		t.Fatal("tick 2 reported no change")
	}
	if _, ok := a.State(60); ok || a.Active() != 0 {
		t.Fatal("note still active after reaching full brightness")
	}
	if got := lightsOf(t, f, 60); got != [2]adalight.RGB{full, full} {
		t.Fatalf("tick 2 lights = %v, want %v", got, full)
	}

	if a.Advance(nil) {
		t.Fatal("idle tick reported a change")
	}
}

func TestNoteOffWithoutEntryFadesFromFull(t *testing.T) {
	a, f := newTestAnimator(t, Options{FadeIn: 0.1, FadeOut: 0.25})
	a.Advance([]Event{{NoteOff, 64}})
	st, ok := a.State(64)
	if !ok || st.Direction != FadingOut || st.Progress != 0.75 {
		t.Fatalf("state = %+v, %v", st, ok)
	}
	for i := 0; i < 3; i++ {
		a.Advance(nil)
	}
	if a.Active() != 0 {
		t.Fatal("fade out did not finish")
	}
	if got := lightsOf(t, f, 64); got != [2]adalight.RGB{} {
		t.Fatalf("lights after fade out = %v", got)
	}
}

func TestRetriggerKeepsProgress(t *testing.T) {
	const in, out = 0.25, 0.1
	a, _ := newTestAnimator(t, Options{FadeIn: in, FadeOut: out})

	steps := []struct {
		events []Event
		dir    Direction
		want   float64
	}{
		{[]Event{{NoteOn, 60}}, FadingIn, 0.25},
		{nil, FadingIn, 0.5},
		{[]Event{{NoteOff, 60}}, FadingOut, 0.4},
		{nil, FadingOut, 0.3},
		{[]Event{{NoteOn, 60}}, FadingIn, 0.55},
	}
	prev := 0.0
	for i, s := range steps {
		a.Advance(s.events)
		st, ok := a.State(60)
		if !ok {
			t.Fatalf("step %d: note vanished", i)
		}
		if st.Direction != s.dir {
			t.Errorf("step %d: direction %v, want %v", i, st.Direction, s.dir)
		}
		if math.Abs(st.Progress-s.want) > 1e-9 {
			t.Errorf("step %d: progress %v, want %v", i, st.Progress, s.want)
		}
		if jump := math.Abs(st.Progress - prev); jump > in+1e-9 {
			t.Errorf("step %d: progress jumped by %v", i, jump)
		}
		prev = st.Progress
	}
}

func TestFlipBeforeTickDoesNotReset(t *testing.T) {
	a, _ := newTestAnimator(t, Options{FadeIn: 0.5, FadeOut: 0.5})
	// on and off inside the same tick: created fading in at 0, flipped out
	a.Advance([]Event{{NoteOn, 60}, {NoteOff, 60}})
	if a.Active() != 0 {
		st, _ := a.State(60)
		t.Fatalf("expected fade to end at zero, state %+v", st)
	}
}

func TestFinishingNotesAllRendered(t *testing.T) {
	a, f := newTestAnimator(t, Options{FadeIn: 1, FadeOut: 1})
	a.Advance([]Event{{NoteOn, 40}, {NoteOn, 60}, {NoteOn, 80}})
	if a.Active() != 0 {
		t.Fatalf("%d notes still active", a.Active())
	}
	for _, n := range []int{40, 60, 80} {
		c := ColorForNote(n)
		if got := lightsOf(t, f, n); got != [2]adalight.RGB{c, c} {
			t.Errorf("note %d lights = %v, want %v", n, got, c)
		}
	}
}

func TestSnapMode(t *testing.T) {
	a, f := newTestAnimator(t, Options{Snap: true})
	if !a.Advance([]Event{{NoteOn, 61}}) {
		t.Fatal("note-on reported no change")
	}
	c := ColorForNote(61)
	if got := lightsOf(t, f, 61); got != [2]adalight.RGB{c, c} {
		t.Fatalf("lights = %v, want %v", got, c)
	}
	if a.Active() != 0 {
		t.Fatal("snap mode created a fade")
	}
	a.Advance([]Event{{NoteOff, 61}})
	if got := lightsOf(t, f, 61); got != [2]adalight.RGB{} {
		t.Fatalf("lights after note-off = %v", got)
	}
	if a.Advance(nil) {
		t.Fatal("idle snap tick reported a change")
	}
}

func TestLightsOutsideStripAreSkipped(t *testing.T) {
	f, _ := adalight.NewFrame(10)
	m := Mapper{Notes: Range{0, 10}, Row1: Range{0, 9}, Row2: Range{50, 60}}
	a := NewAnimator(f, Options{Mapper: m, FadeIn: 1, FadeOut: 1})
	a.Advance([]Event{{NoteOn, 0}})
	got, _ := f.Light(0)
	if got != ColorForNote(0) {
		t.Fatalf("light 0 = %v", got)
	}
}

func TestReset(t *testing.T) {
	a, f := newTestAnimator(t, Options{FadeIn: 0.1, FadeOut: 0.1})
	a.Advance([]Event{{NoteOn, 60}, {NoteOn, 72}})
	a.Reset()
	if a.Active() != 0 {
		t.Fatal("fades survived reset")
	}
	px, _ := adalight.Decode(f.Bytes())
	for i, c := range px {
		if c != adalight.Black {
			t.Fatalf("light %d = %v after reset", i, c)
		}
	}
}

func TestAllOffEvent(t *testing.T) {
	a, f := newTestAnimator(t, Options{FadeIn: 1, FadeOut: 0.1})
	a.Advance([]Event{{NoteOn, 60}})
	a.Advance([]Event{{NoteOff, 62}})
	if !a.Advance([]Event{{Kind: AllOff}}) {
		t.Fatal("all-off reported no change")
	}
	if a.Active() != 0 {
		t.Fatal("fades survived all-off")
	}
	if got := lightsOf(t, f, 60); got != [2]adalight.RGB{} {
		t.Fatalf("lights = %v", got)
	}
}
