package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chase3718/lou-leds/adalight"
	"github.com/chase3718/lou-leds/config"
	"github.com/chase3718/lou-leds/midi"
	"github.com/chase3718/lou-leds/notes"
	"github.com/chase3718/lou-leds/strip"
)

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pitchName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("?%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], (pitch/12)-1)
}

type options struct {
	debug   bool
	dir     string
	preview bool
	list    bool
	snap    bool
	serial  string
	baud    int
	leds    int
	device  int
}

// overrides copies explicitly set flags over the stored settings.
func (o options) overrides(s *config.Settings, set map[string]bool) {
	if set["serial"] {
		s.Port = o.serial
	}
	if set["baud"] {
		s.BaudRate = o.baud
	}
	if set["leds"] {
		s.LEDCount = o.leds
	}
	if set["device"] {
		s.DeviceIndex = o.device
	}
	if set["snap"] {
		s.Fade = !o.snap
	}
}

func main() {
	var o options
	flag.BoolVar(&o.debug, "debug", false, "enable debug logging (adds source location)")
	flag.StringVar(&o.dir, "config", "", "settings directory (default ~/.config/lou-leds)")
	flag.StringVar(&o.serial, "serial", "", "serial port device (overrides settings)")
	flag.IntVar(&o.baud, "baud", 0, "serial baud rate (overrides settings)")
	flag.IntVar(&o.leds, "leds", 0, "number of lights on the strip (overrides settings)")
	flag.IntVar(&o.device, "device", 0, "MIDI input index, -1 picks a known keyboard (overrides settings)")
	flag.BoolVar(&o.preview, "preview", false, "draw frames in the terminal instead of using the serial port")
	flag.BoolVar(&o.list, "list", false, "list MIDI inputs and exit")
	flag.BoolVar(&o.snap, "snap", false, "switch lights instantly instead of fading")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	initLogger(os.Stderr, o.debug)
	if err := run(o, set); err != nil {
		logger.Error("lou-leds stopped", "err", err)
		os.Exit(1)
	}
}

func run(o options, set map[string]bool) error {
	dir := o.dir
	if dir == "" {
		d, err := config.DefaultDir()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		dir = d
	}
	store := config.Open(dir, logger)
	s, err := config.LoadSettings(store)
	if err != nil {
		return err
	}
	o.overrides(&s, set)

	if o.list {
		return listInputs(os.Stdout)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", store.Dir(), err)
	}

	logger.Info("lou-leds starting",
		"config", store.Dir(),
		"serial", s.Port,
		"baud", s.BaudRate,
		"leds", s.LEDCount,
		"notes", fmt.Sprintf("%d-%d", s.NoteLow, s.NoteHigh),
		"fade", s.Fade,
		"fade_in", s.FadeInSpeed,
		"fade_out", s.FadeOutSpeed,
		"tick", s.TickInterval,
	)

	var drv *strip.Driver
	if o.preview {
		drv = strip.New(strip.NewPreview(os.Stdout, s.LEDCount/2), "preview", s.LEDCount, logger)
	} else {
		drv, err = strip.Open(s.Port, s.BaudRate, s.LEDCount, logger)
		if err != nil {
			return err
		}
	}
	if err := drv.Blackout(); err != nil {
		return errors.Join(err, drv.Close())
	}

	frame, err := adalight.NewFrame(s.LEDCount)
	if err != nil {
		return errors.Join(err, drv.Close())
	}
	loop := &lightLoop{
		queue: &notes.Queue{},
		frame: frame,
		out:   drv,
		anim: notes.NewAnimator(frame, notes.Options{
			Mapper: notes.Mapper{
				Notes: notes.Range{Low: s.NoteLow, High: s.NoteHigh},
				Row1:  notes.Range{Low: s.Row1Low, High: s.Row1High},
				Row2:  notes.Range{Low: s.Row2Low, High: s.Row2High},
			},
			FadeIn:  s.FadeInSpeed,
			FadeOut: s.FadeOutSpeed,
			Snap:    !s.Fade,
			Logger:  logger,
		}),
	}

	idle := func() {}
	in, err := connectInput(s.DeviceIndex, loop.onNote, loop.onDisconnect)
	if err != nil {
		logger.Error("midi: no input, lights will stay as they are", "err", err)
	}
	if in != nil {
		defer in.Close()
		idle = in.Tick
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running")
	runErr := loop.run(ctx, s.TickInterval, idle)
	if runErr == nil {
		logger.Info("shutting down")
	}
	if err := store.Save(); err != nil {
		logger.Warn("config: save on exit failed", "err", err)
	}
	return errors.Join(runErr, drv.Close())
}

// connectInput opens the configured input. The returned Input is non-nil
// whenever the driver came up, even if no device could be opened, so that
// Tick can pick the device up later.
func connectInput(index int, onNote midi.NoteFunc, onDisconnect func()) (*midi.Input, error) {
	in, err := midi.New(onNote, onDisconnect, logger)
	if err != nil {
		return nil, err
	}
	ports, err := in.Ports()
	if err != nil {
		return in, err
	}
	for _, p := range ports {
		logger.Info("midi: input available", "index", p.Index, "device", p.Name)
	}
	if index < 0 {
		return in, in.OpenPreferred()
	}
	return in, in.OpenIndex(index)
}

func listInputs(w io.Writer) error {
	in, err := midi.New(func(bool, int) {}, nil, logger)
	if err != nil {
		return err
	}
	defer in.Close()
	ports, err := in.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no MIDI inputs")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "%d: %s\n", p.Index, p.Name)
	}
	return nil
}
