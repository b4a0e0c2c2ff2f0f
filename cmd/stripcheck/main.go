// Command stripcheck pokes at the hardware without running the full light
// pipeline.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/chase3718/lou-leds/adalight"
	"github.com/chase3718/lou-leds/midi"
	"github.com/chase3718/lou-leds/notes"
	"github.com/chase3718/lou-leds/strip"
)

func main() {
	fs := flag.NewFlagSet("stripcheck", flag.ExitOnError)
	dev := fs.String("serial", "/dev/ttyACM0", "serial port device")
	baud := fs.Int("baud", 500000, "serial baud rate")
	leds := fs.Int("leds", 140, "number of lights on the strip")
	fs.Usage = usage

	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	fs.Parse(os.Args[2:])

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var err error
	switch cmd {
	case "inputs":
		err = listInputs(log)
	case "ports":
		err = listPorts()
	case "fill":
		var c adalight.RGB
		c, err = parseRGB(fs.Args())
		if err == nil {
			err = withStrip(*dev, *baud, *leds, log, func(d *strip.Driver, f *adalight.Frame) error {
				f.SetAll(c)
				if err := f.Emit(d); err != nil {
					return err
				}
				fmt.Println("filled, press Ctrl+C to turn off")
				waitForInterrupt()
				return nil
			})
		}
	case "off":
		err = withStrip(*dev, *baud, *leds, log, func(*strip.Driver, *adalight.Frame) error { return nil })
	case "hues":
		err = withStrip(*dev, *baud, *leds, log, showHues)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Strip check")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  inputs           - List MIDI inputs with their index")
	fmt.Println("  ports            - List serial ports")
	fmt.Println("  fill [flags] R G B - Light the whole strip in one colour")
	fmt.Println("  off [flags]      - Turn every light off")
	fmt.Println("  hues [flags]     - Cycle all twelve note colours along the strip")
	fmt.Println("")
	fmt.Println("Flags: -serial DEVICE -baud N -leds N")
}

func listInputs(log *slog.Logger) error {
	in, err := midi.New(func(bool, int) {}, nil, log)
	if err != nil {
		return err
	}
	defer in.Close()
	ports, err := in.Ports()
	if err != nil {
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for _, p := range ports {
		fmt.Printf("  %d: %s\n", p.Index, p.Name)
	}
	return nil
}

func listPorts() error {
	ports, err := strip.Ports()
	if err != nil {
		return err
	}
	fmt.Println("=== Serial Ports ===")
	if len(ports) == 0 {
		fmt.Println("  (none)")
	}
	for _, p := range ports {
		fmt.Println("  " + p)
	}
	return nil
}

func parseRGB(args []string) (adalight.RGB, error) {
	if len(args) != 3 {
		return adalight.RGB{}, fmt.Errorf("want R G B, got %d values", len(args))
	}
	var v [3]uint8
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 8)
		if err != nil {
			return adalight.RGB{}, fmt.Errorf("channel %d: %w", i, err)
		}
		v[i] = uint8(n)
	}
	return adalight.RGB{R: v[0], G: v[1], B: v[2]}, nil
}

// withStrip opens the strip, runs fn and always leaves the strip dark.
func withStrip(dev string, baud, leds int, log *slog.Logger, fn func(*strip.Driver, *adalight.Frame) error) error {
	d, err := strip.Open(dev, baud, leds, log)
	if err != nil {
		return err
	}
	f, err := adalight.NewFrame(leds)
	if err != nil {
		d.Close()
		return err
	}
	if err := fn(d, f); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// showHues paints every light with the colour of the note whose key matches
// its position, then rotates the pattern once per 200ms.
func showHues(d *strip.Driver, f *adalight.Frame) error {
	for shift := 0; shift < 12; shift++ {
		for i := 0; i < f.Len(); i++ {
			f.SetLight(i, notes.ColorForNote(i+shift))
		}
		if err := f.Emit(d); err != nil {
			return err
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil
}
