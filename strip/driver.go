// Package strip drives a physical LED strip over a serial link.
package strip

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/chase3718/lou-leds/adalight"
)

// ErrShortWrite is returned when the port accepted fewer bytes than a
// frame holds.
var ErrShortWrite = errors.New("strip: short write")

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("strip: driver closed")

// Driver owns the connection to the strip controller. Writes are blocking
// and never retried; every failure is logged and returned to the caller.
type Driver struct {
	mu     sync.Mutex
	port   io.WriteCloser
	name   string
	leds   int
	closed bool
	log    *slog.Logger
}

// Open connects to the named serial device at baud.
func Open(name string, baud, ledCount int, log *slog.Logger) (*Driver, error) {
	if log == nil {
		log = slog.Default()
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		log.Error("serial: failed to open port", "device", name, "baud", baud, "err", err)
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	log.Info("serial: port opened", "device", name, "baud", baud, "leds", ledCount)
	return New(p, name, ledCount, log), nil
}

// New wraps an already open port.
func New(port io.WriteCloser, name string, ledCount int, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{port: port, name: name, leds: ledCount, log: log}
}

// Send writes buf in one blocking call.
func (d *Driver) Send(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.write(buf)
}

func (d *Driver) write(buf []byte) error {
	n, err := d.port.Write(buf)
	if err == nil && n != len(buf) {
		err = fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(buf))
	}
	if err != nil {
		d.log.Error("serial: write error", "device", d.name, "err", err)
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	d.log.Debug("serial: frame sent", "bytes", n)
	return nil
}

// Blackout sends a frame with every light off.
func (d *Driver) Blackout() error {
	off, err := adalight.NewFrame(d.leds)
	if err != nil {
		return err
	}
	off.SetAll(adalight.Black)
	return off.Emit(d)
}

// Close turns every light off and then releases the port. The port is
// released even when the blackout frame fails; the first error wins.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.log.Info("serial: closing port", "device", d.name)

	var werr error
	if off, err := adalight.NewFrame(d.leds); err != nil {
		werr = err
	} else {
		off.SetAll(adalight.Black)
		werr = d.write(off.Bytes())
	}
	cerr := d.port.Close()
	if cerr != nil {
		d.log.Error("serial: close error", "device", d.name, "err", cerr)
		cerr = fmt.Errorf("close %s: %w", d.name, cerr)
	}
	if werr != nil {
		return werr
	}
	return cerr
}

// Ports lists the serial devices present on this machine.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
