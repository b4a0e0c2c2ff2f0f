// Package adalight builds the byte frames understood by Adalight-style LED
// firmware.
//
// A frame is a 6-byte header followed by 3 bytes (R, G, B) per light:
//
//	['A']['d']['a'][cntHi][cntLo][cntHi^cntLo^0x55][r0][g0][b0][r1]...
//
// where cntHi/cntLo is the big-endian encoding of ledCount-1. There is no
// terminator and the firmware never acknowledges a frame.
package adalight

import (
	"errors"
	"fmt"
)

const (
	HeaderLen    = 6
	BytesPerLED  = 3
	ChecksumSalt = 0x55
	MaxLEDs      = 0xFFFF
)

// Magic is the fixed marker at the start of every frame.
var Magic = [3]byte{'A', 'd', 'a'}

// ErrIndexOutOfRange is returned when a pixel write targets a light that
// does not exist on the strip.
var ErrIndexOutOfRange = errors.New("adalight: light index out of range")

// RGB is one 8-bit-per-channel pixel colour.
type RGB struct {
	R, G, B uint8
}

// Black is the all-off colour.
var Black = RGB{}

// Sender transmits one complete frame.
type Sender interface {
	Send(buf []byte) error
}

// Frame owns the raw bytes of one full strip update. The header is written
// once by NewFrame; pixel writes never touch it and the buffer is never
// resized. Since it is never cleared between updates it also serves as the
// last-known state of the strip.
type Frame struct {
	count int
	buf   []byte
}

// NewFrame allocates a frame for ledCount lights with every pixel black.
func NewFrame(ledCount int) (*Frame, error) {
	if ledCount < 0 || ledCount > MaxLEDs {
		return nil, fmt.Errorf("adalight: led count %d outside [0, %d]", ledCount, MaxLEDs)
	}
	f := &Frame{
		count: ledCount,
		buf:   make([]byte, HeaderLen+ledCount*BytesPerLED),
	}
	copy(f.buf, Magic[:])
	hi, lo, chk := header(ledCount)
	f.buf[3] = hi
	f.buf[4] = lo
	f.buf[5] = chk
	return f, nil
}

// header returns the count bytes and checksum for ledCount. A zero count
// encodes as 0xFFFF, matching the firmware's 16-bit arithmetic.
func header(ledCount int) (hi, lo, chk byte) {
	n := uint16(ledCount - 1)
	hi = byte(n >> 8)
	lo = byte(n & 0xff)
	return hi, lo, hi ^ lo ^ ChecksumSalt
}

// Len is the number of lights in the frame.
func (f *Frame) Len() int { return f.count }

// SetLight writes one pixel. Out-of-range indices write nothing.
func (f *Frame) SetLight(index int, c RGB) error {
	if index < 0 || index >= f.count {
		return fmt.Errorf("%w: %d (strip has %d)", ErrIndexOutOfRange, index, f.count)
	}
	off := HeaderLen + index*BytesPerLED
	f.buf[off] = c.R
	f.buf[off+1] = c.G
	f.buf[off+2] = c.B
	return nil
}

// Light reads back one pixel.
func (f *Frame) Light(index int) (RGB, error) {
	if index < 0 || index >= f.count {
		return RGB{}, fmt.Errorf("%w: %d (strip has %d)", ErrIndexOutOfRange, index, f.count)
	}
	off := HeaderLen + index*BytesPerLED
	return RGB{f.buf[off], f.buf[off+1], f.buf[off+2]}, nil
}

// SetAll fills every pixel with c.
func (f *Frame) SetAll(c RGB) {
	for i := HeaderLen; i < len(f.buf); i += BytesPerLED {
		f.buf[i] = c.R
		f.buf[i+1] = c.G
		f.buf[i+2] = c.B
	}
}

// Bytes exposes the encoded frame. Callers must not modify it.
func (f *Frame) Bytes() []byte { return f.buf }

// Emit hands the whole frame to s as a single strip refresh.
func (f *Frame) Emit(s Sender) error {
	return s.Send(f.buf)
}
