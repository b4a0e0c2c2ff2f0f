package adalight

import (
	"errors"
	"fmt"
)

var (
	ErrShortFrame  = errors.New("adalight: frame too short")
	ErrBadMagic    = errors.New("adalight: bad magic")
	ErrBadChecksum = errors.New("adalight: header checksum mismatch")
)

// DecodeHeader parses the 6-byte header and returns the LED count it
// announces.
func DecodeHeader(b []byte) (int, error) {
	if len(b) < HeaderLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(b))
	}
	if b[0] != Magic[0] || b[1] != Magic[1] || b[2] != Magic[2] {
		return 0, fmt.Errorf("%w: % x", ErrBadMagic, b[:3])
	}
	hi, lo, chk := b[3], b[4], b[5]
	if hi^lo^ChecksumSalt != chk {
		return 0, fmt.Errorf("%w: got %#02x want %#02x", ErrBadChecksum, chk, hi^lo^ChecksumSalt)
	}
	raw := uint16(hi)<<8 | uint16(lo)
	if raw == 0xFFFF {
		// an empty strip wraps around to 0xFFFF
		return 0, nil
	}
	return int(raw) + 1, nil
}

// Decode parses a full frame into its pixel colours. The payload must be
// exactly as long as the header announces.
func Decode(b []byte) ([]RGB, error) {
	n, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	if want := HeaderLen + n*BytesPerLED; len(b) != want {
		return nil, fmt.Errorf("%w: %d bytes, header announces %d", ErrShortFrame, len(b), want)
	}
	px := make([]RGB, n)
	for i := range px {
		off := HeaderLen + i*BytesPerLED
		px[i] = RGB{b[off], b[off+1], b[off+2]}
	}
	return px, nil
}
