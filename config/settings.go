package config

import (
	"errors"
	"fmt"
	"time"
)

// Group and key names as they appear in the settings files.
const (
	GroupMIDI   = "midi"
	GroupSerial = "serial"

	KeyDeviceIndex  = "deviceIndex"
	KeyRangeLow     = "rangeLow"
	KeyRangeHigh    = "rangeHigh"
	KeyFadeInSpeed  = "fadeInSpeed"
	KeyFadeOutSpeed = "fadeOutSpeed"
	KeyFade         = "fade"
	KeyTickMS       = "tickMs"

	KeyPort       = "port"
	KeyBaudRate   = "baudRate"
	KeyLEDCount   = "ledCount"
	KeyRange1Low  = "range1Low"
	KeyRange1High = "range1High"
	KeyRange2Low  = "range2Low"
	KeyRange2High = "range2High"
)

// Settings is the read-only snapshot the light pipeline runs with.
type Settings struct {
	DeviceIndex  int
	NoteLow      int
	NoteHigh     int
	FadeInSpeed  float64
	FadeOutSpeed float64
	Fade         bool
	TickInterval time.Duration

	Port     string
	BaudRate int
	LEDCount int
	Row1Low  int
	Row1High int
	Row2Low  int
	Row2High int
}

// Defaults fit an 88-key keyboard over a 140-light strip folded into two
// rows of 70.
func Defaults() Settings {
	return Settings{
		DeviceIndex:  0,
		NoteLow:      21,
		NoteHigh:     108,
		FadeInSpeed:  0.1,
		FadeOutSpeed: 0.02,
		Fade:         true,
		TickInterval: 16 * time.Millisecond,

		Port:     "/dev/ttyACM0",
		BaudRate: 500000,
		LEDCount: 140,
		Row1Low:  0,
		Row1High: 69,
		Row2Low:  139,
		Row2High: 70,
	}
}

// LoadSettings reads every setting from s, filling and persisting defaults
// for anything missing.
func LoadSettings(s *Store) (Settings, error) {
	def := Defaults()
	m, err := s.Group(GroupMIDI)
	if err != nil {
		return def, err
	}
	ser, err := s.Group(GroupSerial)
	if err != nil {
		return def, err
	}
	return Settings{
		DeviceIndex:  m.Int(KeyDeviceIndex, def.DeviceIndex),
		NoteLow:      m.Int(KeyRangeLow, def.NoteLow),
		NoteHigh:     m.Int(KeyRangeHigh, def.NoteHigh),
		FadeInSpeed:  m.Float(KeyFadeInSpeed, def.FadeInSpeed),
		FadeOutSpeed: m.Float(KeyFadeOutSpeed, def.FadeOutSpeed),
		Fade:         m.Bool(KeyFade, def.Fade),
		TickInterval: time.Duration(m.Int(KeyTickMS, int(def.TickInterval/time.Millisecond))) * time.Millisecond,

		Port:     ser.String(KeyPort, def.Port),
		BaudRate: ser.Int(KeyBaudRate, def.BaudRate),
		LEDCount: ser.Int(KeyLEDCount, def.LEDCount),
		Row1Low:  ser.Int(KeyRange1Low, def.Row1Low),
		Row1High: ser.Int(KeyRange1High, def.Row1High),
		Row2Low:  ser.Int(KeyRange2Low, def.Row2Low),
		Row2High: ser.Int(KeyRange2High, def.Row2High),
	}, nil
}

// Validate rejects settings that would address lights beyond the strip or
// never finish a fade.
func (s Settings) Validate() error {
	var errs []error
	if s.LEDCount < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative (got %d)", KeyLEDCount, s.LEDCount))
	}
	if s.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive (got %d)", KeyBaudRate, s.BaudRate))
	}
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive (got %v)", KeyTickMS, s.TickInterval))
	}
	if s.Fade {
		if s.FadeInSpeed <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %v)", KeyFadeInSpeed, s.FadeInSpeed))
		}
		if s.FadeOutSpeed <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive (got %v)", KeyFadeOutSpeed, s.FadeOutSpeed))
		}
	}
	for _, b := range []struct {
		key string
		v   int
	}{
		{KeyRange1Low, s.Row1Low},
		{KeyRange1High, s.Row1High},
		{KeyRange2Low, s.Row2Low},
		{KeyRange2High, s.Row2High},
	} {
		if b.v < 0 || b.v >= s.LEDCount {
			errs = append(errs, fmt.Errorf("%s=%d outside strip of %d lights", b.key, b.v, s.LEDCount))
		}
	}
	return errors.Join(errs...)
}
