package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		msg    gomidi.Message
		on, ok bool
		key    uint8
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), true, true, 60},
		{"note on other channel", gomidi.NoteOn(9, 36, 1), true, true, 36},
		{"note off", gomidi.NoteOff(0, 61), false, true, 61},
		{"zero velocity note on", gomidi.NoteOn(0, 62, 0), false, true, 62},
		{"control change", gomidi.ControlChange(0, 64, 127), false, false, 0},
		{"program change", gomidi.ProgramChange(0, 5), false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, key, ok := Decode(tt.msg)
			if on != tt.on || key != tt.key || ok != tt.ok {
				t.Fatalf("Decode = (%v, %d, %v), want (%v, %d, %v)", on, key, ok, tt.on, tt.key, tt.ok)
			}
		})
	}
}

func TestPickPreferred(t *testing.T) {
	tests := []struct {
		inputs []string
		want   string
		ok     bool
	}{
		{[]string{"Foo", "Launchkey Mini MK3 MIDI 1"}, "Launchkey Mini MK3 MIDI 1", true},
		{[]string{"Some Keyboard"}, "Some Keyboard", true},
		{[]string{"A", "B"}, "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := pickPreferred(tt.inputs)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pickPreferred(%v) = %q, %v", tt.inputs, got, ok)
		}
	}
}

func TestExcluded(t *testing.T) {
	if !excluded("Midi Through Port-0") {
		t.Error("through port not excluded")
	}
	if excluded("Digital Piano MIDI 1") {
		t.Error("real keyboard excluded")
	}
}
