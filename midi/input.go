// Package midi connects to a MIDI keyboard and reports its note events.
package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// PreferredPatterns are tried in order when no device index is configured.
var PreferredPatterns = []string{"Launchkey", "Novation", "Keystation", "Digital Piano"}

// ExcludedPatterns name virtual/system ports that are never auto-connected.
var ExcludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

const rescanInterval = time.Second

// ErrNoDevice is returned when there is no input to connect to.
var ErrNoDevice = errors.New("midi: no input device")

// NoteFunc receives every note event. It runs on the MIDI driver's own
// goroutine and must not block.
type NoteFunc func(on bool, note int)

// Port describes one available input.
type Port struct {
	Index int
	Name  string
}

// Input holds at most one open MIDI input. When the connected device
// disappears the connection is dropped and Tick reconnects to a device with
// the same name once it is back.
type Input struct {
	mu        sync.Mutex
	drv       *rtmididrv.Driver
	in        drivers.In
	stopFn    func()
	connected bool
	name      string
	lastName  string
	lastScan  time.Time

	onNote       NoteFunc
	onDisconnect func()
	log          *slog.Logger
}

// New initialises the rtmidi driver. Call Close when done.
//
// onDisconnect, if set, is called from its own goroutine when the connected
// device is lost.
func New(onNote NoteFunc, onDisconnect func(), log *slog.Logger) (*Input, error) {
	if log == nil {
		log = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Input{drv: drv, onNote: onNote, onDisconnect: onDisconnect, log: log}, nil
}

// Ports lists every input the driver can see, in driver order.
func (m *Input) Ports() ([]Port, error) {
	ins, err := m.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midi: list inputs: %w", err)
	}
	ports := make([]Port, len(ins))
	for i, in := range ins {
		ports[i] = Port{Index: i, Name: in.String()}
	}
	return ports, nil
}

// OpenIndex connects to the input at index, as reported by Ports.
func (m *Input) OpenIndex(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ins, err := m.drv.Ins()
	if err != nil {
		return fmt.Errorf("midi: list inputs: %w", err)
	}
	if index < 0 || index >= len(ins) {
		return fmt.Errorf("%w at index %d (%d available)", ErrNoDevice, index, len(ins))
	}
	m.closeConn()
	return m.open(ins[index])
}

// OpenPreferred connects to the first input matching PreferredPatterns, or
// to the only input when there is exactly one.
func (m *Input) OpenPreferred() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := m.listInputs()
	name, ok := pickPreferred(names)
	if !ok {
		return fmt.Errorf("%w matching %s", ErrNoDevice, strings.Join(PreferredPatterns, ", "))
	}
	m.closeConn()
	return m.openByName(name)
}

// Connected returns the open device's name.
func (m *Input) Connected() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name, m.connected
}

// Tick should be called regularly from the main loop. It notices a
// vanished device and reconnects to it when it reappears.
func (m *Input) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if !m.lastScan.IsZero() && now.Sub(m.lastScan) < rescanInterval {
		return
	}
	m.lastScan = now

	inputs := m.listInputs()
	if m.connected {
		for _, n := range inputs {
			if n == m.name {
				return
			}
		}
		m.log.Warn("midi: device disappeared", "device", m.name)
		m.closeConn()
		m.lastScan = time.Time{}
		m.disconnected()
		return
	}

	if m.lastName == "" {
		return
	}
	for _, n := range inputs {
		if n == m.lastName {
			if err := m.openByName(n); err != nil {
				m.log.Error("midi: reconnect failed", "device", n, "err", err)
			}
			return
		}
	}
}

// Close stops listening and shuts the driver down.
func (m *Input) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeConn()
	m.drv.Close()
}

func (m *Input) disconnected() {
	if m.onDisconnect != nil {
		go m.onDisconnect()
	}
}

func (m *Input) listInputs() []string {
	ins, err := m.drv.Ins()
	if err != nil {
		m.log.Error("midi: list inputs failed", "err", err)
		return nil
	}
	var names []string
	for _, in := range ins {
		name := in.String()
		if excluded(name) {
			m.log.Debug("midi: input excluded", "device", name)
			continue
		}
		names = append(names, name)
	}
	m.log.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func (m *Input) closeConn() {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.in != nil {
		_ = m.in.Close()
		m.in = nil
	}
	if m.connected {
		m.log.Info("midi: disconnected", "device", m.name)
	}
	m.connected = false
	m.name = ""
}

func (m *Input) openByName(name string) error {
	ins, err := m.drv.Ins()
	if err != nil {
		return err
	}
	for _, in := range ins {
		if in.String() == name {
			return m.open(in)
		}
	}
	return fmt.Errorf("%w named %q", ErrNoDevice, name)
}

func (m *Input) open(in drivers.In) error {
	name := in.String()
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		if on, key, ok := Decode(msg); ok {
			m.onNote(on, int(key))
			return
		}
		m.log.Debug("midi: unhandled message", "msg", msg.String())
	}, gomidi.HandleError(func(listenErr error) {
		m.log.Warn("midi: listener error", "device", name, "err", listenErr)
		// closeConn stops this listener, so it cannot run on its goroutine
		go func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.connected && m.name == name {
				m.closeConn()
				m.lastScan = time.Time{}
				m.disconnected()
			}
		}()
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	m.in = in
	m.stopFn = stop
	m.connected = true
	m.name = name
	m.lastName = name
	m.log.Info("midi: connected", "device", name)
	return nil
}

// Decode extracts a note event from msg. A note-on with zero velocity is a
// note-off. Velocity and channel are ignored.
func Decode(msg gomidi.Message) (on bool, key uint8, ok bool) {
	var ch, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return true, key, true
	case msg.GetNoteEnd(&ch, &key):
		return false, key, true
	}
	return false, 0, false
}

func pickPreferred(inputs []string) (string, bool) {
	for _, pat := range PreferredPatterns {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func excluded(name string) bool {
	for _, pat := range ExcludedPatterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
