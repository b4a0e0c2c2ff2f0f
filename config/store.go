// Package config persists named groups of settings as YAML files.
//
// Reading a key that does not exist stores and saves the supplied default,
// so a fresh install ends up with a complete, editable settings file after
// the first run.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrType is reported when a stored value cannot be read as the requested
// type.
var ErrType = errors.New("config: value has wrong type")

// DefaultDir returns ~/.config/lou-leds.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lou-leds"), nil
}

// Store hands out groups backed by <dir>/<group>.yaml. Groups are loaded
// once and cached.
type Store struct {
	dir string
	log *slog.Logger

	mu     sync.Mutex
	groups map[string]*Group
}

// Open returns a store rooted at dir. The directory is created on first
// save.
func Open(dir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{dir: dir, log: log, groups: make(map[string]*Group)}
}

// Dir is the directory the store saves to.
func (s *Store) Dir() string { return s.dir }

// Group returns the named group, loading it from disk if needed. A missing
// file yields an empty group.
func (s *Store) Group(name string) (*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[name]; ok {
		return g, nil
	}
	g := &Group{
		name:   name,
		path:   filepath.Join(s.dir, name+".yaml"),
		log:    s.log,
		fields: make(map[string]any),
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	s.groups[name] = g
	return g, nil
}

// Save writes every loaded group.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, g := range s.groups {
		if err := g.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Group is one named set of key/value settings. Values are int, float64,
// bool or string. Writes are last-write-wins and saved immediately.
type Group struct {
	name string
	path string
	log  *slog.Logger

	mu     sync.Mutex
	fields map[string]any
}

func (g *Group) Name() string { return g.name }

func (g *Group) load() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", g.path, err)
	}
	fields := make(map[string]any)
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("config: parse %s: %w", g.path, err)
	}
	g.fields = fields
	g.log.Debug("config: group loaded", "group", g.name, "fields", len(fields))
	return nil
}

// Save writes the group to disk.
func (g *Group) Save() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.save()
}

func (g *Group) save() error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(g.fields)
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", g.name, err)
	}
	if err := os.WriteFile(g.path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", g.path, err)
	}
	return nil
}

// Set stores value under key and saves the group.
func (g *Group) Set(key string, value any) error {
	switch v := value.(type) {
	case int, float64, bool, string:
	case float32:
		value = float64(v)
	default:
		return fmt.Errorf("%w: %s.%s cannot hold %T", ErrType, g.name, key, value)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fields[key] = value
	return g.save()
}

// Delete removes key and saves the group. Deleting a missing key is a
// no-op.
func (g *Group) Delete(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.fields[key]; !ok {
		g.log.Warn("config: delete of missing field", "group", g.name, "key", key)
		return nil
	}
	delete(g.fields, key)
	return g.save()
}

// Reset forgets every value and removes the group's file.
func (g *Group) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fields = make(map[string]any)
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: reset %s: %w", g.name, err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (g *Group) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.fields))
	for k := range g.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookup returns the stored value, or stores and saves def when key is
// absent.
func (g *Group) lookup(key string, def any) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.fields[key]; ok {
		return v
	}
	g.log.Info("config: field created with default", "group", g.name, "key", key, "value", def)
	g.fields[key] = def
	if err := g.save(); err != nil {
		g.log.Warn("config: could not save default", "group", g.name, "key", key, "err", err)
	}
	return def
}

func (g *Group) mismatch(key string, v, def any) {
	g.log.Warn("config: using default for mistyped field",
		"group", g.name, "key", key, "value", v, "default", def, "err", ErrType)
}

// Int reads key as an int. Whole floats are accepted.
func (g *Group) Int(key string, def int) int {
	switch v := g.lookup(key, def).(type) {
	case int:
		return v
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		g.mismatch(key, v, def)
	default:
		g.mismatch(key, v, def)
	}
	return def
}

// Float reads key as a float64. Ints are accepted.
func (g *Group) Float(key string, def float64) float64 {
	switch v := g.lookup(key, def).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		g.mismatch(key, v, def)
	}
	return def
}

// Bool reads key as a bool.
func (g *Group) Bool(key string, def bool) bool {
	raw := g.lookup(key, def)
	v, ok := raw.(bool)
	if !ok {
		g.mismatch(key, raw, def)
		return def
	}
	return v
}

// String reads key as a string.
func (g *Group) String(key string, def string) string {
	raw := g.lookup(key, def)
	v, ok := raw.(string)
	if !ok {
		g.mismatch(key, raw, def)
		return def
	}
	return v
}
