package graphcanvas

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files whose extension is neither
// YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Binding binds one trip to a named action.
type Binding struct {
	Trip        string `yaml:"trip" toml:"trip"`
	Action      string `yaml:"action" toml:"action"`
	Priority    int    `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Layer       string `yaml:"layer,omitempty" toml:"layer,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

// Keymap is a set of input and drag bindings.
type Keymap struct {
	Bindings     []Binding `yaml:"bindings" toml:"bindings"`
	DragBindings []Binding `yaml:"drag" toml:"drag"`
}

func parseLayer(s string) (Layer, error) {
	switch strings.ToLower(s) {
	case "", "event":
		return LayerEvent, nil
	case "raw":
		return LayerRaw, nil
	default:
		return 0, fmt.Errorf("unknown layer %q", s)
	}
}

type resolvedBinding struct {
	trip   Trip
	layer  Layer
	action Action
	b      Binding
}

func resolveBindings(list []Binding, actions ActionSet, drag bool) ([]resolvedBinding, error) {
	out := make([]resolvedBinding, 0, len(list))
	for i, b := range list {
		trip, err := ParseTrip(b.Trip)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		layer, err := parseLayer(b.Layer)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		a, ok := actions[b.Action]
		if !ok {
			return nil, fmt.Errorf("binding %d: %w: %q", i, ErrUnknownAction, b.Action)
		}
		if drag && a.Drag == nil {
			return nil, fmt.Errorf("binding %d: action %q cannot start a drag", i, b.Action)
		}
		if !drag && a.Handler == nil {
			return nil, fmt.Errorf("binding %d: action %q has no input handler", i, b.Action)
		}
		out = append(out, resolvedBinding{trip: trip, layer: layer, action: a, b: b})
	}
	return out, nil
}

// Validate checks every binding against actions without binding anything.
func (k Keymap) Validate(actions ActionSet) error {
	if _, err := resolveBindings(k.Bindings, actions, false); err != nil {
		return fmt.Errorf("bind keymap: %w", err)
	}
	if _, err := resolveBindings(k.DragBindings, actions, true); err != nil {
		return fmt.Errorf("bind keymap drag: %w", err)
	}
	return nil
}

// Bind validates every binding against actions and binds them all to l.
// Nothing is bound when any binding is invalid.
func (k Keymap) Bind(l *InputLinker, actions ActionSet) ([]CallbackHandle, error) {
	inputs, err := resolveBindings(k.Bindings, actions, false)
	if err != nil {
		return nil, fmt.Errorf("bind keymap: %w", err)
	}
	drags, err := resolveBindings(k.DragBindings, actions, true)
	if err != nil {
		return nil, fmt.Errorf("bind keymap drag: %w", err)
	}

	handles := make([]CallbackHandle, 0, len(inputs)+len(drags))
	for _, r := range inputs {
		desc := r.action.Description
		if r.b.Description != "" {
			desc = describe(r.b.Description)
		}
		handles = append(handles, l.BindInputCallback(r.trip, InputCallback{
			Handler:     r.action.Handler,
			Condition:   r.action.Condition,
			Description: desc,
			Priority:    r.b.Priority,
			Layer:       r.layer,
		}))
	}
	for _, r := range drags {
		handles = append(handles, l.BindToOnDragDetected(r.trip, DragTrigger{
			Create:    r.action.Drag,
			Condition: r.action.Condition,
			Priority:  r.b.Priority,
			Layer:     r.layer,
		}))
	}
	return handles, nil
}

// fileFormat returns "yaml" or "toml" based on the path extension.
func fileFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// decodeFile decodes data in format into v.
func decodeFile(data []byte, format string, v any) error {
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case "toml":
		_, err := toml.Decode(string(data), v)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ParseKeymap decodes a keymap in the given format ("yaml" or "toml").
func ParseKeymap(data []byte, format string) (Keymap, error) {
	var k Keymap
	if err := decodeFile(data, format, &k); err != nil {
		return Keymap{}, fmt.Errorf("parse keymap: %w", err)
	}
	return k, nil
}

// LoadKeymap reads a keymap file, choosing the decoder by extension.
func LoadKeymap(path string) (Keymap, error) {
	format, err := fileFormat(path)
	if err != nil {
		return Keymap{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Keymap{}, fmt.Errorf("read keymap: %w", err)
	}
	return ParseKeymap(data, format)
}

// --- Hot reload ---

type keymapResult struct {
	keymap Keymap
	err    error
}

// KeymapWatcher reloads a keymap file when it changes. The watch goroutine
// only parses; bindings change on the frame thread in Poll.
type KeymapWatcher struct {
	path    string
	linker  *InputLinker
	actions ActionSet
	handles []CallbackHandle
	watcher *fsnotify.Watcher
	results chan keymapResult
	done    chan struct{}
}

// WatchKeymap loads path, binds it to l and starts watching it for changes.
func WatchKeymap(path string, l *InputLinker, actions ActionSet) (*KeymapWatcher, error) {
	k, err := LoadKeymap(path)
	if err != nil {
		return nil, err
	}
	handles, err := k.Bind(l, actions)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		removeHandles(handles)
		return nil, fmt.Errorf("watch keymap: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		removeHandles(handles)
		return nil, fmt.Errorf("watch keymap: %w", err)
	}
	w := &KeymapWatcher{
		path:    path,
		linker:  l,
		actions: actions,
		handles: handles,
		watcher: fw,
		results: make(chan keymapResult, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *KeymapWatcher) run() {
	name := filepath.Clean(w.path)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			k, err := LoadKeymap(w.path)
			w.post(keymapResult{keymap: k, err: err})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.post(keymapResult{err: fmt.Errorf("watch keymap: %w", err)})
		case <-w.done:
			return
		}
	}
}

// post replaces any unconsumed result with r.
func (w *KeymapWatcher) post(r keymapResult) {
	select {
	case <-w.results:
	default:
	}
	select {
	case w.results <- r:
	case <-w.done:
	}
}

// Poll applies a pending reload, if any. It reports whether bindings
// changed. A keymap that fails to load or bind leaves the current bindings
// in place.
func (w *KeymapWatcher) Poll() bool {
	var r keymapResult
	select {
	case r = <-w.results:
	default:
		return false
	}
	if r.err != nil {
		w.linker.log().Warn("keymap reload failed", "path", w.path, "err", r.err)
		return false
	}
	if err := r.keymap.Validate(w.actions); err != nil {
		w.linker.log().Warn("keymap reload rejected", "path", w.path, "err", err)
		return false
	}
	removeHandles(w.handles)
	// Validate succeeded, so Bind cannot fail here.
	w.handles, _ = r.keymap.Bind(w.linker, w.actions)
	w.linker.log().Info("keymap reloaded", "path", w.path, "bindings", len(w.handles))
	return true
}

// Close stops watching and leaves the current bindings in place.
func (w *KeymapWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.watcher.Close()
}

func removeHandles(handles []CallbackHandle) {
	for _, h := range handles {
		h.Remove()
	}
}

// BindKeymap binds k with DefaultActions, replacing the keymap bound by an
// earlier BindKeymap or WatchKeymap. On error the current bindings stay.
func (c *Canvas) BindKeymap(k Keymap) error {
	handles, err := k.Bind(c.linker, DefaultActions(c))
	if err != nil {
		return err
	}
	c.releaseKeymap()
	c.keyHandles = handles
	return nil
}

// WatchKeymap binds the keymap at path with DefaultActions and reloads it
// on change during Update. It replaces any keymap bound earlier.
func (c *Canvas) WatchKeymap(path string) error {
	w, err := WatchKeymap(path, c.linker, DefaultActions(c))
	if err != nil {
		return err
	}
	c.releaseKeymap()
	c.keymap = w
	return nil
}

// releaseKeymap stops any keymap watcher and removes the bindings the
// canvas owns.
func (c *Canvas) releaseKeymap() {
	if c.keymap != nil {
		_ = c.keymap.Close()
		removeHandles(c.keymap.handles)
		c.keymap = nil
	}
	removeHandles(c.keyHandles)
	c.keyHandles = nil
}
