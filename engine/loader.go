package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/internal/ini"
)

// Reserved configuration keys.
const (
	KeyEnabled = "enabled"
	KeySID     = "sid"
)

// loadState tracks the section being replayed by HandleEntry.
type loadState struct {
	// section counts section headers seen; created is the counter value
	// the current instance was materialized for.
	section int
	created int
	current *Instance
	skip    bool
}

// LoadDefaults creates one enabled instance per registered identity, in
// registration order, with the template defaults.
func (rt *Runtime) LoadDefaults() error {
	var errs []error
	for _, name := range rt.reg.Names() {
		desc, err := rt.reg.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		inst := rt.newInstance(desc)
		rt.instances.Add(inst)
		rt.logger.Debug("instance created", "component", inst.Name(), "sid", inst.SID(), "id", inst.ID())
	}
	return errors.Join(errs...)
}

// LoadFile replays the configuration file at path.
func (rt *Runtime) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open configuration %q; %w; %w", path, component.ErrSystem, err)
	}
	defer f.Close()

	if err := rt.LoadReader(f); err != nil {
		return fmt.Errorf("failed to load configuration %q; %w", path, err)
	}
	return nil
}

// LoadReader replays a configuration stream. Every section becomes one
// instance of the component its name resolves to. Malformed lines and
// unresolved sections are skipped; they are reported together as an
// *ini.ParseError once the whole stream has been applied.
func (rt *Runtime) LoadReader(r io.Reader) error {
	rt.load = loadState{}
	defer func() { rt.load = loadState{} }()
	return ini.Parse(r, rt.HandleEntry)
}

// HandleEntry applies one parser event to the collection. A section header
// starts a new section; the first event of a section materializes its
// instance. Reserved keys set the enabled flag and the string id; other
// keys decode into the matching configurable field.
func (rt *Runtime) HandleEntry(e ini.Entry) error {
	ls := &rt.load

	if e.NewSection {
		ls.section++
	} else if ls.section == 0 {
		// A stream fed without a header event still starts a section.
		ls.section++
	}

	if ls.created != ls.section {
		ls.created = ls.section
		ls.current = nil
		ls.skip = false

		desc, err := rt.reg.Resolve(e.Section)
		if err != nil {
			ls.skip = true
			rt.observer.ConfigWarning("unknown_section")
			rt.logger.Warn("skipping configuration section", "section", e.Section, "line", e.Line, "error", err)
			return err
		}
		ls.current = rt.newInstance(desc)
		rt.instances.Add(ls.current)
		rt.logger.Debug("instance created",
			"component", ls.current.Name(),
			"id", ls.current.ID(),
			"line", e.Line,
		)
	}

	if e.NewSection || ls.skip || ls.current == nil {
		return nil
	}

	inst := ls.current
	switch e.Key {
	case KeyEnabled:
		inst.setEnabled(parseEnabled(e.Value))
	case KeySID:
		inst.setSID(e.Value)
	default:
		f, ok := inst.desc.Field(e.Key)
		if !ok {
			rt.observer.ConfigWarning("unknown_key")
			rt.logger.Warn("ignoring unknown configuration key",
				"component", inst.Name(),
				"key", e.Key,
				"line", e.Line,
			)
			return nil
		}
		if err := f.Decode(inst.PData(), e.Value); err != nil {
			rt.observer.ConfigWarning("invalid_value")
			rt.logger.Warn("keeping default for configuration key",
				"component", inst.Name(),
				"key", e.Key,
				"value", e.Value,
				"line", e.Line,
				"error", err,
			)
		}
	}
	return nil
}

// parseEnabled reads the enabled flag the permissive integer way: any
// non-zero number enables.
func parseEnabled(v string) bool {
	var n int32
	if err := component.Decode(reflect.ValueOf(&n).Elem(), v, component.KindInt32); err != nil {
		return false
	}
	return n != 0
}

// GenerateConfig writes one section per registered identity, in
// registration order, holding the template default of every configurable
// field.
func (rt *Runtime) GenerateConfig(w io.Writer) error {
	iw := ini.NewWriter(w)
	for _, name := range rt.reg.Names() {
		desc, err := rt.reg.Resolve(name)
		if err != nil {
			return fmt.Errorf("failed to resolve %q; %w", name, err)
		}
		iw.Section(name)
		pdata := desc.NewPData()
		for _, f := range desc.Fields {
			iw.KeyValue(f.Name, f.Encode(pdata))
		}
	}
	return iw.Flush()
}

// WriteDefaultConfig writes GenerateConfig output to path, or to stdout
// when path is "-".
func (rt *Runtime) WriteDefaultConfig(path string) error {
	if path == "-" {
		return rt.GenerateConfig(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q; %w; %w", path, component.ErrSystem, err)
	}
	if err := rt.GenerateConfig(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %q; %w; %w", path, component.ErrSystem, err)
	}
	return nil
}

// FormatEnabled renders the enabled flag the way the loader reads it.
func FormatEnabled(enabled bool) string {
	if enabled {
		return "1"
	}
	return "0"
}
