package component

import (
	"errors"
	"fmt"
	"reflect"
)

// Descriptor is everything the registry knows about one component.
type Descriptor struct {
	Identity Identity
	// Template is the zero Template when the component registered no private data.
	Template Template
	Init     HandlerFunc
	Loop     HandlerFunc
	Exit     HandlerFunc
	Fields   []Field
}

// Name returns the component identity name.
func (d *Descriptor) Name() string {
	return d.Identity.Name
}

// NewPData returns a fresh copy of the component's default private data.
func (d *Descriptor) NewPData() any {
	return d.Template.New()
}

// Field returns the configurable field named name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FindIdentity returns the first identity named name.
func (r *Registry) FindIdentity(name string) (Identity, bool) {
	for id := range r.ids.Records() {
		if id.Name == name {
			return id, true
		}
	}
	return Identity{}, false
}

// FindTemplate returns the private data template of id.
func (r *Registry) FindTemplate(id Identity) (Template, bool) {
	for t := range r.templates.Records() {
		if t.Owner == id.Name {
			return t, true
		}
	}
	return Template{}, false
}

// FindInit returns the init handler bound to id.
func (r *Registry) FindInit(id Identity) (Handler, bool) {
	return findHandler(r.inits, id)
}

// FindLoop returns the loop handler bound to id.
func (r *Registry) FindLoop(id Identity) (Handler, bool) {
	return findHandler(r.loops, id)
}

// FindExit returns the exit handler bound to id.
func (r *Registry) FindExit(id Identity) (Handler, bool) {
	return findHandler(r.exits, id)
}

func findHandler(region *Region[Handler], id Identity) (Handler, bool) {
	for h := range region.Records() {
		if h.Owner == id.Name {
			return h, true
		}
	}
	return Handler{}, false
}

// FindField returns the configurable field fieldName of id.
func (r *Registry) FindField(id Identity, fieldName string) (Field, bool) {
	for f := range r.fields.Records() {
		if f.Owner == id.Name && f.Name == fieldName {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOf returns every configurable field of id in registration order.
func (r *Registry) FieldsOf(id Identity) []Field {
	var out []Field
	for f := range r.fields.Records() {
		if f.Owner == id.Name {
			out = append(out, f)
		}
	}
	return out
}

// Resolve assembles the descriptor of the component called name.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	id, ok := r.FindIdentity(name)
	if !ok {
		return nil, fmt.Errorf("component %q; %w", name, ErrUnknownComponent)
	}

	d := &Descriptor{Identity: id, Fields: r.FieldsOf(id)}
	if t, ok := r.FindTemplate(id); ok {
		d.Template = t
	}
	if h, ok := r.FindInit(id); ok {
		d.Init = h.Fn
	}
	if h, ok := r.FindLoop(id); ok {
		d.Loop = h.Fn
	}
	if h, ok := r.FindExit(id); ok {
		d.Exit = h.Fn
	}

	if len(d.Fields) > 0 && d.Template.Type == nil {
		return nil, fmt.Errorf("component %q declares config fields; %w", name, ErrMissingTemplate)
	}

	return d, nil
}

// Names returns the identity names in registration order.
func (r *Registry) Names() []string {
	var out []string
	for id := range r.ids.Records() {
		out = append(out, id.Name)
	}
	return out
}

// CheckDuplicates compares every pair of identities and reports the names
// registered more than once.
func (r *Registry) CheckDuplicates() error {
	ids := r.ids.snapshot()
	seen := make(map[string]bool)
	var dups []string

	for li := 0; li < len(ids); li++ {
		for ri := li + 1; ri < len(ids); ri++ {
			if ids[li].IsSentinel() || ids[ri].IsSentinel() {
				continue
			}
			if ids[li].Name == ids[ri].Name && !seen[ids[li].Name] {
				seen[ids[li].Name] = true
				dups = append(dups, ids[li].Name)
			}
		}
	}

	if len(dups) > 0 {
		return &DuplicateError{Names: dups}
	}
	return nil
}

// Validate runs the startup checks: at least one component, no duplicate
// identities, and every record consistent with its identity and template.
func (r *Registry) Validate() error {
	if r.ids.Count() == 0 {
		return ErrNoComponents
	}
	if err := r.CheckDuplicates(); err != nil {
		return err
	}

	var errs []error
	known := make(map[string]Template)
	for id := range r.ids.Records() {
		t, _ := r.FindTemplate(id)
		known[id.Name] = t
	}

	for t := range r.templates.Records() {
		if _, ok := known[t.Owner]; !ok {
			errs = append(errs, fmt.Errorf("template for unregistered component %q; %w", t.Owner, ErrInvalidDescriptor))
		}
	}

	checkHandlers := func(kind string, region *Region[Handler]) {
		for h := range region.Records() {
			t, ok := known[h.Owner]
			if !ok {
				errs = append(errs, fmt.Errorf("%s handler for unregistered component %q; %w", kind, h.Owner, ErrInvalidDescriptor))
				continue
			}
			if h.PDataType != nil && h.PDataType != pdataType(t) {
				errs = append(errs, fmt.Errorf("%s handler of %q expects %s, template is %s; %w",
					kind, h.Owner, h.PDataType, pdataType(t), ErrInvalidDescriptor))
			}
		}
	}
	checkHandlers("init", r.inits)
	checkHandlers("loop", r.loops)
	checkHandlers("exit", r.exits)

	for f := range r.fields.Records() {
		t, ok := known[f.Owner]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("field %q for unregistered component %q; %w", f.Name, f.Owner, ErrInvalidDescriptor))
		case t.Type == nil:
			errs = append(errs, fmt.Errorf("field %q of %q has no template; %w", f.Name, f.Owner, ErrMissingTemplate))
		case f.Struct != t.Type:
			errs = append(errs, fmt.Errorf("field %q of %q belongs to %s, template is %s; %w",
				f.Name, f.Owner, f.Struct, t.Type, ErrInvalidDescriptor))
		case f.Offset >= t.Size:
			errs = append(errs, fmt.Errorf("field %q of %q lies outside the template; %w", f.Name, f.Owner, ErrInvalidDescriptor))
		}
	}

	return errors.Join(errs...)
}

func pdataType(t Template) reflect.Type {
	if t.Type == nil {
		return reflect.TypeFor[NoData]()
	}
	return t.Type
}
