// Package component holds the statically registered component descriptors,
// the resolver that assembles them, and the typed value codec used to move
// configuration between text and private data.
//
// Components register from init functions:
//
//	func init() {
//		component.RegisterID("heartbeat")
//		component.RegisterPData("heartbeat", &defaults)
//		component.RegisterLoop("heartbeat", loop)
//		component.AddConfig[data]("heartbeat", "Interval", "Message")
//	}
//
// Every record kind lives in its own append-only Region. Records refer to
// their identity by name, so init order across files does not matter.
package component

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"sync"
	"unsafe"
)

// Identity is the unique, immutable name of a component.
type Identity struct {
	Name string
}

// IsSentinel reports whether the record is the empty placeholder of a region.
func (i Identity) IsSentinel() bool {
	return i.Name == ""
}

// Template is the default private data of a component. It is never mutated;
// instances receive copies made by New.
type Template struct {
	Owner string
	Type  reflect.Type
	Size  uintptr
	value reflect.Value
}

// New returns a pointer to an independent copy of the template value.
func (t Template) New() any {
	if t.Type == nil {
		return &NoData{}
	}
	p := reflect.New(t.Type)
	p.Elem().Set(t.value)
	return p.Interface()
}

// NoData is the private data of components registered without a template.
type NoData = struct{}

// HandlerFunc is an init, loop or exit handler. The handle gives access to the
// owning instance and its private data.
type HandlerFunc func(ctx context.Context, h Handle) error

// Handler binds a handler function to a component name.
type Handler struct {
	Owner string
	Fn    HandlerFunc
	// PDataType is the private data type the handler expects, or nil when untyped.
	PDataType reflect.Type
}

// Field describes one configurable member of a component's private data.
type Field struct {
	Owner  string
	Name   string
	Kind   Kind
	Offset uintptr
	// Struct is the private data type the field belongs to.
	Struct reflect.Type
	index  []int
}

// value locates the field inside the private data pointer pdata.
func (f Field) value(pdata any) (reflect.Value, error) {
	rv := reflect.ValueOf(pdata)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != f.Struct {
		return reflect.Value{}, fmt.Errorf("private data %T does not hold field %s.%s; %w",
			pdata, f.Owner, f.Name, ErrInvalidDescriptor)
	}
	fv := rv.Elem().FieldByIndex(f.index)
	// Unexported fields are reachable through their address, like an offset.
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem(), nil
}

// Encode renders the field's current value held in pdata.
func (f Field) Encode(pdata any) string {
	v, err := f.value(pdata)
	if err != nil {
		return unsupportedText
	}
	return Encode(f.Kind, v)
}

// Decode parses text into the field held in pdata.
func (f Field) Decode(pdata any, text string) error {
	v, err := f.value(pdata)
	if err != nil {
		return err
	}
	if err := Decode(v, text, f.Kind); err != nil {
		return fmt.Errorf("failed to decode %s.%s; %w", f.Owner, f.Name, err)
	}
	return nil
}

// Region is an ordered, append-only table of one record kind. Index 0 always
// holds an empty sentinel record so a region is never empty.
type Region[T any] struct {
	mu      sync.RWMutex
	records []T
}

func newRegion[T any]() *Region[T] {
	var sentinel T
	return &Region[T]{records: []T{sentinel}}
}

func (r *Region[T]) append(rec T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *Region[T]) snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[:len(r.records):len(r.records)]
}

// Len returns the number of records including the sentinel.
func (r *Region[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Count returns the number of real records.
func (r *Region[T]) Count() int {
	return r.Len() - 1
}

// All iterates every record, sentinel first, with its index.
func (r *Region[T]) All() iter.Seq2[int, T] {
	records := r.snapshot()
	return func(yield func(int, T) bool) {
		for i, rec := range records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Records iterates the real records in registration order.
func (r *Region[T]) Records() iter.Seq[T] {
	records := r.snapshot()
	return func(yield func(T) bool) {
		for _, rec := range records[1:] {
			if !yield(rec) {
				return
			}
		}
	}
}

// Registry is the set of regions components deposit their records into.
type Registry struct {
	ids       *Region[Identity]
	templates *Region[Template]
	inits     *Region[Handler]
	loops     *Region[Handler]
	exits     *Region[Handler]
	fields    *Region[Field]
}

// Default is the process-wide registry filled by init functions.
var Default = NewRegistry()

// NewRegistry creates a registry whose regions hold only their sentinels.
func NewRegistry() *Registry {
	return &Registry{
		ids:       newRegion[Identity](),
		templates: newRegion[Template](),
		inits:     newRegion[Handler](),
		loops:     newRegion[Handler](),
		exits:     newRegion[Handler](),
		fields:    newRegion[Field](),
	}
}

func (r *Registry) Identities() *Region[Identity] { return r.ids }
func (r *Registry) Templates() *Region[Template]  { return r.templates }
func (r *Registry) InitHandlers() *Region[Handler] { return r.inits }
func (r *Registry) LoopHandlers() *Region[Handler] { return r.loops }
func (r *Registry) ExitHandlers() *Region[Handler] { return r.exits }
func (r *Registry) ConfigFields() *Region[Field]   { return r.fields }

// RegisterID deposits a component identity. Duplicates are accepted here and
// reported by CheckDuplicates.
func (r *Registry) RegisterID(name string) {
	if name == "" {
		panic("component: empty component name")
	}
	r.ids.append(Identity{Name: name})
}

// RegisterPData deposits the default private data of a component. template
// must be a non-nil pointer to a struct; its value is copied.
func (r *Registry) RegisterPData(name string, template any) {
	rv := reflect.ValueOf(template)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("component: template for %q must be a non-nil struct pointer, got %T", name, template))
	}

	t := rv.Elem().Type()
	value := reflect.New(t).Elem()
	value.Set(rv.Elem())

	r.templates.append(Template{
		Owner: name,
		Type:  t,
		Size:  t.Size(),
		value: value,
	})
}

// RegisterInit deposits an untyped init handler.
func (r *Registry) RegisterInit(name string, fn HandlerFunc) {
	r.inits.append(Handler{Owner: name, Fn: fn})
}

// RegisterLoop deposits an untyped loop handler.
func (r *Registry) RegisterLoop(name string, fn HandlerFunc) {
	r.loops.append(Handler{Owner: name, Fn: fn})
}

// RegisterExit deposits an untyped exit handler.
func (r *Registry) RegisterExit(name string, fn HandlerFunc) {
	r.exits.append(Handler{Owner: name, Fn: fn})
}

// AddConfig marks members of the private data type of template as
// configurable. Unknown member names panic; members whose type has no Kind
// are recorded as KindInvalid.
func (r *Registry) AddConfig(name string, template any, fields ...string) {
	t := reflect.TypeOf(template)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("component: config type for %q must be a struct, got %T", name, template))
	}
	r.addConfig(name, t, fields)
}

func (r *Registry) addConfig(name string, t reflect.Type, fields []string) {
	for _, fieldName := range fields {
		sf, ok := t.FieldByName(fieldName)
		if !ok {
			panic(fmt.Sprintf("component: %s has no member %q", t, fieldName))
		}
		r.fields.append(Field{
			Owner:  name,
			Name:   fieldName,
			Kind:   KindOf(sf.Type),
			Offset: sf.Offset,
			Struct: t,
			index:  sf.Index,
		})
	}
}

func (r *Registry) addHandler(region *Region[Handler], name string, fn HandlerFunc, t reflect.Type) {
	region.append(Handler{Owner: name, Fn: fn, PDataType: t})
}
