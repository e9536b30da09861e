// Package report renders the registered components and the loaded instances
// of a runtime as text, JSON, YAML or TOML.
package report

import (
	"time"

	"github.com/leefowlercu/compage/component"
	"github.com/leefowlercu/compage/engine"
)

// Report is a point-in-time view of a runtime.
type Report struct {
	RunID       string          `json:"run_id" yaml:"run_id" toml:"run_id"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Components  []ComponentInfo `json:"components" yaml:"components" toml:"components"`
	Instances   []InstanceInfo  `json:"instances" yaml:"instances" toml:"instances"`
}

// ComponentInfo describes one registered component.
type ComponentInfo struct {
	Name     string      `json:"name" yaml:"name" toml:"name"`
	DataType string      `json:"data_type,omitempty" yaml:"data_type,omitempty" toml:"data_type,omitempty"`
	DataSize uint64      `json:"data_size" yaml:"data_size" toml:"data_size"`
	Init     bool        `json:"init" yaml:"init" toml:"init"`
	Loop     bool        `json:"loop" yaml:"loop" toml:"loop"`
	Exit     bool        `json:"exit" yaml:"exit" toml:"exit"`
	Fields   []FieldInfo `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// FieldInfo is a configurable field with its template default.
type FieldInfo struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Kind    string `json:"kind" yaml:"kind" toml:"kind"`
	Default string `json:"default" yaml:"default" toml:"default"`
}

// InstanceInfo describes one loaded instance.
type InstanceInfo struct {
	ID        uint32              `json:"id" yaml:"id" toml:"id"`
	Name      string              `json:"name" yaml:"name" toml:"name"`
	SID       string              `json:"sid" yaml:"sid" toml:"sid"`
	Enabled   bool                `json:"enabled" yaml:"enabled" toml:"enabled"`
	Launched  bool                `json:"launched" yaml:"launched" toml:"launched"`
	State     string              `json:"state" yaml:"state" toml:"state"`
	StartedAt *time.Time          `json:"started_at,omitempty" yaml:"started_at,omitempty" toml:"started_at,omitempty"`
	EndedAt   *time.Time          `json:"ended_at,omitempty" yaml:"ended_at,omitempty" toml:"ended_at,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Fields    []engine.FieldValue `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// Build collects the report for rt.
func Build(rt *engine.Runtime) *Report {
	r := &Report{
		RunID:       rt.RunID(),
		GeneratedAt: time.Now().UTC(),
		Components:  Components(rt.Registry()),
		Instances:   make([]InstanceInfo, 0, rt.Instances().Len()),
	}
	// The collection is newest first; report in load order.
	snap := rt.Instances().Snapshot()
	for i := len(snap) - 1; i >= 0; i-- {
		r.Instances = append(r.Instances, Instance(snap[i]))
	}
	return r
}

// Components describes every component of reg in registration order.
func Components(reg *component.Registry) []ComponentInfo {
	names := reg.Names()
	out := make([]ComponentInfo, 0, len(names))
	for _, name := range names {
		out = append(out, describe(reg, name))
	}
	return out
}

func describe(reg *component.Registry, name string) ComponentInfo {
	info := ComponentInfo{Name: name}

	desc, err := reg.Resolve(name)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	if t := desc.Template.Type; t != nil {
		info.DataType = t.String()
		info.DataSize = uint64(desc.Template.Size)
	}
	info.Init = desc.Init != nil
	info.Loop = desc.Loop != nil
	info.Exit = desc.Exit != nil

	defaults := desc.NewPData()
	for _, f := range desc.Fields {
		info.Fields = append(info.Fields, FieldInfo{
			Name:    f.Name,
			Kind:    f.Kind.String(),
			Default: f.Encode(defaults),
		})
	}
	return info
}

// Instance describes inst.
func Instance(inst *engine.Instance) InstanceInfo {
	info := InstanceInfo{
		ID:       inst.ID(),
		Name:     inst.Name(),
		SID:      inst.SID(),
		Enabled:  inst.Enabled(),
		Launched: inst.Launched(),
		State:    inst.State().String(),
		Fields:   inst.FieldValues(),
	}

	started, ended := inst.Times()
	if !started.IsZero() {
		info.StartedAt = &started
	}
	if !ended.IsZero() {
		info.EndedAt = &ended
	}

	if err := inst.Result(); err != nil {
		info.Error = err.Error()
	}
	return info
}
