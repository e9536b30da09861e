package components

import (
	"context"

	"github.com/leefowlercu/compage/component"
)

// SamplerName is the identity of the sampler component.
const SamplerName = "sampler"

// Sampler carries one configurable field of every supported kind and logs
// them on init. It is useful to inspect how a configuration file decodes.
type Sampler struct {
	Flag  bool
	I8    int8
	U8    uint8
	I16   int16
	U16   uint16
	I32   int32
	U32   uint32
	I64   int64
	U64   uint64
	F32   float32
	F64   float64
	Label *string
	Tag   string
}

func registerSampler(r *component.Registry) {
	label := "sample"
	component.RegisterIn(r, SamplerName, component.Definition[Sampler]{
		Defaults: &Sampler{
			Flag: true, I8: -8, U8: 8, I16: -16, U16: 16, I32: -32, U32: 32,
			I64: -64, U64: 64, F32: 3.5, F64: 6.25, Label: &label, Tag: "demo",
		},
		Init: samplerInit,
		Config: []string{
			"Flag", "I8", "U8", "I16", "U16", "I32", "U32",
			"I64", "U64", "F32", "F64", "Label", "Tag",
		},
	})
}

func samplerInit(_ context.Context, h component.Handle, p *Sampler) error {
	label := "<nil>"
	if p.Label != nil {
		label = *p.Label
	}
	logger(h).Info("sampled configuration",
		"flag", p.Flag,
		"i8", p.I8, "u8", p.U8,
		"i16", p.I16, "u16", p.U16,
		"i32", p.I32, "u32", p.U32,
		"i64", p.I64, "u64", p.U64,
		"f32", p.F32, "f64", p.F64,
		"label", label, "tag", p.Tag,
	)
	return nil
}
