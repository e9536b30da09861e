package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_NoComponents(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Validate(), ErrNoComponents)
}

func TestCheckDuplicates(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("a")
	r.RegisterID("b")
	r.RegisterID("a")
	r.RegisterID("a")
	r.RegisterID("c")
	r.RegisterID("c")

	err := r.CheckDuplicates()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateComponent)

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []string{"a", "c"}, dup.Names)

	assert.ErrorIs(t, r.Validate(), ErrDuplicateComponent)
	assert.Equal(t, ExitDuplicates, ExitCode(r.Validate()))
}

func TestCheckDuplicates_Unique(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("a")
	r.RegisterID("b")
	assert.NoError(t, r.CheckDuplicates())
	assert.NoError(t, r.Validate())
}

func TestResolve_Unknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestResolve_FieldsWithoutTemplate(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("bare")
	r.AddConfig("bare", workerData{}, "Count")

	_, err := r.Resolve("bare")
	assert.ErrorIs(t, err, ErrMissingTemplate)
	assert.ErrorIs(t, r.Validate(), ErrMissingTemplate)
}

func TestResolve_NoTemplate(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("plain")
	r.RegisterInit("plain", func(ctx context.Context, h Handle) error { return nil })

	d, err := r.Resolve("plain")
	require.NoError(t, err)
	_, ok := d.NewPData().(*NoData)
	assert.True(t, ok)
	assert.NoError(t, r.Validate())
}

func TestResolve_FirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("w")
	r.RegisterPData("w", &workerData{Count: 1})
	r.RegisterPData("w", &workerData{Count: 2})

	d, err := r.Resolve("w")
	require.NoError(t, err)
	assert.Equal(t, int32(1), d.NewPData().(*workerData).Count)
}

func TestValidate_Orphans(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("real")
	r.RegisterPData("ghost", &workerData{})
	r.RegisterLoop("ghost", func(ctx context.Context, h Handle) error { return nil })

	err := r.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestValidate_HandlerTypeMismatch(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("w")
	r.RegisterPData("w", &workerData{})
	InitIn(r, "w", func(ctx context.Context, h Handle, p *struct{ Other int32 }) error { return nil })

	assert.ErrorIs(t, r.Validate(), ErrInvalidDescriptor)
}

func TestValidate_FieldTypeMismatch(t *testing.T) {
	r := NewRegistry()
	r.RegisterID("w")
	r.RegisterPData("w", &workerData{})
	r.AddConfig("w", struct{ Count int32 }{}, "Count")

	assert.ErrorIs(t, r.Validate(), ErrInvalidDescriptor)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{ErrInvalidArguments, ExitInvalidArgs},
		{ErrNoComponents, ExitNoComponents},
		{&DuplicateError{Names: []string{"x"}}, ExitDuplicates},
		{ErrConfigParse, ExitConfigParse},
		{ErrSystem, ExitSystemFailure},
		{errors.New("other"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestState_Strings(t *testing.T) {
	assert.Equal(t, "POSTINIT", StatePostInit.String())
	assert.Equal(t, "COMPLETED_FAILURE", StateCompletedFailure.String())
	assert.Equal(t, "ILLEGAL", StateIllegal.String())
	assert.Equal(t, "ILLEGAL", State(99).String())

	s, ok := ParseState("preloop")
	assert.True(t, ok)
	assert.Equal(t, StatePreLoop, s)

	_, ok = ParseState("illegal")
	assert.False(t, ok)

	assert.True(t, StateCompletedSuccess.IsTerminal())
	assert.False(t, StateLoop.IsTerminal())
}

func TestPhase_State(t *testing.T) {
	s, ok := PhasePostExit.State()
	assert.True(t, ok)
	assert.Equal(t, StatePostExit, s)
	assert.Equal(t, "ALL", PhaseAll.String())
	_, ok = PhaseCount.State()
	assert.False(t, ok)
}
