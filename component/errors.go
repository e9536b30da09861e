package component

import (
	"errors"
	"fmt"
	"strings"
)

// Status taxonomy shared by the registry, the codec and the engine.
// Callers compare with errors.Is.
var (
	// ErrNoComponents indicates the registry holds only its sentinel records.
	ErrNoComponents = errors.New("no components registered")

	// ErrDuplicateComponent indicates two identities share a name.
	ErrDuplicateComponent = errors.New("duplicate component identity")

	// ErrInvalidArguments indicates a caller supplied unusable arguments.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrGeneric is the catch-all failure.
	ErrGeneric = errors.New("component error")

	// ErrSystem indicates an operating system resource failure.
	ErrSystem = errors.New("system error")

	// ErrConfigParse indicates a malformed configuration stream.
	ErrConfigParse = errors.New("configuration parse error")

	// ErrInvalidFieldType indicates the codec met an unsupported kind.
	ErrInvalidFieldType = errors.New("invalid field type")

	// ErrLoopExit is returned by a loop handler to stop iterating. It is not a failure.
	ErrLoopExit = errors.New("loop exit requested")

	// ErrCancelled indicates the instance was cancelled before completing.
	ErrCancelled = errors.New("operation cancelled")

	// ErrUnknownComponent indicates no identity matches a name.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrMissingTemplate indicates an identity has no private data template.
	ErrMissingTemplate = errors.New("component has no private data template")

	// ErrInvalidDescriptor indicates inconsistent registry records.
	ErrInvalidDescriptor = errors.New("invalid component descriptor")

	// ErrInvalidValue indicates text that the codec refuses for a kind.
	ErrInvalidValue = errors.New("invalid value")
)

// DuplicateError reports every identity name registered more than once.
type DuplicateError struct {
	Names []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate component identities: %s", strings.Join(e.Names, ", "))
}

// Unwrap allows errors.Is(err, ErrDuplicateComponent).
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateComponent
}

// Process exit codes returned by the compage binary.
const (
	ExitSuccess       = 0
	ExitFailure       = 1
	ExitInvalidArgs   = 2
	ExitNoComponents  = 3
	ExitDuplicates    = 4
	ExitConfigParse   = 5
	ExitSystemFailure = 6
)

// ExitCode maps an error from the status taxonomy to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidArguments):
		return ExitInvalidArgs
	case errors.Is(err, ErrNoComponents):
		return ExitNoComponents
	case errors.Is(err, ErrDuplicateComponent):
		return ExitDuplicates
	case errors.Is(err, ErrConfigParse):
		return ExitConfigParse
	case errors.Is(err, ErrSystem):
		return ExitSystemFailure
	default:
		return ExitFailure
	}
}
