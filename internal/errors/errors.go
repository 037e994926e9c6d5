package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Error code constants for structured errors.
const (
	CodeConfigError       = "CONFIG_ERROR"
	CodeDefinitionError   = "DEFINITION_ERROR"
	CodeExtensionError    = "EXTENSION_ERROR"
	CodeOrchestration     = "ORCHESTRATION_ERROR"
	CodeLifecycleError    = "LIFECYCLE_ERROR"
	CodeTypeMismatchError = "TYPE_MISMATCH"
)

// Standard registry/container errors.
var (
	ErrNilDefinition       = errors.New("definition cannot be nil")
	ErrEmptyName           = errors.New("definition name cannot be empty")
	ErrNilType             = errors.New("definition type cannot be nil")
	ErrInvalidFactory      = errors.New("definition factory cannot be nil")
	ErrContainerStarted    = errors.New("container already started")
	ErrContainerStopped    = errors.New("container not started")
	ErrRegistryImmutable   = errors.New("registry does not support definition mutation")
	ErrAlreadyInstantiated = errors.New("definition already instantiated")
	ErrCircularDependency  = errors.New("circular dependency")
)

// DefinitionError wraps definition-level failures with the definition name
// and the operation that failed.
type DefinitionError struct {
	Name      string
	Operation string
	Err       error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition %s: %s: %v", e.Name, e.Operation, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// NewDefinitionError creates a DefinitionError.
func NewDefinitionError(name, operation string, err error) *DefinitionError {
	return &DefinitionError{Name: name, Operation: operation, Err: err}
}

// ErrDefinitionNotFound indicates a lookup for an unregistered name.
func ErrDefinitionNotFound(name string) error {
	return &DefinitionError{Name: name, Operation: "lookup", Err: errors.New("not found")}
}

// ErrDefinitionExists indicates a Register call for an already-taken name.
func ErrDefinitionExists(name string) error {
	return &DefinitionError{Name: name, Operation: "register", Err: errors.New("already registered")}
}

// ExtensionError wraps a failure raised while instantiating or invoking an
// extension or interceptor. Orchestration never recovers these; they abort
// container startup.
type ExtensionError struct {
	Extension string
	Hook      string
	Err       error
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("extension %s: %s: %v", e.Extension, e.Hook, e.Err)
}

func (e *ExtensionError) Unwrap() error {
	return e.Err
}

// NewExtensionError creates an ExtensionError.
func NewExtensionError(extension, hook string, err error) *ExtensionError {
	return &ExtensionError{Extension: extension, Hook: hook, Err: err}
}

// ErrTypeMismatch indicates a resolved instance does not implement the
// capability its definition metadata advertised.
func ErrTypeMismatch(name string, want reflect.Type, got any) error {
	return &DefinitionError{
		Name:      name,
		Operation: "resolve",
		Err:       fmt.Errorf("instance of type %T does not implement %s", got, want),
	}
}

// ErrDependencyCycle indicates a factory resolved a name that is already
// being constructed. The path lists the in-flight resolutions, ending with
// the name that closed the cycle.
func ErrDependencyCycle(name string, path []string) error {
	return &DefinitionError{
		Name:      name,
		Operation: "resolve",
		Err:       fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(path, " -> ")),
	}
}

// MutationRoundsError indicates the catch-all mutation loop did not
// stabilize within the configured bound. Pending identifies the extensions
// still being discovered when the bound was hit.
type MutationRoundsError struct {
	Rounds  int
	Pending []string
}

func (e *MutationRoundsError) Error() string {
	return fmt.Sprintf("registry mutation did not stabilize after %d rounds; still discovering: %s",
		e.Rounds, strings.Join(e.Pending, ", "))
}

// ErrMutationRoundsExceeded creates a MutationRoundsError.
func ErrMutationRoundsExceeded(rounds int, pending []string) error {
	return &MutationRoundsError{Rounds: rounds, Pending: pending}
}
