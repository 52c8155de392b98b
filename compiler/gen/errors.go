package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the diagnostic categories reported by the compiler.
var (
	// ErrInvalidTargetKind indicates a reference to a declaration that is
	// not a table.
	ErrInvalidTargetKind = errors.New("tablegen: invalid reference target kind")
	// ErrAmbiguousTarget indicates a reference name matching more than one
	// table.
	ErrAmbiguousTarget = errors.New("tablegen: ambiguous reference target")
	// ErrUnresolvedTarget indicates a reference to a table that does not
	// exist at derivation time.
	ErrUnresolvedTarget = errors.New("tablegen: unresolved reference target")
	// ErrNameCollision indicates two declarations deriving the same
	// artifact name.
	ErrNameCollision = errors.New("tablegen: artifact name collision")
	// ErrProjectionField indicates a projection naming fields that do not
	// exist on its table.
	ErrProjectionField = errors.New("tablegen: unknown projection field")
	// ErrEmptyColumnSet indicates a table declared without columns. This
	// is a warning category, not a failure.
	ErrEmptyColumnSet = errors.New("tablegen: empty column set")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("tablegen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("tablegen: code generation failed")
)

// InvalidTargetKindError reports a declaration of the wrong kind, such
// as a view: either used directly as a generation target, or referenced
// by a column. Column is empty in the first case.
type InvalidTargetKindError struct {
	Table  string // declaring table
	Column string // referencing column, empty for a direct target
	Target string // referenced declaration
	Kind   string // kind of the referenced declaration
}

// Error implements the error interface.
func (e *InvalidTargetKindError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("tablegen: declaration %q is a %s; artifacts are generated for tables only",
			e.Target, e.Kind)
	}
	return fmt.Sprintf("tablegen: table %q column %q references %s %q; only tables can be referenced",
		e.Table, e.Column, e.Kind, e.Target)
}

// Is reports whether the target matches the sentinel error for InvalidTargetKindError.
func (e *InvalidTargetKindError) Is(target error) bool {
	return target == ErrInvalidTargetKind
}

// AmbiguousTargetError reports a column reference whose target name
// matches more than one table.
type AmbiguousTargetError struct {
	Table   string   // declaring table
	Column  string   // referencing column
	Target  string   // referenced name
	Matches []string // names of the candidate tables
}

// Error implements the error interface.
func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("tablegen: table %q column %q references %q which matches multiple tables: %s",
		e.Table, e.Column, e.Target, strings.Join(e.Matches, ", "))
}

// Is reports whether the target matches the sentinel error for AmbiguousTargetError.
func (e *AmbiguousTargetError) Is(target error) bool {
	return target == ErrAmbiguousTarget
}

// UnresolvedTargetError reports a column reference whose target table
// does not exist when artifacts are derived.
type UnresolvedTargetError struct {
	Table  string // declaring table
	Column string // referencing column
	Target string // referenced name
}

// Error implements the error interface.
func (e *UnresolvedTargetError) Error() string {
	return fmt.Sprintf("tablegen: table %q column %q references unknown table %q",
		e.Table, e.Column, e.Target)
}

// Is reports whether the target matches the sentinel error for UnresolvedTargetError.
func (e *UnresolvedTargetError) Is(target error) bool {
	return target == ErrUnresolvedTarget
}

// NameCollisionError reports two table declarations that derive the same
// artifact name. Both declarations are at fault and both are rejected.
type NameCollisionError struct {
	Name   string   // colliding derived name
	Tables []string // declarations deriving it
}

// Error implements the error interface.
func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("tablegen: tables %s all derive artifact name %q",
		strings.Join(e.Tables, ", "), e.Name)
}

// Is reports whether the target matches the sentinel error for NameCollisionError.
func (e *NameCollisionError) Is(target error) bool {
	return target == ErrNameCollision
}

// ProjectionFieldError reports the complete set of projection fields
// that do not match any derived field of the table.
type ProjectionFieldError struct {
	Table      string   // declaring table
	Projection string   // projection name
	Missing    []string // declared fields with no match, in declaration order
	Available  []string // derived field names of the table
}

// Error implements the error interface.
func (e *ProjectionFieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tablegen: projection %q on table %q names unknown fields: %s",
		e.Projection, e.Table, strings.Join(e.Missing, ", "))
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available: %s)", strings.Join(e.Available, ", "))
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ProjectionFieldError.
func (e *ProjectionFieldError) Is(target error) bool {
	return target == ErrProjectionField
}

// EmptyColumnSetWarning reports a table declared without columns.
// Artifacts are still produced for the table.
type EmptyColumnSetWarning struct {
	Table string
}

// Error implements the error interface.
func (e *EmptyColumnSetWarning) Error() string {
	return fmt.Sprintf("tablegen: table %q declares no columns", e.Table)
}

// Is reports whether the target matches the sentinel error for EmptyColumnSetWarning.
func (e *EmptyColumnSetWarning) Is(target error) bool {
	return target == ErrEmptyColumnSet
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("tablegen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("tablegen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Table   string
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: generation error")
	if e.Table != "" {
		b.WriteString(" for table ")
		b.WriteString(e.Table)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(table, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Table:   table,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsInvalidTargetKindError reports whether the error is an InvalidTargetKindError.
func IsInvalidTargetKindError(err error) bool {
	var e *InvalidTargetKindError
	return errors.As(err, &e)
}

// IsAmbiguousTargetError reports whether the error is an AmbiguousTargetError.
func IsAmbiguousTargetError(err error) bool {
	var e *AmbiguousTargetError
	return errors.As(err, &e)
}

// IsUnresolvedTargetError reports whether the error is an UnresolvedTargetError.
func IsUnresolvedTargetError(err error) bool {
	var e *UnresolvedTargetError
	return errors.As(err, &e)
}

// IsNameCollisionError reports whether the error is a NameCollisionError.
func IsNameCollisionError(err error) bool {
	var e *NameCollisionError
	return errors.As(err, &e)
}

// IsProjectionFieldError reports whether the error is a ProjectionFieldError.
func IsProjectionFieldError(err error) bool {
	var e *ProjectionFieldError
	return errors.As(err, &e)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
