package types

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Type resolution error codes (E200-E209).
const (
	ErrCodeUnresolvedType = "E201"
	ErrCodeUnresolvedPath = "E202"
	ErrCodeInvalidModel   = "E203"
)

// UnresolvedTypeError occurs when a namespace or a type within it is unknown.
type UnresolvedTypeError struct {
	Namespace string
	TypeName  string
}

func (e *UnresolvedTypeError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("could not resolve type %q", e.TypeName)
	}
	return fmt.Sprintf("could not resolve type %q in namespace %q", e.TypeName, e.Namespace)
}

// Code returns the stable error code.
func (e *UnresolvedTypeError) Code() string { return ErrCodeUnresolvedType }

// UnresolvedPathError occurs when a path segment does not exist on a type.
type UnresolvedPathError struct {
	Type    DataType
	Path    string
	Segment string
}

func (e *UnresolvedPathError) Error() string {
	return fmt.Sprintf("could not resolve path %q on type %s: no element %q", e.Path, typeString(e.Type), e.Segment)
}

// Code returns the stable error code.
func (e *UnresolvedPathError) Code() string { return ErrCodeUnresolvedPath }

// ModelError is a model description error with source position.
type ModelError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ModelError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns the stable error code.
func (e *ModelError) Code() string { return ErrCodeInvalidModel }

// formatCUEError extracts the first positioned error from a CUE error list.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &ModelError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
