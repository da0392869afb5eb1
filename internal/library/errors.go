package library

import "fmt"

// Library error codes (E300-E309).
const (
	ErrCodeDuplicateDefinition = "E301"
	ErrCodeUnresolvedReference = "E302"
)

// DuplicateDefinitionError occurs when an expression name is defined twice.
type DuplicateDefinitionError struct {
	Name string
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("expression %q is already defined", e.Name)
}

// Code returns the stable error code.
func (e *DuplicateDefinitionError) Code() string { return ErrCodeDuplicateDefinition }

// UnresolvedReferenceError occurs when a definition refers to another
// definition that is not registered in the library.
type UnresolvedReferenceError struct {
	Kind string
	Name string
	From string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%q: missing %s reference", e.From, e.Kind)
	}
	return fmt.Sprintf("%q: %s %q is not defined in the library", e.From, e.Kind, e.Name)
}

// Code returns the stable error code.
func (e *UnresolvedReferenceError) Code() string { return ErrCodeUnresolvedReference }
