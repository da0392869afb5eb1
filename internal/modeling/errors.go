package modeling

import (
	"fmt"
	"strings"
)

// Modeling error codes (E400-E409).
const (
	ErrCodeUnknownTemplate = "E401"
	ErrCodeUnknownPath     = "E402"
)

// UnknownTemplateError occurs when a dispatch names a template with no
// recipes.
type UnknownTemplateError struct {
	Template string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Template)
}

// Code returns the stable error code.
func (e *UnknownTemplateError) Code() string { return ErrCodeUnknownTemplate }

// UnknownPathError occurs when a known template has no recipe for a path.
type UnknownPathError struct {
	Template string
	Path     string
	Known    []string
}

func (e *UnknownPathError) Error() string {
	msg := fmt.Sprintf("template %q has no path %q", e.Template, e.Path)
	if len(e.Known) > 0 {
		msg += " (known: " + strings.Join(e.Known, ", ") + ")"
	}
	return msg
}

// Code returns the stable error code.
func (e *UnknownPathError) Code() string { return ErrCodeUnknownPath }
