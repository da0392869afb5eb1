package modeling

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlgen/internal/types"
)

// Table validation error codes (E100-E199)
const (
	ErrUnretrievableResource = "E101" // recipe resource missing or not retrievable
	ErrUnresolvedRecipePath  = "E102" // projected path does not resolve
	ErrInvalidTermFilter     = "E103" // fixed filter incomplete or its path does not resolve
	ErrInvalidJoin           = "E104" // join resource or paths do not resolve
	ErrMalformedPathKey      = "E105" // table key is not a normalized path
	ErrSingletonJoin         = "E106" // a singular source cannot be unioned
)

// ValidationError is one problem found in a recipe table.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateTable checks every recipe of table against model.
// Returns all errors found (does not fail-fast), ordered by template and path.
func ValidateTable(model *types.Model, table Table) []ValidationError {
	var errs []ValidationError
	for _, template := range table.Templates() {
		paths, _ := table.Paths(template)
		for _, path := range paths {
			field := template + "/" + path
			if path != normalizePath(path) || strings.Contains(path, "//") {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("path key %q is not normalized (want %q)", path, normalizePath(path)),
					Code:    ErrMalformedPathKey,
				})
			}
			errs = append(errs, validateRecipe(model, field, table[template][path])...)
		}
	}
	return errs
}

func validateRecipe(model *types.Model, field string, r Recipe) []ValidationError {
	var errs []ValidationError

	// E101: resource must be retrievable
	resource, ok := retrievable(model, r.Resource)
	if !ok {
		return append(errs, ValidationError{
			Field:   field + ".resource",
			Message: fmt.Sprintf("%q is not a retrievable type", r.Resource),
			Code:    ErrUnretrievableResource,
		})
	}

	// E102: projected path resolves on the resource
	var projected types.DataType = resource
	if r.Path != "" {
		t, err := model.ResolvePath(resource, r.Path)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".path",
				Message: err.Error(),
				Code:    ErrUnresolvedRecipePath,
			})
		}
		projected = t
	}

	// E103: fixed filters are complete and their paths resolve
	if r.Codes != nil {
		errs = append(errs, validateFilter(model, field+".codes", resource, r.Codes)...)
	}
	if r.Where != nil {
		errs = append(errs, validateFilter(model, field+".where", resource, r.Where)...)
	}

	if r.Join != nil {
		// E106: union needs list operands
		if r.Singleton {
			errs = append(errs, ValidationError{
				Field:   field + ".join",
				Message: "a singleton recipe cannot be joined",
				Code:    ErrSingletonJoin,
			})
		}
		errs = append(errs, validateJoin(model, field+".join", resource, projected, r.Join)...)
	}
	return errs
}

func validateFilter(model *types.Model, field string, resource types.NamedType, f *TermFilter) []ValidationError {
	var errs []ValidationError
	if f.SystemURL == "" || f.SystemName == "" || f.Code == "" || f.Name == "" {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "code system url, code system name, code and name are required",
			Code:    ErrInvalidTermFilter,
		})
	}
	if _, err := model.ResolvePath(resource, f.Path); err != nil || f.Path == "" {
		errs = append(errs, ValidationError{
			Field:   field + ".path",
			Message: fmt.Sprintf("filter path %q does not resolve on %s", f.Path, resource),
			Code:    ErrInvalidTermFilter,
		})
	}
	return errs
}

func validateJoin(model *types.Model, field string, resource types.NamedType, projected types.DataType, j *Join) []ValidationError {
	var errs []ValidationError
	target, ok := retrievable(model, j.Resource)
	if !ok {
		return append(errs, ValidationError{
			Field:   field + ".resource",
			Message: fmt.Sprintf("%q is not a retrievable type", j.Resource),
			Code:    ErrInvalidJoin,
		})
	}

	check := func(name string, on types.NamedType, path string) types.DataType {
		t, err := model.ResolvePath(on, path)
		if err != nil || path == "" {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("path %q does not resolve on %s", path, on),
				Code:    ErrInvalidJoin,
			})
			return nil
		}
		return t
	}
	check("reference", resource, j.Reference)
	check("key", target, j.Key)
	joined := check("path", target, j.Path)

	if joined != nil && projected != nil && !types.Equal(elementOf(joined), elementOf(projected)) {
		errs = append(errs, ValidationError{
			Field:   field + ".path",
			Message: fmt.Sprintf("joined %s does not match projected %s", joined, projected),
			Code:    ErrInvalidJoin,
		})
	}
	return errs
}

func retrievable(model *types.Model, name string) (types.NamedType, bool) {
	t, err := model.ResolveName(name)
	if err != nil {
		return types.NamedType{}, false
	}
	c, ok := model.Class(t)
	return t, ok && c.Retrievable
}

func elementOf(t types.DataType) types.DataType {
	if elem, ok := types.ElementType(t); ok {
		return elem
	}
	return t
}
