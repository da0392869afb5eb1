package types

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

//go:embed model.cue
var defaultModelSource string

// DefaultModel compiles the embedded FHIR-subset model description.
// Each call returns an independent Model.
func DefaultModel() (*Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(defaultModelSource, cue.Filename("model.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileModel(v.LookupPath(cue.ParsePath("model")))
}

// MustDefaultModel is like DefaultModel but panics on error.
// The embedded description is part of the build, so failure is a bug.
func MustDefaultModel() *Model {
	m, err := DefaultModel()
	if err != nil {
		panic(err)
	}
	return m
}

// LoadModelDir loads the CUE package in dir and compiles its top-level
// `model` field.
func LoadModelDir(dir string) (*Model, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("model directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("model directory %s: no CUE instances loaded", dir)
	}
	if instances[0].Err != nil {
		return nil, formatCUEError(instances[0].Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(instances[0])
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelVal := v.LookupPath(cue.ParsePath("model"))
	if !modelVal.Exists() {
		return nil, &ModelError{Field: "model", Message: "model is required", Pos: v.Pos()}
	}
	return CompileModel(modelVal)
}

// CompileModel builds a Model from a CUE value shaped as
//
//	<Namespace>: {
//		url: "http://hl7.org/fhir"
//		types: <Type>: {
//			retrievable:     true
//			primaryCodePath: "code"
//			elements: <name>: "List<CodeableConcept>"
//		}
//	}
//
// Element types are type specifiers; unqualified names resolve against the
// declaring namespace. All classes are registered before any element type
// is checked, so declaration order does not matter.
func CompileModel(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := NewModel()
	type pending struct {
		class *ClassInfo
		value cue.Value
	}
	var classes []pending

	nsIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for nsIter.Next() {
		nsName := nsIter.Selector().Unquoted()
		nsVal := nsIter.Value()
		if nsName == SystemNamespace {
			return nil, &ModelError{Field: nsName, Message: "System namespace is built in and cannot be redefined", Pos: nsVal.Pos()}
		}

		url, err := optionalString(nsVal, "url")
		if err != nil {
			return nil, err
		}
		m.AddNamespace(nsName, url)

		typesVal := nsVal.LookupPath(cue.ParsePath("types"))
		if !typesVal.Exists() {
			return nil, &ModelError{Field: nsName + ".types", Message: "types are required", Pos: nsVal.Pos()}
		}
		typeIter, err := typesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for typeIter.Next() {
			c, err := compileClass(nsName, typeIter.Selector().Unquoted(), typeIter.Value())
			if err != nil {
				return nil, err
			}
			if err := m.Define(c); err != nil {
				return nil, &ModelError{Field: nsName + "." + c.Name, Message: err.Error(), Pos: typeIter.Value().Pos()}
			}
			classes = append(classes, pending{class: c, value: typeIter.Value()})
		}
	}

	for _, p := range classes {
		for _, e := range p.class.Elements {
			if err := m.CheckType(e.Type); err != nil {
				return nil, &ModelError{
					Field:   fmt.Sprintf("%s.%s.elements.%s", p.class.Namespace, p.class.Name, e.Name),
					Message: err.Error(),
					Pos:     p.value.Pos(),
				}
			}
		}
		if p.class.PrimaryCodePath != "" {
			if _, err := m.ResolvePath(p.class.Type(), p.class.PrimaryCodePath); err != nil {
				return nil, &ModelError{
					Field:   fmt.Sprintf("%s.%s.primaryCodePath", p.class.Namespace, p.class.Name),
					Message: err.Error(),
					Pos:     p.value.Pos(),
				}
			}
		}
	}

	return m, nil
}

func compileClass(namespace, name string, v cue.Value) (*ClassInfo, error) {
	c := &ClassInfo{Namespace: namespace, Name: name}

	if rv := v.LookupPath(cue.ParsePath("retrievable")); rv.Exists() {
		b, err := rv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		c.Retrievable = b
	}

	codePath, err := optionalString(v, "primaryCodePath")
	if err != nil {
		return nil, err
	}
	c.PrimaryCodePath = codePath

	elemsVal := v.LookupPath(cue.ParsePath("elements"))
	if !elemsVal.Exists() {
		return c, nil
	}
	iter, err := elemsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		elemName := iter.Selector().Unquoted()
		spec, err := iter.Value().String()
		if err != nil {
			return nil, &ModelError{
				Field:   fmt.Sprintf("%s.%s.elements.%s", namespace, name, elemName),
				Message: "element type must be a type specifier string",
				Pos:     iter.Value().Pos(),
			}
		}
		t, err := ParseTypeSpecifier(spec, namespace)
		if err != nil {
			return nil, &ModelError{
				Field:   fmt.Sprintf("%s.%s.elements.%s", namespace, name, elemName),
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		c.Elements = append(c.Elements, ElementInfo{Name: elemName, Type: t})
	}
	return c, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}
