package modeling

import (
	"slices"
	"strings"
)

// TemplatePath is the dispatch key: a clinical template name and a
// property path within it. Paths may be separated by "/" or ".".
type TemplatePath struct {
	Template string
	Path     string
}

// Key builds a TemplatePath with its path normalized to "/" separators.
func Key(template, path string) TemplatePath {
	return TemplatePath{Template: template, Path: normalizePath(path)}
}

// ParseTemplatePath splits "Template/some/path" into a TemplatePath.
func ParseTemplatePath(s string) (TemplatePath, bool) {
	template, path, ok := strings.Cut(s, "/")
	if !ok || template == "" || path == "" {
		return TemplatePath{}, false
	}
	return Key(template, path), true
}

func (p TemplatePath) String() string {
	return p.Template + "/" + normalizePath(p.Path)
}

func normalizePath(path string) string {
	return strings.Trim(strings.ReplaceAll(path, ".", "/"), "/")
}

// TermFilter is a fixed terminology code a recipe filters on.
type TermFilter struct {
	// Path is the property compared against the code.
	Path string

	SystemURL  string
	SystemName string
	Code       string
	Name       string
	Display    string
}

// Join dereferences a reference on the recipe's resource into another
// resource and projects one of its properties.
type Join struct {
	Resource  string
	Reference string // reference string on the recipe's resource
	Key       string // property of Resource the reference ends with
	Path      string
}

// Recipe describes how a template path is read from the model.
//
// The left-hand expression is built as follows: retrieve Resource, coded
// with Codes when set; keep rows whose Where property is equivalent to the
// Where code; take the single row when Singleton is set; project Path. A
// Join adds a second strategy through a referenced resource and the two
// are unioned.
type Recipe struct {
	Resource  string
	Path      string
	Codes     *TermFilter
	Where     *TermFilter
	Singleton bool
	Join      *Join
	Doc       string
}

// Table maps template names to their paths and recipes.
type Table map[string]map[string]Recipe

// Lookup returns the recipe for key.
func (t Table) Lookup(key TemplatePath) (Recipe, error) {
	paths, ok := t[key.Template]
	if !ok {
		return Recipe{}, &UnknownTemplateError{Template: key.Template}
	}
	r, ok := paths[normalizePath(key.Path)]
	if !ok {
		return Recipe{}, &UnknownPathError{Template: key.Template, Path: key.Path, Known: sortedKeys(paths)}
	}
	return r, nil
}

// Templates returns the template names in sorted order.
func (t Table) Templates() []string {
	return sortedKeys(t)
}

// Paths returns the paths of template in sorted order.
func (t Table) Paths(template string) ([]string, error) {
	paths, ok := t[template]
	if !ok {
		return nil, &UnknownTemplateError{Template: template}
	}
	return sortedKeys(paths), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Terminology used by fixed recipe filters.
var (
	activeClinicalStatus = &TermFilter{
		Path:       "clinicalStatus",
		SystemURL:  "http://terminology.hl7.org/CodeSystem/condition-clinical",
		SystemName: "ConditionClinicalStatusCodes",
		Code:       "active",
		Name:       "active",
		Display:    "Active",
	}
	bodyMassIndex = &TermFilter{
		Path:       "code",
		SystemURL:  "http://loinc.org",
		SystemName: "LOINC",
		Code:       "39156-5",
		Name:       "Body mass index (BMI) [Ratio]",
		Display:    "Body mass index (BMI) [Ratio]",
	}
	tobaccoSmokingStatus = &TermFilter{
		Path:       "code",
		SystemURL:  "http://loinc.org",
		SystemName: "LOINC",
		Code:       "72166-2",
		Name:       "Tobacco smoking status",
		Display:    "Tobacco smoking status",
	}
)

// DefaultTable returns the built-in recipes for the default model.
func DefaultTable() Table {
	return Table{
		"Patient": {
			"gender":    {Resource: "Patient", Path: "gender", Singleton: true, Doc: "administrative gender of the patient"},
			"birthDate": {Resource: "Patient", Path: "birthDate", Singleton: true, Doc: "date of birth"},
			"deceased":  {Resource: "Patient", Path: "deceasedBoolean", Singleton: true, Doc: "deceased flag"},
		},
		"Condition": {
			"code":               {Resource: "Condition", Path: "code", Doc: "condition codes"},
			"clinicalStatus":     {Resource: "Condition", Path: "clinicalStatus", Doc: "clinical status of every condition"},
			"verificationStatus": {Resource: "Condition", Path: "verificationStatus", Doc: "verification status of every condition"},
			"category":           {Resource: "Condition", Path: "category", Doc: "categories of every condition"},
			"onset":              {Resource: "Condition", Path: "onsetDateTime", Doc: "onset of every condition"},
			"active/code": {
				Resource: "Condition",
				Path:     "code",
				Where:    activeClinicalStatus,
				Doc:      "codes of conditions whose clinical status is active",
			},
		},
		"Observation": {
			"code":           {Resource: "Observation", Path: "code", Doc: "observation codes"},
			"status":         {Resource: "Observation", Path: "status", Doc: "observation status"},
			"value/quantity": {Resource: "Observation", Path: "valueQuantity", Doc: "quantity values"},
			"interpretation": {Resource: "Observation", Path: "interpretation", Doc: "interpretations of every observation"},
			"bmi/value": {
				Resource: "Observation",
				Path:     "valueQuantity",
				Codes:    bodyMassIndex,
				Doc:      "values of body mass index observations",
			},
			"smoking/status": {
				Resource: "Observation",
				Path:     "valueCodeableConcept",
				Codes:    tobaccoSmokingStatus,
				Doc:      "answers of tobacco smoking status observations",
			},
		},
		"MedicationRequest": {
			"medication": {
				Resource: "MedicationRequest",
				Path:     "medicationCodeableConcept",
				Join: &Join{
					Resource:  "Medication",
					Reference: "medicationReference.reference",
					Key:       "id",
					Path:      "code",
				},
				Doc: "medication codes, inline or through a referenced Medication",
			},
			"status": {Resource: "MedicationRequest", Path: "status", Doc: "request status"},
		},
		"Encounter": {
			"type":         {Resource: "Encounter", Path: "type", Doc: "encounter types"},
			"period/start": {Resource: "Encounter", Path: "period.start", Doc: "start of every encounter"},
		},
		"Procedure": {
			"code": {Resource: "Procedure", Path: "code", Doc: "procedure codes"},
		},
		"Immunization": {
			"vaccineCode": {Resource: "Immunization", Path: "vaccineCode", Doc: "administered vaccines"},
		},
		"AllergyIntolerance": {
			"code": {Resource: "AllergyIntolerance", Path: "code", Doc: "allergy and intolerance codes"},
		},
	}
}
