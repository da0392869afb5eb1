package modeling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/cqlgen/internal/testutil"
)

func validationCodes(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

func TestValidateTable(t *testing.T) {
	complete := &TermFilter{Path: "clinicalStatus", SystemURL: "urn:x", SystemName: "X", Code: "c", Name: "c"}
	medicationJoin := &Join{Resource: "Medication", Reference: "medicationReference.reference", Key: "id", Path: "code"}

	tests := []struct {
		name  string
		table Table
		codes []string
		field string
	}{
		{
			name:  "unnormalized key",
			table: Table{"Patient": {"a.b": {Resource: "Patient", Path: "gender"}}},
			codes: []string{ErrMalformedPathKey},
			field: "Patient/a.b",
		},
		{
			name:  "unretrievable resource",
			table: Table{"Coding": {"code": {Resource: "Coding", Path: "code"}}},
			codes: []string{ErrUnretrievableResource},
			field: "Coding/code.resource",
		},
		{
			name:  "unknown resource",
			table: Table{"Nope": {"code": {Resource: "Nope"}}},
			codes: []string{ErrUnretrievableResource},
			field: "Nope/code.resource",
		},
		{
			name:  "unresolved path",
			table: Table{"Condition": {"code": {Resource: "Condition", Path: "nope"}}},
			codes: []string{ErrUnresolvedRecipePath},
			field: "Condition/code.path",
		},
		{
			name: "incomplete filter",
			table: Table{"Condition": {"code": {
				Resource: "Condition", Path: "code", Where: &TermFilter{Path: "clinicalStatus"},
			}}},
			codes: []string{ErrInvalidTermFilter},
			field: "Condition/code.where",
		},
		{
			name: "filter path unresolved",
			table: Table{"Condition": {"code": {
				Resource: "Condition", Path: "code", Codes: &TermFilter{Path: "nope", SystemURL: "u", SystemName: "n", Code: "c", Name: "c"},
			}}},
			codes: []string{ErrInvalidTermFilter},
			field: "Condition/code.codes.path",
		},
		{
			name: "join resource unknown",
			table: Table{"MedicationRequest": {"medication": {
				Resource: "MedicationRequest", Path: "medicationCodeableConcept",
				Join: &Join{Resource: "Nope", Reference: "medicationReference.reference", Key: "id", Path: "code"},
			}}},
			codes: []string{ErrInvalidJoin},
			field: "MedicationRequest/medication.join.resource",
		},
		{
			name: "join type mismatch",
			table: Table{"MedicationRequest": {"medication": {
				Resource: "MedicationRequest", Path: "medicationCodeableConcept",
				Join: &Join{Resource: "Medication", Reference: "medicationReference.reference", Key: "id", Path: "status"},
			}}},
			codes: []string{ErrInvalidJoin},
			field: "MedicationRequest/medication.join.path",
		},
		{
			name: "join key unresolved",
			table: Table{"MedicationRequest": {"medication": {
				Resource: "MedicationRequest", Path: "medicationCodeableConcept",
				Join: &Join{Resource: "Medication", Reference: "medicationReference.reference", Key: "nope", Path: "code"},
			}}},
			codes: []string{ErrInvalidJoin},
			field: "MedicationRequest/medication.join.key",
		},
		{
			name: "singleton join",
			table: Table{"MedicationRequest": {"medication": {
				Resource: "MedicationRequest", Path: "medicationCodeableConcept", Singleton: true, Join: medicationJoin,
			}}},
			codes: []string{ErrSingletonJoin},
			field: "MedicationRequest/medication.join",
		},
		{
			name: "valid filter",
			table: Table{"Condition": {"active/code": {
				Resource: "Condition", Path: "code", Where: complete,
			}}},
		},
	}

	model := testutil.Model(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTable(model, tt.table)
			if len(tt.codes) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.codes, validationCodes(errs))
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateTableCollectsAll(t *testing.T) {
	table := Table{
		"Condition": {"code": {Resource: "Condition", Path: "nope"}},
		"Coding":    {"code": {Resource: "Coding"}},
	}
	errs := ValidateTable(testutil.Model(t), table)
	assert.Equal(t, []string{ErrUnretrievableResource, ErrUnresolvedRecipePath}, validationCodes(errs))
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "Condition/code.path", Message: "bad", Code: ErrUnresolvedRecipePath}
	assert.Equal(t, "[E102] Condition/code.path: bad", e.Error())
}
