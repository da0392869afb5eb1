package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	obj := Object{
		"type":  String("ValueSetRef"),
		"name":  String("Diabetes"),
		"codes": Array{String("44054006")},
	}

	a, err := Fingerprint(DomainExpression, obj)
	require.NoError(t, err)
	b, err := Fingerprint(DomainExpression, obj)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintDomainSeparation(t *testing.T) {
	obj := Object{"name": String("Same")}

	expr, err := Fingerprint(DomainExpression, obj)
	require.NoError(t, err)
	lib, err := Fingerprint(DomainLibrary, obj)
	require.NoError(t, err)

	assert.NotEqual(t, expr, lib)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a, err := Fingerprint(DomainExpression, Object{"value": Integer(1)})
	require.NoError(t, err)
	b, err := Fingerprint(DomainExpression, Object{"value": Integer(2)})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFingerprintKnownVector(t *testing.T) {
	// SHA256("d" || 0x00 || "null")
	got := hashWithDomain("d", []byte("null"))
	assert.Len(t, got, 64)
	assert.Equal(t, got, hashWithDomain("d", []byte("null")))
	assert.NotEqual(t, got, hashWithDomain("d", []byte("nul")))
}

func TestFingerprintError(t *testing.T) {
	_, err := Fingerprint(DomainExpression, Decimal("bad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), DomainExpression)
}
