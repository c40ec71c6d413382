package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/visionarieshub/portal-api/internal/constants"
)

func TestExtractFeatureNumber(t *testing.T) {
	assert.Equal(t, 3, ExtractFeatureNumber("SP-P7-3"))
	assert.Equal(t, 10, ExtractFeatureNumber("SP-P7-10"))
	assert.Equal(t, 97, ExtractFeatureNumber("AU-P1-97"))
}

func TestExtractFeatureNumber_MalformedIDsGetSentinel(t *testing.T) {
	assert.Equal(t, constants.UnparseableFeatureNumber, ExtractFeatureNumber("SP-P7"))
	assert.Equal(t, constants.UnparseableFeatureNumber, ExtractFeatureNumber("legacy-id-abc"))
	assert.Equal(t, constants.UnparseableFeatureNumber, ExtractFeatureNumber(""))
}

func TestBuildFeatureID(t *testing.T) {
	assert.Equal(t, "SP-P7-12", BuildFeatureID("SP", 7, 12))
	assert.Equal(t, "AU-P1-1", BuildFeatureID("AU", 1, 1))
}

func TestBuildFolio(t *testing.T) {
	assert.Equal(t, "COT-2025-001", BuildFolio(2025, 1))
	assert.Equal(t, "COT-2025-042", BuildFolio(2025, 42))
	assert.Equal(t, "COT-2026-120", BuildFolio(2026, 120))
}
