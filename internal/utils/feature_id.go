package utils

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/visionarieshub/portal-api/internal/constants"
)

var featureSuffixRe = regexp.MustCompile(`-(\d+)$`)

// ExtractFeatureNumber returns the trailing sequence number of a feature id.
// Example: SGAC-P1-5 -> 5, SP-P7-97 -> 97. Ids without a numeric suffix get
// a high sentinel so they sort after well-formed ones instead of failing.
func ExtractFeatureNumber(featureID string) int {
	match := featureSuffixRe.FindStringSubmatch(featureID)
	if len(match) == 2 {
		if num, err := strconv.Atoi(match[1]); err == nil {
			return num
		}
	}
	return constants.UnparseableFeatureNumber
}

// BuildFeatureID composes a feature id in the SIGLAS-P{phase}-{seq} format.
func BuildFeatureID(siglas string, phase, seq int) string {
	return fmt.Sprintf("%s-P%d-%d", siglas, phase, seq)
}

// BuildFolio composes a cotización folio, e.g. COT-2026-007.
func BuildFolio(year, seq int) string {
	return fmt.Sprintf("COT-%d-%03d", year, seq)
}
