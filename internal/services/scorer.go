package services

import (
	"strings"

	"github.com/cardworth/appraiser/internal/models"
)

// Confidence scoring. Each boost rewards agreement between an extracted
// identity field and a candidate; the increments are additive and the final
// score is clamped so it never reads as certainty.
const (
	baseConfidence = 0.5
	maxConfidence  = 0.99

	boostSetCodeExact     = 0.18
	boostNumberExact      = 0.20
	boostSetNameSubstring = 0.10
	boostVariantSubstring = 0.06
)

// BoostConfidence raises a candidate's provider confidence for every identity
// field it agrees with. A candidate with no provider confidence starts at the
// base. Empty identity fields contribute nothing; absence is not agreement.
func BoostConfidence(identity models.ExtractedIdentity, candidate models.Candidate) float64 {
	score := candidate.Confidence
	if score <= 0 {
		score = baseConfidence
	}

	if identity.SetCode != "" && candidate.SetCode != "" &&
		strings.EqualFold(identity.SetCode, candidate.SetCode) {
		score += boostSetCodeExact
	}
	if identity.CollectorNumber != "" && identity.CollectorNumber == candidate.CollectorNumber {
		score += boostNumberExact
	}
	if identity.SetName != "" && candidate.SetName != "" &&
		containsFold(candidate.SetName, identity.SetName) {
		score += boostSetNameSubstring
	}
	if identity.Variant != "" && candidate.Variant != "" &&
		containsFold(candidate.Variant, identity.Variant) {
		score += boostVariantSubstring
	}

	if score > maxConfidence {
		score = maxConfidence
	}
	if score < 0 {
		score = 0
	}
	return score
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
