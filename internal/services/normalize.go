package services

import (
	"strings"

	"github.com/cardworth/appraiser/internal/models"
)

// NormalizeGame maps free-text game labels onto the game enum. Anything
// unrecognized is unknown, which the resolver treats as "search everything".
func NormalizeGame(raw string) models.Game {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "magic", "mtg", "magic: the gathering", "magic the gathering":
		return models.GameMagic
	case "pokemon", "pokémon", "pokemon tcg", "ptcg":
		return models.GamePokemon
	case "yugioh", "yu-gi-oh", "yu-gi-oh!", "ygo":
		return models.GameYuGiOh
	default:
		return models.GameUnknown
	}
}

// NormalizeCollectorNumber strips the set-size suffix from a collector
// number: "11/108" becomes "11". Provider APIs index by the bare number.
func NormalizeCollectorNumber(raw string) string {
	number, _, _ := strings.Cut(strings.TrimSpace(raw), "/")
	return strings.TrimSpace(number)
}

// NormalizeIdentity trims and canonicalizes an extracted identity. It is
// pure and idempotent; every pipeline entry point runs it, so downstream
// code can assume normalized input.
func NormalizeIdentity(raw models.ExtractedIdentity) models.ExtractedIdentity {
	return models.ExtractedIdentity{
		Game:            NormalizeGame(string(raw.Game)),
		Name:            strings.TrimSpace(raw.Name),
		SetName:         strings.TrimSpace(raw.SetName),
		SetCode:         strings.TrimSpace(raw.SetCode),
		CollectorNumber: NormalizeCollectorNumber(raw.CollectorNumber),
		Variant:         strings.TrimSpace(raw.Variant),
		Language:        strings.TrimSpace(raw.Language),
		Confidence:      raw.Confidence,
	}
}
