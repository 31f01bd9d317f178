package services

import (
	"strings"
	"testing"

	"github.com/cardworth/appraiser/internal/models"
)

func TestNormalizeGame(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Game
	}{
		{"magic", models.GameMagic},
		{"MTG", models.GameMagic},
		{"Magic: The Gathering", models.GameMagic},
		{"pokemon", models.GamePokemon},
		{"Pokémon", models.GamePokemon},
		{"yugioh", models.GameYuGiOh},
		{"Yu-Gi-Oh!", models.GameYuGiOh},
		{"  magic  ", models.GameMagic},
		{"", models.GameUnknown},
		{"digimon", models.GameUnknown},
		{"unknown", models.GameUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeGame(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeGame(%q) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeCollectorNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"11/108", "11"},
		{"4/102", "4"},
		{"11", "11"},
		{" 25/185 ", "25"},
		{"H4/H32", "H4"},
		{"/108", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeCollectorNumber(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeCollectorNumber(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdentity_NeverContainsSlash(t *testing.T) {
	inputs := []string{"11/108", "4/102", "H4/H32", "/", "1/", "plain"}
	for _, num := range inputs {
		normalized := NormalizeIdentity(models.ExtractedIdentity{CollectorNumber: num})
		if strings.Contains(normalized.CollectorNumber, "/") {
			t.Errorf("normalized collector number %q still contains a slash", normalized.CollectorNumber)
		}
	}
}

func TestNormalizeIdentity_Idempotent(t *testing.T) {
	raw := models.ExtractedIdentity{
		Game:            "MTG",
		Name:            "  Lightning Bolt ",
		SetName:         " Double Masters ",
		SetCode:         "2XM ",
		CollectorNumber: "117/384",
		Variant:         " foil ",
		Language:        " en ",
		Confidence:      0.8,
	}

	once := NormalizeIdentity(raw)
	twice := NormalizeIdentity(once)
	if once != twice {
		t.Errorf("NormalizeIdentity is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeIdentity_Fields(t *testing.T) {
	raw := models.ExtractedIdentity{
		Game:            "Pokemon",
		Name:            " Charizard ",
		CollectorNumber: "4/102",
	}

	normalized := NormalizeIdentity(raw)
	if normalized.Game != models.GamePokemon {
		t.Errorf("expected game pokemon, got %s", normalized.Game)
	}
	if normalized.Name != "Charizard" {
		t.Errorf("expected trimmed name, got %q", normalized.Name)
	}
	if normalized.CollectorNumber != "4" {
		t.Errorf("expected collector number 4, got %q", normalized.CollectorNumber)
	}
}
