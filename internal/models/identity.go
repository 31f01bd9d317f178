package models

type Game string

const (
	GameMagic   Game = "magic"
	GamePokemon Game = "pokemon"
	GameYuGiOh  Game = "yugioh"
	GameUnknown Game = "unknown"
)

// ExtractedIdentity is the best-guess identity of a physical card as produced
// by the vision extractor. Any field other than Game may be empty; empty
// strings mean "not extracted".
type ExtractedIdentity struct {
	Game            Game    `json:"game"`
	Name            string  `json:"name,omitempty"`
	SetName         string  `json:"set,omitempty"`
	SetCode         string  `json:"set_code,omitempty"`
	CollectorNumber string  `json:"collector_number,omitempty"`
	Variant         string  `json:"variant,omitempty"`
	Language        string  `json:"language,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
}
