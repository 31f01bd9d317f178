package models

// CardRef is a provider-specific canonical reference to a card.
type CardRef struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	ImageURL string `json:"image_url,omitempty"`
}

// Candidate is one provider's proposed match for an identity guess.
// Candidates are built per request, ranked, truncated and returned; they are
// never persisted.
type Candidate struct {
	Game            Game    `json:"game"`
	Name            string  `json:"name"`
	DisplayName     string  `json:"display_name,omitempty"`
	SetName         string  `json:"set_name,omitempty"`
	SetCode         string  `json:"set_code,omitempty"`
	CollectorNumber string  `json:"collector_number,omitempty"`
	Variant         string  `json:"variant,omitempty"`
	Language        string  `json:"language,omitempty"`
	Ref             CardRef `json:"ref"`
	Confidence      float64 `json:"confidence"`
}

// SetReference is a resolved provider set identifier plus its display name.
type SetReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
