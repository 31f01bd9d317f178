package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardworth/appraiser/internal/models"
)

const scryfallBaseURL = "https://api.scryfall.com"

// Magic adapter confidence band. The higher value is used when the printing
// sits in the requested set.
const (
	scryfallBaseConfidence     = 0.65
	scryfallSetMatchConfidence = 0.70
)

// ScryfallService searches the Scryfall catalog for Magic printings.
type ScryfallService struct {
	client  *http.Client
	baseURL string
}

func NewScryfallService(baseURL string) *ScryfallService {
	if baseURL == "" {
		baseURL = scryfallBaseURL
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

type scryfallSearchResponse struct {
	Data       []scryfallCard `json:"data"`
	Object     string         `json:"object"`
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
}

type scryfallCard struct {
	ImageURIs    *scryfallImages `json:"image_uris"`
	CardFaces    []scryfallFace  `json:"card_faces"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SetName      string          `json:"set_name"`
	Set          string          `json:"set"`
	CollectorNum string          `json:"collector_number"`
	Lang         string          `json:"lang"`
	Finishes     []string        `json:"finishes"`
}

type scryfallImages struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type scryfallFace struct {
	ImageURIs *scryfallImages `json:"image_uris"`
}

func (s *ScryfallService) Game() models.Game {
	return models.GameMagic
}

// Search queries Scryfall once with a query combining exact name, set code
// and collector number filters, and maps every returned printing to a
// candidate. A 404 from Scryfall means no matches, not a failure.
func (s *ScryfallService) Search(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error) {
	query := buildScryfallQuery(identity)
	if query == "" {
		return []models.Candidate{}, nil
	}

	reqURL := fmt.Sprintf("%s/cards/search?q=%s", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search scryfall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []models.Candidate{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var searchResp scryfallSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}

	candidates := make([]models.Candidate, len(searchResp.Data))
	for i, sc := range searchResp.Data {
		candidates[i] = s.convertToCandidate(sc, identity)
	}
	return candidates, nil
}

// buildScryfallQuery combines the available identity fields into one Scryfall
// query string. unique:prints returns every printing across sets.
func buildScryfallQuery(identity models.ExtractedIdentity) string {
	var parts []string
	if identity.Name != "" {
		// Escape quotes for Scryfall query syntax.
		safeName := strings.ReplaceAll(identity.Name, `"`, `\"`)
		parts = append(parts, fmt.Sprintf(`!"%s"`, safeName))
	}
	if identity.SetCode != "" {
		parts = append(parts, "set:"+strings.ToLower(identity.SetCode))
	}
	if identity.CollectorNumber != "" {
		parts = append(parts, "cn:"+identity.CollectorNumber)
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, "unique:prints")
	return strings.Join(parts, " ")
}

func (s *ScryfallService) convertToCandidate(sc scryfallCard, identity models.ExtractedIdentity) models.Candidate {
	var imageURL string
	if sc.ImageURIs != nil {
		imageURL = sc.ImageURIs.Normal
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		imageURL = sc.CardFaces[0].ImageURIs.Normal
	}

	variant := "nonfoil"
	for _, finish := range sc.Finishes {
		if finish == "foil" || finish == "etched" {
			variant = "foil-available"
			break
		}
	}

	confidence := scryfallBaseConfidence
	if identity.SetCode != "" && strings.EqualFold(identity.SetCode, sc.Set) {
		confidence = scryfallSetMatchConfidence
	}

	return models.Candidate{
		Game:            models.GameMagic,
		Name:            sc.Name,
		DisplayName:     sc.Name,
		SetName:         sc.SetName,
		SetCode:         sc.Set,
		CollectorNumber: sc.CollectorNum,
		Variant:         variant,
		Language:        sc.Lang,
		Ref: models.CardRef{
			Provider: "scryfall",
			ID:       sc.ID,
			ImageURL: imageURL,
		},
		Confidence: confidence,
	}
}
