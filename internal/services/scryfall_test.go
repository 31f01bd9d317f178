package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cardworth/appraiser/internal/models"
)

func TestBuildScryfallQuery(t *testing.T) {
	tests := []struct {
		name     string
		identity models.ExtractedIdentity
		expected string
	}{
		{
			name:     "name only",
			identity: models.ExtractedIdentity{Name: "Lightning Bolt"},
			expected: `!"Lightning Bolt" unique:prints`,
		},
		{
			name:     "name with set and number",
			identity: models.ExtractedIdentity{Name: "Lightning Bolt", SetCode: "LEA", CollectorNumber: "161"},
			expected: `!"Lightning Bolt" set:lea cn:161 unique:prints`,
		},
		{
			name:     "set code only",
			identity: models.ExtractedIdentity{SetCode: "NEO"},
			expected: `set:neo unique:prints`,
		},
		{
			name:     "quotes escaped",
			identity: models.ExtractedIdentity{Name: `Borrowing 100,000 "Arrows"`},
			expected: `!"Borrowing 100,000 \"Arrows\"" unique:prints`,
		},
		{
			name:     "empty identity",
			identity: models.ExtractedIdentity{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildScryfallQuery(tt.identity); got != tt.expected {
				t.Errorf("buildScryfallQuery() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestScryfall_SearchMapsPrintings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"list","total_cards":2,"data":[
			{"id":"abc","name":"Lightning Bolt","set_name":"Limited Edition Alpha","set":"lea","collector_number":"161","lang":"en","finishes":["nonfoil"],"image_uris":{"normal":"https://img/bolt.jpg"}},
			{"id":"def","name":"Lightning Bolt","set_name":"Masters 25","set":"a25","collector_number":"141","lang":"en","finishes":["nonfoil","foil"]}
		]}`))
	}))
	defer server.Close()

	service := NewScryfallService(server.URL)
	identity := models.ExtractedIdentity{Name: "Lightning Bolt", SetCode: "LEA"}
	candidates, err := service.Search(context.Background(), identity)
	if err != nil {
		t.Fatalf("expected candidates, got error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	alpha := candidates[0]
	if alpha.Game != models.GameMagic {
		t.Errorf("expected magic game, got %s", alpha.Game)
	}
	if alpha.Ref.Provider != "scryfall" || alpha.Ref.ID != "abc" {
		t.Errorf("unexpected ref: %+v", alpha.Ref)
	}
	if alpha.Ref.ImageURL != "https://img/bolt.jpg" {
		t.Errorf("expected image url, got %s", alpha.Ref.ImageURL)
	}
	if alpha.Variant != "nonfoil" {
		t.Errorf("expected nonfoil variant, got %s", alpha.Variant)
	}
	// Set matches the requested code, so the higher band applies.
	if alpha.Confidence != scryfallSetMatchConfidence {
		t.Errorf("expected confidence %v, got %v", scryfallSetMatchConfidence, alpha.Confidence)
	}

	masters := candidates[1]
	if masters.Variant != "foil-available" {
		t.Errorf("expected foil-available variant, got %s", masters.Variant)
	}
	if masters.Confidence != scryfallBaseConfidence {
		t.Errorf("expected confidence %v, got %v", scryfallBaseConfidence, masters.Confidence)
	}
}

func TestScryfall_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","code":"not_found"}`))
	}))
	defer server.Close()

	service := NewScryfallService(server.URL)
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{Name: "Nonexistent Card"})
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestScryfall_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewScryfallService(server.URL)
	if _, err := service.Search(context.Background(), models.ExtractedIdentity{Name: "Lightning Bolt"}); err == nil {
		t.Error("expected error on 500")
	}
}

func TestScryfall_EmptyIdentitySkipsRequest(t *testing.T) {
	service := NewScryfallService("http://127.0.0.1:1")
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestScryfall_DoubleFacedCardImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"list","total_cards":1,"data":[
			{"id":"dfc","name":"Delver of Secrets // Insectile Aberration","set_name":"Innistrad","set":"isd","collector_number":"51","lang":"en","finishes":["nonfoil"],"card_faces":[{"image_uris":{"normal":"https://img/front.jpg"}},{"image_uris":{"normal":"https://img/back.jpg"}}]}
		]}`))
	}))
	defer server.Close()

	service := NewScryfallService(server.URL)
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{Name: "Delver of Secrets"})
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Ref.ImageURL != "https://img/front.jpg" {
		t.Errorf("expected front face image, got %s", candidates[0].Ref.ImageURL)
	}
}
