package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cardworth/appraiser/internal/models"
)

func TestYGOSetCodeMatches(t *testing.T) {
	tests := []struct {
		name      string
		printCode string
		wanted    string
		expected  bool
	}{
		{"exact match", "LOB-EN001", "LOB-EN001", true},
		{"exact match case insensitive", "lob-en001", "LOB-EN001", true},
		{"bare prefix matches print", "LOB-EN001", "LOB", true},
		{"bare prefix case insensitive", "LOB-EN001", "lob", true},
		{"different set", "MRD-EN001", "LOB", false},
		{"prefix without dash in print", "LOB", "LOB-EN001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ygoSetCodeMatches(tt.printCode, tt.wanted); got != tt.expected {
				t.Errorf("ygoSetCodeMatches(%q, %q) = %v, want %v", tt.printCode, tt.wanted, got, tt.expected)
			}
		})
	}
}

func TestYGOProDeck_SearchByName(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"data":[
			{"id":89631139,"name":"Blue-Eyes White Dragon","card_sets":[
				{"set_name":"Legend of Blue Eyes White Dragon","set_code":"LOB-001","set_rarity":"Ultra Rare"},
				{"set_name":"Starter Deck: Kaiba","set_code":"SDK-001","set_rarity":"Ultra Rare"}
			],"card_images":[{"image_url":"https://img/bewd.jpg","image_url_small":"https://img/bewd-small.jpg"}]}
		]}`))
	}))
	defer server.Close()

	service := NewYGOProDeckService(server.URL)
	identity := models.ExtractedIdentity{Name: "Blue-Eyes", SetCode: "SDK"}
	candidates, err := service.Search(context.Background(), identity)
	if err != nil {
		t.Fatalf("expected candidates, got error: %v", err)
	}
	if query != "fname=Blue-Eyes" {
		t.Errorf("expected fuzzy name query, got %q", query)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Game != models.GameYuGiOh {
		t.Errorf("expected yugioh game, got %s", c.Game)
	}
	// The SDK print is selected over the first-listed LOB print.
	if c.SetCode != "SDK-001" {
		t.Errorf("expected SDK-001 print selected, got %s", c.SetCode)
	}
	if c.Variant != "Ultra Rare" {
		t.Errorf("expected rarity as variant, got %s", c.Variant)
	}
	if c.Confidence != ygoSetMatchConfidence {
		t.Errorf("expected confidence %v, got %v", ygoSetMatchConfidence, c.Confidence)
	}
	if c.Ref.Provider != "ygoprodeck" || c.Ref.ID != "89631139" {
		t.Errorf("unexpected ref: %+v", c.Ref)
	}
	if c.Ref.ImageURL != "https://img/bewd-small.jpg" {
		t.Errorf("expected small image url, got %s", c.Ref.ImageURL)
	}
}

func TestYGOProDeck_FirstPrintWhenNoSetCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":46986414,"name":"Dark Magician","card_sets":[
				{"set_name":"Legend of Blue Eyes White Dragon","set_code":"LOB-005","set_rarity":"Ultra Rare"},
				{"set_name":"Starter Deck: Yugi","set_code":"SDY-006","set_rarity":"Ultra Rare"}
			],"card_images":[]}
		]}`))
	}))
	defer server.Close()

	service := NewYGOProDeckService(server.URL)
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{Name: "Dark Magician"})
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].SetCode != "LOB-005" {
		t.Errorf("expected first print LOB-005, got %s", candidates[0].SetCode)
	}
	if candidates[0].Confidence != ygoBaseConfidence {
		t.Errorf("expected confidence %v, got %v", ygoBaseConfidence, candidates[0].Confidence)
	}
}

func TestYGOProDeck_SetQueryWithoutName(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	service := NewYGOProDeckService(server.URL)
	if _, err := service.Search(context.Background(), models.ExtractedIdentity{SetCode: "LOB"}); err != nil {
		t.Fatal(err)
	}
	if query != "cardset=LOB" {
		t.Errorf("expected cardset query, got %q", query)
	}
}

func TestYGOProDeck_BadRequestIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No card matching your query was found in the database."}`))
	}))
	defer server.Close()

	service := NewYGOProDeckService(server.URL)
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{Name: "Nonexistent"})
	if err != nil {
		t.Fatalf("400 should not be an error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestYGOProDeck_EmptyIdentitySkipsRequest(t *testing.T) {
	service := NewYGOProDeckService("http://127.0.0.1:1")
	candidates, err := service.Search(context.Background(), models.ExtractedIdentity{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}
