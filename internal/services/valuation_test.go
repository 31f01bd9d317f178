package services

import (
	"math"
	"testing"

	"github.com/cardworth/appraiser/internal/models"
)

func TestUpliftMultiplier_PinnedValues(t *testing.T) {
	tests := []struct {
		grade    float64
		expected float64
	}{
		{1, 1.02},
		{7.5, 1.02},
		{8.0, 1.08},
		{8.4, 1.08},
		{8.5, 1.12},
		{8.9, 1.12},
		{9.0, 1.35},
		{9.4, 1.35},
		{9.5, 1.9},
		{9.9, 1.9},
		{10, 3.0},
	}

	for _, tt := range tests {
		if result := UpliftMultiplier(tt.grade); result != tt.expected {
			t.Errorf("UpliftMultiplier(%v) = %v, want %v", tt.grade, result, tt.expected)
		}
	}
}

func TestUpliftMultiplier_Monotonic(t *testing.T) {
	prev := 0.0
	for grade := 1.0; grade <= 10.0; grade += 0.5 {
		mult := UpliftMultiplier(grade)
		if mult < prev {
			t.Errorf("uplift not monotonic at grade %v: %v < %v", grade, mult, prev)
		}
		prev = mult
	}
}

func TestNormalizeDistribution_SumsToOne(t *testing.T) {
	tests := []struct {
		name string
		dist models.GradeDistribution
	}{
		{"unnormalized", models.GradeDistribution{{Grade: 9, Probability: 2}, {Grade: 10, Probability: 6}}},
		{"negative clamped", models.GradeDistribution{{Grade: 8, Probability: -1}, {Grade: 9, Probability: 0.5}}},
		{"already normalized", models.GradeDistribution{{Grade: 9, Probability: 0.6}, {Grade: 10, Probability: 0.4}}},
		{"empty gets default", nil},
		{"all zero gets default", models.GradeDistribution{{Grade: 9, Probability: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized := NormalizeDistribution(tt.dist)
			total := 0.0
			for _, outcome := range normalized {
				if outcome.Probability < 0 {
					t.Errorf("negative probability %v after normalization", outcome.Probability)
				}
				total += outcome.Probability
			}
			if math.Abs(total-1) > 1e-6 {
				t.Errorf("probabilities sum to %v, want 1", total)
			}
		})
	}
}

func TestNormalizeDistribution_SkipsNearOne(t *testing.T) {
	// Within 2% of 1 the distribution is used as-is.
	dist := models.GradeDistribution{{Grade: 9, Probability: 0.99}}
	normalized := NormalizeDistribution(dist)
	if normalized[0].Probability != 0.99 {
		t.Errorf("expected 0.99 untouched, got %v", normalized[0].Probability)
	}
}

func TestExpectedGradedValue_SingleGrade(t *testing.T) {
	// raw=100 at certain grade 9 -> 100 * 1.35 = 135.
	dist := models.GradeDistribution{{Grade: 9, Probability: 1}}
	ev := ExpectedGradedValue(100, dist)
	if math.Abs(ev-135) > 1e-9 {
		t.Errorf("expected EV 135, got %v", ev)
	}
}

func TestExpectedGradedValue_WeightedMix(t *testing.T) {
	dist := models.GradeDistribution{
		{Grade: 9, Probability: 0.5},
		{Grade: 10, Probability: 0.5},
	}
	ev := ExpectedGradedValue(100, dist)
	expected := 0.5*135 + 0.5*300
	if math.Abs(ev-expected) > 1e-9 {
		t.Errorf("expected EV %v, got %v", expected, ev)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	snap := &ExchangeRateSnapshot{Base: "EUR", USD: 1.0842, GBP: 0.8561}
	currencies := []string{"EUR", "GBP", "USD"}

	for _, from := range currencies {
		for _, to := range currencies {
			out, ok := Convert(123.45, from, to, snap)
			if !ok {
				t.Fatalf("Convert(%s, %s) failed", from, to)
			}
			back, ok := Convert(out, to, from, snap)
			if !ok {
				t.Fatalf("Convert(%s, %s) failed", to, from)
			}
			if math.Abs(back-123.45) > 1e-9 {
				t.Errorf("round trip %s->%s->%s = %v, want 123.45", from, to, from, back)
			}
		}
	}
}

func TestConvert_RoutesThroughEUR(t *testing.T) {
	snap := &ExchangeRateSnapshot{Base: "EUR", USD: 2, GBP: 0.5}
	// 10 USD -> 5 EUR -> 2.5 GBP
	out, ok := Convert(10, "USD", "GBP", snap)
	if !ok {
		t.Fatal("conversion failed")
	}
	if math.Abs(out-2.5) > 1e-9 {
		t.Errorf("expected 2.5, got %v", out)
	}
}

func TestConvert_NilSnapshot(t *testing.T) {
	if _, ok := Convert(10, "USD", "GBP", nil); ok {
		t.Error("expected conversion to fail with nil snapshot")
	}
}

func TestBuildQuote_WithRates(t *testing.T) {
	sel := &PriceSelection{
		Card: models.PricedCard{
			Name: "Charizard",
			Ref:  models.CardRef{Provider: "justtcg", ID: "pokemon-base-set-charizard-4"},
		},
		Variant: models.Variant{Printing: "Holofoil", Condition: "Near Mint", Price: 100},
	}
	snap := &ExchangeRateSnapshot{Base: "EUR", USD: 2, GBP: 0.5}
	dist := models.GradeDistribution{{Grade: 9, Probability: 1}}

	quote := BuildQuote(sel, "USD", dist, 15, snap)

	if quote.Raw != 100 {
		t.Errorf("expected raw 100, got %v", quote.Raw)
	}
	if quote.EVGraded != 135 {
		t.Errorf("expected evGraded 135, got %v", quote.EVGraded)
	}
	if quote.UpliftModel != "conservative" {
		t.Errorf("expected conservative uplift model, got %s", quote.UpliftModel)
	}
	if quote.FX == nil || quote.FX.Base != "EUR" {
		t.Fatal("expected EUR-based fx block")
	}

	eur, ok := quote.Converted["EUR"]
	if !ok {
		t.Fatal("expected EUR conversion")
	}
	if eur.Raw != 50 { // 100 USD / 2
		t.Errorf("expected 50 EUR raw, got %v", eur.Raw)
	}
	gbp, ok := quote.Converted["GBP"]
	if !ok {
		t.Fatal("expected GBP conversion")
	}
	if gbp.Raw != 25 { // 100 USD -> 50 EUR -> 25 GBP
		t.Errorf("expected 25 GBP raw, got %v", gbp.Raw)
	}
	if gbp.Fee != 15 { // fee is already GBP
		t.Errorf("expected fee 15 GBP, got %v", gbp.Fee)
	}
}

func TestBuildQuote_WithoutRates(t *testing.T) {
	sel := &PriceSelection{
		Card:    models.PricedCard{Name: "Charizard", Ref: models.CardRef{Provider: "justtcg"}},
		Variant: models.Variant{Price: 100},
	}
	dist := models.GradeDistribution{{Grade: 9, Probability: 1}}

	quote := BuildQuote(sel, "USD", dist, 15, nil)

	if quote.Raw != 100 || quote.EVGraded != 135 {
		t.Errorf("expected raw/EV in source currency, got %v/%v", quote.Raw, quote.EVGraded)
	}
	if quote.FX != nil {
		t.Error("expected no fx block without rates")
	}
	if quote.Converted != nil {
		t.Error("expected no conversions without rates")
	}
}
