package services

import (
	"math"
	"sort"
	"strings"

	"github.com/cardworth/appraiser/internal/models"
)

// Ranking weights for pricing-catalog hits. The ordering they encode
// (collector number beats name beats set) is product judgment and is pinned
// by tests; tune here, not in the ranking code.
const (
	weightNumberExact    = 200
	weightNumberPartial  = 80
	weightNumberMissing  = -40
	weightNameExact      = 120
	weightNameContains   = 70
	weightNameMiss       = -30
	weightSetExact       = 60
	weightSetContains    = 25
	weightHasVariants    = 10
	weightSealedPenalty  = -1000
	nearMintCondition    = "Near Mint"
	defaultPrintingLabel = "Normal"
)

// sealedPhrases match multi-word sealed-product names by substring.
var sealedPhrases = []string{
	"booster pack",
	"booster box",
	"booster bundle",
	"elite trainer box",
	"starter deck",
	"structure deck",
	"theme deck",
}

// sealedWords match single-word sealed markers on word boundaries, so that
// "Tin" is caught without excluding every Tina and Latios.
var sealedWords = []string{"tin", "blister", "bundle", "lot", "bulk"}

// PriceQuery is the desired card and variant for price selection.
type PriceQuery struct {
	Name      string
	SetName   string
	Number    string
	Printing  string
	Condition string
}

// PriceSelection is the chosen card and the single variant whose price will
// feed the valuation.
type PriceSelection struct {
	Card    models.PricedCard
	Variant models.Variant
}

// DesiredPrinting maps a free-text variant hint onto the pricing catalog's
// printing labels. Anything unrecognized is a normal (non-foil) printing.
func DesiredPrinting(variantHint string) string {
	hint := strings.ToLower(variantHint)
	switch {
	case strings.Contains(hint, "reverse"):
		return "Reverse Holofoil"
	case strings.Contains(hint, "holo"):
		return "Holofoil"
	case strings.Contains(hint, "foil"), strings.Contains(hint, "etched"):
		return "Foil"
	default:
		return defaultPrintingLabel
	}
}

// IsSealedProduct reports whether a listing name describes a sealed or
// otherwise non-single product.
func IsSealedProduct(name string) bool {
	lower := strings.ToLower(name)
	for _, phrase := range sealedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == '-' || r == ','
	}) {
		for _, sealed := range sealedWords {
			if word == sealed {
				return true
			}
		}
	}
	return false
}

// SelectPrice picks one variant price from the pricing-catalog hits:
// sealed products are excluded outright, survivors are narrowed by exact
// collector number and then by name containment (each only when the
// narrowing leaves something), the remainder ranked, and the winner's
// variant chosen by the precedence in pickVariant. Returns false when
// nothing yields a finite price.
func SelectPrice(cards []models.PricedCard, want PriceQuery) (*PriceSelection, bool) {
	singles := make([]models.PricedCard, 0, len(cards))
	for _, c := range cards {
		if IsSealedProduct(c.Name) {
			continue
		}
		singles = append(singles, c)
	}
	if len(singles) == 0 {
		return nil, false
	}

	if want.Number != "" {
		exact := make([]models.PricedCard, 0, len(singles))
		for _, c := range singles {
			if c.Number == want.Number {
				exact = append(exact, c)
			}
		}
		if len(exact) > 0 {
			singles = exact
		}
	}

	if want.Name != "" {
		named := make([]models.PricedCard, 0, len(singles))
		for _, c := range singles {
			if containsFold(c.Name, want.Name) {
				named = append(named, c)
			}
		}
		if len(named) > 0 {
			singles = named
		}
	}

	sort.SliceStable(singles, func(i, j int) bool {
		return scorePricedCard(singles[i], want) > scorePricedCard(singles[j], want)
	})

	for _, card := range singles {
		if variant, ok := pickVariant(card.Variants, want.Printing, want.Condition); ok {
			return &PriceSelection{Card: card, Variant: variant}, true
		}
	}
	return nil, false
}

// scorePricedCard ranks one catalog hit against the query. The sealed
// penalty stays even though sealed items were filtered above; it keeps a
// misclassified listing from ever outranking a real single.
func scorePricedCard(card models.PricedCard, want PriceQuery) int {
	score := 0

	if want.Number != "" {
		switch {
		case card.Number == want.Number:
			score += weightNumberExact
		case card.Number != "" && (strings.Contains(card.Number, want.Number) || strings.Contains(want.Number, card.Number)):
			score += weightNumberPartial
		case card.Number == "":
			score += weightNumberMissing
		}
	}

	if want.Name != "" {
		switch {
		case strings.EqualFold(card.Name, want.Name):
			score += weightNameExact
		case containsFold(card.Name, want.Name):
			score += weightNameContains
		default:
			score += weightNameMiss
		}
	}

	if want.SetName != "" {
		switch {
		case strings.EqualFold(card.SetName, want.SetName):
			score += weightSetExact
		case containsFold(card.SetName, want.SetName) || containsFold(want.SetName, card.SetName):
			score += weightSetContains
		}
	}

	if len(card.Variants) > 0 {
		score += weightHasVariants
	}
	if IsSealedProduct(card.Name) {
		score += weightSealedPenalty
	}
	return score
}

// pickVariant selects a price by precedence: printing+condition exact, then
// condition exact with any printing, then anything. Within a tier the lowest
// price wins; a single outlier high listing must not inflate the quote.
func pickVariant(variants []models.Variant, printing, condition string) (models.Variant, bool) {
	tiers := []func(v models.Variant) bool{
		func(v models.Variant) bool {
			return strings.EqualFold(v.Printing, printing) && strings.EqualFold(v.Condition, condition)
		},
		func(v models.Variant) bool {
			return strings.EqualFold(v.Condition, condition)
		},
		func(v models.Variant) bool { return true },
	}

	for _, match := range tiers {
		best := models.Variant{}
		found := false
		for _, v := range variants {
			if !match(v) || !isFinitePrice(v.Price) {
				continue
			}
			if !found || v.Price < best.Price {
				best = v
				found = true
			}
		}
		if found {
			return best, true
		}
	}
	return models.Variant{}, false
}

func isFinitePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
