package services

import (
	"math"

	"github.com/cardworth/appraiser/internal/models"
)

const (
	// DefaultFeeGBP is the grading fee assumed when the caller gives none.
	DefaultFeeGBP = 15.0

	// UpliftModelName labels the uplift curve in quote payloads.
	UpliftModelName = "conservative"

	// renormalizeTolerance: distributions already within 2% of summing to 1
	// are used as-is to avoid amplifying floating noise.
	renormalizeTolerance = 0.02
)

// upliftStep is one rung of the grade uplift curve: grades at or above Min
// (and below the next rung) multiply the raw price by Mult.
type upliftStep struct {
	Min  float64
	Mult float64
}

// upliftCurve is the monotonically increasing step function from grade to
// value multiplier, highest rung first.
var upliftCurve = []upliftStep{
	{Min: 10.0, Mult: 3.0},
	{Min: 9.5, Mult: 1.9},
	{Min: 9.0, Mult: 1.35},
	{Min: 8.5, Mult: 1.12},
	{Min: 8.0, Mult: 1.08},
	{Min: 0, Mult: 1.02},
}

// UpliftMultiplier returns the graded-value multiplier for a grade.
func UpliftMultiplier(grade float64) float64 {
	for _, step := range upliftCurve {
		if grade >= step.Min {
			return step.Mult
		}
	}
	return upliftCurve[len(upliftCurve)-1].Mult
}

// DefaultGradeDistribution is the symmetric distribution around grade 9.0
// substituted when the grading estimator supplied nothing.
func DefaultGradeDistribution() models.GradeDistribution {
	return models.GradeDistribution{
		{Grade: 8.0, Probability: 0.10},
		{Grade: 8.5, Probability: 0.20},
		{Grade: 9.0, Probability: 0.40},
		{Grade: 9.5, Probability: 0.20},
		{Grade: 10.0, Probability: 0.10},
	}
}

// NormalizeDistribution clamps negative probabilities and renormalizes the
// rest to sum to 1, skipping the division when the sum is already within
// tolerance. Empty or all-zero input becomes the default distribution.
func NormalizeDistribution(dist models.GradeDistribution) models.GradeDistribution {
	if len(dist) == 0 {
		return DefaultGradeDistribution()
	}

	out := make(models.GradeDistribution, 0, len(dist))
	total := 0.0
	for _, outcome := range dist {
		p := outcome.Probability
		if p < 0 {
			p = 0
		}
		out = append(out, models.GradeOutcome{Grade: outcome.Grade, Probability: p})
		total += p
	}
	if total <= 0 {
		return DefaultGradeDistribution()
	}
	if math.Abs(total-1) <= renormalizeTolerance {
		return out
	}
	for i := range out {
		out[i].Probability /= total
	}
	return out
}

// ExpectedGradedValue is the probability-weighted sum of uplifted prices
// across the distribution. The distribution must already be normalized.
func ExpectedGradedValue(rawPrice float64, dist models.GradeDistribution) float64 {
	ev := 0.0
	for _, outcome := range dist {
		ev += outcome.Probability * rawPrice * UpliftMultiplier(outcome.Grade)
	}
	return ev
}

// Convert routes an amount from one currency to another through the EUR
// base: source -> EUR -> target. Only EUR-based rates are held, so direct
// cross rates are never used. Returns false for unknown currencies or a
// nil snapshot.
func Convert(amount float64, from, to string, snap *ExchangeRateSnapshot) (float64, bool) {
	if snap == nil {
		return 0, false
	}
	fromRate, ok := eurRate(from, snap)
	if !ok {
		return 0, false
	}
	toRate, ok := eurRate(to, snap)
	if !ok {
		return 0, false
	}
	return amount / fromRate * toRate, true
}

// eurRate is the EUR->currency rate from the snapshot.
func eurRate(currency string, snap *ExchangeRateSnapshot) (float64, bool) {
	switch currency {
	case "EUR":
		return 1, true
	case "USD":
		return snap.USD, snap.USD > 0
	case "GBP":
		return snap.GBP, snap.GBP > 0
	default:
		return 0, false
	}
}

// BuildQuote assembles the full quote: expected graded value in the source
// currency, then raw/EV/fee converted into GBP, EUR and USD. With a nil
// snapshot the conversion block is omitted and the source-currency figures
// stand alone; an FX outage never blocks the underlying price.
func BuildQuote(sel *PriceSelection, currency string, dist models.GradeDistribution, feeGBP float64, snap *ExchangeRateSnapshot) models.PriceQuote {
	dist = NormalizeDistribution(dist)
	raw := sel.Variant.Price
	ev := ExpectedGradedValue(raw, dist)

	quote := models.PriceQuote{
		Source:      sel.Card.Ref.Provider,
		Raw:         round2(raw),
		Currency:    currency,
		EVGraded:    round2(ev),
		UpliftModel: UpliftModelName,
		Picked:      sel.Card.Ref,
	}

	if snap == nil {
		return quote
	}

	quote.FX = &models.FXRates{Base: snap.Base, GBP: snap.GBP, USD: snap.USD}
	converted := make(map[string]models.Money, 3)
	for _, target := range []string{"GBP", "EUR", "USD"} {
		rawConv, ok := Convert(raw, currency, target, snap)
		if !ok {
			continue
		}
		evConv, _ := Convert(ev, currency, target, snap)
		feeConv, _ := Convert(feeGBP, "GBP", target, snap)
		converted[target] = models.Money{
			Raw:      round2(rawConv),
			EVGraded: round2(evConv),
			Fee:      round2(feeConv),
		}
	}
	if len(converted) > 0 {
		quote.Converted = converted
	}
	return quote
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
