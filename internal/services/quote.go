package services

import (
	"context"
	"log"

	"github.com/cardworth/appraiser/internal/metrics"
	"github.com/cardworth/appraiser/internal/models"
)

// QuoteService runs the pricing path: set lookup, pricing-catalog search,
// price selection and valuation. Every stage downstream of input validation
// degrades instead of failing: a missing set id widens the search, an FX
// outage drops the conversion block, and no live price is a nil quote.
type QuoteService struct {
	pricing *JustTCGService
	sets    *SetLookupService
	fx      *ExchangeRateService

	// defaultCurrency is assumed when the pricing provider does not declare
	// one. The provider's source history is inconsistent about this, so it
	// is configuration, not a constant.
	defaultCurrency string

	// defaultFeeGBP is charged when the caller supplies no fee.
	defaultFeeGBP float64
}

func NewQuoteService(pricing *JustTCGService, sets *SetLookupService, fx *ExchangeRateService, defaultCurrency string, defaultFeeGBP float64) *QuoteService {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	if defaultFeeGBP <= 0 {
		defaultFeeGBP = DefaultFeeGBP
	}
	return &QuoteService{
		pricing:         pricing,
		sets:            sets,
		fx:              fx,
		defaultCurrency: defaultCurrency,
		defaultFeeGBP:   defaultFeeGBP,
	}
}

// Quote prices a card under the given grade distribution. A nil quote with
// a nil error means no live price was found; the caller renders that as a
// manual-override result, not a failure.
func (s *QuoteService) Quote(ctx context.Context, card models.ExtractedIdentity, dist models.GradeDistribution, feeGBP float64) (*models.PriceQuote, error) {
	identity := NormalizeIdentity(card)
	if feeGBP <= 0 {
		feeGBP = s.defaultFeeGBP
	}

	var setID string
	setRef, err := s.sets.Resolve(ctx, identity.Game, identity.SetName)
	if err != nil {
		log.Printf("[Quote] set lookup failed, searching without set id: %v", err)
	} else if setRef != nil {
		setID = setRef.ID
	}

	cards, err := s.pricing.SearchPriced(ctx, identity.Game, identity.Name, setID, identity.SetName, identity.CollectorNumber)
	if err != nil {
		log.Printf("[Quote] pricing search failed: %v", err)
		metrics.ProviderErrorsTotal.WithLabelValues("justtcg").Inc()
		cards = nil
	}

	want := PriceQuery{
		Name:      identity.Name,
		SetName:   identity.SetName,
		Number:    identity.CollectorNumber,
		Printing:  DesiredPrinting(identity.Variant),
		Condition: nearMintCondition,
	}
	sel, ok := SelectPrice(cards, want)
	if !ok {
		metrics.QuotesTotal.WithLabelValues("no_price").Inc()
		return nil, nil
	}

	currency := sel.Variant.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	snap, err := s.fx.Rates(ctx)
	if err != nil {
		log.Printf("[Quote] exchange rates unavailable, quoting in %s only: %v", currency, err)
		snap = nil
	}

	quote := BuildQuote(sel, currency, dist, feeGBP, snap)
	metrics.QuotesTotal.WithLabelValues("priced").Inc()
	return &quote, nil
}
