package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cardworth/appraiser/internal/metrics"
)

const (
	ecbRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

	// fxSnapshotTTL is how long a fetched rate pair stays usable. The feed
	// updates once per business day, so hours of staleness are fine.
	fxSnapshotTTL = 12 * time.Hour

	// fxFallbackTTL is how long fallback rates are served after a fetch
	// failure before the feed is tried again. Keeps outage-mode quotes from
	// paying the full fetch timeout on every request.
	fxFallbackTTL = 5 * time.Minute
)

// ExchangeRateSnapshot is the EUR-based rate pair used for all conversions.
type ExchangeRateSnapshot struct {
	Base      string    `json:"base"`
	USD       float64   `json:"USD"`
	GBP       float64   `json:"GBP"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the snapshot is still inside the TTL window.
func (s *ExchangeRateSnapshot) Fresh(now time.Time) bool {
	return s != nil && now.Sub(s.FetchedAt) < fxSnapshotTTL
}

// ExchangeRateService holds the process-wide exchange rate snapshot.
// The mutex guards only snapshot reads and writes, never the fetch itself;
// two requests racing past an expired snapshot both refresh, and the last
// write wins. A redundant fetch per 12 hours is cheaper than serializing.
type ExchangeRateService struct {
	client      *http.Client
	url         string
	fallbackUSD float64
	fallbackGBP float64

	mu           sync.RWMutex
	snapshot     *ExchangeRateSnapshot
	fallbackSnap *ExchangeRateSnapshot
	fallbackAt   time.Time
}

func NewExchangeRateService(ratesURL string, fallbackUSD, fallbackGBP float64) *ExchangeRateService {
	if ratesURL == "" {
		ratesURL = ecbRatesURL
	}
	return &ExchangeRateService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		url:         ratesURL,
		fallbackUSD: fallbackUSD,
		fallbackGBP: fallbackGBP,
	}
}

// Rates returns the cached snapshot when fresh, refreshing it otherwise.
// On fetch failure the configured fallback pair is used when present, and
// reused for a short window so an outage does not stall every request on
// the fetch timeout; with no fallback the error propagates and pricing
// proceeds unconverted.
func (s *ExchangeRateService) Rates(ctx context.Context) (*ExchangeRateSnapshot, error) {
	now := time.Now()

	s.mu.RLock()
	snap := s.snapshot
	fallback := s.fallbackSnap
	fallbackAt := s.fallbackAt
	s.mu.RUnlock()
	if snap.Fresh(now) {
		metrics.FXSnapshotAge.Set(now.Sub(snap.FetchedAt).Seconds())
		return snap, nil
	}
	// A recent failure already put us in fallback mode; skip the fetch until
	// the retry window passes.
	if fallback != nil && now.Sub(fallbackAt) < fxFallbackTTL {
		return fallback, nil
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		if s.fallbackUSD > 0 && s.fallbackGBP > 0 {
			log.Printf("[FX] fetch failed, using fallback rates: %v", err)
			metrics.FXRefreshesTotal.WithLabelValues("fallback").Inc()
			fallback = &ExchangeRateSnapshot{
				Base: "EUR",
				USD:  s.fallbackUSD,
				GBP:  s.fallbackGBP,
			}
			s.mu.Lock()
			s.fallbackSnap = fallback
			s.fallbackAt = now
			s.mu.Unlock()
			return fallback, nil
		}
		metrics.FXRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = fetched
	s.fallbackSnap = nil
	s.mu.Unlock()

	metrics.FXRefreshesTotal.WithLabelValues("ok").Inc()
	metrics.FXSnapshotAge.Set(0)
	return fetched, nil
}

// Snapshot returns the current snapshot without triggering a refresh.
// Nil means no successful fetch has happened yet.
func (s *ExchangeRateService) Snapshot() *ExchangeRateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// fetch pulls the EUR-based daily reference table and extracts the USD and
// GBP rates from its currency/rate attribute pairs.
func (s *ExchangeRateService) fetch(ctx context.Context) (*ExchangeRateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate feed returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exchange rate table: %w", err)
	}

	snap := &ExchangeRateSnapshot{Base: "EUR", FetchedAt: time.Now()}
	doc.Find("cube[currency]").Each(func(_ int, sel *goquery.Selection) {
		currency, _ := sel.Attr("currency")
		rateStr, _ := sel.Attr("rate")
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || rate <= 0 {
			return
		}
		switch currency {
		case "USD":
			snap.USD = rate
		case "GBP":
			snap.GBP = rate
		}
	})

	if snap.USD == 0 || snap.GBP == 0 {
		return nil, fmt.Errorf("exchange rate table missing USD or GBP rate")
	}
	return snap, nil
}
