package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cardworth/appraiser/internal/metrics"
	"github.com/cardworth/appraiser/internal/models"
)

const (
	justTCGBaseURL        = "https://api.justtcg.com/v1"
	justTCGDefaultTimeout = 10 * time.Second
)

// JustTCGService handles API calls to the pricing catalog. Requests are
// paced with a token bucket and capped by a daily quota.
type JustTCGService struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	dailyLimit int
	limiter    *rate.Limiter

	// Daily quota tracking
	mu             sync.Mutex
	requestsToday  int
	lastRequestDay time.Time
}

// justTCGSearchResponse is the pricing API's card search envelope.
type justTCGSearchResponse struct {
	Success bool          `json:"success"`
	Data    []justTCGCard `json:"data"`
	Error   string        `json:"error,omitempty"`
}

type justTCGCard struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Game     string           `json:"game"`
	SetName  string           `json:"set"`
	SetCode  string           `json:"set_code,omitempty"`
	Number   string           `json:"number,omitempty"`
	Variants []justTCGVariant `json:"variants"`
}

type justTCGVariant struct {
	ID        string  `json:"id,omitempty"`
	Condition string  `json:"condition"`
	Printing  string  `json:"printing"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
}

type justTCGSetsResponse struct {
	Success bool         `json:"success"`
	Data    []justTCGSet `json:"data"`
	Error   string       `json:"error,omitempty"`
}

type justTCGSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewJustTCGService creates a new pricing API client.
func NewJustTCGService(baseURL, apiKey string, dailyLimit int) *JustTCGService {
	if baseURL == "" {
		baseURL = justTCGBaseURL
	}
	if dailyLimit <= 0 {
		dailyLimit = 100 // Default free tier limit
	}

	return &JustTCGService{
		client: &http.Client{
			Timeout: justTCGDefaultTimeout,
		},
		apiKey:     apiKey,
		baseURL:    baseURL,
		dailyLimit: dailyLimit,
		// Burst covers one full quote: a sets call plus every ladder rung.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// checkDailyLimit checks if we can make another request today.
func (s *JustTCGService) checkDailyLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		s.requestsToday = 0
		s.lastRequestDay = today
	}

	if s.requestsToday >= s.dailyLimit {
		return false
	}

	s.requestsToday++
	metrics.PricingQuotaRemaining.Set(float64(s.dailyLimit - s.requestsToday))
	return true
}

// GetRequestsRemaining returns the number of requests remaining today.
func (s *JustTCGService) GetRequestsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		return s.dailyLimit
	}

	remaining := s.dailyLimit - s.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetDailyLimit returns the configured daily limit.
func (s *JustTCGService) GetDailyLimit() int {
	return s.dailyLimit
}

// GetResetTime returns the next daily quota reset (midnight local time).
func (s *JustTCGService) GetResetTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

// priceQuery is one rung of the fallback ladder: a label for diagnostics and
// the query parameters to try.
type priceQuery struct {
	label  string
	params url.Values
}

// buildQueryLadder returns the ordered list of increasingly loose queries:
// set+number, set+name, name+set text, name only. Rungs whose inputs are
// missing are skipped.
func buildQueryLadder(game models.Game, name, setID, setText, number string) []priceQuery {
	gameParam := pricingGameParam(game)
	var ladder []priceQuery

	add := func(label string, build func(url.Values)) {
		params := url.Values{}
		params.Set("game", gameParam)
		build(params)
		ladder = append(ladder, priceQuery{label: label, params: params})
	}

	if setID != "" && number != "" {
		add("set+number", func(p url.Values) {
			p.Set("set", setID)
			p.Set("number", number)
		})
	}
	if setID != "" && name != "" {
		add("set+name", func(p url.Values) {
			p.Set("set", setID)
			p.Set("name", name)
		})
	}
	if name != "" && setText != "" {
		add("name+settext", func(p url.Values) {
			p.Set("name", name)
			p.Set("set", setText)
		})
	}
	if name != "" {
		add("name", func(p url.Values) {
			p.Set("name", name)
		})
	}
	return ladder
}

// pricingGameParam maps the game enum onto the pricing API's game slug.
func pricingGameParam(game models.Game) string {
	switch game {
	case models.GameMagic:
		return "mtg"
	case models.GameYuGiOh:
		return "yugioh"
	default:
		return "pokemon"
	}
}

// SearchPriced walks the query ladder and stops at the first rung that
// returns results. Every rung counts against the daily quota; rungs after a
// hit are never issued.
func (s *JustTCGService) SearchPriced(ctx context.Context, game models.Game, name, setID, setText, number string) ([]models.PricedCard, error) {
	ladder := buildQueryLadder(game, name, setID, setText, number)
	if len(ladder) == 0 {
		return []models.PricedCard{}, nil
	}

	var lastErr error
	for _, q := range ladder {
		cards, err := s.searchCards(ctx, q.params)
		if err != nil {
			lastErr = fmt.Errorf("%s query: %w", q.label, err)
			continue
		}
		if len(cards) > 0 {
			return cards, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return []models.PricedCard{}, nil
}

func (s *JustTCGService) searchCards(ctx context.Context, params url.Values) ([]models.PricedCard, error) {
	body, err := s.get(ctx, "/cards", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var searchResp justTCGSearchResponse
	if err := json.NewDecoder(body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !searchResp.Success {
		if searchResp.Error != "" {
			return nil, fmt.Errorf("pricing API error: %s", searchResp.Error)
		}
		return nil, fmt.Errorf("pricing API returned unsuccessful response")
	}

	cards := make([]models.PricedCard, len(searchResp.Data))
	for i, c := range searchResp.Data {
		cards[i] = convertPricedCard(c)
	}
	return cards, nil
}

// Sets lists the pricing catalog's sets for a game, for set-id resolution.
func (s *JustTCGService) Sets(ctx context.Context, game models.Game) ([]models.SetReference, error) {
	params := url.Values{}
	params.Set("game", pricingGameParam(game))

	body, err := s.get(ctx, "/sets", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var setsResp justTCGSetsResponse
	if err := json.NewDecoder(body).Decode(&setsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !setsResp.Success {
		if setsResp.Error != "" {
			return nil, fmt.Errorf("pricing API error: %s", setsResp.Error)
		}
		return nil, fmt.Errorf("pricing API returned unsuccessful response")
	}

	sets := make([]models.SetReference, len(setsResp.Data))
	for i, st := range setsResp.Data {
		sets[i] = models.SetReference{ID: st.ID, Name: st.Name}
	}
	return sets, nil
}

func (s *JustTCGService) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	if !s.checkDailyLimit() {
		return nil, fmt.Errorf("pricing API daily rate limit exceeded")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues("justtcg").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("pricing API request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("pricing API returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func convertPricedCard(c justTCGCard) models.PricedCard {
	variants := make([]models.Variant, len(c.Variants))
	for i, v := range c.Variants {
		variants[i] = models.Variant{
			ID:        v.ID,
			Printing:  v.Printing,
			Condition: v.Condition,
			Price:     v.Price,
			Currency:  v.Currency,
		}
	}
	return models.PricedCard{
		Name:    c.Name,
		SetName: c.SetName,
		SetCode: c.SetCode,
		Number:  c.Number,
		Ref: models.CardRef{
			Provider: "justtcg",
			ID:       c.ID,
		},
		Variants: variants,
	}
}
