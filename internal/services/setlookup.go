package services

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cardworth/appraiser/internal/models"
)

// Set-name relevance scores. Exact beats substring beats mere presence.
const (
	setScoreExact    = 10
	setScoreContains = 6
	setScoreDefault  = 1
)

// SetLookupService resolves a free-text set name to the pricing provider's
// set identifier. Results are cached per (game, name); the sets catalog
// changes a few times a year at most.
type SetLookupService struct {
	pricing *JustTCGService
	cache   *lru.Cache[string, models.SetReference]
}

func NewSetLookupService(pricing *JustTCGService) *SetLookupService {
	cache, _ := lru.New[string, models.SetReference](128)
	return &SetLookupService{
		pricing: pricing,
		cache:   cache,
	}
}

// Resolve returns the best-scoring set for the given name, or nil when no
// name was supplied or the catalog had nothing. Callers treat nil as
// "proceed without set narrowing", never as an error.
func (s *SetLookupService) Resolve(ctx context.Context, game models.Game, setName string) (*models.SetReference, error) {
	setName = strings.TrimSpace(setName)
	if setName == "" {
		return nil, nil
	}

	key := string(game) + "|" + strings.ToLower(setName)
	if ref, ok := s.cache.Get(key); ok {
		return &ref, nil
	}

	sets, err := s.pricing.Sets(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("set lookup: %w", err)
	}
	if len(sets) == 0 {
		return nil, nil
	}

	best := sets[0]
	bestScore := 0
	for _, candidate := range sets {
		if score := ScoreSetMatch(setName, candidate.Name); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore == 0 {
		return nil, nil
	}

	s.cache.Add(key, best)
	return &best, nil
}

// ScoreSetMatch scores how well a catalog set name answers the query:
// exact match, substring containment in either direction, or mere presence.
func ScoreSetMatch(query, name string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case q == "" || n == "":
		return 0
	case q == n:
		return setScoreExact
	case strings.Contains(n, q) || strings.Contains(q, n):
		return setScoreContains
	default:
		return setScoreDefault
	}
}
