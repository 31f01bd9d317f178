package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cardworth/appraiser/internal/metrics"
	"github.com/cardworth/appraiser/internal/models"
)

const (
	// maxCandidates bounds the ranked result set returned to callers.
	maxCandidates = 6

	// adapterTimeout caps every catalog call; a slow provider contributes
	// nothing rather than stalling the request.
	adapterTimeout = 10 * time.Second
)

// CardSearcher is the uniform adapter contract: one bounded-time search per
// identity guess. "No results" is an empty slice; an error means the provider
// was unreachable or returned garbage and the resolver treats it as an empty
// contribution.
type CardSearcher interface {
	Game() models.Game
	Search(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error)
}

// Resolver orchestrates the game adapters: a single adapter when the game is
// known, all of them concurrently when it is not.
type Resolver struct {
	adapters map[models.Game]CardSearcher
	order    []models.Game
}

func NewResolver(adapters ...CardSearcher) *Resolver {
	r := &Resolver{
		adapters: make(map[models.Game]CardSearcher, len(adapters)),
	}
	for _, a := range adapters {
		r.adapters[a.Game()] = a
		r.order = append(r.order, a.Game())
	}
	return r
}

// Resolve normalizes the raw identity, gathers candidates, scores them and
// returns the normalized identity plus at most maxCandidates candidates
// sorted by confidence descending. An empty slice is a valid outcome, never
// an error.
func (r *Resolver) Resolve(ctx context.Context, raw models.ExtractedIdentity) (models.ExtractedIdentity, []models.Candidate) {
	identity := NormalizeIdentity(raw)
	metrics.ResolveRequestsTotal.WithLabelValues(string(identity.Game)).Inc()

	var all []models.Candidate
	if adapter, ok := r.adapters[identity.Game]; ok {
		all = r.searchOne(ctx, adapter, identity)
	} else {
		all = r.searchAll(ctx, identity)
	}

	for i := range all {
		all[i].Confidence = BoostConfidence(identity, all[i])
	}

	// Stable sort keeps provider relevance order on ties.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	if len(all) > maxCandidates {
		all = all[:maxCandidates]
	}
	if all == nil {
		all = []models.Candidate{}
	}
	metrics.ResolveCandidates.Observe(float64(len(all)))
	return identity, all
}

// searchAll fans out to every adapter concurrently and waits for all of them
// to settle. Results are concatenated in registration order so ranking stays
// deterministic.
func (r *Resolver) searchAll(ctx context.Context, identity models.ExtractedIdentity) []models.Candidate {
	results := make([][]models.Candidate, len(r.order))
	var wg sync.WaitGroup
	for i, game := range r.order {
		wg.Add(1)
		go func(i int, adapter CardSearcher) {
			defer wg.Done()
			results[i] = r.searchOne(ctx, adapter, identity)
		}(i, r.adapters[game])
	}
	wg.Wait()

	var all []models.Candidate
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all
}

// searchOne runs a single adapter with a bounded timeout, converting any
// failure into an empty contribution.
func (r *Resolver) searchOne(ctx context.Context, adapter CardSearcher, identity models.ExtractedIdentity) []models.Candidate {
	callCtx, cancel := context.WithTimeout(ctx, adapterTimeout)
	defer cancel()

	provider := string(adapter.Game())
	start := time.Now()
	candidates, err := adapter.Search(callCtx, identity)
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("[Resolver] %s adapter contributed nothing: %v", provider, err)
		metrics.ProviderErrorsTotal.WithLabelValues(provider).Inc()
		return nil
	}
	return candidates
}
