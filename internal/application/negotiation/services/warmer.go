package services

import (
	"context"
	"sync"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// SuggestionWarmer precomputes a likely PM response right after Phase-1
// so Phase-2 has a warm template candidate. Warming is fire-and-forget;
// cancellation on terminal transition is best effort.
type SuggestionWarmer struct {
	cache     *SuggestionCache
	engine    *negotiation.Engine
	generator *ResponseGenerator

	mu       sync.Mutex
	gen      uint64
	inFlight map[string]warmHandle
}

type warmHandle struct {
	cancel context.CancelFunc
	gen    uint64
}

// NewSuggestionWarmer creates a warmer over the shared cache
func NewSuggestionWarmer(cache *SuggestionCache, engine *negotiation.Engine, generator *ResponseGenerator) *SuggestionWarmer {
	return &SuggestionWarmer{
		cache:     cache,
		engine:    engine,
		generator: generator,
		inFlight:  make(map[string]warmHandle),
	}
}

// Warm precomputes the template suggestion for the in-progress round.
// A newer warm for the same deal supersedes an in-flight one.
func (w *SuggestionWarmer) Warm(ctx context.Context, d *deal.Deal, round int, acc *deal.AccumulatedOffer) {
	logger := common.LoggerFromContext(ctx)

	warmCtx, cancel := context.WithCancel(context.Background())

	w.mu.Lock()
	w.gen++
	gen := w.gen
	key := d.ID().String()
	if prev, ok := w.inFlight[key]; ok {
		prev.cancel()
	}
	w.inFlight[key] = warmHandle{cancel: cancel, gen: gen}
	w.mu.Unlock()

	go func() {
		defer w.clear(key, gen, cancel)

		decision := w.engine.Decide(negotiation.DecisionInput{
			Config: d.Config(),
			Offer:  acc,
			Round:  round,
			State:  d.State(),
		})
		if warmCtx.Err() != nil {
			return
		}
		text := w.generator.Template(d, decision)
		w.cache.Put(d.ID(), round, []Suggestion{{
			Text:   text,
			Source: SuggestionSourceFallback,
		}})
		logger.Log("debug", "warmed suggestion", map[string]interface{}{
			"deal_id": key,
			"round":   round,
		})
	}()
}

// Cancel drops any in-flight warm for the deal and invalidates its
// cached rounds. Called on terminal transitions.
func (w *SuggestionWarmer) Cancel(dealID shared.ID) {
	w.mu.Lock()
	if handle, ok := w.inFlight[dealID.String()]; ok {
		handle.cancel()
		delete(w.inFlight, dealID.String())
	}
	w.mu.Unlock()
	w.cache.Invalidate(dealID)
}

func (w *SuggestionWarmer) clear(key string, gen uint64, cancel context.CancelFunc) {
	cancel()
	w.mu.Lock()
	if handle, ok := w.inFlight[key]; ok && handle.gen == gen {
		delete(w.inFlight, key)
	}
	w.mu.Unlock()
}
