package services

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

const (
	// DefaultSuggestionTTL is how long a precomputed suggestion stays valid
	DefaultSuggestionTTL = 5 * time.Minute
	// DefaultSuggestionCapacity bounds the cache; overflow evicts the
	// least-recently-inserted entry
	DefaultSuggestionCapacity = 100
)

// SuggestionSource records how a cached suggestion was produced
type SuggestionSource string

const (
	SuggestionSourceLLM      SuggestionSource = "llm"
	SuggestionSourceFallback SuggestionSource = "fallback"
)

// Suggestion is one precomputed response candidate for an upcoming round
type Suggestion struct {
	Text     string
	Source   SuggestionSource
	Inserted time.Time
}

type cacheEntry struct {
	key         string
	dealID      string
	suggestions []Suggestion
	inserted    time.Time
}

// SuggestionCache memoizes precomputed suggestions keyed by
// (deal, round). It is process-local: the Store stays authoritative and
// stale entries expire on read.
type SuggestionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	clock    shared.Clock

	entries map[string]*list.Element
	order   *list.List // insertion order, oldest at front
}

// NewSuggestionCache creates a cache with the given bounds. Zero values
// fall back to the defaults.
func NewSuggestionCache(ttl time.Duration, capacity int, clock shared.Clock) *SuggestionCache {
	if ttl <= 0 {
		ttl = DefaultSuggestionTTL
	}
	if capacity <= 0 {
		capacity = DefaultSuggestionCapacity
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SuggestionCache{
		ttl:      ttl,
		capacity: capacity,
		clock:    clock,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func cacheKey(dealID shared.ID, round int) string {
	return fmt.Sprintf("%s:%d", dealID.String(), round)
}

// Get returns the cached suggestions for (deal, round). An entry past
// its TTL counts as a miss and is evicted on the spot.
func (c *SuggestionCache) Get(dealID shared.ID, round int) ([]Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[cacheKey(dealID, round)]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.clock.Now().Sub(entry.inserted) > c.ttl {
		c.remove(elem)
		return nil, false
	}
	return entry.suggestions, true
}

// Put stores suggestions for (deal, round), replacing any prior entry.
// On overflow the least-recently-inserted entry is evicted.
func (c *SuggestionCache) Put(dealID shared.ID, round int, suggestions []Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(dealID, round)
	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
	for c.order.Len() >= c.capacity {
		c.remove(c.order.Front())
	}
	entry := &cacheEntry{
		key:         key,
		dealID:      dealID.String(),
		suggestions: suggestions,
		inserted:    c.clock.Now(),
	}
	c.entries[key] = c.order.PushBack(entry)
}

// Invalidate drops every cached round for a deal. Called after each
// completed Phase-2 so stale precomputes never surface.
func (c *SuggestionCache) Invalidate(dealID shared.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := dealID.String()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*cacheEntry).dealID == id {
			c.remove(elem)
		}
		elem = next
	}
}

// Len reports the live entry count (expired entries included until read)
func (c *SuggestionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *SuggestionCache) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
