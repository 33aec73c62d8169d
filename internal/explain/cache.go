package explain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/connect-rnd/grant-matcher/internal/matching"
)

// ResponseCache keeps generated explanations keyed by the exact score
// breakdown, so re-running a match with unchanged scores never spends budget
// on a duplicate provider call.
type ResponseCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a cache with the given entry TTL.
func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// CacheKey derives a stable key from the match identity and its breakdown. A
// changed component score produces a different key, so tuning episodes never
// serve stale explanations.
func CacheKey(match *matching.Match) string {
	payload := fmt.Sprintf("%s|%s|%.3f|%d|%+v",
		match.OrganizationID,
		match.ProgramID,
		match.IndustryRelevance,
		match.Total,
		match.Scores,
	)
	hash := sha256.Sum256([]byte(payload))
	return "explain:v1:" + hex.EncodeToString(hash[:])
}

// Get retrieves a cached explanation.
func (c *ResponseCache) Get(key string) (*Explanation, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*Explanation), true
	}
	return nil, false
}

// Set stores an explanation under the given key.
func (c *ResponseCache) Set(key string, explanation *Explanation) {
	c.cache.Set(key, explanation, c.ttl)
}

// Flush drops every cached entry.
func (c *ResponseCache) Flush() {
	c.cache.Flush()
}
