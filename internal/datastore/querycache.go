package datastore

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// queryCache is a short-TTL read-through cache for detection-list
// queries. It is invalidated implicitly: entries simply expire, and any
// write bumps the log revision the caller already checks via
// SummaryCache for the summary endpoint; the raw log listing trades a
// few seconds of staleness for avoiding a table scan on every poll.
type queryCache struct {
	c *cache.Cache
}

func newQueryCache() *queryCache {
	return &queryCache{c: cache.New(5*time.Second, 30*time.Second)}
}

func (q *queryCache) get(limit int) ([]Detection, bool) {
	v, ok := q.c.Get(cacheKey(limit))
	if !ok {
		return nil, false
	}
	rows, ok := v.([]Detection)
	return rows, ok
}

func (q *queryCache) set(limit int, rows []Detection) {
	q.c.Set(cacheKey(limit), rows, cache.DefaultExpiration)
}

func cacheKey(limit int) string {
	return fmt.Sprintf("log:%d", limit)
}

// ListDetectionsCached is ListDetections with a short-lived read-through
// cache in front of it, for the high-traffic dashboard poll endpoint.
func (s *Store) ListDetectionsCached(limit int) ([]Detection, error) {
	s.ensureQueryCache()
	if rows, ok := s.qcache.get(limit); ok {
		return rows, nil
	}
	rows, err := s.ListDetections(limit)
	if err != nil {
		return nil, err
	}
	s.qcache.set(limit, rows)
	return rows, nil
}

func (s *Store) ensureQueryCache() {
	s.qcacheOnce.Do(func() { s.qcache = newQueryCache() })
}
