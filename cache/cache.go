package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"nanogrid/influx"
)

const DefaultSize = 128

// ResultCache keeps recent query results so repeated dashboard fetches with
// identical parameters do not hit the store again within the TTL.
type ResultCache struct {
	mutex *sync.RWMutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type entry struct {
	points  []influx.Point
	expires time.Time
}

func New(size int, ttl time.Duration) *ResultCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &ResultCache{
		mutex: &sync.RWMutex{},
		cache: lru.New(size),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Key identifies one catalog request. The client is idempotent per
// (query, range, window), so that triple is the whole cache identity.
func Key(query string, timeRange influx.TimeRange, window string) string {
	return fmt.Sprintf("%s|%s|%s", query, timeRange, window)
}

// Get returns cached points if present and inside the TTL. The underlying
// lru updates recency on reads, so lookups take the write lock.
func (resultCache *ResultCache) Get(key string) ([]influx.Point, bool) {
	resultCache.mutex.Lock()
	defer resultCache.mutex.Unlock()

	cached, isExist := resultCache.cache.Get(key)
	if !isExist {
		return nil, false
	}

	cachedEntry := cached.(entry)
	if resultCache.now().After(cachedEntry.expires) {
		resultCache.cache.Remove(key)
		return nil, false
	}
	return cachedEntry.points, true
}

func (resultCache *ResultCache) Add(key string, points []influx.Point) {
	resultCache.mutex.Lock()
	defer resultCache.mutex.Unlock()
	resultCache.cache.Add(key, entry{
		points:  points,
		expires: resultCache.now().Add(resultCache.ttl),
	})
}
