package exercises

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte            = 1024 * 1024
	exerciseCacheExpire = 60 * 10 // seconds
)

// Cache keeps recently read catalog entries. Entries are evicted on update/delete.
// Every eviction bumps a generation; a read that started before it cannot repopulate the cache.
type Cache struct {
	cache *freecache.Cache

	mu         sync.Mutex
	generation uint64
}

func NewCache(sizeMB int) *Cache {
	return &Cache{
		cache: freecache.NewCache(sizeMB * megabyte),
	}
}

func cacheKey(id int) []byte {
	return []byte("exercise::" + strconv.Itoa(id))
}

func (c *Cache) Get(id int) (*Exercise, bool) {
	data, err := c.cache.Get(cacheKey(id))
	if err != nil {
		return nil, false
	}
	var e Exercise
	if err := json.Unmarshal(data, &e); err != nil {
		log.Errorf("failed to unmarshal cached exercise %d: %s", id, err)
		return nil, false
	}
	return &e, true
}

// Generation is taken before reading an exercise from the db and passed to Set.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Set stores e unless something was invalidated since generation was taken.
func (c *Cache) Set(e *Exercise, generation uint64) bool {
	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("failed to marshal exercise %d for cache: %s", e.ID, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	if err := c.cache.Set(cacheKey(e.ID), data, exerciseCacheExpire); err != nil {
		log.Errorf("failed to cache exercise %d: %s", e.ID, err)
		return false
	}
	return true
}

func (c *Cache) Invalidate(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache.Del(cacheKey(id))
}
