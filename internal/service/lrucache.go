package service

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bigkaa/gotransfer/internal/domain/model"
)

// lruCache — per-instance LRU-кэш записей передач с TTL.
// Первый уровень перед Redis на горячем пути коротких ссылок.
type lruCache struct {
	cache *lru.LRU[string, *model.TransferRecord]
}

// NewLocalCache создаёт LRU-кэш записей с вытеснением по размеру и TTL.
func NewLocalCache(size int, ttl time.Duration) LocalCache {
	return &lruCache{
		cache: lru.NewLRU[string, *model.TransferRecord](size, nil, ttl),
	}
}

// Get возвращает запись из кэша.
func (c *lruCache) Get(shortCode string) (*model.TransferRecord, bool) {
	return c.cache.Get(shortCode)
}

// Add сохраняет запись в кэш.
func (c *lruCache) Add(rec *model.TransferRecord) {
	c.cache.Add(rec.ShortCode, rec)
}

// Remove удаляет запись из кэша.
func (c *lruCache) Remove(shortCode string) {
	c.cache.Remove(shortCode)
}
