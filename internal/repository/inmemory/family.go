package inmemory

import (
	"sync"
	"time"

	familydomain "tribeboard/internal/domain/family"
)

// FamilyCache is a process-local TTL cache for family-by-user lookups.
type FamilyCache struct {
	mu    sync.RWMutex
	items map[string]familyEntry
}

type familyEntry struct {
	value     familydomain.Family
	expiresAt time.Time
}

func NewFamilyCache() *FamilyCache {
	return &FamilyCache{items: make(map[string]familyEntry)}
}

func (c *FamilyCache) GetByUserID(userID string) (*familydomain.Family, bool) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !entry.expiresAt.After(now) {
		c.mu.Lock()
		entry, ok = c.items[userID]
		if ok && !entry.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := entry.value
	return &value, true
}

func (c *FamilyCache) SetByUserID(userID string, family *familydomain.Family, ttl time.Duration) {
	if family == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = familyEntry{
		value:     *family,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *FamilyCache) DeleteByUserID(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *FamilyCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]familyEntry)
	c.mu.Unlock()
}
