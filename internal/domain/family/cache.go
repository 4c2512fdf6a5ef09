package family

import "time"

// Cache holds family-by-user lookups, the hottest read path. Writes go
// through the repository; mutating service operations invalidate.
type Cache interface {
	GetByUserID(userID string) (*Family, bool)
	SetByUserID(userID string, family *Family, ttl time.Duration)
	DeleteByUserID(userID string)
	Clear()
}

type noopCache struct{}

func (noopCache) GetByUserID(string) (*Family, bool)               { return nil, false }
func (noopCache) SetByUserID(string, *Family, time.Duration)       {}
func (noopCache) DeleteByUserID(string)                            {}
func (noopCache) Clear()                                           {}
