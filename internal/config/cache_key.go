package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamineeSessionKey returns the cache key holding the active session JTI
// for an examinee (single-device login enforcement).
func (r *CacheKeyStruct) ExamineeSessionKey(examineeID string) string {
	return fmt.Sprintf("login:%s", examineeID)
}

var CacheKey = NewCacheKeyStruct()
