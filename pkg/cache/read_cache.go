package cache

import (
	"errors"
	"fmt"
	"github.com/dgraph-io/ristretto"
)

// ReadCache is a read-through cache for expensive-to-decode values keyed by
// a version-bearing key. Eviction is based on LRU and LFU policies.
type ReadCache[ValueType interface{}] interface {
	Get(key string) ([]ValueType, error)
	Put(key string, value []ValueType) error
}

type ReadCacheImpl[ValueType interface{}] struct {
	cache *ristretto.Cache
}

func NewReadCacheImpl[ValueType interface{}](cache *ristretto.Cache) *ReadCacheImpl[ValueType] {
	return &ReadCacheImpl[ValueType]{
		cache: cache,
	}
}

func (rc *ReadCacheImpl[ValueType]) Get(key string) ([]ValueType, error) {
	value, found := rc.cache.Get(key)
	if !found {
		return nil, ErrKeyNotFound
	}
	typedValue, ok := value.([]ValueType)
	if !ok {
		return nil, fmt.Errorf("value not of expected type %T returned from cache when getting", value)
	}

	return typedValue, nil
}

func (rc *ReadCacheImpl[ValueType]) Put(key string, value []ValueType) error {
	cost := int64(len(value))
	if cost == 0 {
		cost = 1
	}
	set := rc.cache.Set(key, value, cost)
	if !set {
		return ErrSetFailed
	}
	return nil
}

var (
	ErrKeyNotFound = errors.New("key not found within the cache")
	ErrSetFailed   = errors.New("failed to set value in cache")
)
