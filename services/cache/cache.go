package cache

import (
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent. Any other error means
// the cache backend itself failed and the caller cannot tell whether the key
// exists.
var ErrMiss = errors.New("cache miss")

// Service is a generic expiring key-value cache. The platform layer uses it
// to remember which marketplaces are currently blocking us so a blocked
// platform is not hammered again before its block time elapses.
type Service interface {
	// Get retrieves a value from the cache; absent keys return ErrMiss
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
