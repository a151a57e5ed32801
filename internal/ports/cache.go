package ports

import (
	"context"
	"time"
)

// Cache defines a generic key-value capability, used to memoize search
// results keyed by a hash of the query shape. Adapters are backed by the
// same embedded store as the evidence tables.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
