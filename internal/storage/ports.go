package storage

import "context"

// KV is the durable key-value store behind the state. Each Set replaces the
// whole value in a single write.
type KV interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
