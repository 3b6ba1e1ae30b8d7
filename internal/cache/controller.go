// Package cache provides a read-through cache with stampede protection in
// front of expensive view recomputation.
//
// The Controller guarantees that for any number of concurrent callers asking
// for the same uncached key, the producer runs exactly once and every caller
// observes the identical result. Cache backend failures never surface to the
// caller: a failed read is a miss, a failed write is logged and swallowed,
// and correctness falls back to direct computation.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the external key-value collaborator. Values are opaque bytes;
// serialization belongs to the caller via a Codec. Get reports a miss with
// ok=false and err=nil — an error means the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Codec pairs the encode/decode functions for one cache-key namespace.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// Controller owns the in-flight computation registry. Construct one per cache
// store and share it; the registry lives inside the controller, not in any
// package-level state.
type Controller struct {
	store  Store
	logger *slog.Logger

	// flights is the pending-computation registry: a mutex-guarded map from
	// key to the single in-progress producer run. singleflight removes the
	// entry when the run settles, success or failure, on every exit path.
	flights singleflight.Group
}

// NewController creates a Controller over the given store.
func NewController(store Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{store: store, logger: logger}
}

// GetOrCompute returns the cached value for key, or computes it via produce.
//
// On a miss, concurrent callers for the same key coalesce onto one producer
// run and all receive its result — or its error, in which case nothing is
// cached and the next call retries. The cache write for a successful run
// completes before the in-flight registry entry is removed, so a caller
// arriving just after the run settles finds the value in the store.
//
// There is no timeout here: a stuck producer blocks every attached caller.
// Callers are expected to bound producer work themselves (the producers in
// this repo are store queries that honor ctx).
func GetOrCompute[T any](ctx context.Context, c *Controller, key string, ttl time.Duration, codec Codec[T], produce func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok := c.lookup(ctx, key); ok {
		v, err := codec.Decode(raw)
		if err == nil {
			return v, nil
		}
		// A payload we can no longer decode is as good as a miss.
		c.logger.WarnContext(ctx, "cache payload decode failed, recomputing",
			"key", key, "error", err)
	}

	result, err, _ := c.flights.Do(key, func() (any, error) {
		// A producer that settled while this caller was joining may have
		// populated the store already; re-check before recomputing.
		if raw, ok := c.lookup(ctx, key); ok {
			if v, decErr := codec.Decode(raw); decErr == nil {
				return v, nil
			}
		}

		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}

		if raw, encErr := codec.Encode(v); encErr != nil {
			c.logger.WarnContext(ctx, "cache payload encode failed, serving uncached",
				"key", key, "error", encErr)
		} else if setErr := c.store.Set(ctx, key, raw, ttl); setErr != nil {
			c.logger.WarnContext(ctx, "cache store write failed, serving uncached",
				"key", key, "error", setErr)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	v, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected payload type %T for key %q", result, key)
	}
	return v, nil
}

// lookup reads the store, downgrading backend errors to misses.
func (c *Controller) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache store read failed, treating as miss",
			"key", key, "error", err)
		return nil, false
	}
	return raw, ok
}
