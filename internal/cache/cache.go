// Package cache implements the response cache: a key-value store interface
// with TTL, deterministic key derivation, and a get-or-compute wrapper for
// caching individual service calls.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCacheMiss indicates the requested key was not found or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is a key-value store holding serialized response payloads with a
// fixed expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Flush drops every entry. Exposed for operational invalidation.
	Flush(ctx context.Context) error
}

// RequestKey derives the cache key for a whole HTTP response from the
// request's logical identity: method, path, and query parameters in sorted
// order, so parameter order in the URL does not split the cache.
func RequestKey(method, path string, query url.Values) string {
	canonical := strings.Join([]string{strings.ToUpper(method), path, query.Encode()}, ":")
	return digest(canonical)
}

// MethodKey derives the cache key for a service method call from the
// qualified method name and its business arguments. Injected dependencies
// (the receiver, engine handles, stores) must never be passed here: keys
// have to agree across workers regardless of which pooled client serves the
// call.
func MethodKey(name string, args ...any) string {
	return digest(fmt.Sprintf("%s:%v", name, args))
}

func digest(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Operation caches one logical service method: it composes a key (from the
// operation name and call arguments), the underlying computation, and a
// Store with a single global TTL. Concurrent misses on the same key may
// each run the computation; the last write wins. That duplicate work is
// accepted, entries are idempotent snapshots.
type Operation[T any] struct {
	name  string
	store Store
	ttl   time.Duration
}

func NewOperation[T any](name string, store Store, ttl time.Duration) Operation[T] {
	return Operation[T]{name: name, store: store, ttl: ttl}
}

// Do returns the cached value for the given arguments if present, otherwise
// runs compute, stores its serialized result with the operation TTL, and
// returns it. Errors from compute are returned as-is and never cached.
func (op Operation[T]) Do(ctx context.Context, compute func(context.Context) (T, error), args ...any) (T, error) {
	var zero T
	key := MethodKey(op.name, args...)

	data, err := op.store.Get(ctx, key)
	if err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			Hits.WithLabelValues("method").Inc()
			return value, nil
		}
		// Corrupted entry, recompute and overwrite
		log.WithFields(log.Fields{"operation": op.name, "key": key}).Warnln("Invalid cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		Errors.WithLabelValues("get").Inc()
		log.WithFields(log.Fields{"error": err, "operation": op.name}).Warnln("Cache get failed")
	}
	Misses.WithLabelValues("method").Inc()

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if data, err := json.Marshal(value); err == nil {
		if err := op.store.Set(ctx, key, data, op.ttl); err != nil {
			Errors.WithLabelValues("set").Inc()
			log.WithFields(log.Fields{"error": err, "operation": op.name}).Warnln("Cache set failed")
		}
	}
	return value, nil
}
