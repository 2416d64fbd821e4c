// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about batch execution and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBatchHooks(&myBatchHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Batch().OnFetchStart(ctx, source)
//	// ... fetch rows ...
//	observability.Batch().OnFetchComplete(ctx, source, rowCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Batch Hooks
// =============================================================================

// BatchHooks receives events from the generation pipeline.
type BatchHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, source string)
	OnFetchComplete(ctx context.Context, source string, rowCount int, duration time.Duration, err error)

	// Compose events (one card per row)
	OnComposeStart(ctx context.Context, rowCount int)
	OnRowComplete(ctx context.Context, index int, name string, err error)
	OnComposeComplete(ctx context.Context, rendered int, duration time.Duration, err error)

	// Package events (zip/directory assembly)
	OnPackageComplete(ctx context.Context, entries int, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBatchHooks is a no-op implementation of BatchHooks.
type NoopBatchHooks struct{}

func (NoopBatchHooks) OnFetchStart(context.Context, string)                                   {}
func (NoopBatchHooks) OnFetchComplete(context.Context, string, int, time.Duration, error)     {}
func (NoopBatchHooks) OnComposeStart(context.Context, int)                                    {}
func (NoopBatchHooks) OnRowComplete(context.Context, int, string, error)                      {}
func (NoopBatchHooks) OnComposeComplete(context.Context, int, time.Duration, error)           {}
func (NoopBatchHooks) OnPackageComplete(context.Context, int, int, time.Duration, error)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	batchHooks BatchHooks = NoopBatchHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetBatchHooks registers custom batch hooks.
// This should be called once at application startup before any pipeline operations.
func SetBatchHooks(h BatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		batchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return batchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	batchHooks = NoopBatchHooks{}
	cacheHooks = NoopCacheHooks{}
}
