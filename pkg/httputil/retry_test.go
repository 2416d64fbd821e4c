package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/cardforge/pkg/cache"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryNonRetryableFailsFast(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Retryable(errors.New("always fails"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, 10*time.Second, func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFetcherCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("Title,Pronunciation,Definition\n"))
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	f := NewFetcher(srv.Client(), c, 0)
	ctx := context.Background()

	if _, cached, err := f.Get(ctx, srv.URL, false); err != nil || cached {
		t.Fatalf("first Get = cached %v, err %v", cached, err)
	}
	if _, cached, err := f.Get(ctx, srv.URL, false); err != nil || !cached {
		t.Fatalf("second Get = cached %v, err %v; want cache hit", cached, err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}

	// refresh bypasses the cache
	if _, cached, err := f.Get(ctx, srv.URL, true); err != nil || cached {
		t.Fatalf("refresh Get = cached %v, err %v", cached, err)
	}
	if hits != 2 {
		t.Errorf("server hits after refresh = %d, want 2", hits)
	}
}

func TestFetcherFailsOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), nil, 0)
	if _, _, err := f.Get(context.Background(), srv.URL, false); err == nil {
		t.Fatal("expected error for 404")
	}
}
