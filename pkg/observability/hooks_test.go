package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingBatchHooks struct {
	NoopBatchHooks
	mu   sync.Mutex
	rows []string
}

func (h *recordingBatchHooks) OnRowComplete(_ context.Context, _ int, name string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, name)
}

func TestSetAndGetBatchHooks(t *testing.T) {
	defer Reset()

	rec := &recordingBatchHooks{}
	SetBatchHooks(rec)

	Batch().OnRowComplete(context.Background(), 0, "Hello World", nil)
	Batch().OnRowComplete(context.Background(), 1, "Serendipity", nil)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.rows) != 2 || rec.rows[0] != "Hello World" {
		t.Errorf("recorded rows = %v", rec.rows)
	}
}

func TestSetNilKeepsExisting(t *testing.T) {
	defer Reset()

	rec := &recordingBatchHooks{}
	SetBatchHooks(rec)
	SetBatchHooks(nil)

	if Batch() != rec {
		t.Error("SetBatchHooks(nil) should keep the registered hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetBatchHooks(&recordingBatchHooks{})
	SetCacheHooks(NoopCacheHooks{})
	Reset()

	// No-op hooks should be safe to call.
	Batch().OnFetchComplete(context.Background(), "sheet", 0, time.Second, nil)
	Cache().OnCacheMiss(context.Background(), "http")
}
