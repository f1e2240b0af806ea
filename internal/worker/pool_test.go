package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

func TestMapPreservesIndexOrder(t *testing.T) {
	results, err := Map(context.Background(), 20, 4, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 20 {
		t.Fatalf("results = %d, want 20", len(results))
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("results[%d] = %d, want %d", i, r, i*i)
		}
	}
}

func TestMapZeroItems(t *testing.T) {
	results, err := Map(context.Background(), 0, 4, func(_ context.Context, i int) (int, error) {
		t.Error("fn called for empty input")
		return 0, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32

	_, err := Map(context.Background(), 32, 3, func(_ context.Context, i int) (int, error) {
		cur := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		return i, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak.Load())
	}
}

func TestMapReturnsWorkerError(t *testing.T) {
	_, err := Map(context.Background(), 10, 10, func(_ context.Context, i int) (string, error) {
		if i >= 3 {
			return "", fmt.Errorf("page %d failed", i)
		}
		return "ok", nil
	})
	if err == nil {
		t.Fatal("no error returned")
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want a worker error rather than the cancellation", err)
	}
	if !strings.HasPrefix(err.Error(), "page ") {
		t.Errorf("err = %v, want a page failure", err)
	}
}

func TestMapSingleFailureIsReported(t *testing.T) {
	_, err := Map(context.Background(), 6, 1, func(_ context.Context, i int) (string, error) {
		if i == 2 {
			return "", errors.New("page 2 failed")
		}
		return "ok", nil
	})
	if err == nil || err.Error() != "page 2 failed" {
		t.Errorf("err = %v, want page 2 failure", err)
	}
}

func TestMapDiscardsPartialResults(t *testing.T) {
	results, err := Map(context.Background(), 5, 2, func(_ context.Context, i int) (int, error) {
		if i == 2 {
			return 0, errors.New("boom")
		}
		return i, nil
	})
	if err == nil {
		t.Fatal("no error returned")
	}
	if results != nil {
		t.Errorf("partial results returned: %v", results)
	}
}

func TestMapHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, 4, 2, func(ctx context.Context, i int) (int, error) {
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("no error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
