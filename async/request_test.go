package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRequestSucceeds(t *testing.T) {
	release := make(chan struct{})
	r := Start(context.Background(), func(context.Context) (string, error) {
		<-release
		return "post-1", nil
	})

	if got := r.Snapshot().Status; got != Pending {
		t.Fatalf("expected pending, got %s", got)
	}

	var fired atomic.Int32
	r.Subscribe(func(s Snapshot[string]) {
		if s.Status != Succeeded || s.Data != "post-1" {
			t.Errorf("unexpected snapshot %+v", s)
		}
		fired.Add(1)
	})

	close(release)
	data, err := r.Wait(context.Background())
	if err != nil || data != "post-1" {
		t.Fatalf("wait: %q, %v", data, err)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected subscriber fired once, got %d", fired.Load())
	}
}

func TestRequestFails(t *testing.T) {
	boom := errors.New("boom")
	r := Start(context.Background(), func(context.Context) (int, error) {
		return 42, boom
	})

	<-r.Done()
	snap := r.Snapshot()
	if snap.Status != Failed || !errors.Is(snap.Err, boom) {
		t.Fatalf("expected failed with boom, got %+v", snap)
	}
	if snap.Data != 0 {
		t.Fatalf("failed request must not expose data, got %d", snap.Data)
	}
}

func TestLateSubscriberFiresImmediately(t *testing.T) {
	r := Resolved("ready")

	var got string
	r.Subscribe(func(s Snapshot[string]) { got = s.Data })
	if got != "ready" {
		t.Fatalf("expected immediate delivery, got %q", got)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	r := Start(context.Background(), func(context.Context) (bool, error) {
		<-release
		return true, nil
	})
	defer func() {
		close(release)
		<-r.Done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if r.Snapshot().Status != Pending {
		t.Fatal("wait timeout must not complete the request")
	}
}

func TestCancelledContextReachesOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := Start(ctx, func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, ctx.Err()
	})
	cancel()

	if _, err := r.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
