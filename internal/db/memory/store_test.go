package memory

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kailas-cloud/bioscout/internal/db"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()

	value := []byte("value")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("got %q, stored value must be copied", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("got %q, returned value must be copied", again)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore(0)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStore_SetWithTTLExpires(t *testing.T) {
	s := NewStore(time.Hour)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("fresh entry: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected expired entry, got %v", err)
	}
}

func TestStore_Del(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"))

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del missing: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	if err := s.WaitForReady(ctx, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	_ = s.Set(ctx, "k", []byte("v"))
	s.Close()
	if s.Len() != 0 {
		t.Error("Close should drop entries")
	}
}

func TestStore_UseAfterClose(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	s.Close()
	s.Close()

	if err := s.Ping(ctx); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Ping: expected ErrClosed, got %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Get: expected ErrClosed, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Set: expected ErrClosed, got %v", err)
	}
	if err := s.Del(ctx, "k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Del: expected ErrClosed, got %v", err)
	}
}

func TestStore_CloseStopsJanitor(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewStore(time.Millisecond)
	_ = s.Set(context.Background(), "k", []byte("v"))
	s.Close()

	// The janitor is stopped by a finalizer on the dropped cache.
	runtime.GC()
	runtime.GC()
}
