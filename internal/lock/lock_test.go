package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocal()
	l.clock = func() time.Time { return now }

	first, err := l.Obtain(ctx, Key("u1"), time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("held key contends", func(t *testing.T) {
		if _, err := l.Obtain(ctx, Key("u1"), time.Minute); !errors.Is(err, ErrNotObtained) {
			t.Fatalf("want ErrNotObtained, got %v", err)
		}
	})

	t.Run("other keys are independent", func(t *testing.T) {
		if _, err := l.Obtain(ctx, Key("u2"), time.Minute); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("expired lock can be taken over", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		second, err := l.Obtain(ctx, Key("u1"), time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		// the stale holder must not release the new holder's lock
		_ = first.Release(ctx)
		if _, err := l.Obtain(ctx, Key("u1"), time.Minute); !errors.Is(err, ErrNotObtained) {
			t.Fatalf("want ErrNotObtained after stale release, got %v", err)
		}
		_ = second.Release(ctx)
		if _, err := l.Obtain(ctx, Key("u1"), time.Minute); err != nil {
			t.Fatalf("obtain after release: %v", err)
		}
	})
}

func TestNoop(t *testing.T) {
	for i := 0; i < 2; i++ {
		lk, err := Noop{}.Obtain(context.Background(), "k", time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if err := lk.Release(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
}
