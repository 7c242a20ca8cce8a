package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soroswap/soroswap-analytics/internal/cache"
)

func TestMemory_RoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c := cache.NewMemory()
	ctx := context.Background()

	var missed payload
	if err := c.Get(ctx, "absent", &missed); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get(absent) = %v, want ErrMiss", err)
	}

	want := payload{Name: "pools", Count: 3}
	if err := c.Set(ctx, "k", want, cache.OneMinute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := c.Get(ctx, "k", &got); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("Get after delete = %v, want ErrMiss", err)
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", 42, time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)

	var got int
	if err := c.Get(ctx, "k", &got); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("Get after expiry = %v, want ErrMiss", err)
	}
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	var got string
	if err := c.Get(ctx, "k", &got); err != nil || got != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}
