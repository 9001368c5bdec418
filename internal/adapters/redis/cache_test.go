package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "stayhaven/internal/adapters/redis"
	"stayhaven/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_SetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := []domain.Reservation{{ID: "r1", UserID: "u1", Status: domain.StatusConfirmed}}
	if err := c.Set(ctx, "reservations:u1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []domain.Reservation
	ok, err := c.Get(ctx, "reservations:u1", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || len(out) != 1 || out[0].ID != "r1" {
		t.Fatalf("unexpected cached value: ok=%v %+v", ok, out)
	}

	if err := c.Del(ctx, "reservations:u1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "reservations:u1", &out)
	if err != nil {
		t.Fatalf("get after del: %v", err)
	}
	if ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c := newTestCache(t)
	var out []domain.Reservation
	ok, err := c.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}
