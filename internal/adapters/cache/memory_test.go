package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/finbridge/colend/internal/adapters/cache"
	"github.com/finbridge/colend/internal/domain/approval"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	key := approval.Key{PartnerID: "p1", Bucket: "750-799"}

	Convey("Given an in-memory cache with a controllable clock", t, func() {
		now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		var mu sync.Mutex
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		advance := func(by time.Duration) {
			mu.Lock()
			now = now.Add(by)
			mu.Unlock()
		}

		c := cache.NewMemory(
			cache.WithTTL(5*time.Minute),
			cache.WithClock(clock),
		)

		Convey("When a rate is stored", func() {
			c.Set(ctx, key, d("0.8"))

			Convey("Then it is readable until the TTL elapses", func() {
				got, ok := c.Get(ctx, key)
				So(ok, ShouldBeTrue)
				So(got.Equal(d("0.8")), ShouldBeTrue)

				advance(4 * time.Minute)
				_, ok = c.Get(ctx, key)
				So(ok, ShouldBeTrue)

				advance(2 * time.Minute)
				_, ok = c.Get(ctx, key)
				So(ok, ShouldBeFalse)
			})

			Convey("And Set refreshes the TTL", func() {
				advance(4 * time.Minute)
				c.Set(ctx, key, d("0.7"))
				advance(4 * time.Minute)

				got, ok := c.Get(ctx, key)
				So(ok, ShouldBeTrue)
				So(got.Equal(d("0.7")), ShouldBeTrue)
			})
		})

		Convey("When an entry is invalidated", func() {
			c.Set(ctx, key, d("0.8"))
			c.Invalidate(ctx, key)

			Convey("Then it is gone immediately", func() {
				_, ok := c.Get(ctx, key)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When everything is invalidated", func() {
			c.Set(ctx, key, d("0.8"))
			c.Set(ctx, approval.Key{PartnerID: "p2", Bucket: "800+"}, d("0.9"))
			c.InvalidateAll(ctx)

			Convey("Then the cache is empty", func() {
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a key was never stored", func() {
			_, ok := c.Get(ctx, approval.Key{PartnerID: "unknown", Bucket: "<650"})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMemoryCache_Concurrency(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := approval.Key{PartnerID: "p1", Bucket: approval.Bucket("750-799")}
			for j := 0; j < 500; j++ {
				c.Set(ctx, key, decimal.NewFromInt(int64(n)))
				c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get(ctx, approval.Key{PartnerID: "p1", Bucket: "750-799"}); !ok {
		t.Fatal("expected a value after concurrent writes")
	}
}
