package performance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/finbridge/colend/internal/adapters/cache"
	"github.com/finbridge/colend/internal/adapters/performance"
	"github.com/finbridge/colend/internal/domain/approval"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty performance store", t, func() {
		store := performance.NewStore()

		Convey("When a partner has no data", func() {
			_, ok := store.ApprovalStats(ctx, "bank-a", approval.Bucket("750-799"))

			Convey("Then the lookup misses", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When records are ingested for the same partner and bucket", func() {
			err1 := store.Ingest(ctx, performance.Record{
				PartnerID: "bank-a", CIBILScore: 760, TotalApps: 100, ApprovedApps: 80,
			})
			err2 := store.Ingest(ctx, performance.Record{
				PartnerID: "bank-a", CIBILScore: 780, TotalApps: 50, ApprovedApps: 30,
			})

			Convey("Then samples accumulate under one bucket", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				sample, ok := store.ApprovalStats(ctx, "bank-a", approval.Bucket("750-799"))
				So(ok, ShouldBeTrue)
				So(sample.TotalApps, ShouldEqual, 150)
				So(sample.ApprovedApps, ShouldEqual, 110)
			})

			Convey("Then other buckets stay empty", func() {
				_, ok := store.ApprovalStats(ctx, "bank-a", approval.Bucket("650-749"))
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a record is malformed", func() {
			cases := []performance.Record{
				{PartnerID: "", CIBILScore: 760, TotalApps: 10, ApprovedApps: 5},
				{PartnerID: "bank-a", CIBILScore: 760, TotalApps: 0, ApprovedApps: 0},
				{PartnerID: "bank-a", CIBILScore: 760, TotalApps: 10, ApprovedApps: 11},
				{PartnerID: "bank-a", CIBILScore: 760, TotalApps: 10, ApprovedApps: -1},
			}
			Convey("Then ingest rejects every variant", func() {
				for _, rec := range cases {
					So(errors.Is(store.Ingest(ctx, rec), performance.ErrInvalidRecord), ShouldBeTrue)
				}
			})
		})
	})

	Convey("Given a store wired to the approval cache", t, func() {
		mem := cache.NewMemory()
		store := performance.NewStore(performance.WithCache(mem))
		key := approval.Key{PartnerID: "bank-a", Bucket: approval.Bucket("750-799")}

		Convey("When fresh data arrives for a cached pair", func() {
			mem.Set(ctx, key, decimal.RequireFromString("0.8"))
			err := store.Ingest(ctx, performance.Record{
				PartnerID: "bank-a", CIBILScore: 760, TotalApps: 10, ApprovedApps: 2,
			})

			Convey("Then the stale cache entry is busted", func() {
				So(err, ShouldBeNil)
				_, ok := mem.Get(ctx, key)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the store is reset", func() {
			mem.Set(ctx, key, decimal.RequireFromString("0.8"))
			So(store.Ingest(ctx, performance.Record{
				PartnerID: "bank-a", CIBILScore: 760, TotalApps: 10, ApprovedApps: 8,
			}), ShouldBeNil)
			store.Reset(ctx)

			Convey("Then samples and cache are both empty", func() {
				_, ok := store.ApprovalStats(ctx, "bank-a", approval.Bucket("750-799"))
				So(ok, ShouldBeFalse)
				_, ok = mem.Get(ctx, key)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
