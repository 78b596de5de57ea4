package approval_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/internal/domain/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubProvider struct {
	stats map[approval.Key]approval.Sample
}

func (p *stubProvider) ApprovalStats(_ context.Context, partnerID string, bucket approval.Bucket) (approval.Sample, bool) {
	s, ok := p.stats[approval.Key{PartnerID: partnerID, Bucket: bucket}]
	return s, ok
}

type mapCache struct {
	entries map[approval.Key]decimal.Decimal
	gets    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[approval.Key]decimal.Decimal{}}
}

func (c *mapCache) Get(_ context.Context, key approval.Key) (decimal.Decimal, bool) {
	c.gets++
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key approval.Key, rate decimal.Decimal) {
	c.sets++
	c.entries[key] = rate
}

func (c *mapCache) Invalidate(_ context.Context, key approval.Key) { delete(c.entries, key) }
func (c *mapCache) InvalidateAll(_ context.Context)                { c.entries = map[approval.Key]decimal.Decimal{} }

func loanWithScore(score int) model.LoanRequest {
	return model.LoanRequest{
		LoanID:         "loan-1",
		Amount:         d("500000"),
		TenureMonths:   36,
		ProductType:    "personal_loan",
		OriginatorRate: d("0.165"),
		CIBILScore:     score,
		FOIR:           d("0.4"),
	}
}

func TestBands(t *testing.T) {
	Convey("Given the default CIBIL bands", t, func() {
		bands := approval.DefaultBands()

		Convey("Then scores map to the documented buckets", func() {
			So(bands.Bucket(300), ShouldEqual, approval.Bucket("<650"))
			So(bands.Bucket(649), ShouldEqual, approval.Bucket("<650"))
			So(bands.Bucket(650), ShouldEqual, approval.Bucket("650-749"))
			So(bands.Bucket(749), ShouldEqual, approval.Bucket("650-749"))
			So(bands.Bucket(750), ShouldEqual, approval.Bucket("750-799"))
			So(bands.Bucket(799), ShouldEqual, approval.Bucket("750-799"))
			So(bands.Bucket(800), ShouldEqual, approval.Bucket("800+"))
			So(bands.Bucket(900), ShouldEqual, approval.Bucket("800+"))
		})
	})

	Convey("Given custom band edges", t, func() {
		bands, err := approval.NewBands([]int{600, 700})
		So(err, ShouldBeNil)

		Convey("Then the bucketing follows the configured edges", func() {
			So(bands.Bucket(550), ShouldEqual, approval.Bucket("<600"))
			So(bands.Bucket(650), ShouldEqual, approval.Bucket("600-699"))
			So(bands.Bucket(750), ShouldEqual, approval.Bucket("700+"))
		})
	})

	Convey("Given malformed edges", t, func() {
		Convey("Then NewBands rejects them", func() {
			_, err := approval.NewBands(nil)
			So(err, ShouldNotBeNil)
			_, err = approval.NewBands([]int{700, 600})
			So(err, ShouldNotBeNil)
			_, err = approval.NewBands([]int{650, 650})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEstimator_Rate(t *testing.T) {
	ctx := context.Background()

	Convey("Given an estimator with historical data for one bucket", t, func() {
		provider := &stubProvider{stats: map[approval.Key]approval.Sample{
			{PartnerID: "p1", Bucket: "750-799"}: {TotalApps: 100, ApprovedApps: 80},
		}}
		cache := newMapCache()
		est := approval.New(provider, cache)

		Convey("When estimating for a loan in that bucket", func() {
			got := est.Rate(ctx, "p1", loanWithScore(760))

			Convey("Then the historical rate is blended with the rule score", func() {
				// hist=0.80, rule=0.5+0.3+0.05=0.85 -> 0.7*0.8 + 0.3*0.85 = 0.815
				So(got.Equal(d("0.815")), ShouldBeTrue)
			})

			Convey("And the historical component is cached", func() {
				So(cache.sets, ShouldEqual, 1)
				cached, ok := cache.Get(ctx, approval.Key{PartnerID: "p1", Bucket: "750-799"})
				So(ok, ShouldBeTrue)
				So(cached.Equal(d("0.8")), ShouldBeTrue)
			})
		})

		Convey("When the cache already holds a rate", func() {
			cache.Set(ctx, approval.Key{PartnerID: "p1", Bucket: "750-799"}, d("0.6"))
			cache.sets = 0

			got := est.Rate(ctx, "p1", loanWithScore(760))

			Convey("Then the provider is bypassed and nothing is re-populated", func() {
				// hist=0.60, rule=0.85 -> 0.7*0.6 + 0.3*0.85 = 0.675
				So(got.Equal(d("0.675")), ShouldBeTrue)
				So(cache.sets, ShouldEqual, 0)
			})
		})

		Convey("When no data exists for the bucket", func() {
			got := est.Rate(ctx, "p1", loanWithScore(660))

			Convey("Then the default rate backs the estimate instead of an error", func() {
				// hist=0.75 default, rule=0.5+0.05=0.55 -> 0.7*0.75 + 0.3*0.55 = 0.69
				So(got.Equal(d("0.69")), ShouldBeTrue)
			})
		})

		Convey("When the blended estimate would exceed the clamp", func() {
			provider.stats[approval.Key{PartnerID: "p1", Bucket: "800+"}] = approval.Sample{TotalApps: 10, ApprovedApps: 10}
			loan := loanWithScore(820)
			loan.FOIR = d("0.2")

			got := est.Rate(ctx, "p1", loan)

			Convey("Then it is capped at the configured maximum", func() {
				// hist=1.0, rule=0.5+0.3+0.1+0.05=0.95 -> blend 0.985, capped at 0.95
				So(got.Equal(d("0.95")), ShouldBeTrue)
			})
		})

		Convey("When the partner rejects nearly everything", func() {
			provider.stats[approval.Key{PartnerID: "p1", Bucket: "<650"}] = approval.Sample{TotalApps: 100, ApprovedApps: 0}
			loan := loanWithScore(600)
			loan.FOIR = d("0.6")
			loan.LTR = d("0.95")

			got := est.Rate(ctx, "p1", loan)

			Convey("Then the estimate is floored at the configured minimum", func() {
				// hist=0, rule=0.5-0.2-0.1-0.1=0.1 -> blend 0.03, floored at 0.10
				So(got.Equal(d("0.10")), ShouldBeTrue)
			})
		})
	})

	Convey("Given an estimator without provider or cache", t, func() {
		est := approval.New(nil, nil)

		Convey("Then estimation still never fails", func() {
			got := est.Rate(ctx, "p1", loanWithScore(700))
			// hist=0.75 default, rule=0.5+0.1+0.05=0.65 -> 0.525 + 0.195 = 0.72
			So(got.Equal(d("0.72")), ShouldBeTrue)
		})
	})

	Convey("Given a fully historical blend weight", t, func() {
		provider := &stubProvider{stats: map[approval.Key]approval.Sample{
			{PartnerID: "p1", Bucket: "750-799"}: {TotalApps: 4, ApprovedApps: 3},
		}}
		est := approval.New(provider, newMapCache(),
			approval.WithHistoricalWeight(d("1")),
		)

		Convey("Then the rule score contributes nothing", func() {
			got := est.Rate(ctx, "p1", loanWithScore(760))
			So(got.Equal(d("0.75")), ShouldBeTrue)
		})
	})
}
