package simulate_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/finbridge/colend/internal/simulate"
)

func TestRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping simulation sampling in short mode")
	}

	ctx := context.Background()

	Convey("Given a seeded simulation over three partners", t, func() {
		var buf bytes.Buffer
		cfg := simulate.Config{Trials: 10000, Seed: 7, Partners: 3}

		Convey("When the simulation runs", func() {
			report, err := simulate.Run(ctx, cfg, &buf)

			Convey("Then frequencies track the expected weights within 2%", func() {
				So(err, ShouldBeNil)
				So(report.Trials, ShouldEqual, 10000)
				So(len(report.Outcomes), ShouldEqual, 3)
				So(report.MaxDeviation, ShouldBeLessThan, 0.02)

				total := 0
				for _, o := range report.Outcomes {
					total += o.Selected
				}
				So(total, ShouldEqual, 10000)
			})

			Convey("Then the summary lists every partner", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "sim-bank-1")
				So(out, ShouldContainSubstring, "sim-bank-3")
				So(out, ShouldContainSubstring, "max_deviation")
			})
		})
	})

	Convey("Given a canceled context", t, func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		Convey("When the simulation runs", func() {
			_, err := simulate.Run(canceled, simulate.Config{Trials: 100, Seed: 1}, nil)

			Convey("Then it stops with the context error", func() {
				So(err, ShouldNotBeNil)
				So(strings.Contains(err.Error(), context.Canceled.Error()), ShouldBeTrue)
			})
		})
	})
}
