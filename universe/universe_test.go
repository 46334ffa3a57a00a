// Copyright 2025 Assaying Anomalies

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package universe

import (
	"context"
	"testing"

	"github.com/tlorans/assayinganomalies/db"
	"github.com/tlorans/assayinganomalies/panel"

	. "github.com/smartystreets/goconvey/convey"
)

func testAxes(months int, securities ...uint32) *panel.Axes {
	periods := make([]db.Date, months)
	for i := range periods {
		periods[i] = db.NewMonth(2000, 1).AddMonths(i)
	}
	axes, err := panel.NewAxesFrom(periods, securities)
	if err != nil {
		panic(err)
	}
	return axes
}

// testPanel holds two periods of four securities with prices, share codes,
// exchange codes and market caps.
func testPanel() *panel.Panel {
	axes := testAxes(2, 11, 22, 33, 44)
	p := panel.New(axes)
	prc := panel.NewMatrix(axes)
	shrcd := panel.NewMatrix(axes)
	exchcd := panel.NewMatrix(axes)
	mktcap := panel.NewMatrix(axes)
	for t := 0; t < 2; t++ {
		prc.Set(t, 0, 10)
		prc.Set(t, 1, -3) // quote midpoint
		prc.Set(t, 2, 50)
		// Security 44 has no price record in period 0.
		if t > 0 {
			prc.Set(t, 3, 2)
		}
		shrcd.Set(t, 0, 10)
		shrcd.Set(t, 1, 11)
		shrcd.Set(t, 2, 31) // ADR
		shrcd.Set(t, 3, 10)
		exchcd.Set(t, 0, float64(db.ExchangeNYSE))
		exchcd.Set(t, 1, float64(db.ExchangeNASDAQ))
		exchcd.Set(t, 2, float64(db.ExchangeNYSE))
		exchcd.Set(t, 3, float64(db.ExchangeAMEX))
		mktcap.Set(t, 0, 100)
		mktcap.Set(t, 1, 200)
		mktcap.Set(t, 2, 400)
		mktcap.Set(t, 3, 300)
	}
	for name, m := range map[string]*panel.Matrix{
		"prc": prc, "shrcd": shrcd, "exchcd": exchcd, "mktcap": mktcap,
	} {
		if err := p.AddMatrix(name, m); err != nil {
			panic(err)
		}
	}
	return p
}

func TestUniverse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	Convey("Init", t, func() {
		So((&Rule{Kind: KindShareCode, ShareCodes: []int32{10, 11}}).Init(), ShouldBeNil)
		So((&Rule{Kind: KindShareCode}).Init(), ShouldNotBeNil)
		So((&Rule{Kind: KindExchange}).Init(), ShouldNotBeNil)
		So((&Rule{Kind: KindMinPrice}).Init(), ShouldNotBeNil)
		So((&Rule{Kind: KindSizePercentile, Percentile: 100}).Init(), ShouldNotBeNil)
		So((&Rule{Kind: "bogus"}).Init(), ShouldNotBeNil)
		So((&Universe{Rules: []Rule{{Kind: KindMinPrice, MinPrice: 5}}}).Init(), ShouldNotBeNil)
		So((&Universe{Name: "all"}).Init(), ShouldBeNil)
	})

	Convey("Build", t, func() {
		p := testPanel()

		Convey("with no rules keeps every priced cell", func() {
			u := &Universe{Name: "all"}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			So(mask.Count(0), ShouldEqual, 3)
			So(mask.Count(1), ShouldEqual, 4)
			So(mask.At(0, 3), ShouldBeFalse)
		})

		Convey("share_code keeps only the admissible codes", func() {
			u := &Universe{Name: "common", Rules: []Rule{
				{Kind: KindShareCode, ShareCodes: []int32{10, 11}},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			So(mask.At(1, 0), ShouldBeTrue)
			So(mask.At(1, 1), ShouldBeTrue)
			So(mask.At(1, 2), ShouldBeFalse)
			So(mask.At(1, 3), ShouldBeTrue)
		})

		Convey("exchange keeps only the admissible listings", func() {
			u := &Universe{Name: "nyse", Rules: []Rule{
				{Kind: KindExchange, Exchanges: []int32{db.ExchangeNYSE}},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			So(mask.At(1, 0), ShouldBeTrue)
			So(mask.At(1, 1), ShouldBeFalse)
			So(mask.At(1, 2), ShouldBeTrue)
			So(mask.At(1, 3), ShouldBeFalse)
		})

		Convey("min_price uses the magnitude of quote midpoints", func() {
			u := &Universe{Name: "liquid", Rules: []Rule{
				{Kind: KindMinPrice, MinPrice: 3},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			So(mask.At(1, 0), ShouldBeTrue)
			So(mask.At(1, 1), ShouldBeTrue) // |-3| passes
			So(mask.At(1, 2), ShouldBeTrue)
			So(mask.At(1, 3), ShouldBeFalse) // price 2
		})

		Convey("size_percentile cuts at the per-period breakpoint", func() {
			u := &Universe{Name: "large", Rules: []Rule{
				{Kind: KindSizePercentile, Percentile: 50},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			// Period 1 caps: 100, 200, 400, 300; the median cut drops 100.
			So(mask.At(1, 0), ShouldBeFalse)
			So(mask.At(1, 1), ShouldBeTrue)
			So(mask.At(1, 2), ShouldBeTrue)
			So(mask.At(1, 3), ShouldBeTrue)
		})

		Convey("size_percentile with exchange breakpoints", func() {
			// NYSE caps are 100 and 400; the 50% breakpoint is 100, which
			// every listing clears regardless of its own exchange.
			u := &Universe{Name: "large", Rules: []Rule{
				{
					Kind:                KindSizePercentile,
					Percentile:          50,
					BreakpointExchanges: []int32{db.ExchangeNYSE},
				},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			So(mask.Count(1), ShouldEqual, 4)
		})

		Convey("membership at a period ignores later-period data", func() {
			u := &Universe{Name: "large", Rules: []Rule{
				{Kind: KindSizePercentile, Percentile: 50},
			}}
			before, err := u.Build(ctx, p)
			So(err, ShouldBeNil)

			// Rewrite period 1 wholesale: caps, prices, even a missing cell.
			mktcap, err := p.Matrix("mktcap")
			So(err, ShouldBeNil)
			mktcap.Set(1, 0, 1e9)
			mktcap.Set(1, 2, panel.Missing())
			prc, err := p.Matrix("prc")
			So(err, ShouldBeNil)
			prc.Set(1, 3, 0.5)

			after, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			for s := 0; s < p.Axes().NumSecurities(); s++ {
				So(after.At(0, s), ShouldEqual, before.At(0, s))
			}
		})

		Convey("rules conjoin", func() {
			u := &Universe{Name: "nyse_large", Rules: []Rule{
				{Kind: KindExchange, Exchanges: []int32{db.ExchangeNYSE}},
				{Kind: KindSizePercentile, Percentile: 60},
			}}
			mask, err := u.Build(ctx, p)
			So(err, ShouldBeNil)
			// NYSE leaves caps 100 and 400; the 60% cut leaves 400 only.
			So(mask.Count(1), ShouldEqual, 1)
			So(mask.At(1, 2), ShouldBeTrue)
		})

		Convey("fails without the required matrix", func() {
			bare := panel.New(testAxes(1, 11))
			u := &Universe{Name: "all"}
			_, err := u.Build(ctx, bare)
			So(err, ShouldNotBeNil)
		})
	})
}
