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

package derive

import (
	"testing"

	"github.com/tlorans/assayinganomalies/panel"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMarketCap(t *testing.T) {
	t.Parallel()

	Convey("MarketCap", t, func() {
		axes := testAxes(2, 11, 22)
		prc := panel.NewMatrix(axes)
		shrout := panel.NewMatrix(axes)

		Convey("applies the price magnitude", func() {
			prc.Set(0, 0, -5.0) // bid/ask midpoint convention
			shrout.Set(0, 0, 1000.0)
			prc.Set(1, 0, 20.0)
			shrout.Set(1, 0, 300.0)

			m, err := MarketCap(prc, shrout)
			So(err, ShouldBeNil)
			So(m.At(0, 0), ShouldEqual, 5000.0)
			So(m.At(1, 0), ShouldEqual, 6000.0)
		})

		Convey("either input missing makes the cell missing", func() {
			prc.Set(0, 1, 10.0)
			shrout.Set(1, 1, 100.0)
			m, err := MarketCap(prc, shrout)
			So(err, ShouldBeNil)
			So(panel.IsMissing(m.At(0, 1)), ShouldBeTrue) // shrout missing
			So(panel.IsMissing(m.At(1, 1)), ShouldBeTrue) // prc missing
		})

		Convey("a zero product is missing, not a zero weight", func() {
			prc.Set(0, 0, 0.0)
			shrout.Set(0, 0, 1000.0)
			prc.Set(1, 0, 10.0)
			shrout.Set(1, 0, 0.0)
			m, err := MarketCap(prc, shrout)
			So(err, ShouldBeNil)
			So(panel.IsMissing(m.At(0, 0)), ShouldBeTrue)
			So(panel.IsMissing(m.At(1, 0)), ShouldBeTrue)
		})

		Convey("fails on mismatched axes", func() {
			_, err := MarketCap(prc, panel.NewMatrix(testAxes(3, 11, 22)))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "axis mismatch")
		})
	})
}
