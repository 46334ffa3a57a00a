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

package industry

import (
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

func TestScheme(t *testing.T) {
	t.Parallel()

	Convey("Check", t, func() {
		Convey("accepts disjoint ranges", func() {
			s := &Scheme{Name: "test", Unclassified: "Other", Groups: []Group{
				{"A", []Range{{100, 199}, {300, 399}}},
				{"B", []Range{{200, 299}}},
			}}
			So(s.Check(), ShouldBeNil)
		})

		Convey("rejects overlapping ranges across groups", func() {
			s := &Scheme{Name: "test", Unclassified: "Other", Groups: []Group{
				{"A", []Range{{100, 250}}},
				{"B", []Range{{200, 299}}},
			}}
			So(s.Check(), ShouldNotBeNil)
		})

		Convey("rejects a shared boundary code", func() {
			s := &Scheme{Name: "test", Unclassified: "Other", Groups: []Group{
				{"A", []Range{{100, 200}}},
				{"B", []Range{{200, 299}}},
			}}
			So(s.Check(), ShouldNotBeNil)
		})

		Convey("rejects inverted ranges and a group named as the catch-all", func() {
			So((&Scheme{Name: "t", Unclassified: "Other", Groups: []Group{
				{"A", []Range{{200, 100}}},
			}}).Check(), ShouldNotBeNil)
			So((&Scheme{Name: "t", Unclassified: "Other", Groups: []Group{
				{"Other", []Range{{100, 200}}},
			}}).Check(), ShouldNotBeNil)
		})
	})

	Convey("built-in schemes are well-formed", t, func() {
		for _, s := range Schemes() {
			So(s.Check(), ShouldBeNil)
		}
	})

	Convey("classification is a total function", t, func() {
		// Every admissible code belongs to exactly one group or the catch-all,
		// including codes at exact range boundaries.
		for _, s := range Schemes() {
			labels := s.Labels()
			for code := int32(0); code <= 9999; code++ {
				got := s.Classify(code)
				n := 0
				for _, l := range labels {
					if l == got {
						n++
					}
				}
				So(n, ShouldEqual, 1)
			}
		}
	})

	Convey("Classify against the reference tables", t, func() {
		sic := SICDivisions()
		So(sic.Classify(3571), ShouldEqual, "Manufacturing")
		So(sic.Classify(6020), ShouldEqual, "Finance")
		So(sic.Classify(1999), ShouldEqual, "Missing") // gap in the division table
		So(sic.Classify(0), ShouldEqual, "Missing")
		// Boundary codes land in their own group, not a neighbor.
		So(sic.Classify(4899), ShouldEqual, "Transportation")
		So(sic.Classify(4900), ShouldEqual, "Utilities")

		ff5 := FamaFrench5()
		So(ff5.Classify(3571), ShouldEqual, "HiTec")
		So(ff5.Classify(2835), ShouldEqual, "Hlth")
		So(ff5.Classify(5411), ShouldEqual, "Cnsmr")
		So(ff5.Classify(6020), ShouldEqual, "Other")

		ff10 := FamaFrench10()
		So(ff10.Classify(3571), ShouldEqual, "HiTec")
		So(ff10.Classify(4813), ShouldEqual, "Telcm")
		So(ff10.Classify(2911), ShouldEqual, "Enrgy")
		So(ff10.Classify(5411), ShouldEqual, "Shops")
	})

	Convey("SchemeByName", t, func() {
		s, err := SchemeByName("ff10")
		So(err, ShouldBeNil)
		So(s.Name, ShouldEqual, "ff10")
		_, err = SchemeByName("nope")
		So(err, ShouldNotBeNil)
	})

	Convey("Indicators", t, func() {
		axes := testAxes(2, 11, 22, 33)
		codes := panel.NewMatrix(axes)
		codes.Set(0, 0, 3571) // Manufacturing
		codes.Set(0, 1, 6020) // Finance
		// Security 33 has no code in period 0.
		codes.Set(1, 0, 3571)
		codes.Set(1, 2, 1999) // unclassified gap code

		masks := SICDivisions().Indicators(codes)
		So(len(masks), ShouldEqual, 12)
		So(masks["Manufacturing"].At(0, 0), ShouldBeTrue)
		So(masks["Finance"].At(0, 1), ShouldBeTrue)
		So(masks["Missing"].At(1, 2), ShouldBeTrue)

		Convey("a missing code assigns no group at all", func() {
			for _, m := range masks {
				So(m.At(0, 2), ShouldBeFalse)
			}
		})

		Convey("each classified cell is flagged in exactly one group", func() {
			n := 0
			for _, m := range masks {
				if m.At(0, 0) {
					n++
				}
			}
			So(n, ShouldEqual, 1)
		})
	})
}
