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

import "github.com/stockparfait/errors"

// SICDivisions classifies raw SIC codes into the standard top-level
// divisions. Codes in the gaps of the division table (e.g. 1800-1999) are
// unclassified.
func SICDivisions() *Scheme {
	return &Scheme{
		Name:         "sic",
		Unclassified: "Missing",
		Groups: []Group{
			{"Agriculture", []Range{{1, 999}}},
			{"Mining", []Range{{1000, 1499}}},
			{"Construction", []Range{{1500, 1799}}},
			{"Manufacturing", []Range{{2000, 3999}}},
			{"Transportation", []Range{{4000, 4899}}},
			{"Utilities", []Range{{4900, 4999}}},
			{"Wholesale", []Range{{5000, 5199}}},
			{"Retail", []Range{{5200, 5999}}},
			{"Finance", []Range{{6000, 6799}}},
			{"Services", []Range{{7000, 8999}}},
			{"Public", []Range{{9000, 9999}}},
		},
	}
}

// FamaFrench5 classifies raw SIC codes into the five Fama-French industry
// groups; "Other" is the catch-all.
func FamaFrench5() *Scheme {
	return &Scheme{
		Name:         "ff5",
		Unclassified: "Other",
		Groups: []Group{
			{"Cnsmr", []Range{
				{100, 999}, {2000, 2399}, {2500, 2519}, {2590, 2599},
				{2700, 2749}, {2770, 2799}, {3100, 3199}, {3630, 3659},
				{3710, 3711}, {3714, 3714}, {3716, 3716}, {3750, 3751},
				{3792, 3792}, {3900, 3939}, {3940, 3989}, {3990, 3999},
				{5000, 5999}, {7200, 7299}, {7600, 7699},
			}},
			{"Manuf", []Range{
				{1200, 1399}, {2520, 2589}, {2600, 2699}, {2750, 2769},
				{2800, 2829}, {2840, 2899}, {2900, 2999}, {3000, 3099},
				{3200, 3569}, {3580, 3621}, {3623, 3629}, {3700, 3709},
				{3712, 3713}, {3715, 3715}, {3717, 3749}, {3752, 3791},
				{3793, 3799}, {3860, 3899}, {4900, 4949},
			}},
			{"HiTec", []Range{
				{3570, 3579}, {3622, 3622}, {3660, 3692}, {3694, 3699},
				{3810, 3839}, {4800, 4899}, {7370, 7379}, {7391, 7391},
				{8730, 8734},
			}},
			{"Hlth", []Range{
				{2830, 2839}, {3693, 3693}, {3840, 3859}, {8000, 8099},
			}},
		},
	}
}

// FamaFrench10 classifies raw SIC codes into the ten Fama-French industry
// groups; "Other" is the catch-all.
func FamaFrench10() *Scheme {
	return &Scheme{
		Name:         "ff10",
		Unclassified: "Other",
		Groups: []Group{
			{"NoDur", []Range{
				{100, 999}, {2000, 2399}, {2700, 2749}, {2770, 2799},
				{3100, 3199}, {3940, 3989},
			}},
			{"Durbl", []Range{
				{2500, 2519}, {2590, 2599}, {3630, 3659}, {3710, 3711},
				{3714, 3714}, {3716, 3716}, {3750, 3751}, {3792, 3792},
				{3900, 3939}, {3990, 3999},
			}},
			{"Manuf", []Range{
				{2520, 2589}, {2600, 2699}, {2750, 2769}, {2800, 2829},
				{2840, 2899}, {3000, 3099}, {3200, 3569}, {3580, 3629},
				{3700, 3709}, {3712, 3713}, {3715, 3715}, {3717, 3749},
				{3752, 3791}, {3793, 3799}, {3830, 3839}, {3860, 3899},
			}},
			{"Enrgy", []Range{{1200, 1399}, {2900, 2999}}},
			{"HiTec", []Range{
				{3570, 3579}, {3660, 3692}, {3694, 3699}, {3810, 3829},
				{7370, 7379},
			}},
			{"Telcm", []Range{{4800, 4899}}},
			{"Shops", []Range{{5000, 5999}, {7200, 7299}, {7600, 7699}}},
			{"Hlth", []Range{
				{2830, 2839}, {3693, 3693}, {3840, 3859}, {8000, 8099},
			}},
			{"Utils", []Range{{4900, 4949}}},
		},
	}
}

// Schemes lists all built-in classification schemes.
func Schemes() []*Scheme {
	return []*Scheme{SICDivisions(), FamaFrench5(), FamaFrench10()}
}

// SchemeByName looks up a built-in scheme by its name.
func SchemeByName(name string) (*Scheme, error) {
	for _, s := range Schemes() {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, errors.Reason("unknown industry scheme: %q", name)
}
