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

// Package industry maps raw industry codes to coarser industry groups under
// several classification schemes and aggregates capitalization-weighted group
// returns.
package industry

import (
	"sort"

	"github.com/stockparfait/errors"
	"github.com/tlorans/assayinganomalies/panel"
)

// Range of raw industry codes, inclusive on both ends. The reference
// classification tables list their code intervals with both boundaries
// belonging to the interval, so a shared edge between two groups is a table
// error, not a tie to break.
type Range struct {
	Lo int32
	Hi int32
}

// Contains checks whether the code falls in the range.
func (r Range) Contains(code int32) bool {
	return r.Lo <= code && code <= r.Hi
}

// Group is one industry group of a scheme: a label and the raw-code ranges
// mapping to it.
type Group struct {
	Label  string
	Ranges []Range
}

// Scheme is a classification of raw industry codes into a fixed set of group
// labels. Codes outside every range map to the Unclassified catch-all, making
// classification a total function. Schemes are immutable reference data.
type Scheme struct {
	Name         string
	Groups       []Group
	Unclassified string
}

// Check validates the scheme: every range is well-formed and no two ranges
// overlap, within or across groups.
func (s *Scheme) Check() error {
	type labeled struct {
		r     Range
		label string
	}
	var all []labeled
	for _, g := range s.Groups {
		if g.Label == s.Unclassified {
			return errors.Reason("scheme %s: group %q duplicates the catch-all label",
				s.Name, g.Label)
		}
		for _, r := range g.Ranges {
			if r.Hi < r.Lo {
				return errors.Reason("scheme %s: group %q has inverted range [%d, %d]",
					s.Name, g.Label, r.Lo, r.Hi)
			}
			all = append(all, labeled{r, g.Label})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].r.Lo < all[j].r.Lo })
	for i := 1; i < len(all); i++ {
		if all[i].r.Lo <= all[i-1].r.Hi {
			return errors.Reason("scheme %s: ranges [%d, %d] (%s) and [%d, %d] (%s) overlap",
				s.Name, all[i-1].r.Lo, all[i-1].r.Hi, all[i-1].label,
				all[i].r.Lo, all[i].r.Hi, all[i].label)
		}
	}
	return nil
}

// Classify maps a raw code to its group label, or to the catch-all when no
// range contains it.
func (s *Scheme) Classify(code int32) string {
	for _, g := range s.Groups {
		for _, r := range g.Ranges {
			if r.Contains(code) {
				return g.Label
			}
		}
	}
	return s.Unclassified
}

// Labels lists the scheme's group labels in table order, the catch-all last.
func (s *Scheme) Labels() []string {
	labels := make([]string, 0, len(s.Groups)+1)
	for _, g := range s.Groups {
		labels = append(labels, g.Label)
	}
	return append(labels, s.Unclassified)
}

// Indicators produces one membership Mask per group label from the raw
// industry-code matrix. A missing code assigns the cell to no group at all.
func (s *Scheme) Indicators(codes *panel.Matrix) map[string]*panel.Mask {
	axes := codes.Axes()
	masks := make(map[string]*panel.Mask, len(s.Groups)+1)
	for _, label := range s.Labels() {
		masks[label] = panel.NewMask(axes)
	}
	for t := 0; t < axes.NumPeriods(); t++ {
		for c := 0; c < axes.NumSecurities(); c++ {
			v := codes.At(t, c)
			if panel.IsMissing(v) {
				continue
			}
			masks[s.Classify(int32(v))].Set(t, c, true)
		}
	}
	return masks
}
