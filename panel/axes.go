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

package panel

import (
	"github.com/stockparfait/errors"
	"github.com/tlorans/assayinganomalies/db"
)

// Axes is the canonical (period x security) index grid shared by every matrix
// of one panel. Periods are contiguous calendar months in ascending order
// spanning the filtered sample; securities are in first-seen order. Axes are
// built once per run and are immutable afterwards.
type Axes struct {
	periods     []db.Date
	securities  []uint32
	periodIdx   map[db.Date]int
	securityIdx map[uint32]int
}

func newAxes(periods []db.Date, securities []uint32) *Axes {
	a := &Axes{
		periods:     periods,
		securities:  securities,
		periodIdx:   make(map[db.Date]int, len(periods)),
		securityIdx: make(map[uint32]int, len(securities)),
	}
	for i, p := range periods {
		a.periodIdx[p] = i
	}
	for i, s := range securities {
		a.securityIdx[s] = i
	}
	return a
}

// NewAxes builds the canonical axes from filtered raw records. The period
// axis is the contiguous sequence of months from the earliest to the latest
// observation month; the security axis lists each identifier once, in the
// order of first appearance.
func NewAxes(rows []db.MonthlyRow) (*Axes, error) {
	var start, end db.Date
	var securities []uint32
	seen := make(map[uint32]struct{})
	for _, r := range rows {
		m := r.Date.MonthStart()
		start = db.MinDate(start, m)
		end = db.MaxDate(end, m)
		if _, ok := seen[r.PermNo]; !ok {
			seen[r.PermNo] = struct{}{}
			securities = append(securities, r.PermNo)
		}
	}
	if len(securities) == 0 || start.IsZero() {
		return nil, errors.Annotate(ErrEmptyUniverse,
			"no securities or periods survive filtering")
	}
	periods := make([]db.Date, 0, start.MonthsTill(end)+1)
	for m := start; !m.After(end); m = m.AddMonths(1) {
		periods = append(periods, m)
	}
	return newAxes(periods, securities), nil
}

// NewAxesFrom reconstructs axes from previously built period and security
// sequences. Periods must be ascending contiguous month keys and securities
// must be unique.
func NewAxesFrom(periods []db.Date, securities []uint32) (*Axes, error) {
	if len(periods) == 0 || len(securities) == 0 {
		return nil, errors.Annotate(ErrEmptyUniverse, "no periods or securities")
	}
	for i, p := range periods {
		if p != p.MonthStart() {
			return nil, errors.Annotate(ErrAxisMismatch,
				"period %s is not a month key", p)
		}
		if i > 0 && periods[i-1].AddMonths(1) != p {
			return nil, errors.Annotate(ErrAxisMismatch,
				"periods %s and %s are not contiguous months", periods[i-1], p)
		}
	}
	seen := make(map[uint32]struct{}, len(securities))
	for _, s := range securities {
		if _, ok := seen[s]; ok {
			return nil, errors.Annotate(ErrAxisMismatch,
				"security %d appears more than once", s)
		}
		seen[s] = struct{}{}
	}
	return newAxes(periods, securities), nil
}

// Periods of the axes. The result must not be modified.
func (a *Axes) Periods() []db.Date { return a.periods }

// Securities of the axes. The result must not be modified.
func (a *Axes) Securities() []uint32 { return a.securities }

// NumPeriods is the number of rows of every matrix on these axes.
func (a *Axes) NumPeriods() int { return len(a.periods) }

// NumSecurities is the number of columns of every matrix on these axes.
func (a *Axes) NumSecurities() int { return len(a.securities) }

// PeriodIndex maps a date to its period row, normalizing to the date's month.
func (a *Axes) PeriodIndex(d db.Date) (int, bool) {
	i, ok := a.periodIdx[d.MonthStart()]
	return i, ok
}

// SecurityIndex maps a security identifier to its column.
func (a *Axes) SecurityIndex(permno uint32) (int, bool) {
	i, ok := a.securityIdx[permno]
	return i, ok
}

// Equal checks that two axes have identical period and security sequences.
func (a *Axes) Equal(b *Axes) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.periods) != len(b.periods) || len(a.securities) != len(b.securities) {
		return false
	}
	for i, p := range a.periods {
		if b.periods[i] != p {
			return false
		}
	}
	for i, s := range a.securities {
		if b.securities[i] != s {
			return false
		}
	}
	return true
}
