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

package db

// Constraints to filter the raw long-format records before the panel axes are
// built. Zero value means no constraints. The same Constraints instance must
// be applied both when building the axes and when aligning raw fields, so that
// a record excluded from one is excluded from the other.
type Constraints struct {
	PermNos        map[uint32]struct{}
	ExcludePermNos map[uint32]struct{}
	ShareCodes     map[int32]struct{}
	ExchangeCodes  map[int32]struct{}
	Start          Date
	End            Date
}

// NewConstraints creates a new Constraints with no constraints.
func NewConstraints() *Constraints {
	return &Constraints{
		PermNos:        make(map[uint32]struct{}),
		ExcludePermNos: make(map[uint32]struct{}),
		ShareCodes:     make(map[int32]struct{}),
		ExchangeCodes:  make(map[int32]struct{}),
	}
}

// PermNo adds security identifiers to the constraints.
func (c *Constraints) PermNo(permnos ...uint32) *Constraints {
	for _, p := range permnos {
		c.PermNos[p] = struct{}{}
	}
	return c
}

// ExcludePermNo adds security identifiers to be ignored.
func (c *Constraints) ExcludePermNo(permnos ...uint32) *Constraints {
	for _, p := range permnos {
		c.ExcludePermNos[p] = struct{}{}
	}
	return c
}

// ShareCode adds share codes to the constraints.
func (c *Constraints) ShareCode(codes ...int32) *Constraints {
	for _, sc := range codes {
		c.ShareCodes[sc] = struct{}{}
	}
	return c
}

// DomesticCommonEquity restricts the sample to share codes 10 and 11.
func (c *Constraints) DomesticCommonEquity() *Constraints {
	return c.ShareCode(10, 11)
}

// ExchangeCode adds exchange codes to the constraints.
func (c *Constraints) ExchangeCode(codes ...int32) *Constraints {
	for _, ec := range codes {
		c.ExchangeCodes[ec] = struct{}{}
	}
	return c
}

// StartAt adds start date to the Constraints.
func (c *Constraints) StartAt(dt Date) *Constraints {
	c.Start = dt
	return c
}

// EndAt adds end date to the Constraints.
func (c *Constraints) EndAt(dt Date) *Constraints {
	c.End = dt
	return c
}

// CheckPermNo whether it satisfies the constraints.
func (c *Constraints) CheckPermNo(permno uint32) bool {
	if len(c.ExcludePermNos) > 0 {
		if _, ok := c.ExcludePermNos[permno]; ok {
			return false
		}
	}
	if len(c.PermNos) > 0 {
		if _, ok := c.PermNos[permno]; !ok {
			return false
		}
	}
	return true
}

// CheckDate checks that the date is within the constrained range. Both ends
// are inclusive.
func (c *Constraints) CheckDate(d Date) bool {
	if !c.Start.IsZero() && d.Before(c.Start) {
		return false
	}
	if !c.End.IsZero() && d.After(c.End) {
		return false
	}
	return true
}

// CheckMonthlyRow whether it satisfies the constraints.
func (c *Constraints) CheckMonthlyRow(r MonthlyRow) bool {
	if !c.CheckPermNo(r.PermNo) {
		return false
	}
	if !c.CheckDate(r.Date) {
		return false
	}
	if len(c.ShareCodes) > 0 {
		if _, ok := c.ShareCodes[r.ShrCd]; !ok {
			return false
		}
	}
	if len(c.ExchangeCodes) > 0 {
		if _, ok := c.ExchangeCodes[r.ExchCd]; !ok {
			return false
		}
	}
	return true
}

// CheckDelisting whether it satisfies the constraints. Delisting events are
// not filtered by share or exchange code: the event carries neither, and the
// security it belongs to has already passed the row filter.
func (c *Constraints) CheckDelisting(r DelistingRow) bool {
	return c.CheckPermNo(r.PermNo) && c.CheckDate(r.Date)
}

// FilterMonthly returns the subset of rows satisfying the constraints,
// preserving the input order.
func (c *Constraints) FilterMonthly(rows []MonthlyRow) []MonthlyRow {
	res := []MonthlyRow{}
	for _, r := range rows {
		if c.CheckMonthlyRow(r) {
			res = append(res, r)
		}
	}
	return res
}

// FilterDelistings returns the subset of delisting events satisfying the
// constraints, preserving the input order.
func (c *Constraints) FilterDelistings(rows []DelistingRow) []DelistingRow {
	res := []DelistingRow{}
	for _, r := range rows {
		if c.CheckDelisting(r) {
			res = append(res, r)
		}
	}
	return res
}
