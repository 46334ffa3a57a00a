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
	"context"
	"runtime"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/db"
)

// Field extracts one raw variable from a monthly record. Value returns the
// missing sentinel when the record has no value for the field.
type Field struct {
	Name  string
	Value func(r db.MonthlyRow) float64
}

func codeValue(c int32) float64 {
	if c == db.NoCode {
		return Missing()
	}
	return float64(c)
}

// MonthlyFields is the full list of raw fields aligned from the monthly
// security file. Returns are named ret_x_dl (before the delisting adjustment)
// and volume vol_x_adj (before the NASDAQ volume adjustment), following the
// source table conventions.
func MonthlyFields() []Field {
	return []Field{
		{"shrcd", func(r db.MonthlyRow) float64 { return codeValue(r.ShrCd) }},
		{"exchcd", func(r db.MonthlyRow) float64 { return codeValue(r.ExchCd) }},
		{"siccd", func(r db.MonthlyRow) float64 { return codeValue(r.SicCd) }},
		{"prc", func(r db.MonthlyRow) float64 { return r.Prc }},
		{"bid", func(r db.MonthlyRow) float64 { return r.Bid }},
		{"ask", func(r db.MonthlyRow) float64 { return r.Ask }},
		{"bidlo", func(r db.MonthlyRow) float64 { return r.BidLo }},
		{"askhi", func(r db.MonthlyRow) float64 { return r.AskHi }},
		{"vol_x_adj", func(r db.MonthlyRow) float64 { return r.Vol }},
		{"ret_x_dl", func(r db.MonthlyRow) float64 { return r.Ret }},
		{"retx", func(r db.MonthlyRow) float64 { return r.RetX }},
		{"shrout", func(r db.MonthlyRow) float64 { return r.ShrOut }},
		{"cfacpr", func(r db.MonthlyRow) float64 { return r.CfacPr }},
		{"cfacshr", func(r db.MonthlyRow) float64 { return r.CfacSh }},
		{"spread", func(r db.MonthlyRow) float64 { return r.Spread }},
	}
}

type alignedField struct {
	name   string
	matrix *Matrix
}

// Align maps each raw record onto the (period, security) grid and produces
// one Matrix per field. A record whose security or period is not on the axes
// is dropped with a warning; this should not occur when the axes were built
// from the same filtered records. Two records mapping to the same cell fail
// the run with a duplicate observation error.
func Align(ctx context.Context, axes *Axes, rows []db.MonthlyRow, fields []Field) (map[string]*Matrix, error) {
	nSec := axes.NumSecurities()
	// Cell index per record, -1 for dropped records.
	refs := make([]int, len(rows))
	occupied := make([]bool, axes.NumPeriods()*nSec)
	for i, r := range rows {
		refs[i] = -1
		t, ok := axes.PeriodIndex(r.Date)
		if !ok {
			logging.Warningf(ctx, "dropping record for security %d: period %s is not on the axes",
				r.PermNo, r.Date)
			continue
		}
		s, ok := axes.SecurityIndex(r.PermNo)
		if !ok {
			logging.Warningf(ctx, "dropping record at %s: security %d is not on the axes",
				r.Date, r.PermNo)
			continue
		}
		cell := t*nSec + s
		if occupied[cell] {
			return nil, errors.Annotate(ErrDuplicateObservation,
				"security %d has multiple records in period %s",
				r.PermNo, r.Date.MonthStart())
		}
		occupied[cell] = true
		refs[i] = cell
	}

	f := func(fld Field) alignedField {
		m := NewMatrix(axes)
		for i, r := range rows {
			if refs[i] < 0 {
				continue
			}
			m.data[refs[i]] = fld.Value(r)
		}
		return alignedField{name: fld.Name, matrix: m}
	}
	pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(), iterator.FromSlice(fields), f)
	defer pm.Close()

	res := iterator.Reduce[alignedField, map[string]*Matrix](
		pm, make(map[string]*Matrix),
		func(af alignedField, acc map[string]*Matrix) map[string]*Matrix {
			acc[af.name] = af.matrix
			return acc
		})
	return res, nil
}
