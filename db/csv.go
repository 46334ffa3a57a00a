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

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/stockparfait/errors"
)

// MonthlyRowConfig sets the custom headers of the input CSV file for monthly
// security rows. Empty cells parse as missing values.
type MonthlyRowConfig struct {
	PermNo string `toml:"permno"`
	Date   string `toml:"date"`
	ShrCd  string `toml:"shrcd"`
	ExchCd string `toml:"exchcd"`
	SicCd  string `toml:"siccd"`
	Prc    string `toml:"prc"`
	Bid    string `toml:"bid"`
	Ask    string `toml:"ask"`
	BidLo  string `toml:"bidlo"`
	AskHi  string `toml:"askhi"`
	Vol    string `toml:"vol"`
	Ret    string `toml:"ret"`
	RetX   string `toml:"retx"`
	ShrOut string `toml:"shrout"`
	CfacPr string `toml:"cfacpr"`
	CfacSh string `toml:"cfacshr"`
	Spread string `toml:"spread"`
}

// NewMonthlyRowConfig creates a config with the source table's native column
// names.
func NewMonthlyRowConfig() *MonthlyRowConfig {
	return &MonthlyRowConfig{
		PermNo: "permno",
		Date:   "date",
		ShrCd:  "shrcd",
		ExchCd: "exchcd",
		SicCd:  "siccd",
		Prc:    "prc",
		Bid:    "bid",
		Ask:    "ask",
		BidLo:  "bidlo",
		AskHi:  "askhi",
		Vol:    "vol",
		Ret:    "ret",
		RetX:   "retx",
		ShrOut: "shrout",
		CfacPr: "cfacpr",
		CfacSh: "cfacshr",
		Spread: "spread",
	}
}

const (
	monthlyPermNo int = iota
	monthlyDate
	monthlyShrCd
	monthlyExchCd
	monthlySicCd
	monthlyPrc
	monthlyBid
	monthlyAsk
	monthlyBidLo
	monthlyAskHi
	monthlyVol
	monthlyRet
	monthlyRetX
	monthlyShrOut
	monthlyCfacPr
	monthlyCfacSh
	monthlySpread
	monthlyLast // keep it last; not a real value.
)

func (c *MonthlyRowConfig) columns() []string {
	cols := make([]string, monthlyLast)
	cols[monthlyPermNo] = c.PermNo
	cols[monthlyDate] = c.Date
	cols[monthlyShrCd] = c.ShrCd
	cols[monthlyExchCd] = c.ExchCd
	cols[monthlySicCd] = c.SicCd
	cols[monthlyPrc] = c.Prc
	cols[monthlyBid] = c.Bid
	cols[monthlyAsk] = c.Ask
	cols[monthlyBidLo] = c.BidLo
	cols[monthlyAskHi] = c.AskHi
	cols[monthlyVol] = c.Vol
	cols[monthlyRet] = c.Ret
	cols[monthlyRetX] = c.RetX
	cols[monthlyShrOut] = c.ShrOut
	cols[monthlyCfacPr] = c.CfacPr
	cols[monthlyCfacSh] = c.CfacSh
	cols[monthlySpread] = c.Spread
	return cols
}

// MapColumns maps the i'th header column to the corresponding MonthlyRow
// field. Headers that don't match any configured column are mapped to -1.
func (c *MonthlyRowConfig) MapColumns(header []string) []int {
	m := make([]int, len(header))
	cols := c.columns()
	for i, h := range header {
		m[i] = -1
		for j, n := range cols {
			if h == n {
				m[i] = j
				break
			}
		}
	}
	return m
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// parseValue parses a float cell; an empty cell is a missing value.
func parseValue(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseCode parses an integer code cell; an empty cell maps to NoCode.
func parseCode(s string) (int32, error) {
	if s == "" {
		return NoCode, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

// Parse a single CSV row into a MonthlyRow.
func (c *MonthlyRowConfig) Parse(row []string, colMap []int) (MonthlyRow, error) {
	nan := math.NaN()
	r := MonthlyRow{
		ShrCd:  NoCode,
		ExchCd: NoCode,
		SicCd:  NoCode,
		Prc:    nan,
		Bid:    nan,
		Ask:    nan,
		BidLo:  nan,
		AskHi:  nan,
		Vol:    nan,
		Ret:    nan,
		RetX:   nan,
		ShrOut: nan,
		CfacPr: nan,
		CfacSh: nan,
		Spread: nan,
	}
	var err error
	for i, cell := range row {
		if i >= len(colMap) {
			break
		}
		switch colMap[i] {
		case monthlyPermNo:
			var v uint64
			if v, err = strconv.ParseUint(cell, 10, 32); err != nil {
				return r, errors.Annotate(err, "failed to parse permno: %q", cell)
			}
			r.PermNo = uint32(v)
		case monthlyDate:
			if r.Date, err = NewDateFromString(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse date: %q", cell)
			}
		case monthlyShrCd:
			if r.ShrCd, err = parseCode(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse shrcd: %q", cell)
			}
		case monthlyExchCd:
			if r.ExchCd, err = parseCode(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse exchcd: %q", cell)
			}
		case monthlySicCd:
			if r.SicCd, err = parseCode(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse siccd: %q", cell)
			}
		case monthlyPrc:
			if r.Prc, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse prc: %q", cell)
			}
		case monthlyBid:
			if r.Bid, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse bid: %q", cell)
			}
		case monthlyAsk:
			if r.Ask, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse ask: %q", cell)
			}
		case monthlyBidLo:
			if r.BidLo, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse bidlo: %q", cell)
			}
		case monthlyAskHi:
			if r.AskHi, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse askhi: %q", cell)
			}
		case monthlyVol:
			if r.Vol, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse vol: %q", cell)
			}
		case monthlyRet:
			if r.Ret, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse ret: %q", cell)
			}
		case monthlyRetX:
			if r.RetX, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse retx: %q", cell)
			}
		case monthlyShrOut:
			if r.ShrOut, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse shrout: %q", cell)
			}
		case monthlyCfacPr:
			if r.CfacPr, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse cfacpr: %q", cell)
			}
		case monthlyCfacSh:
			if r.CfacSh, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse cfacshr: %q", cell)
			}
		case monthlySpread:
			if r.Spread, err = parseValue(cell); err != nil {
				return r, errors.Annotate(err, "failed to parse spread: %q", cell)
			}
		}
	}
	return r, nil
}

// ReadCSVMonthly reads the raw monthly security file from CSV. The file must
// have a header containing at least the permno and date columns. Columns with
// an unrecognized header are ignored; missing columns parse as missing values.
func ReadCSVMonthly(r io.Reader, c *MonthlyRowConfig) ([]MonthlyRow, error) {
	csvReader := csv.NewReader(r)
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read monthly rows from CSV")
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	header := rows[0]
	rows = rows[1:]
	if !hasColumn(header, c.PermNo) || !hasColumn(header, c.Date) {
		return nil, errors.Reason(
			"monthly CSV requires %q and %q columns", c.PermNo, c.Date)
	}
	colMap := c.MapColumns(header)
	res := make([]MonthlyRow, 0, len(rows))
	for i, row := range rows {
		mr, err := c.Parse(row, colMap)
		if err != nil {
			return nil, errors.Annotate(err, "failed to parse row %d", i)
		}
		res = append(res, mr)
	}
	return res, nil
}

// DelistingRowConfig sets the custom headers of the input CSV file for
// delisting events.
type DelistingRowConfig struct {
	PermNo string `toml:"permno"`
	Date   string `toml:"dlstdt"`
	Ret    string `toml:"dlret"`
}

// NewDelistingRowConfig creates a config with the source table's native
// column names.
func NewDelistingRowConfig() *DelistingRowConfig {
	return &DelistingRowConfig{PermNo: "permno", Date: "dlstdt", Ret: "dlret"}
}

// ReadCSVDelistings reads delisting events from CSV. The file must have a
// header containing the permno, delisting date and delisting return columns.
func ReadCSVDelistings(r io.Reader, c *DelistingRowConfig) ([]DelistingRow, error) {
	csvReader := csv.NewReader(r)
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read delistings from CSV")
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	header := rows[0]
	rows = rows[1:]
	for _, col := range []string{c.PermNo, c.Date, c.Ret} {
		if !hasColumn(header, col) {
			return nil, errors.Reason("delistings CSV requires a %q column", col)
		}
	}
	res := make([]DelistingRow, 0, len(rows))
	for i, row := range rows {
		var dr DelistingRow
		dr.Ret = math.NaN()
		for j, cell := range row {
			if j >= len(header) {
				break
			}
			switch header[j] {
			case c.PermNo:
				v, err := strconv.ParseUint(cell, 10, 32)
				if err != nil {
					return nil, errors.Annotate(err, "failed to parse permno in row %d: %q", i, cell)
				}
				dr.PermNo = uint32(v)
			case c.Date:
				if dr.Date, err = NewDateFromString(cell); err != nil {
					return nil, errors.Annotate(err, "failed to parse dlstdt in row %d: %q", i, cell)
				}
			case c.Ret:
				if dr.Ret, err = parseValue(cell); err != nil {
					return nil, errors.Annotate(err, "failed to parse dlret in row %d: %q", i, cell)
				}
			}
		}
		res = append(res, dr)
	}
	return res, nil
}
