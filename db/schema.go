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
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/stockparfait/errors"
)

// lessLex is a lexicographic ordering on the slices of int.
func lessLex(x, y []int) bool {
	l := len(x)
	if len(y) < l {
		l = len(y)
	}
	for i := 0; i < l; i++ {
		if x[i] < y[i] {
			return true
		}
		if x[i] > y[i] {
			return false
		}
	}
	return len(x) < len(y)
}

func parseTime(s string) (time.Time, error) {
	if s == "0000-00-00" || s == "0000-00-00T00:00:00.000" {
		return time.Time{}, nil
	}
	formats := []string{
		"2006-01-02 15:04:05.999",
		"2006-01-02T15:04:05.999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
	}
	for _, format := range formats {
		if tm, err := time.Parse(format, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, errors.Reason("unsupported date format: %q", s)
}

// Date records a calendar date as year, month and day. The struct is designed
// to fit into 4 bytes.
type Date struct {
	YearVal  uint16
	MonthVal uint8
	DayVal   uint8
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = &Date{}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewMonth creates a Date keyed to a calendar month, the canonical period
// identifier of the monthly panel.
func NewMonth(year uint16, month uint8) Date {
	return Date{year, month, 1}
}

// NewDateFromTime creates a Date instance from a time.Time value in UTC.
func NewDateFromTime(t time.Time) Date {
	return Date{
		YearVal:  uint16(t.Year()),
		MonthVal: uint8(t.Month()),
		DayVal:   uint8(t.Day()),
	}
}

// NewDateFromString creates a Date instance from a string representation.
func NewDateFromString(s string) (Date, error) {
	t, err := parseTime(s)
	if err != nil {
		return Date{}, errors.Annotate(err, "failed to parse a Date string: '%s'", s)
	}
	return NewDateFromTime(t), nil
}

func (d Date) Year() uint16 { return d.YearVal }
func (d Date) Month() uint8 { return d.MonthVal }
func (d Date) Day() uint8   { return d.DayVal }

// String representation of the value.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. NOTE: unlike other methods, this
// is a pointer method.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Date JSON must be a string")
	}
	date, err := NewDateFromString(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse Date string")
	}
	*d = date
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML configs.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML configs.
func (d *Date) UnmarshalText(data []byte) error {
	date, err := NewDateFromString(string(data))
	if err != nil {
		return errors.Annotate(err, "failed to parse Date string")
	}
	*d = date
	return nil
}

// ToTime converts Date to Time in UTC.
func (d Date) ToTime() time.Time {
	return time.Date(int(d.Year()), time.Month(d.Month()), int(d.Day()), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the 1st of the month of the current date. All dates
// within one calendar month normalize to the same value, which makes it the
// canonical key of a monthly period.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// AddMonths returns the month key n months after the current date's month
// (or before, for negative n).
func (d Date) AddMonths(n int) Date {
	m := int(d.Year())*12 + int(d.Month()) - 1 + n
	return NewMonth(uint16(m/12), uint8(m%12)+1)
}

// MonthsTill returns the whole number of calendar months from d to d2;
// negative when d2 is earlier.
func (d Date) MonthsTill(d2 Date) int {
	return (int(d2.Year())-int(d.Year()))*12 + int(d2.Month()) - int(d.Month())
}

// Before compares two Date objects for strict inequality (self < d2).
func (d Date) Before(d2 Date) bool {
	return lessLex([]int{int(d.Year()), int(d.Month()), int(d.Day())},
		[]int{int(d2.Year()), int(d2.Month()), int(d2.Day())})
}

// After compares two Date objects for strict inequality, self > d2.
func (d Date) After(d2 Date) bool {
	return d2.Before(d)
}

// IsZero checks whether the date has a zero value.
func (d Date) IsZero() bool {
	return d.Year() == 0 && d.Month() == 0 && d.Day() == 0
}

// InRange checks if d is in the inclusive date range. Any of the bounds may be
// zero value, in which case it's ignored.
func (d Date) InRange(start, end Date) bool {
	if d.IsZero() {
		return false
	}
	if !start.IsZero() && start.After(d) {
		return false
	}
	if !end.IsZero() && end.Before(d) {
		return false
	}
	return true
}

// MinDate returns the earliest date from the list, or zero value.
func MinDate(dates ...Date) Date {
	var min Date
	for _, d := range dates {
		if min.IsZero() || (!d.IsZero() && min.After(d)) {
			min = d
		}
	}
	return min
}

// MaxDate returns the latest date from the list, or zero value.
func MaxDate(dates ...Date) Date {
	var max Date
	for _, d := range dates {
		if max.IsZero() || (!d.IsZero() && max.Before(d)) {
			max = d
		}
	}
	return max
}

// NoCode marks a missing share, exchange or industry code in a raw record.
const NoCode int32 = -1

// Exchange codes in the monthly security file.
const (
	ExchangeNYSE   int32 = 1
	ExchangeAMEX   int32 = 2
	ExchangeNASDAQ int32 = 3
)

// MonthlyRow is a raw long-format observation from the monthly security file
// joined with the security master. Float fields use NaN for a missing value;
// code fields use NoCode. Rows are read-only inputs and are never mutated by
// the pipeline.
type MonthlyRow struct {
	PermNo uint32 // permanent security identifier
	Date   Date
	ShrCd  int32
	ExchCd int32
	SicCd  int32
	Prc    float64 // negative = bid/ask midpoint, no trade that month
	Bid    float64
	Ask    float64
	BidLo  float64
	AskHi  float64
	Vol    float64 // without the NASDAQ volume adjustment
	Ret    float64 // without the delisting adjustment
	RetX   float64 // return excluding dividends
	ShrOut float64 // shares outstanding, in thousands
	CfacPr float64 // cumulative price adjustment factor
	CfacSh float64 // cumulative shares adjustment factor
	Spread float64
}

// TestMonthly creates a MonthlyRow with the given core fields and all other
// value fields missing, for use in tests.
func TestMonthly(permno uint32, date Date, ret, prc, shrout float64) MonthlyRow {
	nan := math.NaN()
	return MonthlyRow{
		PermNo: permno,
		Date:   date,
		ShrCd:  10,
		ExchCd: ExchangeNYSE,
		SicCd:  NoCode,
		Prc:    prc,
		Bid:    nan,
		Ask:    nan,
		BidLo:  nan,
		AskHi:  nan,
		Vol:    nan,
		Ret:    ret,
		RetX:   nan,
		ShrOut: shrout,
		CfacPr: nan,
		CfacSh: nan,
		Spread: nan,
	}
}

// DelistingRow is the terminal delisting event of a security: at most one per
// PermNo. Ret is the delisting return, NaN when the exchange reported none.
type DelistingRow struct {
	PermNo uint32
	Date   Date // the month the security stopped trading
	Ret    float64
}

// TestDelisting creates a DelistingRow for use in tests.
func TestDelisting(permno uint32, date Date, ret float64) DelistingRow {
	return DelistingRow{PermNo: permno, Date: date, Ret: ret}
}

// Metadata is the schema for the metadata.json file of a stored panel.
type Metadata struct {
	Start         Date `json:"start"` // the earliest panel month
	End           Date `json:"end"`   // the latest panel month
	NumPeriods    int  `json:"num_periods"`
	NumSecurities int  `json:"num_securities"`
	NumMatrices   int  `json:"num_matrices"`
	NumMasks      int  `json:"num_masks"`
	NumVectors    int  `json:"num_vectors"`
}
