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

// Package factors downloads exogenous period-indexed series, such as the
// risk-free rate or aggregate market factors, and aligns them to the panel's
// period axis.
package factors

import (
	"context"
	"net/url"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/db"
	"github.com/tlorans/assayinganomalies/panel"
)

// Source is an HTTP endpoint serving monthly factor series as JSON.
type Source struct {
	URL    string   `toml:"url"`
	Series []string `toml:"series"` // when set, download only these series
}

// Init validates the source after deserialization.
func (s *Source) Init() error {
	if s.URL == "" {
		return errors.Reason("factor source requires a url")
	}
	return nil
}

// response is the wire format of a factor endpoint: a date column and one
// equal-length value column per series.
type response struct {
	Dates  []db.Date            `json:"dates"`
	Series map[string][]float64 `json:"series"`
}

// Fetch downloads the source's series and reindexes each onto the period
// axis. Periods absent from the download are missing in the result; downloaded
// periods outside the axes are dropped.
func (s *Source) Fetch(ctx context.Context, axes *panel.Axes) (map[string]*panel.Vector, error) {
	query := url.Values{}
	if len(s.Series) > 0 {
		query["series"] = []string{strings.Join(s.Series, ",")}
	}
	var r response
	if err := fetch.FetchJSON(ctx, s.URL, &r, query, nil); err != nil {
		return nil, errors.Annotate(err, "failed to fetch factors from %s", s.URL)
	}
	index := make(map[db.Date]int, len(r.Dates))
	for i, d := range r.Dates {
		key := d.MonthStart()
		if j, ok := index[key]; ok {
			logging.Warningf(ctx, "factor source %s: dates %s and %s fall in month %s, keeping the later",
				s.URL, r.Dates[j], d, key)
		}
		index[key] = i
	}
	want := r.Series
	if len(s.Series) > 0 {
		want = make(map[string][]float64, len(s.Series))
		for _, name := range s.Series {
			vs, ok := r.Series[name]
			if !ok {
				return nil, errors.Reason("factor source %s has no series %q", s.URL, name)
			}
			want[name] = vs
		}
	}
	res := make(map[string]*panel.Vector, len(want))
	for name, vs := range want {
		if len(vs) != len(r.Dates) {
			return nil, errors.Annotate(panel.ErrAxisMismatch,
				"series %q has %d values for %d dates", name, len(vs), len(r.Dates))
		}
		v := panel.NewEmptyVector(axes)
		n := 0
		for t, d := range axes.Periods() {
			if i, ok := index[d]; ok {
				v.Set(t, vs[i])
				n++
			}
		}
		logging.Debugf(ctx, "factor %q: %d of %d periods covered", name, n, axes.NumPeriods())
		res[name] = v
	}
	return res, nil
}
