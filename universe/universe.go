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

// Package universe screens the panel into investable subsets. A universe is a
// named conjunction of rules evaluated independently in every period, so
// membership never depends on future data.
package universe

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/panel"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Rule kinds.
const (
	KindShareCode      = "share_code"
	KindExchange       = "exchange"
	KindMinPrice       = "min_price"
	KindSizePercentile = "size_percentile"
)

// Rule is a single membership screen. Exactly the fields of its Kind are
// consulted; the rest are ignored.
type Rule struct {
	Kind       string  `toml:"kind"`
	ShareCodes []int32 `toml:"share_codes"` // share_code: admissible share codes
	Exchanges  []int32 `toml:"exchanges"`   // exchange: admissible exchange codes
	MinPrice   float64 `toml:"min_price"`   // min_price: lowest admissible |price|
	Percentile float64 `toml:"percentile"`  // size_percentile: market cap cutoff in (0, 100)
	// size_percentile: when set, the cutoff is the Percentile of market caps
	// on these exchanges only, e.g. NYSE breakpoints applied to all listings.
	BreakpointExchanges []int32 `toml:"breakpoint_exchanges"`
}

// Init validates the rule after deserialization.
func (r *Rule) Init() error {
	switch r.Kind {
	case KindShareCode:
		if len(r.ShareCodes) == 0 {
			return errors.Reason("share_code rule requires share_codes")
		}
	case KindExchange:
		if len(r.Exchanges) == 0 {
			return errors.Reason("exchange rule requires exchanges")
		}
	case KindMinPrice:
		if r.MinPrice <= 0 {
			return errors.Reason("min_price rule requires min_price > 0, got %g", r.MinPrice)
		}
	case KindSizePercentile:
		if r.Percentile <= 0 || r.Percentile >= 100 {
			return errors.Reason("size_percentile rule requires percentile in (0, 100), got %g",
				r.Percentile)
		}
	default:
		return errors.Reason("unknown rule kind: %q", r.Kind)
	}
	return nil
}

// Universe is a named set of rules; a panel cell belongs to the universe when
// the security has a price record in the period and passes every rule.
type Universe struct {
	Name  string `toml:"name"`
	Rules []Rule `toml:"rules"`
}

// Init validates the universe after deserialization.
func (u *Universe) Init() error {
	if u.Name == "" {
		return errors.Reason("universe requires a name")
	}
	for i := range u.Rules {
		if err := u.Rules[i].Init(); err != nil {
			return errors.Annotate(err, "universe %s: rule %d", u.Name, i)
		}
	}
	return nil
}

// Build evaluates the universe over the panel. It reads the aligned "prc",
// "shrcd" and "exchcd" field matrices and the derived "mktcap" matrix, as the
// rules require them.
func (u *Universe) Build(ctx context.Context, p *panel.Panel) (*panel.Mask, error) {
	prc, err := p.Matrix("prc")
	if err != nil {
		return nil, errors.Annotate(err, "universe %s", u.Name)
	}
	axes := p.Axes()
	mask := panel.NewMask(axes)
	for t := 0; t < axes.NumPeriods(); t++ {
		for s := 0; s < axes.NumSecurities(); s++ {
			mask.Set(t, s, !panel.IsMissing(prc.At(t, s)))
		}
	}
	for i := range u.Rules {
		if err := u.Rules[i].apply(p, mask); err != nil {
			return nil, errors.Annotate(err, "universe %s: rule %d", u.Name, i)
		}
	}
	total := 0
	for t := 0; t < axes.NumPeriods(); t++ {
		total += mask.Count(t)
	}
	logging.Infof(ctx, "universe %s: %d member cells over %d periods",
		u.Name, total, axes.NumPeriods())
	return mask, nil
}

// apply narrows the mask in place to the cells passing the rule.
func (r *Rule) apply(p *panel.Panel, mask *panel.Mask) error {
	switch r.Kind {
	case KindShareCode:
		return filterCodes(p, mask, "shrcd", r.ShareCodes)
	case KindExchange:
		return filterCodes(p, mask, "exchcd", r.Exchanges)
	case KindMinPrice:
		return r.filterPrice(p, mask)
	case KindSizePercentile:
		return r.filterSize(p, mask)
	}
	return errors.Reason("unknown rule kind: %q", r.Kind)
}

func filterCodes(p *panel.Panel, mask *panel.Mask, field string, admissible []int32) error {
	m, err := p.Matrix(field)
	if err != nil {
		return err
	}
	set := make(map[int32]bool, len(admissible))
	for _, c := range admissible {
		set[c] = true
	}
	axes := mask.Axes()
	for t := 0; t < axes.NumPeriods(); t++ {
		for s := 0; s < axes.NumSecurities(); s++ {
			if !mask.At(t, s) {
				continue
			}
			v := m.At(t, s)
			if panel.IsMissing(v) || !set[int32(v)] {
				mask.Set(t, s, false)
			}
		}
	}
	return nil
}

func (r *Rule) filterPrice(p *panel.Panel, mask *panel.Mask) error {
	prc, err := p.Matrix("prc")
	if err != nil {
		return err
	}
	axes := mask.Axes()
	for t := 0; t < axes.NumPeriods(); t++ {
		for s := 0; s < axes.NumSecurities(); s++ {
			if !mask.At(t, s) {
				continue
			}
			v := prc.At(t, s)
			if v < 0 { // quote midpoint convention
				v = -v
			}
			if panel.IsMissing(v) || v < r.MinPrice {
				mask.Set(t, s, false)
			}
		}
	}
	return nil
}

func (r *Rule) filterSize(p *panel.Panel, mask *panel.Mask) error {
	mktcap, err := p.Matrix("mktcap")
	if err != nil {
		return err
	}
	var exchcd *panel.Matrix
	if len(r.BreakpointExchanges) > 0 {
		if exchcd, err = p.Matrix("exchcd"); err != nil {
			return err
		}
	}
	set := make(map[int32]bool, len(r.BreakpointExchanges))
	for _, c := range r.BreakpointExchanges {
		set[c] = true
	}
	axes := mask.Axes()
	for t := 0; t < axes.NumPeriods(); t++ {
		var pool []float64
		for s := 0; s < axes.NumSecurities(); s++ {
			w := mktcap.At(t, s)
			if panel.IsMissing(w) {
				continue
			}
			if exchcd != nil {
				e := exchcd.At(t, s)
				if panel.IsMissing(e) || !set[int32(e)] {
					continue
				}
			} else if !mask.At(t, s) {
				continue
			}
			pool = append(pool, w)
		}
		if len(pool) == 0 {
			// No breakpoint sample, so no member survives this period.
			for s := 0; s < axes.NumSecurities(); s++ {
				mask.Set(t, s, false)
			}
			continue
		}
		slices.Sort(pool)
		cut := stat.Quantile(r.Percentile/100, stat.Empirical, pool, nil)
		for s := 0; s < axes.NumSecurities(); s++ {
			if !mask.At(t, s) {
				continue
			}
			w := mktcap.At(t, s)
			if panel.IsMissing(w) || w < cut {
				mask.Set(t, s, false)
			}
		}
	}
	return nil
}
