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

// Package pipeline runs the full panel construction: filter the raw records,
// build the axes, align the raw fields, derive the adjusted returns, market
// caps, industry aggregates, universes and past-performance signals, and
// collect everything in one Panel.
package pipeline

import (
	"context"
	"os"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/db"
	"github.com/tlorans/assayinganomalies/derive"
	"github.com/tlorans/assayinganomalies/factors"
	"github.com/tlorans/assayinganomalies/industry"
	"github.com/tlorans/assayinganomalies/panel"
	"github.com/tlorans/assayinganomalies/universe"

	toml "github.com/pelletier/go-toml/v2"
)

// Config of one panel construction run.
type Config struct {
	Start              db.Date             `toml:"start"` // zero value: no bound
	End                db.Date             `toml:"end"`   // zero value: no bound
	DomesticCommonOnly bool                `toml:"domestic_common_only"`
	Schemes            []string            `toml:"schemes"` // industry scheme names
	Universes          []universe.Universe `toml:"universes"`
	Windows            []derive.Window     `toml:"windows"` // default: the standard set
	Factors            *factors.Source     `toml:"factors"`
}

// Init validates the config and fills in the defaults.
func (c *Config) Init() error {
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return errors.Reason("config end %s is before start %s", c.End, c.Start)
	}
	for _, name := range c.Schemes {
		if _, err := industry.SchemeByName(name); err != nil {
			return errors.Annotate(err, "config")
		}
	}
	for i := range c.Universes {
		if err := c.Universes[i].Init(); err != nil {
			return errors.Annotate(err, "config")
		}
	}
	if c.Windows == nil {
		c.Windows = derive.DefaultWindows()
	}
	for i := range c.Windows {
		if err := c.Windows[i].Init(); err != nil {
			return errors.Annotate(err, "config")
		}
	}
	if c.Factors != nil {
		if err := c.Factors.Init(); err != nil {
			return errors.Annotate(err, "config")
		}
	}
	return nil
}

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", path)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", path)
	}
	if err := c.Init(); err != nil {
		return nil, errors.Annotate(err, "invalid config file %s", path)
	}
	return &c, nil
}

// Run builds the complete panel from raw monthly records and delisting
// events. The config must be initialized.
func Run(ctx context.Context, c *Config, rows []db.MonthlyRow, delistings []db.DelistingRow) (*panel.Panel, error) {
	cons := db.NewConstraints().StartAt(c.Start).EndAt(c.End)
	if c.DomesticCommonOnly {
		cons.DomesticCommonEquity()
	}
	rows = cons.FilterMonthly(rows)
	delistings = cons.FilterDelistings(delistings)
	logging.Infof(ctx, "%d monthly records and %d delisting events after filtering",
		len(rows), len(delistings))

	axes, err := panel.NewAxes(rows)
	if err != nil {
		return nil, errors.Annotate(err, "failed to build the axes")
	}
	logging.Infof(ctx, "axes: %d periods (%s to %s), %d securities",
		axes.NumPeriods(), axes.Periods()[0], axes.Periods()[axes.NumPeriods()-1],
		axes.NumSecurities())

	matrices, err := panel.Align(ctx, axes, rows, panel.MonthlyFields())
	if err != nil {
		return nil, errors.Annotate(err, "failed to align the raw fields")
	}
	p := panel.New(axes)
	for name, m := range matrices {
		if err := p.AddMatrix(name, m); err != nil {
			return nil, errors.Annotate(err, "failed to add field %q", name)
		}
	}

	ret, err := derive.AdjustDelistings(ctx, matrices["ret_x_dl"], delistings)
	if err != nil {
		return nil, errors.Annotate(err, "failed to adjust returns for delistings")
	}
	if err := p.AddMatrix("ret", ret); err != nil {
		return nil, errors.Annotate(err, "failed to add the adjusted returns")
	}

	mktcap, err := derive.MarketCap(matrices["prc"], matrices["shrout"])
	if err != nil {
		return nil, errors.Annotate(err, "failed to compute market caps")
	}
	if err := p.AddMatrix("mktcap", mktcap); err != nil {
		return nil, errors.Annotate(err, "failed to add the market caps")
	}

	for _, name := range c.Schemes {
		s, err := industry.SchemeByName(name)
		if err != nil {
			return nil, err
		}
		if err := s.Check(); err != nil {
			return nil, errors.Annotate(err, "malformed industry scheme")
		}
		gr, err := industry.Returns(ctx, s, matrices["siccd"], ret, mktcap)
		if err != nil {
			return nil, errors.Annotate(err, "failed to aggregate %s industry returns", name)
		}
		for label, v := range gr.Groups {
			if err := p.AddVector(name+"_"+label, v); err != nil {
				return nil, errors.Annotate(err, "failed to add industry returns")
			}
		}
	}

	// Universes may read mktcap, so they are built after the derived fields.
	for i := range c.Universes {
		u := &c.Universes[i]
		mask, err := u.Build(ctx, p)
		if err != nil {
			return nil, errors.Annotate(err, "failed to build universe %s", u.Name)
		}
		if err := p.AddMask(u.Name, mask); err != nil {
			return nil, errors.Annotate(err, "failed to add universe %s", u.Name)
		}
	}

	for _, w := range c.Windows {
		m, err := derive.PastReturns(ctx, ret, w)
		if err != nil {
			return nil, errors.Annotate(err, "failed to compute the %s signal", w.Name)
		}
		if err := p.AddMatrix(w.Name, m); err != nil {
			return nil, errors.Annotate(err, "failed to add the %s signal", w.Name)
		}
	}

	if c.Factors != nil {
		vs, err := c.Factors.Fetch(ctx, axes)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch the factor series")
		}
		for name, v := range vs {
			if err := p.AddVector(name, v); err != nil {
				return nil, errors.Annotate(err, "failed to add factor %q", name)
			}
		}
	}
	return p, nil
}
