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

package main

import (
	"context"
	"flag"
	"os"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/db"
	"github.com/tlorans/assayinganomalies/panel"
	"github.com/tlorans/assayinganomalies/pipeline"
)

type Flags struct {
	Conf       string // required
	Monthly    string // required
	Delistings string // optional
	Out        string // required
	LogLevel   logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("panel-build", flag.ExitOnError)
	fs.StringVar(&flags.Conf, "conf", "", "TOML config file (required)")
	fs.StringVar(&flags.Monthly, "monthly", "", "CSV file with monthly security rows (required)")
	fs.StringVar(&flags.Delistings, "delistings", "", "CSV file with delisting events")
	fs.StringVar(&flags.Out, "out", "", "output directory for the panel (required)")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.Conf == "" {
		return nil, errors.Reason("missing required -conf argument")
	}
	if flags.Monthly == "" {
		return nil, errors.Reason("missing required -monthly argument")
	}
	if flags.Out == "" {
		return nil, errors.Reason("missing required -out argument")
	}
	return &flags, nil
}

func readMonthly(path string) ([]db.MonthlyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open monthly file %s", path)
	}
	defer f.Close()
	return db.ReadCSVMonthly(f, db.NewMonthlyRowConfig())
}

func readDelistings(path string) ([]db.DelistingRow, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open delistings file %s", path)
	}
	defer f.Close()
	return db.ReadCSVDelistings(f, db.NewDelistingRowConfig())
}

func run(args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return errors.Annotate(err, "failed to parse flags")
	}
	ctx := context.Background()
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	cfg, err := pipeline.LoadConfig(flags.Conf)
	if err != nil {
		return errors.Annotate(err, "failed to load config")
	}
	rows, err := readMonthly(flags.Monthly)
	if err != nil {
		return errors.Annotate(err, "failed to read monthly rows")
	}
	delistings, err := readDelistings(flags.Delistings)
	if err != nil {
		return errors.Annotate(err, "failed to read delistings")
	}
	p, err := pipeline.Run(ctx, cfg, rows, delistings)
	if err != nil {
		return errors.Annotate(err, "failed to build the panel")
	}
	if err := panel.NewStore(flags.Out).Write(p); err != nil {
		return errors.Annotate(err, "failed to store the panel in %s", flags.Out)
	}
	logging.Infof(ctx, "panel written to %s", flags.Out)
	return nil
}

// main is not tested, keep it short.
func main() {
	if err := run(os.Args[1:]); err != nil {
		ctx := context.Background()
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
