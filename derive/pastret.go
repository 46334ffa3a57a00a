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

package derive

import (
	"context"
	"fmt"
	"runtime"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/tlorans/assayinganomalies/panel"
)

// Window is a past-performance window of monthly lags relative to the current
// period: Start is the oldest lag and End the most recent one, both at least
// one month back. The classic momentum window runs from lag 12 to lag 1.
type Window struct {
	Name  string `toml:"name"` // default: ret_<start>_<end>
	Start int    `toml:"start"`
	End   int    `toml:"end"`
}

// Init validates the window and fills in the default name.
func (w *Window) Init() error {
	if w.End < 1 {
		return errors.Reason("window end lag %d must be >= 1: a lag of 0 would use same-period data", w.End)
	}
	if w.Start < w.End {
		return errors.Reason("window start lag %d must be >= end lag %d", w.Start, w.End)
	}
	if w.Name == "" {
		w.Name = fmt.Sprintf("ret_%d_%d", w.Start, w.End)
	}
	return nil
}

// DefaultWindows are the standard multi-horizon past-performance signals:
// momentum, short and intermediate horizons, and a long-term reversal window.
func DefaultWindows() []Window {
	return []Window{
		{Start: 12, End: 1},
		{Start: 6, End: 1},
		{Start: 12, End: 6},
		{Start: 36, End: 13},
	}
}

type signalColumn struct {
	s   int
	col []float64
}

// PastReturns computes the compounded return over the window per security:
// signal(t, s) = prod_{k=end..start} (1 + ret(t-k, s)) - 1. The signal is
// missing whenever the window extends before the sample or any constituent
// return is missing; there is no partial-window imputation. The input should
// be the delisting-adjusted return matrix.
func PastReturns(ctx context.Context, ret *panel.Matrix, w Window) (*panel.Matrix, error) {
	if err := w.Init(); err != nil {
		return nil, errors.Annotate(err, "invalid window")
	}
	axes := ret.Axes()
	nPer := axes.NumPeriods()

	secs := make([]int, axes.NumSecurities())
	for s := range secs {
		secs[s] = s
	}
	f := func(s int) signalColumn {
		col := make([]float64, nPer)
		for t := 0; t < nPer; t++ {
			if t-w.Start < 0 {
				col[t] = panel.Missing()
				continue
			}
			// A missing constituent return poisons the whole product.
			prod := 1.0
			for k := w.End; k <= w.Start; k++ {
				prod *= 1 + ret.At(t-k, s)
			}
			col[t] = prod - 1
		}
		return signalColumn{s: s, col: col}
	}
	pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(), iterator.FromSlice(secs), f)
	defer pm.Close()

	m := iterator.Reduce[signalColumn, *panel.Matrix](
		pm, panel.NewMatrix(axes),
		func(c signalColumn, m *panel.Matrix) *panel.Matrix {
			for t, v := range c.col {
				m.Set(t, c.s, v)
			}
			return m
		})
	return m, nil
}
