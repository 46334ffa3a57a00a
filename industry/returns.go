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

package industry

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/panel"
	"gonum.org/v1/gonum/stat"
)

// GroupReturns holds one period-indexed return series per group label of a
// scheme.
type GroupReturns struct {
	Scheme string
	Groups map[string]*panel.Vector
}

// Returns computes the capitalization-weighted average return of every group
// in the scheme, per period. Weights are the prior-period market caps, so the
// first sample period and any group-period with no eligible constituent (both
// return and lagged weight present) yield a missing value, never zero.
func Returns(ctx context.Context, s *Scheme, codes, ret, mktcap *panel.Matrix) (*GroupReturns, error) {
	axes := codes.Axes()
	if !axes.Equal(ret.Axes()) || !axes.Equal(mktcap.Axes()) {
		return nil, errors.Annotate(panel.ErrAxisMismatch,
			"scheme %s: input matrices are on different axes", s.Name)
	}
	masks := s.Indicators(codes)
	res := &GroupReturns{
		Scheme: s.Name,
		Groups: make(map[string]*panel.Vector, len(masks)),
	}
	empty := make(map[string]int)
	for _, label := range s.Labels() {
		res.Groups[label] = panel.NewEmptyVector(axes)
	}
	for t := 1; t < axes.NumPeriods(); t++ {
		for _, label := range s.Labels() {
			mask := masks[label]
			var rets, weights []float64
			for c := 0; c < axes.NumSecurities(); c++ {
				if !mask.At(t, c) {
					continue
				}
				r := ret.At(t, c)
				w := mktcap.At(t-1, c)
				if panel.IsMissing(r) || panel.IsMissing(w) {
					continue
				}
				rets = append(rets, r)
				weights = append(weights, w)
			}
			if len(rets) == 0 {
				empty[label]++
				continue
			}
			res.Groups[label].Set(t, stat.Mean(rets, weights))
		}
	}
	for label, n := range empty {
		logging.Debugf(ctx, "scheme %s: group %s has no eligible constituents in %d periods",
			s.Name, label, n)
	}
	return res, nil
}
