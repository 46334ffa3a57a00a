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

// Package derive computes return-like variables from aligned panel matrices:
// delisting-adjusted returns, market capitalization and rolling compounded
// past-performance signals.
package derive

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/db"
	"github.com/tlorans/assayinganomalies/panel"
)

// AdjustDelistings merges terminal delisting events into the return matrix
// and produces a new, adjusted matrix. The delisting return lands in the
// event's month, the period trailing the last full monthly return. When that
// cell already holds a partial-month return the two compound as
// (1+ret)*(1+dlret)-1; otherwise the cell becomes the delisting return
// itself. Events dated outside the sample or carrying no return are discarded
// with a warning. All other cells pass through unchanged.
func AdjustDelistings(ctx context.Context, ret *panel.Matrix, events []db.DelistingRow) (*panel.Matrix, error) {
	axes := ret.Axes()
	adj := ret.Copy()
	seen := make(map[uint32]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.PermNo]; ok {
			return nil, errors.Annotate(panel.ErrDuplicateObservation,
				"security %d has multiple delisting events", e.PermNo)
		}
		seen[e.PermNo] = struct{}{}

		s, ok := axes.SecurityIndex(e.PermNo)
		if !ok {
			logging.Warningf(ctx, "discarding delisting of security %d: not on the axes", e.PermNo)
			continue
		}
		t, ok := axes.PeriodIndex(e.Date)
		if !ok {
			logging.Warningf(ctx,
				"discarding delisting of security %d at %s: no panel period to receive it",
				e.PermNo, e.Date)
			continue
		}
		if panel.IsMissing(e.Ret) {
			logging.Warningf(ctx, "security %d delisted at %s with no delisting return",
				e.PermNo, e.Date)
			continue
		}
		if partial := adj.At(t, s); !panel.IsMissing(partial) {
			adj.Set(t, s, (1+partial)*(1+e.Ret)-1)
		} else {
			adj.Set(t, s, e.Ret)
		}
	}
	return adj, nil
}
