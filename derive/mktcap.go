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
	"math"

	"github.com/stockparfait/errors"
	"github.com/tlorans/assayinganomalies/panel"
)

// MarketCap derives capitalization as |price| * shares outstanding. The price
// magnitude is used because a negative price encodes a bid/ask midpoint, not
// a negative value. A cell is missing whenever either input is missing or the
// product is zero: a zero cap encodes an unvalued listing in the source table,
// not a worthless one, and must not enter weights or breakpoint pools. There
// is no smoothing or carry-forward.
func MarketCap(prc, shrout *panel.Matrix) (*panel.Matrix, error) {
	axes := prc.Axes()
	if !axes.Equal(shrout.Axes()) {
		return nil, errors.Annotate(panel.ErrAxisMismatch,
			"price and shares outstanding matrices are on different axes")
	}
	m := panel.NewMatrix(axes)
	for t := 0; t < axes.NumPeriods(); t++ {
		for s := 0; s < axes.NumSecurities(); s++ {
			v := math.Abs(prc.At(t, s)) * shrout.At(t, s)
			if v == 0 {
				v = panel.Missing()
			}
			m.Set(t, s, v)
		}
	}
	return m, nil
}
