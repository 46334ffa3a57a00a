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

package panel

import (
	"math"

	"github.com/stockparfait/errors"
)

// Missing is the sentinel for a cell with no value. It is distinct from zero:
// a zero return is an observation, a missing cell is the absence of one.
func Missing() float64 { return math.NaN() }

// IsMissing checks a cell value for the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Matrix is a dense |periods| x |securities| field matrix on the canonical
// axes, stored row-major. Cell (t, s) is the field value of security s in
// period t, or the missing sentinel. A Matrix is filled by the component that
// creates it and is treated as immutable by every downstream consumer.
type Matrix struct {
	axes *Axes
	data []float64
}

// NewMatrix creates a Matrix on the given axes with every cell missing.
func NewMatrix(axes *Axes) *Matrix {
	data := make([]float64, axes.NumPeriods()*axes.NumSecurities())
	for i := range data {
		data[i] = math.NaN()
	}
	return &Matrix{axes: axes, data: data}
}

// Axes of the Matrix.
func (m *Matrix) Axes() *Axes { return m.axes }

// At returns the cell value at period row t and security column s.
func (m *Matrix) At(t, s int) float64 {
	return m.data[t*m.axes.NumSecurities()+s]
}

// Set assigns the cell value at period row t and security column s. Only the
// component that created the Matrix may call it.
func (m *Matrix) Set(t, s int, v float64) {
	m.data[t*m.axes.NumSecurities()+s] = v
}

// Copy makes a deep copy of the Matrix sharing the immutable axes.
func (m *Matrix) Copy() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{axes: m.axes, data: data}
}

// Row returns a copy of the period row t.
func (m *Matrix) Row(t int) []float64 {
	n := m.axes.NumSecurities()
	row := make([]float64, n)
	copy(row, m.data[t*n:(t+1)*n])
	return row
}

// Col returns a copy of the security column s.
func (m *Matrix) Col(s int) []float64 {
	n := m.axes.NumSecurities()
	col := make([]float64, m.axes.NumPeriods())
	for t := range col {
		col[t] = m.data[t*n+s]
	}
	return col
}

// Mask is a boolean field matrix on the canonical axes, e.g. an investable
// universe or an industry group membership indicator.
type Mask struct {
	axes *Axes
	data []bool
}

// NewMask creates a Mask on the given axes with every cell false.
func NewMask(axes *Axes) *Mask {
	return &Mask{axes: axes, data: make([]bool, axes.NumPeriods()*axes.NumSecurities())}
}

// Axes of the Mask.
func (m *Mask) Axes() *Axes { return m.axes }

// At returns the flag at period row t and security column s.
func (m *Mask) At(t, s int) bool {
	return m.data[t*m.axes.NumSecurities()+s]
}

// Set assigns the flag at period row t and security column s. Only the
// component that created the Mask may call it.
func (m *Mask) Set(t, s int, v bool) {
	m.data[t*m.axes.NumSecurities()+s] = v
}

// Count is the number of flagged cells in period row t.
func (m *Mask) Count(t int) int {
	n := m.axes.NumSecurities()
	count := 0
	for _, v := range m.data[t*n : (t+1)*n] {
		if v {
			count++
		}
	}
	return count
}

// Vector is a period-indexed series on the canonical period axis, such as an
// industry group return or an exogenous factor.
type Vector struct {
	axes *Axes
	data []float64
}

// NewVector creates a Vector from data aligned to the period axis. The length
// must match exactly; the caller is responsible for reindexing.
func NewVector(axes *Axes, data []float64) (*Vector, error) {
	if len(data) != axes.NumPeriods() {
		return nil, errors.Annotate(ErrAxisMismatch,
			"vector length %d != %d periods", len(data), axes.NumPeriods())
	}
	return &Vector{axes: axes, data: data}, nil
}

// NewEmptyVector creates a Vector on the period axis with every value missing.
func NewEmptyVector(axes *Axes) *Vector {
	data := make([]float64, axes.NumPeriods())
	for i := range data {
		data[i] = math.NaN()
	}
	return &Vector{axes: axes, data: data}
}

// Axes of the Vector.
func (v *Vector) Axes() *Axes { return v.axes }

// At returns the value at period row t.
func (v *Vector) At(t int) float64 { return v.data[t] }

// Set assigns the value at period row t. Only the component that created the
// Vector may call it.
func (v *Vector) Set(t int, x float64) { v.data[t] = x }

// Data of the Vector. The result must not be modified.
func (v *Vector) Data() []float64 { return v.data }
