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

// Package panel builds a dense, time-aligned panel of security
// characteristics from irregular long-format records. It establishes the
// canonical (period x security) axes, aligns every raw field onto them, and
// holds the resulting matrices for the derived-variable components.
package panel

import (
	"github.com/stockparfait/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Panel is a collection of field matrices, masks and vectors sharing one set
// of canonical axes. Entries are added once by the component that derived
// them and are never replaced.
type Panel struct {
	axes     *Axes
	matrices map[string]*Matrix
	masks    map[string]*Mask
	vectors  map[string]*Vector
}

// New creates an empty Panel on the given axes.
func New(axes *Axes) *Panel {
	return &Panel{
		axes:     axes,
		matrices: make(map[string]*Matrix),
		masks:    make(map[string]*Mask),
		vectors:  make(map[string]*Vector),
	}
}

// Axes of the Panel.
func (p *Panel) Axes() *Axes { return p.axes }

// AddMatrix registers a field matrix under a variable name.
func (p *Panel) AddMatrix(name string, m *Matrix) error {
	if !p.axes.Equal(m.Axes()) {
		return errors.Annotate(ErrAxisMismatch, "matrix %q is not on the panel axes", name)
	}
	if _, ok := p.matrices[name]; ok {
		return errors.Reason("matrix %q already exists", name)
	}
	p.matrices[name] = m
	return nil
}

// Matrix returns the field matrix registered under the variable name.
func (p *Panel) Matrix(name string) (*Matrix, error) {
	m, ok := p.matrices[name]
	if !ok {
		return nil, errors.Reason("no matrix %q in the panel", name)
	}
	return m, nil
}

// AddMask registers a boolean field matrix under a name.
func (p *Panel) AddMask(name string, m *Mask) error {
	if !p.axes.Equal(m.Axes()) {
		return errors.Annotate(ErrAxisMismatch, "mask %q is not on the panel axes", name)
	}
	if _, ok := p.masks[name]; ok {
		return errors.Reason("mask %q already exists", name)
	}
	p.masks[name] = m
	return nil
}

// Mask returns the boolean field matrix registered under the name.
func (p *Panel) Mask(name string) (*Mask, error) {
	m, ok := p.masks[name]
	if !ok {
		return nil, errors.Reason("no mask %q in the panel", name)
	}
	return m, nil
}

// AddVector registers a period-indexed vector under a name.
func (p *Panel) AddVector(name string, v *Vector) error {
	if !p.axes.Equal(v.Axes()) {
		return errors.Annotate(ErrAxisMismatch, "vector %q is not on the panel axes", name)
	}
	if _, ok := p.vectors[name]; ok {
		return errors.Reason("vector %q already exists", name)
	}
	p.vectors[name] = v
	return nil
}

// Vector returns the period-indexed vector registered under the name.
func (p *Panel) Vector(name string) (*Vector, error) {
	v, ok := p.vectors[name]
	if !ok {
		return nil, errors.Reason("no vector %q in the panel", name)
	}
	return v, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// MatrixNames lists the registered variable names in ascending order.
func (p *Panel) MatrixNames() []string { return sortedKeys(p.matrices) }

// MaskNames lists the registered mask names in ascending order.
func (p *Panel) MaskNames() []string { return sortedKeys(p.masks) }

// VectorNames lists the registered vector names in ascending order.
func (p *Panel) VectorNames() []string { return sortedKeys(p.vectors) }
