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
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/stockparfait/errors"
	"github.com/tlorans/assayinganomalies/db"
)

func writeGob(fileName string, v interface{}) error {
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotate(err, "failed to open file for writing: '%s'", fileName)
	}
	defer f.Close()
	enc := gob.NewEncoder(f)
	if err = enc.Encode(v); err != nil {
		return errors.Annotate(err, "failed to write to '%s'", fileName)
	}
	return nil
}

func readGob(fileName string, v interface{}) error {
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Annotate(err, "failed to open file for reading: '%s'", fileName)
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	if err = dec.Decode(v); err != nil {
		return errors.Annotate(err, "failed to read from '%s'", fileName)
	}
	return nil
}

func writeJSON(fileName string, v interface{}) error {
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotate(err, "failed to open file for writing: '%s'", fileName)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		return errors.Annotate(err, "failed to write to '%s'", fileName)
	}
	return nil
}

func readJSON(fileName string, v interface{}) error {
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Annotate(err, "failed to open file for reading: '%s'", fileName)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err = dec.Decode(v); err != nil {
		return errors.Annotate(err, "failed to read from '%s'", fileName)
	}
	return nil
}

// Gob schema of a stored panel.
type storedAxes struct {
	Periods    []db.Date
	Securities []uint32
}

type storedPanel struct {
	Matrices map[string][]float64
	Masks    map[string][]bool
	Vectors  map[string][]float64
}

const (
	axesFile     = "axes.gob"
	panelFile    = "panel.gob"
	metadataFile = "metadata.json"
)

// Store reads and writes a Panel in a filesystem directory: axes and dense
// data as gob files plus a human-readable metadata.json.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Metadata reads the metadata.json of a previously written panel.
func (s *Store) Metadata() (db.Metadata, error) {
	var m db.Metadata
	if err := readJSON(filepath.Join(s.dir, metadataFile), &m); err != nil {
		return m, errors.Annotate(err, "failed to read metadata")
	}
	return m, nil
}

// Write stores the panel, overwriting any previous contents of the directory.
func (s *Store) Write(p *Panel) error {
	if err := os.MkdirAll(s.dir, os.ModeDir|0755); err != nil {
		return errors.Annotate(err, "failed to create directory '%s'", s.dir)
	}
	axes := storedAxes{Periods: p.axes.Periods(), Securities: p.axes.Securities()}
	if err := writeGob(filepath.Join(s.dir, axesFile), axes); err != nil {
		return errors.Annotate(err, "failed to write axes")
	}
	sp := storedPanel{
		Matrices: make(map[string][]float64, len(p.matrices)),
		Masks:    make(map[string][]bool, len(p.masks)),
		Vectors:  make(map[string][]float64, len(p.vectors)),
	}
	for name, m := range p.matrices {
		sp.Matrices[name] = m.data
	}
	for name, m := range p.masks {
		sp.Masks[name] = m.data
	}
	for name, v := range p.vectors {
		sp.Vectors[name] = v.data
	}
	if err := writeGob(filepath.Join(s.dir, panelFile), sp); err != nil {
		return errors.Annotate(err, "failed to write panel data")
	}
	meta := db.Metadata{
		Start:         p.axes.Periods()[0],
		End:           p.axes.Periods()[p.axes.NumPeriods()-1],
		NumPeriods:    p.axes.NumPeriods(),
		NumSecurities: p.axes.NumSecurities(),
		NumMatrices:   len(p.matrices),
		NumMasks:      len(p.masks),
		NumVectors:    len(p.vectors),
	}
	if err := writeJSON(filepath.Join(s.dir, metadataFile), meta); err != nil {
		return errors.Annotate(err, "failed to write metadata")
	}
	return nil
}

// Read loads a previously written panel.
func (s *Store) Read() (*Panel, error) {
	var axes storedAxes
	if err := readGob(filepath.Join(s.dir, axesFile), &axes); err != nil {
		return nil, errors.Annotate(err, "failed to read axes")
	}
	a, err := NewAxesFrom(axes.Periods, axes.Securities)
	if err != nil {
		return nil, errors.Annotate(err, "stored axes are invalid")
	}
	var sp storedPanel
	if err := readGob(filepath.Join(s.dir, panelFile), &sp); err != nil {
		return nil, errors.Annotate(err, "failed to read panel data")
	}
	p := New(a)
	size := a.NumPeriods() * a.NumSecurities()
	for name, data := range sp.Matrices {
		if len(data) != size {
			return nil, errors.Annotate(ErrAxisMismatch,
				"stored matrix %q has %d cells, axes imply %d", name, len(data), size)
		}
		p.matrices[name] = &Matrix{axes: a, data: data}
	}
	for name, data := range sp.Masks {
		if len(data) != size {
			return nil, errors.Annotate(ErrAxisMismatch,
				"stored mask %q has %d cells, axes imply %d", name, len(data), size)
		}
		p.masks[name] = &Mask{axes: a, data: data}
	}
	for name, data := range sp.Vectors {
		if len(data) != a.NumPeriods() {
			return nil, errors.Annotate(ErrAxisMismatch,
				"stored vector %q has %d values, axes imply %d",
				name, len(data), a.NumPeriods())
		}
		p.vectors[name] = &Vector{axes: a, data: data}
	}
	return p, nil
}
