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
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/logging"
	"github.com/tlorans/assayinganomalies/panel"

	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(fileName, content string) error {
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write([]byte(content))
	return err
}

func TestMain(t *testing.T) {
	t.Parallel()

	Convey("parseFlags", t, func() {
		Convey("all flags", func() {
			flags, err := parseFlags([]string{
				"-conf", "config.toml", "-monthly", "msf.csv",
				"-delistings", "dl.csv", "-out", "path/to/panel",
				"-log-level", "warning"})
			So(err, ShouldBeNil)
			So(flags.Conf, ShouldEqual, "config.toml")
			So(flags.Monthly, ShouldEqual, "msf.csv")
			So(flags.Delistings, ShouldEqual, "dl.csv")
			So(flags.Out, ShouldEqual, "path/to/panel")
			So(flags.LogLevel, ShouldEqual, logging.Warning)
		})

		Convey("delistings are optional", func() {
			flags, err := parseFlags([]string{
				"-conf", "config.toml", "-monthly", "msf.csv", "-out", "out"})
			So(err, ShouldBeNil)
			So(flags.Delistings, ShouldEqual, "")
			So(flags.LogLevel, ShouldEqual, logging.Info)
		})

		Convey("missing required flags", func() {
			_, err := parseFlags([]string{"-monthly", "msf.csv", "-out", "out"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-conf", "config.toml", "-out", "out"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-conf", "config.toml", "-monthly", "msf.csv"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("run end-to-end", t, func() {
		tmpdir, tmpdirErr := os.MkdirTemp("", "test_panel_build")
		So(tmpdirErr, ShouldBeNil)
		defer os.RemoveAll(tmpdir)

		confPath := filepath.Join(tmpdir, "config.toml")
		monthlyPath := filepath.Join(tmpdir, "msf.csv")
		delistingsPath := filepath.Join(tmpdir, "dl.csv")
		outDir := filepath.Join(tmpdir, "panel")

		So(writeFile(confPath, `
domestic_common_only = true
schemes = ["sic"]

[[windows]]
start = 2
end = 1
`), ShouldBeNil)
		So(writeFile(monthlyPath, `permno,date,shrcd,exchcd,siccd,prc,ret,shrout
10001,2000-01-31,10,1,3571,10,0.10,1000
10001,2000-02-29,10,1,3571,11,0.05,1000
10001,2000-03-31,10,1,3571,10,-0.02,1000
10002,2000-01-31,10,3,6020,20,0.20,500
10002,2000-02-29,10,3,6020,18,-0.10,500
10002,2000-03-31,10,3,6020,19,0.05,500
`), ShouldBeNil)
		So(writeFile(delistingsPath, `permno,dlstdt,dlret
10002,2000-03-31,-0.20
`), ShouldBeNil)

		err := run([]string{
			"-conf", confPath, "-monthly", monthlyPath,
			"-delistings", delistingsPath, "-out", outDir,
			"-log-level", "error"})
		So(err, ShouldBeNil)

		store := panel.NewStore(outDir)
		meta, err := store.Metadata()
		So(err, ShouldBeNil)
		So(meta.NumPeriods, ShouldEqual, 3)
		So(meta.NumSecurities, ShouldEqual, 2)
		So(meta.NumVectors, ShouldEqual, 12) // the SIC division returns

		p, err := store.Read()
		So(err, ShouldBeNil)
		ret, err := p.Matrix("ret")
		So(err, ShouldBeNil)
		So(panel.IsMissing(ret.At(0, 0)), ShouldBeFalse)

		Convey("fails on a bad config", func() {
			So(writeFile(confPath, `schemes = ["bogus"]`), ShouldBeNil)
			err := run([]string{
				"-conf", confPath, "-monthly", monthlyPath, "-out", outDir})
			So(err, ShouldNotBeNil)
		})
	})
}
