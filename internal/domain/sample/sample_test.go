package sample

import (
	"testing"
	"testing/fstest"

	"github.com/okian/difr/internal/domain/aggregate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResults(t *testing.T) {
	Convey("Given the embedded fallback dataset", t, func() {
		res := Results()

		Convey("Then it is non-empty and has a finite exact match rate", func() {
			So(len(res), ShouldBeGreaterThan, 0)
			found := false
			for _, r := range res {
				for _, name := range r.Providers.Names() {
					if _, ok := r.ExactMatchRate(name).Finite(); ok {
						found = true
					}
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then the leaderboard is not empty", func() {
			So(len(aggregate.BuildLeaderboard(res)), ShouldBeGreaterThan, 0)
		})

		Convey("Then callers cannot mutate the shared copy", func() {
			res[0].Model = "changed"
			So(Results()[0].Model, ShouldNotEqual, "changed")
		})

		Convey("Then timestamps and models come from the files", func() {
			So(res[0].Model, ShouldEqual, "Qwen/Qwen2.5-7B-Instruct")
			So(res[0].Timestamp, ShouldEqual, "2025-01-12T09:00:00")
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given an in-memory directory", t, func() {
		fsys := fstest.MapFS{
			"d/m_audit_results_20240101_000000.json": {Data: []byte(`{"providers":{"p":{"exact_match_rate":1}}}`)},
			"d/readme.json":                          {Data: []byte(`{}`)},
			"d/sub/x_audit_results_20240101_000000.json": {Data: []byte(`{}`)},
		}

		Convey("Then only matching top-level files are parsed", func() {
			res, err := Parse(fsys, "d")
			So(err, ShouldBeNil)
			So(len(res), ShouldEqual, 1)
			So(res[0].Model, ShouldEqual, "m")
		})

		Convey("Then a broken file is an error", func() {
			fsys["d/b_audit_results_20240101_000000.json"] = &fstest.MapFile{Data: []byte(`{`)}
			_, err := Parse(fsys, "d")
			So(err, ShouldNotBeNil)
		})
	})
}
