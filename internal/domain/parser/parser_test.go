package parser_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/difr/internal/domain/parser"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseFileName(t *testing.T) {
	Convey("Given audit filenames", t, func() {
		Convey("When the name follows the pattern", func() {
			fn, ok := parser.ParseFileName("Acme_Model_audit_results_20240115_093000.json")

			Convey("Then the timestamp is re-punctuated and the model recovered", func() {
				So(ok, ShouldBeTrue)
				So(fn.Timestamp, ShouldEqual, "2024-01-15T09:30:00")
				So(fn.ModelSegment, ShouldEqual, "Acme_Model")
				So(fn.Model(), ShouldEqual, "Acme/Model")
			})
		})

		Convey("When the name does not follow the pattern", func() {
			for _, name := range []string{
				"README.json",
				"Acme_audit_results_2024011_093000.json",
				"Acme_audit_results_20240115_093000.json.bak",
				"_audit_results_20240115_093000.json",
				"Acme_audit_results_20240115_093000.txt",
			} {
				_, ok := parser.ParseFileName(name)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a payload without an explicit model", t, func() {
		res, ok, err := parser.Parse("Acme_Model_audit_results_20240115_093000.json",
			[]byte(`{"providers":{"p1":{"exact_match_rate":0.9}}}`))

		Convey("Then the model comes from the filename", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(res.Model, ShouldEqual, "Acme/Model")
			So(res.Timestamp, ShouldEqual, "2024-01-15T09:30:00")
			So(res.Providers.Names(), ShouldResemble, []string{"p1"})
			So(res.ExactMatchRate("p1").Value, ShouldEqual, 0.9)
		})
	})

	Convey("Given a payload with an explicit model", t, func() {
		res, ok, err := parser.Parse("meta_llama_audit_results_20240115_093000.json",
			[]byte(`{"model":"meta-llama/Llama_3","providers":{}}`))

		Convey("Then the payload model is authoritative", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(res.Model, ShouldEqual, "meta-llama/Llama_3")
		})
	})

	Convey("Given a payload whose model is null or empty", t, func() {
		nullRes, _, err := parser.Parse("a_b_audit_results_20240115_093000.json", []byte(`{"model":null}`))
		So(err, ShouldBeNil)
		emptyRes, _, err := parser.Parse("a_b_audit_results_20240115_093000.json", []byte(`{"model":""}`))
		So(err, ShouldBeNil)

		Convey("Then null falls back but an empty string is kept", func() {
			So(nullRes.Model, ShouldEqual, "a/b")
			So(emptyRes.Model, ShouldEqual, "")
		})
	})

	Convey("Given a payload without providers", t, func() {
		res, ok, err := parser.Parse("m_audit_results_20240115_093000.json", []byte(`{}`))

		Convey("Then providers is an empty mapping", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(res.Providers.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given a payload with Python-style non-finite numbers", t, func() {
		body := `{"providers":{"p1":{"exact_match_rate":NaN,"avg_margin":Infinity,"avg_prob":-Infinity,"note":"NaN stays"}}}`
		res, ok, err := parser.Parse("m_audit_results_20240115_093000.json", []byte(body))

		Convey("Then values are carried through as non-finite", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			m, _ := res.Providers.Get("p1")
			So(m.ExactMatchRate.Present, ShouldBeTrue)
			So(math.IsNaN(m.ExactMatchRate.Value), ShouldBeTrue)
			So(math.IsInf(m.AvgMargin.Value, 1), ShouldBeTrue)
			So(math.IsInf(m.AvgProb.Value, -1), ShouldBeTrue)
		})
	})

	Convey("Given a filename that does not match", t, func() {
		_, ok, err := parser.Parse("notes.json", []byte(`{"providers":{}}`))

		Convey("Then it is skipped without error", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a body that is not JSON", t, func() {
		_, ok, err := parser.Parse("m_audit_results_20240115_093000.json", []byte(`404: Not Found`))

		Convey("Then a decode error is returned", func() {
			So(ok, ShouldBeFalse)
			So(errors.Is(err, parser.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given valid JSON that is not an object", t, func() {
		res, ok, err := parser.Parse("x_y_audit_results_20240115_093000.json", []byte(`[1,2,3]`))

		Convey("Then it parses as an empty payload", func() {
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(res.Model, ShouldEqual, "x/y")
			So(res.Providers.Len(), ShouldEqual, 0)
		})
	})
}

func TestNormalizeNonFinite(t *testing.T) {
	Convey("Given documents with non-finite tokens", t, func() {
		Convey("Then bare tokens are quoted and strings are untouched", func() {
			in := `{"a":NaN,"b":[Infinity,-Infinity],"c":"NaN \"Infinity\""}`
			want := `{"a":"NaN","b":["Infinity","-Infinity"],"c":"NaN \"Infinity\""}`
			So(string(parser.NormalizeNonFinite([]byte(in))), ShouldEqual, want)
		})

		Convey("Then documents without tokens are returned as-is", func() {
			in := []byte(`{"a":1}`)
			So(string(parser.NormalizeNonFinite(in)), ShouldEqual, `{"a":1}`)
		})
	})
}
