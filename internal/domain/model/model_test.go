package model_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/okian/difr/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMetric(t *testing.T) {
	convey.Convey("Given raw metric values", t, func() {
		decode := func(raw string) model.Metric {
			var m model.Metric
			convey.So(json.Unmarshal([]byte(raw), &m), convey.ShouldBeNil)
			return m
		}

		convey.Convey("When the value is a finite number", func() {
			m := decode("0.92")

			convey.Convey("Then it should be present and finite", func() {
				v, ok := m.Finite()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 0.92)
			})
		})

		convey.Convey("When the value is null", func() {
			m := decode("null")

			convey.Convey("Then it should be absent", func() {
				convey.So(m.Present, convey.ShouldBeFalse)
				_, ok := m.Finite()
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the value is a quoted non-finite spelling", func() {
			nan := decode(`"NaN"`)
			inf := decode(`"Infinity"`)
			ninf := decode(`"-Infinity"`)

			convey.Convey("Then it should be present but not finite", func() {
				convey.So(nan.Present, convey.ShouldBeTrue)
				convey.So(math.IsNaN(nan.Value), convey.ShouldBeTrue)
				convey.So(math.IsInf(inf.Value, 1), convey.ShouldBeTrue)
				convey.So(math.IsInf(ninf.Value, -1), convey.ShouldBeTrue)
				_, ok := nan.Finite()
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the value is not numeric", func() {
			convey.So(decode(`"0.5"`).Present, convey.ShouldBeFalse)
			convey.So(decode(`true`).Present, convey.ShouldBeFalse)
			convey.So(decode(`{"a":1}`).Present, convey.ShouldBeFalse)
			convey.So(decode(`[1]`).Present, convey.ShouldBeFalse)
		})

		convey.Convey("When encoding", func() {
			finite, _ := json.Marshal(model.Number(0.5))
			nan, _ := json.Marshal(model.Number(math.NaN()))
			absent, _ := json.Marshal(model.Absent())

			convey.Convey("Then only finite values are numbers", func() {
				convey.So(string(finite), convey.ShouldEqual, "0.5")
				convey.So(string(nan), convey.ShouldEqual, "null")
				convey.So(string(absent), convey.ShouldEqual, "null")
			})
		})

		convey.Convey("When reading integer fields", func() {
			n, ok := model.Number(2048).Int()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(n, convey.ShouldEqual, 2048)
			_, ok = model.Number(math.Inf(1)).Int()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestProviders(t *testing.T) {
	convey.Convey("Given a providers object", t, func() {
		raw := `{"zeta":{"exact_match_rate":0.9},"alpha":{"exact_match_rate":0.8},"gone":null,"zeta":{"exact_match_rate":0.7}}`
		var p model.Providers
		convey.So(json.Unmarshal([]byte(raw), &p), convey.ShouldBeNil)

		convey.Convey("Then key order should be preserved and null entries dropped", func() {
			convey.So(p.Names(), convey.ShouldResemble, []string{"zeta", "alpha"})
			convey.So(p.Has("gone"), convey.ShouldBeFalse)
		})

		convey.Convey("Then a duplicate key keeps its position and the later value", func() {
			m, ok := p.Get("zeta")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(m.ExactMatchRate.Value, convey.ShouldEqual, 0.7)
		})

		convey.Convey("Then encoding should round-trip order", func() {
			out, err := json.Marshal(p)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldStartWith, `{"zeta":`)
		})
	})

	convey.Convey("Given a providers value that is not an object", t, func() {
		var p model.Providers
		convey.So(json.Unmarshal([]byte(`[1,2]`), &p), convey.ShouldBeNil)
		convey.So(p.Len(), convey.ShouldEqual, 0)
	})

	convey.Convey("Given providers built in code", t, func() {
		r := model.AuditResult{
			Model:     "m",
			Timestamp: "2024-01-15T09:30:00",
			Providers: model.ProvidersOf(
				model.Provider{Name: "p1", Metrics: model.ProviderMetrics{ExactMatchRate: model.Number(0.9)}},
			),
		}

		convey.Convey("Then exact match rates resolve by name", func() {
			convey.So(r.ExactMatchRate("p1").Value, convey.ShouldEqual, 0.9)
			convey.So(r.ExactMatchRate("p2").Present, convey.ShouldBeFalse)
		})
	})
}

func TestYAML(t *testing.T) {
	convey.Convey("Given providers with a failed run", t, func() {
		p := model.ProvidersOf(
			model.Provider{Name: "zeta", Metrics: model.ProviderMetrics{ExactMatchRate: model.Number(math.NaN())}},
			model.Provider{Name: "alpha", Metrics: model.ProviderMetrics{ExactMatchRate: model.Number(0.5)}},
		)

		convey.Convey("When encoding as YAML", func() {
			out, err := yaml.Marshal(p)
			text := string(out)

			convey.Convey("Then order is kept and non-finite values are null", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.Index(text, "zeta:"), convey.ShouldBeLessThan, strings.Index(text, "alpha:"))
				convey.So(text, convey.ShouldContainSubstring, "exact_match_rate: null")
				convey.So(text, convey.ShouldContainSubstring, "exact_match_rate: 0.5")
			})
		})
	})
}
