package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.ingestionRuns.WithLabelValues("ready").Inc()

			Convey("Then collectors should be registered under the difr namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "difr_leaderboard_ingestion_runs_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("audit"),
				WithMetricPrefix("x"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.filesFetched.Inc()

			Convey("Then names, labels and interval should reflect the options", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				expected := `
# HELP test_audit_x_files_fetched_total Total number of audit files fetched
# TYPE test_audit_x_files_fetched_total counter
test_audit_x_files_fetched_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_audit_x_files_fetched_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
			manager.filesFetched.Inc()

			Convey("Then nothing is registered", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := testutil.ToFloat64(globalManager.ingestionRuns.WithLabelValues("fallback"))
			RecordIngestionRun("fallback")
			RecordFileSkipped("filename")
			RecordFetchError("dir", "list")
			UpdateIngestionState(2)
			UpdateFilesListed(7)

			Convey("Then counters and gauges should move", func() {
				So(testutil.ToFloat64(globalManager.ingestionRuns.WithLabelValues("fallback")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.ingestionState), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.filesListed), ShouldEqual, 7)
			})
		})

		Convey("When recording corpus and snapshot metrics", func() {
			UpdateCorpus(10, 2, 4)
			now := time.Unix(1_700_000_000, 0)
			RecordSnapshotPublished(now)

			Convey("Then the gauges should match", func() {
				So(testutil.ToFloat64(globalManager.corpusRecords), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.corpusModels), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.corpusProviders), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.snapshotLastUnix), ShouldEqual, 1_700_000_000)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When recording HTTP and latency metrics", func() {
			So(func() {
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 1.5)
				RecordErrorByEndpoint("trends", "GET", "not_found")
				RecordErrorByComponent("ingest", "fetch")
				RecordAggregationLatency("leaderboard", 0.2)
				RecordFetchLatency(3)
				RecordIngestionDuration(12)
				RecordFileFetched()
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should be exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
