package api_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/difr/internal/adapters/http/api"
	"github.com/okian/difr/internal/adapters/source"
	service "github.com/okian/difr/internal/app"
	"github.com/okian/difr/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var corpus = []struct{ name, body string }{
	{"acme_a_audit_results_20240101_000000.json", `{"providers":{"p1":{"exact_match_rate":0.9},"p2":{"exact_match_rate":0.5}}}`},
	{"acme_a_audit_results_20240102_000000.json", `{"providers":{"p1":{"exact_match_rate":0.7},"p2":{"exact_match_rate":NaN}}}`},
	{"acme_b_audit_results_20240101_000000.json", `{"providers":{"p2":{"exact_match_rate":0.6}}}`},
}

func newReadyServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range corpus {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	svc := service.New(service.WithSource(source.NewDir(dir)))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	return newServer(svc, []string{"*"}), svc
}

func newServer(svc *service.Service, origins []string) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(api.NewHandler(mux, origins))
}

func getJSON(t *testing.T, u string, v any) int {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestAPI_ReadEndpoints(t *testing.T) {
	Convey("Given a server over a ready corpus", t, func() {
		srv, svc := newReadyServer(t)
		defer srv.Close()
		defer svc.Stop()

		Convey("When requesting the leaderboard", func() {
			var entries []map[string]any
			So(getJSON(t, srv.URL+"/leaderboard", &entries), ShouldEqual, http.StatusOK)

			Convey("Then providers are ranked by average score", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[0]["provider"], ShouldEqual, "p1")
				So(entries[0]["avgScore"], ShouldAlmostEqual, 0.8, 1e-9)
				So(entries[0]["modelCount"], ShouldEqual, 1.0)
				So(entries[1]["provider"], ShouldEqual, "p2")
				So(entries[1]["dataPoints"], ShouldEqual, 2.0)
				So(entries[1]["modelCount"], ShouldEqual, 2.0)
			})
		})

		Convey("When the leaderboard is limited", func() {
			var entries []map[string]any
			So(getJSON(t, srv.URL+"/leaderboard?limit=1", &entries), ShouldEqual, http.StatusOK)
			So(len(entries), ShouldEqual, 1)
		})

		Convey("When the limit is malformed", func() {
			var body map[string]string
			So(getJSON(t, srv.URL+"/leaderboard?limit=zero", &body), ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "bad_request")
		})

		Convey("When listing models and providers", func() {
			var models map[string]any
			So(getJSON(t, srv.URL+"/models", &models), ShouldEqual, http.StatusOK)
			var providers []string
			So(getJSON(t, srv.URL+"/providers", &providers), ShouldEqual, http.StatusOK)

			Convey("Then the first model is selected", func() {
				So(models["models"], ShouldResemble, []any{"acme/a", "acme/b"})
				So(models["selected"], ShouldEqual, "acme/a")
				So(providers, ShouldResemble, []string{"p1", "p2"})
			})
		})

		Convey("When requesting trends without a model", func() {
			var trends struct {
				Model string           `json:"model"`
				Stats []map[string]any `json:"stats"`
			}
			So(getJSON(t, srv.URL+"/trends", &trends), ShouldEqual, http.StatusOK)

			Convey("Then the selected model is used", func() {
				So(trends.Model, ShouldEqual, "acme/a")
				So(len(trends.Stats), ShouldEqual, 2)
				So(trends.Stats[0]["provider"], ShouldEqual, "p1")
				So(trends.Stats[0]["latestScore"], ShouldAlmostEqual, 0.7, 1e-9)
				So(trends.Stats[1]["dataPoints"], ShouldEqual, 1.0)
			})
		})

		Convey("When requesting the time series of a named model", func() {
			var series struct {
				Model  string           `json:"model"`
				Points []map[string]any `json:"points"`
			}
			q := url.Values{"model": {"acme/a"}}
			So(getJSON(t, srv.URL+"/timeseries?"+q.Encode(), &series), ShouldEqual, http.StatusOK)

			Convey("Then invalid scores are gaps", func() {
				So(len(series.Points), ShouldEqual, 2)
				So(series.Points[0]["timestamp"], ShouldEqual, "2024-01-01T00:00:00")
				So(series.Points[1]["p1"], ShouldAlmostEqual, 0.7, 1e-9)
				v, ok := series.Points[1]["p2"]
				So(ok, ShouldBeTrue)
				So(v, ShouldBeNil)
			})
		})

		Convey("When requesting results of an unknown model", func() {
			var body map[string]string
			So(getJSON(t, srv.URL+"/results?model=nobody", &body), ShouldEqual, http.StatusNotFound)
			So(body["code"], ShouldEqual, "not_found")
		})

		Convey("When requesting the state", func() {
			var state map[string]any
			So(getJSON(t, srv.URL+"/state", &state), ShouldEqual, http.StatusOK)
			So(state["state"], ShouldEqual, "ready")
			So(state["records"], ShouldEqual, 3.0)
			So(state["selectedModel"], ShouldEqual, "acme/a")
		})

		Convey("When requesting stats and health", func() {
			var stats map[string]any
			So(getJSON(t, srv.URL+"/stats", &stats), ShouldEqual, http.StatusOK)
			So(stats["state"], ShouldEqual, "ready")
			So(stats["source"], ShouldEqual, "dir")

			var health map[string]string
			So(getJSON(t, srv.URL+"/healthz", &health), ShouldEqual, http.StatusOK)
			So(health["status"], ShouldEqual, "ok")
		})

		Convey("When scraping metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "difr_leaderboard_ingestion_runs_total")
		})

		Convey("When posting to a read endpoint", func() {
			resp, err := http.Post(srv.URL+"/leaderboard", "application/json", strings.NewReader("{}"))
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

// blockingSource never finishes listing until its context ends.
type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) List(ctx context.Context) ([]source.File, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingSource) Fetch(context.Context, source.File) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func TestAPI_Loading(t *testing.T) {
	Convey("Given a server whose ingestion is still running", t, func() {
		svc := service.New(service.WithSource(blockingSource{}), service.WithFetchTimeout(0))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		srv := newServer(svc, nil)
		defer srv.Close()

		Convey("Then data endpoints answer 503 with a retry hint", func() {
			resp, err := http.Get(srv.URL + "/leaderboard")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			So(resp.Header.Get("Retry-After"), ShouldEqual, "1")
		})

		Convey("Then the state endpoint reports loading", func() {
			var state map[string]any
			So(getJSON(t, srv.URL+"/state", &state), ShouldEqual, http.StatusOK)
			So(state["state"], ShouldEqual, "loading")
			_, finished := state["finishedAt"]
			So(finished, ShouldBeFalse)
		})
	})

	Convey("Given a server that was never started", t, func() {
		svc := service.New(service.WithSource(blockingSource{}))
		srv := newServer(svc, nil)
		defer srv.Close()

		var body map[string]string
		So(getJSON(t, srv.URL+"/models", &body), ShouldEqual, http.StatusServiceUnavailable)
		So(body["code"], ShouldEqual, "not_started")
	})
}

func TestNewHandler(t *testing.T) {
	big := strings.Repeat("leaderboard ", 1024)
	mux := http.NewServeMux()
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, big)
	})

	Convey("Given a handler restricted to one origin", t, func() {
		srv := httptest.NewServer(api.NewHandler(mux, []string{"https://example.org"}))
		defer srv.Close()

		Convey("When a client accepts gzip", func() {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/big", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			req.Header.Set("Origin", "https://example.org")
			resp, err := http.DefaultTransport.RoundTrip(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the body is compressed and the origin allowed", func() {
				So(resp.Header.Get("Content-Encoding"), ShouldEqual, "gzip")
				So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldEqual, "https://example.org")
				zr, err := gzip.NewReader(resp.Body)
				So(err, ShouldBeNil)
				body, err := io.ReadAll(zr)
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, big)
			})
		})

		Convey("When another origin sends a preflight", func() {
			req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/big", nil)
			req.Header.Set("Origin", "https://evil.example")
			req.Header.Set("Access-Control-Request-Method", "GET")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then it is answered without an allow-origin header", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
				So(resp.Header.Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "GET")
			})
		})
	})
}

func TestErrorWrapping(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are reachable", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrInternal).Error(), ShouldEqual, "api.op: internal error")
		})
	})
}

func TestWithMetricsEndpoint(t *testing.T) {
	Convey("Given a server with the metrics endpoint disabled", t, func() {
		svc := service.New(service.WithSource(blockingSource{}))
		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithMetricsEndpoint(false)).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/metrics")
		So(err, ShouldBeNil)
		resp.Body.Close()
		So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
	})
}
