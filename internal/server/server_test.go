package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/lingprofile/internal/app"
	"github.com/okian/lingprofile/internal/config"
	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/internal/server"
	"github.com/okian/lingprofile/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.New(context.Background())
	cfg.Addr = "127.0.0.1:0"
	cfg.ExportDir = filepath.Join(dir, "exports")
	cfg.SettingsPath = filepath.Join(dir, "settings.yaml")
	cfg.ExportWorkers = 1
	return cfg
}

func TestServiceOptions(t *testing.T) {
	Convey("Given a configuration", t, func() {
		cfg := testConfig(t)

		Convey("Every tunable maps onto a service option", func() {
			So(server.ServiceOptions(cfg), ShouldHaveLength, 8)
		})
	})
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a started server", t, func() {
		srv := server.New(testConfig(t),
			server.WithLogger(logger.Nop()),
			server.WithServiceOptions(service.WithScheduler(radar.NewManualScheduler(time.Unix(0, 0)))),
		)
		So(srv.Start(context.Background()), ShouldBeNil)
		defer srv.Service().Stop()

		do := func(method, path string, body []byte) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(method, path, bytes.NewReader(body)))
			return w
		}

		Convey("The workspace page is served at the root", func() {
			w := do(http.MethodGet, "/", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
		})

		Convey("API documentation is served", func() {
			So(do(http.MethodGet, "/api-docs", nil).Code, ShouldEqual, http.StatusOK)
			So(do(http.MethodGet, "/openapi.yaml", nil).Code, ShouldEqual, http.StatusOK)
		})

		Convey("API routes are served", func() {
			So(do(http.MethodGet, "/healthz", nil).Code, ShouldEqual, http.StatusOK)
			w := do(http.MethodPost, "/convert", []byte(`{"value": 50, "scale": "perc"}`))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"competence":6`)
		})

		Convey("The demo case is rendered with the configured chart", func() {
			So(do(http.MethodPost, "/cases/demo", nil).Code, ShouldEqual, http.StatusCreated)
			w := do(http.MethodGet, "/cases/DEMO-001/radar.png", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
		})
	})
}

func TestServerRun(t *testing.T) {
	Convey("Given a server bound to an ephemeral port", t, func() {
		srv := server.New(testConfig(t), server.WithLogger(logger.Nop()))
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()

		Convey("Cancelling the context shuts it down cleanly", func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(10 * time.Second):
				So("server did not stop", ShouldBeEmpty)
			}
		})
	})
}

func TestServerRunFailsOnBadStore(t *testing.T) {
	Convey("Given a configuration naming an unreachable sqlite path", t, func() {
		cfg := testConfig(t)
		cfg.StoreDriver = "sqlite"
		cfg.StoreDSN = filepath.Join(t.TempDir(), "missing", "dir", "cases.db")
		srv := server.New(cfg, server.WithLogger(logger.Nop()))

		Convey("Run reports the start failure", func() {
			So(srv.Run(context.Background()), ShouldNotBeNil)
		})
	})
}
