package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/lingprofile/internal/app"
	"github.com/okian/lingprofile/internal/adapters/repository"
	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/pkg/logger"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newService returns a started service on a memory store with a manual
// chart scheduler, and the scheduler driving it.
func newService(t *testing.T, opts ...service.Option) (*service.Service, *radar.ManualScheduler) {
	t.Helper()
	sched := radar.NewManualScheduler(now)
	base := []service.Option{
		service.WithStore(repository.NewMemoryStore(context.Background())),
		service.WithScheduler(sched),
		service.WithExportDir(t.TempDir()),
		service.WithWorkerCount(1),
		service.WithChart(240, 1, 1, 100*time.Millisecond),
		service.WithClock(func() time.Time { return now }),
		service.WithLogger(logger.Nop()),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc, sched
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it reports defaults without being started", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["storeDriver"], ShouldEqual, repository.DriverMemory)
			So(stats["queueSize"], ShouldEqual, 256)
		})

		Convey("Then store operations fail with ErrNotStarted", func() {
			_, err := svc.ListCases(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(512),
			service.WithDedupeSize(25_000),
		)

		Convey("Then the options are reported", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 512)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service on a sqlite store", t, func() {
		dsn := filepath.Join(t.TempDir(), "cases.db")
		svc := service.New(
			service.WithStoreDriver(repository.DriverSQLite, dsn),
			service.WithExportDir(t.TempDir()),
			service.WithWorkerCount(1),
			service.WithFrameInterval(5*time.Millisecond),
			service.WithLogger(logger.Nop()),
		)
		ctx := context.Background()

		Convey("When it is started twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it is running with an empty store", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["cases"], ShouldEqual, 0)
				So(stats["customTests"], ShouldEqual, 0)
			})
		})

		Convey("When a case is saved and the service restarted", func() {
			So(svc.Start(ctx), ShouldBeNil)
			_, err := svc.CreateDemoCase(ctx)
			So(err, ShouldBeNil)
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)

			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the case is still there", func() {
				c, err := svc.GetCase(ctx, "DEMO-001")
				So(err, ShouldBeNil)
				So(c.Name, ShouldEqual, "Demonstration case")
			})
		})

		Convey("When stop is called before start", func() {
			Convey("Then nothing happens", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})

	Convey("Given a service with an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("oracle", "x"), service.WithLogger(logger.Nop()))

		Convey("Then Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestService_Settings(t *testing.T) {
	Convey("Given a service watching a settings file", t, func() {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		So(os.WriteFile(path, []byte("theme: light\nauto_save: false\n"), 0o644), ShouldBeNil)
		svc, _ := newService(t, service.WithSettingsPath(path))
		defer svc.Stop()

		Convey("Then the file is read at start", func() {
			p := svc.Settings()
			So(p.Dark(), ShouldBeFalse)
			So(p.AutoSave, ShouldBeFalse)
		})

		Convey("When the theme changes on disk", func() {
			So(os.WriteFile(path, []byte("theme: dark\nauto_save: false\n"), 0o644), ShouldBeNil)

			Convey("Then the service picks it up", func() {
				deadline := time.Now().Add(5 * time.Second)
				for !svc.Settings().Dark() && time.Now().Before(deadline) {
					time.Sleep(20 * time.Millisecond)
				}
				So(svc.Settings().Dark(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without a settings file", t, func() {
		svc, _ := newService(t)
		defer svc.Stop()

		Convey("Then the defaults apply", func() {
			So(svc.Settings().AutoSave, ShouldBeTrue)
			So(svc.Settings().Dark(), ShouldBeFalse)
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with the demo case loaded", t, func() {
		svc, _ := newService(t)
		defer svc.Stop()
		ctx := context.Background()
		_, err := svc.CreateDemoCase(ctx)
		So(err, ShouldBeNil)
		_, err = svc.LoadWorkspace(ctx, "DEMO-001")
		So(err, ShouldBeNil)

		Convey("Then the stats describe the running state", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["cases"], ShouldEqual, 1)
			So(stats["workspaceCase"], ShouldEqual, "DEMO-001")
			So(stats["chartAnimating"], ShouldEqual, true)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["exportsProcessed"], ShouldEqual, int64(0))
		})
	})
}
