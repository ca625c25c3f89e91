package service_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/lingprofile/internal/app"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
)

func TestService_Workspace(t *testing.T) {
	Convey("Given a service with the demo case saved", t, func() {
		svc, sched := newService(t)
		defer svc.Stop()
		ctx := context.Background()
		_, err := svc.CreateDemoCase(ctx)
		So(err, ShouldBeNil)

		Convey("When nothing is loaded", func() {
			_, err := svc.Workspace()
			_, serr := svc.SetWorkspaceScore(ctx, 0, scoring.Clamp(1))

			Convey("Then ErrNoCaseLoaded is returned", func() {
				So(errors.Is(err, model.ErrNoCaseLoaded), ShouldBeTrue)
				So(errors.Is(serr, model.ErrNoCaseLoaded), ShouldBeTrue)
			})
		})

		Convey("When the demo case is loaded", func() {
			c, err := svc.LoadWorkspace(ctx, "DEMO-001")
			So(err, ShouldBeNil)
			So(c.ID, ShouldEqual, "DEMO-001")

			Convey("Then the chart animates until the scheduler settles", func() {
				So(svc.WorkspaceAnimating(), ShouldBeTrue)
				sched.Settle(16*time.Millisecond, 100)
				So(svc.WorkspaceAnimating(), ShouldBeFalse)
			})

			Convey("Then the current frame encodes as PNG", func() {
				var buf bytes.Buffer
				So(svc.WorkspacePNG(&buf), ShouldBeNil)
				img, err := png.Decode(&buf)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 240)
			})

			Convey("When one segment is changed", func() {
				sched.Settle(16*time.Millisecond, 100)
				ws, err := svc.SetWorkspaceScore(ctx, 0, scoring.Clamp(9))
				So(err, ShouldBeNil)

				Convey("Then only that petal animates and auto save persists it", func() {
					So(ws.Competences[0], ShouldResemble, scoring.Clamp(9))
					So(svc.WorkspaceAnimating(), ShouldBeTrue)
					saved, err := svc.GetCase(ctx, "DEMO-001")
					So(err, ShouldBeNil)
					So(saved.Competences[0], ShouldResemble, scoring.Clamp(9))
				})
			})

			Convey("When the case is edited through the case operations", func() {
				_, err := svc.SetScore(ctx, "DEMO-001", 1, scoring.Clamp(8))
				So(err, ShouldBeNil)

				Convey("Then the workspace follows", func() {
					ws, err := svc.Workspace()
					So(err, ShouldBeNil)
					So(ws.Competences[1], ShouldResemble, scoring.Clamp(8))
				})
			})

			Convey("When the case is deleted", func() {
				So(svc.DeleteCase(ctx, "DEMO-001"), ShouldBeNil)

				Convey("Then the workspace is empty", func() {
					_, err := svc.Workspace()
					So(errors.Is(err, model.ErrNoCaseLoaded), ShouldBeTrue)
				})
			})
		})
	})

	Convey("Given a settings path with no file yet", t, func() {
		path := t.TempDir() + "/settings.yaml"
		svc, _ := newService(t, service.WithSettingsPath(path))
		defer svc.Stop()
		ctx := context.Background()
		_, err := svc.CreateDemoCase(ctx)
		So(err, ShouldBeNil)
		_, err = svc.LoadWorkspace(ctx, "DEMO-001")
		So(err, ShouldBeNil)

		Convey("When no settings file exists the default saves", func() {
			_, err := svc.SetWorkspaceScore(ctx, 2, scoring.Clamp(7))
			So(err, ShouldBeNil)
			saved, err := svc.GetCase(ctx, "DEMO-001")
			So(err, ShouldBeNil)
			So(saved.Competences[2], ShouldResemble, scoring.Clamp(7))
		})
	})
}

func TestService_WorkspaceManualSave(t *testing.T) {
	Convey("Given a settings file with auto save off", t, func() {
		path := t.TempDir() + "/settings.yaml"
		So(writeFile(path, "auto_save: false\n"), ShouldBeNil)
		svc, _ := newService(t, service.WithSettingsPath(path))
		defer svc.Stop()
		ctx := context.Background()
		_, err := svc.CreateDemoCase(ctx)
		So(err, ShouldBeNil)
		_, err = svc.LoadWorkspace(ctx, "DEMO-001")
		So(err, ShouldBeNil)

		Convey("When a segment is changed", func() {
			_, err := svc.SetWorkspaceScore(ctx, 3, scoring.Clamp(10))
			So(err, ShouldBeNil)

			Convey("Then the store is untouched until the workspace is saved", func() {
				stored, err := svc.GetCase(ctx, "DEMO-001")
				So(err, ShouldBeNil)
				So(stored.Competences[3], ShouldResemble, scoring.Clamp(1))

				_, err = svc.SaveWorkspace(ctx)
				So(err, ShouldBeNil)
				stored, err = svc.GetCase(ctx, "DEMO-001")
				So(err, ShouldBeNil)
				So(stored.Competences[3], ShouldResemble, scoring.Clamp(10))
			})

			Convey("Then case writes to the same case are refused and the edit survives", func() {
				_, err := svc.SetScore(ctx, "DEMO-001", 4, scoring.Clamp(2))
				So(errors.Is(err, model.ErrUnsavedChanges), ShouldBeTrue)
				_, _, err = svc.ApplyTest(ctx, "DEMO-001", "tav", 50, "")
				So(errors.Is(err, model.ErrUnsavedChanges), ShouldBeTrue)
				_, err = svc.SetResponse(ctx, "DEMO-001", "tas", "def", 1, model.ResponseCorrect)
				So(errors.Is(err, model.ErrUnsavedChanges), ShouldBeTrue)
				_, err = svc.CreateDemoCase(ctx)
				So(errors.Is(err, model.ErrUnsavedChanges), ShouldBeTrue)

				ws, err := svc.Workspace()
				So(err, ShouldBeNil)
				So(ws.Competences[3], ShouldResemble, scoring.Clamp(10))
				stored, err := svc.GetCase(ctx, "DEMO-001")
				So(err, ShouldBeNil)
				So(stored.Competences[4], ShouldResemble, scoring.Clamp(4))
				So(stored.Tests, ShouldBeEmpty)
			})

			Convey("Then case writes go through once the workspace is saved", func() {
				_, err := svc.SaveWorkspace(ctx)
				So(err, ShouldBeNil)
				_, err = svc.SetScore(ctx, "DEMO-001", 4, scoring.Clamp(2))
				So(err, ShouldBeNil)

				ws, err := svc.Workspace()
				So(err, ShouldBeNil)
				So(ws.Competences[3], ShouldResemble, scoring.Clamp(10))
				So(ws.Competences[4], ShouldResemble, scoring.Clamp(2))
			})

			Convey("Then other cases can still be written", func() {
				_, err := svc.SaveCase(ctx, &model.Case{ID: "OTHER"})
				So(err, ShouldBeNil)
				_, err = svc.SetScore(ctx, "OTHER", 0, scoring.Clamp(5))
				So(err, ShouldBeNil)
			})
		})
	})
}
