package api

import (
	"fmt"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
)

func TestClassify(t *testing.T) {
	Convey("Given wrapped domain errors", t, func() {
		wrap := func(err error) error { return Wrap("api.op", fmt.Errorf("case X: %w", err)) }

		Convey("Then each maps to its status and code", func() {
			for _, tc := range []struct {
				err    error
				status int
				code   string
			}{
				{model.ErrUnsavedChanges, http.StatusConflict, "unsaved_changes"},
				{model.ErrNoCaseLoaded, http.StatusConflict, "no_case_loaded"},
				{model.ErrItemRange, http.StatusBadRequest, "bad_request"},
				{model.ErrResponseState, http.StatusBadRequest, "bad_request"},
				{catalog.ErrTaskNotFound, http.StatusNotFound, "not_found"},
				{fmt.Errorf("disk full"), http.StatusInternalServerError, "internal_error"},
			} {
				status, code := classify(wrap(tc.err))
				So(status, ShouldEqual, tc.status)
				So(code, ShouldEqual, tc.code)
			}
		})
	})
}
