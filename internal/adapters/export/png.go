package export

import (
	"fmt"
	"image/png"
	"io"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/radar"
)

// WritePNG draws the case's radar without animation and encodes it.
func WritePNG(w io.Writer, c *model.Case, opts ...radar.Option) error {
	if c == nil {
		return ErrNoCase
	}
	img := radar.Snapshot(&c.Competences, c.WritingStatus().Active, opts...)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
