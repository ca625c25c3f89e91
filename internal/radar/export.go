package radar

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/pkg/logger"
)

// DefaultImageName is used by DownloadImage when no name is given.
const DefaultImageName = "profile.png"

// EncodePNG writes the current frame as PNG.
func (c *Chart) EncodePNG(w io.Writer) error {
	img := c.Image()
	if img == nil {
		return fmt.Errorf("%w: no frame", ErrImageFormat)
	}
	return png.Encode(w, img)
}

// ToImageDataURL encodes the current frame as a data URL. format is "png"
// or "jpeg" (MIME types are accepted too); quality in [0,1] applies to
// JPEG only.
func (c *Chart) ToImageDataURL(format string, quality float64) (string, error) {
	img := c.Image()
	if img == nil {
		return "", fmt.Errorf("%w: no frame", ErrImageFormat)
	}
	var buf bytes.Buffer
	var mime string
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), "image/") {
	case "", "png":
		mime = "image/png"
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
	case "jpeg", "jpg":
		mime = "image/jpeg"
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrImageFormat, format)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func jpegQuality(q float64) int {
	if math.IsNaN(q) || q <= 0 || q > 1 {
		return 100
	}
	return max(int(math.Round(q*100)), 1)
}

// DownloadImage saves the current frame as a PNG file.
func (c *Chart) DownloadImage(filename string) error {
	if strings.TrimSpace(filename) == "" {
		filename = DefaultImageName
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		c.log.Error(context.Background(), "image save failed", logger.String("file", filename), logger.Error(err))
		return err
	}
	return f.Close()
}

// Snapshot draws v without animation and returns the frame. Export paths
// use it so each render has its own chart.
func Snapshot(v *scoring.Vector, writingActive bool, opts ...Option) image.Image {
	opts = append(opts, WithAnimationDuration(0), WithWritingActive(writingActive))
	c := New(opts...)
	c.SetData(v)
	return c.Image()
}
