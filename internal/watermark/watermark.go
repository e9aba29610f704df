// Package watermark loads the overlay image shared by every job of a batch.
package watermark

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/webp" // registers the WebP decoder with image.Decode
)

// DecodeError is returned when the watermark cannot be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to open watermark image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Watermark is a decoded overlay image. It is never modified after Load and
// is shared by pointer between concurrently running jobs.
type Watermark struct {
	path string
	img  image.Image
}

// Load reads and decodes the watermark at path.
func Load(path string) (*Watermark, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	b := img.Bounds()
	zlog.Logger.Info().
		Str("path", path).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("watermark loaded")

	return &Watermark{path: path, img: img}, nil
}

// New wraps an already decoded image.
func New(img image.Image) *Watermark {
	return &Watermark{img: img}
}

// Image returns the decoded overlay. Callers must treat it as read-only.
func (w *Watermark) Image() image.Image {
	return w.img
}

// Path returns the file the watermark was loaded from, if any.
func (w *Watermark) Path() string {
	return w.path
}

// Bounds returns the overlay bounds.
func (w *Watermark) Bounds() image.Rectangle {
	return w.img.Bounds()
}
