package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp" // registers the WebP decoder with image.Decode

	"github.com/aliskhannn/watermarker/internal/model"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 95

// Output is an encoded, watermarked image ready to be written.
type Output struct {
	Data   *bytes.Buffer
	Width  int
	Height int
}

// Processor decodes a source image, resizes it, composites the watermark
// and encodes the result. It holds no per-job state and is safe for
// concurrent use.
type Processor struct {
	jpegQuality int
	filter      imaging.ResampleFilter
}

// New creates a Processor. A jpegQuality outside 1..100 falls back to
// DefaultJPEGQuality.
func New(jpegQuality int) *Processor {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}

	return &Processor{
		jpegQuality: jpegQuality,
		filter:      imaging.Lanczos,
	}
}

// Process runs the transform for job j reading the source from src.
// Errors are *model.JobError tagged with the failing stage.
func (p *Processor) Process(src io.Reader, wm image.Image, j model.Job) (Output, error) {
	// Decode into an image object. EXIF orientation is ignored so the output
	// keeps the stored pixel layout of the source.
	img, err := imaging.Decode(src)
	if err != nil {
		return Output{}, &model.JobError{Stage: model.StageDecode, Path: j.SourcePath, Err: err}
	}

	// Resize when requested.
	b := img.Bounds()
	if w, h, ok := j.Resize.Target(b.Dx(), b.Dy()); ok {
		img = imaging.Resize(img, w, h, p.filter)
	}

	// Draw the watermark at the top-left corner, unscaled.
	marked := Composite(img, wm)

	// Encode modified image.
	buf := new(bytes.Buffer)
	if err := p.Encode(buf, marked, j.Format); err != nil {
		return Output{}, &model.JobError{Stage: model.StageEncode, Path: j.SourcePath, Err: err}
	}

	out := marked.Bounds()

	return Output{Data: buf, Width: out.Dx(), Height: out.Dy()}, nil
}

// Composite draws wm over img with its origin at (0,0). Parts of the
// watermark outside img are clipped.
func Composite(img, wm image.Image) image.Image {
	dc := gg.NewContextForImage(img)
	dc.DrawImage(wm, 0, 0)

	return dc.Image()
}

// Encode writes img to w in format f.
func (p *Processor) Encode(w io.Writer, img image.Image, f model.Format) error {
	switch f {
	case model.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case model.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality))
	case model.FormatBMP:
		return imaging.Encode(w, img, imaging.BMP)
	case model.FormatTIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case model.FormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %v", model.ErrUnsupportedFormat, f)
	}
}
