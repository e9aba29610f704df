// Package job builds immutable job descriptors from discovered files.
package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/aliskhannn/watermarker/internal/discovery"
	"github.com/aliskhannn/watermarker/internal/model"
)

// ErrInvalidFilename is returned when no base name can be extracted from a
// source path (for example ".png").
var ErrInvalidFilename = errors.New("invalid filename")

// Builder computes output paths, formats and resize targets. It never reads
// pixel data, so building cannot fail because of image content.
type Builder struct {
	targetDir string
	resize    model.Resize
	format    *model.Format
}

// NewBuilder creates a Builder. A nil format means the format is inferred per
// source file.
func NewBuilder(targetDir string, resize model.Resize, format *model.Format) *Builder {
	return &Builder{
		targetDir: targetDir,
		resize:    resize,
		format:    format,
	}
}

// Build creates the job for one discovered file.
func (b *Builder) Build(e discovery.Entry) (model.Job, error) {
	stem := stem(e.Path)
	if stem == "" {
		return model.Job{}, fmt.Errorf("%s: %w", e.Path, ErrInvalidFilename)
	}

	format := model.ResolveFormat(b.format, e.Path)
	name := stem + "." + format.Extension()

	return model.Job{
		ID:         uuid.New(),
		SourcePath: e.Path,
		OutputDir:  e.RelDir,
		OutputName: name,
		OutputPath: filepath.Join(b.targetDir, e.RelDir, name),
		Resize:     b.resize,
		Format:     format,
	}, nil
}

// stem returns the base name of path without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	s, _ := model.SplitName(base)
	return s
}

// Collisions groups jobs that write the same output path. Such jobs race and
// the last writer wins; callers only report them.
func Collisions(jobs []model.Job) map[string][]string {
	byOutput := make(map[string][]string, len(jobs))
	for _, j := range jobs {
		byOutput[j.OutputPath] = append(byOutput[j.OutputPath], j.SourcePath)
	}

	collisions := make(map[string][]string)
	for out, sources := range byOutput {
		if len(sources) > 1 {
			sort.Strings(sources)
			collisions[out] = sources
		}
	}

	return collisions
}
