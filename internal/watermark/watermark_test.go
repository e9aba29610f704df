package watermark

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wm.png")
	if err := imaging.Save(imaging.New(10, 12, color.NRGBA{R: 255, A: 128}), path); err != nil {
		t.Fatalf("save: %v", err)
	}

	wm, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := wm.Bounds(); b.Dx() != 10 || b.Dy() != 12 {
		t.Errorf("bounds: got %v, want 10x12", b)
	}
	if wm.Path() != path {
		t.Errorf("Path: got %q, want %q", wm.Path(), path)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoad_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wm.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
}
