package main

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--no-color", "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.New(16, 16, color.NRGBA{B: 255, A: 255}), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "stamped")
	wm := writeImage(t, t.TempDir(), "logo.png")
	writeImage(t, in, "a.png")
	writeImage(t, in, "b.jpg")
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	stdout, err := execute(t, "run", wm, in, "-t", out, "-f", "webp", "--width", "8", "--report", reportPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stdout)
	}

	for _, name := range []string{"a.webp", "b.webp"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(stdout, "2 succeeded, 0 failed") {
		t.Errorf("summary missing:\n%s", stdout)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestRunCommandWarnsOnCollision(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	wm := writeImage(t, t.TempDir(), "logo.png")
	writeImage(t, in, "a.png")
	writeImage(t, in, "a.jpg")

	stdout, err := execute(t, "run", wm, in, "-t", out, "-f", "png")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stdout)
	}

	want := "Warning: 2 inputs write " + filepath.Join(out, "a.png")
	if !strings.Contains(stdout, want) {
		t.Errorf("output missing %q:\n%s", want, stdout)
	}
}

func TestRootRunsBatch(t *testing.T) {
	out := t.TempDir()
	wm := writeImage(t, t.TempDir(), "logo.png")
	src := writeImage(t, t.TempDir(), "photo.png")

	if _, err := execute(t, wm, src, "-t", out); err != nil {
		t.Fatalf("root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "photo.png")); err != nil {
		t.Errorf("missing output: %v", err)
	}
}

func TestExitCodes(t *testing.T) {
	wm := writeImage(t, t.TempDir(), "logo.png")
	src := writeImage(t, t.TempDir(), "photo.png")
	missing := filepath.Join(t.TempDir(), "missing.png")

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"ok", []string{"run", wm, src, "-t", t.TempDir()}, exitOK},
		{"missing input", []string{"run", wm, src, missing, "-t", t.TempDir()}, exitFailures},
		{"unsupported format", []string{"run", wm, src, "-f", "gif", "-t", t.TempDir()}, exitConfiguration},
		{"missing watermark", []string{"run", missing, src, "-t", t.TempDir()}, exitConfiguration},
		{"too few args", []string{"run", wm}, exitConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			if got := exitCode(err); got != tc.want {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tc.want, err)
			}
		})
	}
}

func TestExitCodeWrapping(t *testing.T) {
	if got := exitCode(errors.New("plain")); got != exitConfiguration {
		t.Errorf("plain error = %d", got)
	}
	wrapped := errors.Join(errors.New("ctx"), &exitError{code: exitFailures})
	if got := exitCode(wrapped); got != exitFailures {
		t.Errorf("wrapped = %d", got)
	}
}
