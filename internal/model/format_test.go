package model

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{"jpg", FormatJPEG},
		{"jpeg", FormatJPEG},
		{"webp", FormatWebP},
		{"bmp", FormatBMP},
		{"tiff", FormatTIFF},
		{" Tiff ", FormatTIFF},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFormat_Unsupported(t *testing.T) {
	for _, in := range []string{"gif", "tif", "", "heic"} {
		_, err := ParseFormat(in)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q): got %v, want ErrUnsupportedFormat", in, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.png", FormatPNG, true},
		{"dir/b.JPG", FormatJPEG, true},
		{"c.jpeg", FormatJPEG, true},
		{"d.webp", FormatWebP, true},
		{"e.bmp", FormatBMP, true},
		{"f.tif", FormatTIFF, true},
		{"g.tiff", FormatTIFF, true},
		{"h.gif", 0, false},
		{"noext", 0, false},
		{"dir/.png", 0, false},
		{".cache.png", FormatPNG, true},
	}
	for _, tc := range cases {
		got, ok := FormatFromPath(tc.path)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("FormatFromPath(%q) = %v,%v want %v,%v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		path, stem, ext string
	}{
		{"dir/photo.jpg", "photo", "jpg"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"noext", "noext", ""},
		{".png", ".png", ""},
		{"dir/.hidden.webp", ".hidden", "webp"},
		{"..bmp", ".", "bmp"},
	}
	for _, tc := range cases {
		stem, ext := SplitName(tc.path)
		if stem != tc.stem || ext != tc.ext {
			t.Errorf("SplitName(%q) = %q,%q want %q,%q", tc.path, stem, ext, tc.stem, tc.ext)
		}
	}
}

func TestResolveFormat_Precedence(t *testing.T) {
	tiff := FormatTIFF

	if got := ResolveFormat(&tiff, "img.bmp"); got != FormatTIFF {
		t.Errorf("explicit: got %v, want tiff", got)
	}
	if got := ResolveFormat(nil, "img.bmp"); got != FormatBMP {
		t.Errorf("inferred: got %v, want bmp", got)
	}
	if got := ResolveFormat(nil, "img.xyz"); got != FormatPNG {
		t.Errorf("default: got %v, want png", got)
	}
}

func TestFormatExtension(t *testing.T) {
	want := map[Format]string{
		FormatPNG:  "png",
		FormatJPEG: "jpg",
		FormatWebP: "webp",
		FormatBMP:  "bmp",
		FormatTIFF: "tiff",
	}
	for f, ext := range want {
		if got := f.Extension(); got != ext {
			t.Errorf("%v.Extension() = %q, want %q", f, got, ext)
		}
	}
}
