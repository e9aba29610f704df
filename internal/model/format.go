package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when an explicit output format is not one
// of the formats the tool can encode.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is an output image container.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatWebP
	FormatBMP
	FormatTIFF
)

// DefaultFormat is used when neither an explicit format nor a recognised
// source extension is available.
const DefaultFormat = FormatPNG

var formatNames = map[Format]string{
	FormatPNG:  "png",
	FormatJPEG: "jpeg",
	FormatWebP: "webp",
	FormatBMP:  "bmp",
	FormatTIFF: "tiff",
}

var formatMIMETypes = map[Format]string{
	FormatPNG:  "image/png",
	FormatJPEG: "image/jpeg",
	FormatWebP: "image/webp",
	FormatBMP:  "image/bmp",
	FormatTIFF: "image/tiff",
}

var formatExtensions = map[Format]string{
	FormatPNG:  "png",
	FormatJPEG: "jpg",
	FormatWebP: "webp",
	FormatBMP:  "bmp",
	FormatTIFF: "tiff",
}

// ParseFormat parses an explicit, user-supplied format name.
// Accepted values are png, jpg, jpeg, webp, bmp and tiff (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// SplitName splits the base name of path into stem and extension (without
// dot). A name whose only dot is the leading one, such as ".png", is all
// stem and has no extension.
func SplitName(path string) (stem, ext string) {
	base := filepath.Base(path)
	dotExt := filepath.Ext(base)
	if dotExt == base {
		return base, ""
	}
	return strings.TrimSuffix(base, dotExt), strings.TrimPrefix(dotExt, ".")
}

// FormatFromPath infers the format from a file's extension.
// It reports false when the extension is missing or unknown.
func FormatFromPath(path string) (Format, bool) {
	_, ext := SplitName(path)

	switch strings.ToLower(ext) {
	case "png":
		return FormatPNG, true
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "webp":
		return FormatWebP, true
	case "bmp":
		return FormatBMP, true
	case "tiff", "tif":
		return FormatTIFF, true
	default:
		return 0, false
	}
}

// ResolveFormat applies the output format precedence: an explicit format
// wins, then the format inferred from the source extension, then PNG.
func ResolveFormat(explicit *Format, sourcePath string) Format {
	if explicit != nil {
		return *explicit
	}
	if f, ok := FormatFromPath(sourcePath); ok {
		return f
	}
	return DefaultFormat
}

// Extension returns the file extension (without dot) written for f.
func (f Format) Extension() string {
	if ext, ok := formatExtensions[f]; ok {
		return ext
	}
	return formatExtensions[DefaultFormat]
}

// MIMEType returns the content type of f.
func (f Format) MIMEType() string {
	if mt, ok := formatMIMETypes[f]; ok {
		return mt
	}
	return "application/octet-stream"
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// MarshalText encodes the format by name for JSON and YAML reports.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts the same names as ParseFormat.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
