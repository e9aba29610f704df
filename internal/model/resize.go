package model

// Resize holds the requested output dimensions. A zero value means the
// dimension was not given.
type Resize struct {
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
}

// Enabled reports whether at least one dimension was requested.
func (r Resize) Enabled() bool {
	return r.Width > 0 || r.Height > 0
}

// Target computes the output dimensions for a source of srcW x srcH pixels.
//
// Both dimensions given: exact stretch, aspect ratio is not preserved.
// One dimension given: the other is derived from the source aspect ratio,
// truncated toward zero and never smaller than one pixel.
// Neither given: ok is false and no resize should run.
func (r Resize) Target(srcW, srcH int) (w, h int, ok bool) {
	switch {
	case r.Width > 0 && r.Height > 0:
		return r.Width, r.Height, true
	case r.Width > 0:
		if srcW <= 0 {
			return r.Width, r.Width, true
		}
		return r.Width, derive(r.Width, srcH, srcW), true
	case r.Height > 0:
		if srcH <= 0 {
			return r.Height, r.Height, true
		}
		return derive(r.Height, srcW, srcH), r.Height, true
	default:
		return srcW, srcH, false
	}
}

// derive returns given * (other / givenSrc) truncated, clamped to 1.
func derive(given, other, givenSrc int) int {
	d := int(float64(given) * (float64(other) / float64(givenSrc)))
	if d < 1 {
		return 1
	}
	return d
}
