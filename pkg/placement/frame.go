// Package placement keeps sticker overlays positioned relative to the
// background image.
//
// Overlays store their scale divided by the zoom level and their position in
// the background's unscaled local space, measured from the background's
// centre. Absolute canvas transforms are derived from those values and the
// current Frame, so resizing the viewport, zooming or replacing the
// background never drifts an overlay away from the spot it was placed on.
package placement

import (
	"errors"
	"fmt"
)

// ErrNoBackground is returned when an overlay operation needs a Frame but no
// background image has been loaded.
var ErrNoBackground = errors.New("no background image")

// Viewport is the size of the drawing canvas in pixels
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the centre point of the viewport
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}

// Valid reports whether both dimensions are positive
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Transform is an absolute, centre-anchored placement on the canvas
type Transform struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
}

// Frame is the background image's current placement on the canvas
type Frame struct {
	NaturalWidth  int
	NaturalHeight int
	FitScaleX     float64
	FitScaleY     float64
	ZoomScale     float64
	OriginLeft    float64
	OriginTop     float64
}

// NewFrame fits a background of the given natural size into the viewport
// and centres it there.
func NewFrame(naturalWidth, naturalHeight int, viewport Viewport, zoom float64) (Frame, error) {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return Frame{}, fmt.Errorf("invalid background dimensions: %dx%d", naturalWidth, naturalHeight)
	}
	if !viewport.Valid() {
		return Frame{}, fmt.Errorf("invalid viewport: %gx%g", viewport.Width, viewport.Height)
	}
	if zoom <= 0 {
		zoom = 1
	}

	f := Frame{
		NaturalWidth:  naturalWidth,
		NaturalHeight: naturalHeight,
		ZoomScale:     zoom,
	}
	return f.Refit(viewport), nil
}

// Refit recomputes the fit scale and origin for a new viewport size. The
// image fills the viewport along whichever axis is more constrained.
func (f Frame) Refit(viewport Viewport) Frame {
	if !viewport.Valid() || f.NaturalWidth <= 0 || f.NaturalHeight <= 0 {
		return f
	}

	imgRatio := float64(f.NaturalWidth) / float64(f.NaturalHeight)
	viewRatio := viewport.Width / viewport.Height

	var fit float64
	if imgRatio > viewRatio {
		fit = viewport.Width / float64(f.NaturalWidth)
	} else {
		fit = viewport.Height / float64(f.NaturalHeight)
	}

	f.FitScaleX, f.FitScaleY = fit, fit
	f.OriginLeft, f.OriginTop = viewport.Center()
	return f
}

// WithZoom returns a copy of the frame at a different zoom level
func (f Frame) WithZoom(zoom float64) Frame {
	f.ZoomScale = zoom
	return f
}

// EffectiveScaleX is the background's horizontal scale on the canvas
func (f Frame) EffectiveScaleX() float64 {
	return f.FitScaleX * f.ZoomScale
}

// EffectiveScaleY is the background's vertical scale on the canvas
func (f Frame) EffectiveScaleY() float64 {
	return f.FitScaleY * f.ZoomScale
}

// Transform returns the background image's own canvas transform
func (f Frame) Transform() Transform {
	return Transform{
		Left:   f.OriginLeft,
		Top:    f.OriginTop,
		ScaleX: f.EffectiveScaleX(),
		ScaleY: f.EffectiveScaleY(),
	}
}

// ToLocal converts an absolute canvas point to the background's unscaled
// local space.
func (f Frame) ToLocal(left, top float64) (float64, float64) {
	return (left - f.OriginLeft) / f.EffectiveScaleX(), (top - f.OriginTop) / f.EffectiveScaleY()
}

// ToCanvas converts a local point back to canvas coordinates
func (f Frame) ToCanvas(x, y float64) (float64, float64) {
	return f.OriginLeft + x*f.EffectiveScaleX(), f.OriginTop + y*f.EffectiveScaleY()
}
