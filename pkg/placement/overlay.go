package placement

import (
	"fmt"
	"image"
)

// Overlay is one placed sticker. RelativeScale is independent of zoom and
// RelativeX/RelativeY are offsets from the background centre in its unscaled
// local space. Transform caches the last computed canvas placement.
//
// Scaling is uniform: a single relative scale is kept and non-uniform resize
// gestures are averaged into it.
type Overlay struct {
	ID            string
	Raster        *image.NRGBA
	RelativeScale float64
	RelativeX     float64
	RelativeY     float64
	Transform     Transform
}

// Size returns the overlay raster's natural size
func (o *Overlay) Size() (int, int) {
	if o.Raster == nil {
		return 0, 0
	}
	b := o.Raster.Bounds()
	return b.Dx(), b.Dy()
}

// Register creates an overlay centred on the background at the given
// absolute scale. frame must be non-nil.
func Register(frame *Frame, id string, raster *image.NRGBA, initialAbsoluteScale float64) (*Overlay, error) {
	if frame == nil {
		return nil, ErrNoBackground
	}
	if raster == nil || raster.Bounds().Empty() {
		return nil, fmt.Errorf("overlay %s: empty raster", id)
	}
	if initialAbsoluteScale <= 0 {
		return nil, fmt.Errorf("overlay %s: scale must be positive, got %g", id, initialAbsoluteScale)
	}

	o := &Overlay{
		ID:            id,
		Raster:        raster,
		RelativeScale: initialAbsoluteScale / frame.ZoomScale,
	}
	o.Recompute(*frame)
	return o, nil
}

// Recompute derives the overlay's canvas transform from the frame
func (o *Overlay) Recompute(frame Frame) Transform {
	left, top := frame.ToCanvas(o.RelativeX, o.RelativeY)
	scale := o.RelativeScale * frame.ZoomScale
	o.Transform = Transform{Left: left, Top: top, ScaleX: scale, ScaleY: scale}
	return o.Transform
}

// Move records a drag to an absolute canvas position. Without a frame the
// position has no meaning and the overlay is left untouched.
func Move(frame *Frame, o *Overlay, left, top float64) Transform {
	if frame == nil {
		return o.Transform
	}
	o.RelativeX, o.RelativeY = frame.ToLocal(left, top)
	o.Transform.Left, o.Transform.Top = left, top
	return o.Transform
}

// Scale records a resize gesture. The absolute scales are averaged and
// divided by the current zoom, then the transform is rebuilt so X and Y stay
// uniform. Like Move, it leaves the overlay untouched without a frame.
func Scale(frame *Frame, o *Overlay, scaleX, scaleY float64) (Transform, error) {
	if frame == nil {
		return o.Transform, nil
	}
	if scaleX <= 0 || scaleY <= 0 {
		return o.Transform, fmt.Errorf("overlay %s: scale must be positive, got %gx%g", o.ID, scaleX, scaleY)
	}

	o.RelativeScale = (scaleX/frame.ZoomScale + scaleY/frame.ZoomScale) / 2
	return o.Recompute(*frame), nil
}

// RecomputeAll refreshes every overlay's transform after the frame changed
func RecomputeAll(frame Frame, overlays []*Overlay) []Transform {
	out := make([]Transform, len(overlays))
	for i, o := range overlays {
		out[i] = o.Recompute(frame)
	}
	return out
}
