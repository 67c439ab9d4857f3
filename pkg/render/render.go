// Package render flattens a session scene into a single raster and exports
// it, the equivalent of downloading the edited canvas.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/menta2k/sticker-editor/pkg/placement"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/session"
)

// Options controls how a scene is flattened
type Options struct {
	// Backdrop is a hex colour painted under the background; empty keeps
	// uncovered canvas areas transparent.
	Backdrop string
	// Interpolation is one of nearest, bilinear, approx-bilinear, catmullrom
	Interpolation string
}

// DefaultOptions returns transparent output with bilinear sampling
func DefaultOptions() Options {
	return Options{Interpolation: "bilinear"}
}

// Renderer draws scenes with fixed options
type Renderer struct {
	backdrop *color.NRGBA
	interp   draw.Interpolator
}

// NewRenderer validates opts and builds a Renderer
func NewRenderer(opts Options) (*Renderer, error) {
	interp, err := parseInterpolation(opts.Interpolation)
	if err != nil {
		return nil, err
	}

	r := &Renderer{interp: interp}
	if opts.Backdrop != "" {
		c, err := colorful.Hex(opts.Backdrop)
		if err != nil {
			return nil, fmt.Errorf("invalid backdrop colour %q: %w", opts.Backdrop, err)
		}
		red, green, blue := c.RGB255()
		r.backdrop = &color.NRGBA{red, green, blue, 255}
	}
	return r, nil
}

func parseInterpolation(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "nearest":
		return draw.NearestNeighbor, nil
	case "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "bilinear", "":
		return draw.BiLinear, nil
	case "catmullrom":
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown interpolation: %s", name)
	}
}

// Flatten draws the background and every overlay, in stacking order, onto a
// canvas the size of the scene's viewport.
func (r *Renderer) Flatten(scene session.Scene) (*image.NRGBA, error) {
	w := int(math.Ceil(scene.Viewport.Width))
	h := int(math.Ceil(scene.Viewport.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot render empty viewport %gx%g", scene.Viewport.Width, scene.Viewport.Height)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	if r.backdrop != nil {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(*r.backdrop), image.Point{}, draw.Src)
	}

	if scene.HasBackground && scene.Background != nil {
		r.drawCentered(canvas, scene.Background, scene.Frame.Transform())
	}
	for _, o := range scene.Overlays {
		if o.Raster == nil {
			continue
		}
		r.drawCentered(canvas, o.Raster, o.Transform)
	}

	return canvas, nil
}

// drawCentered maps src so that its centre lands on (t.Left, t.Top)
func (r *Renderer) drawCentered(dst draw.Image, src image.Image, t placement.Transform) {
	b := src.Bounds()
	if b.Empty() || t.ScaleX <= 0 || t.ScaleY <= 0 {
		return
	}

	w, h := float64(b.Dx()), float64(b.Dy())
	s2d := f64.Aff3{
		t.ScaleX, 0, t.Left - t.ScaleX*(w/2+float64(b.Min.X)),
		0, t.ScaleY, t.Top - t.ScaleY*(h/2+float64(b.Min.Y)),
	}
	r.interp.Transform(dst, s2d, src, b, draw.Over, nil)
}

// Export flattens scene and encodes it to w
func (r *Renderer) Export(w io.Writer, scene session.Scene, format raster.Format, opts raster.EncodeOptions) error {
	img, err := r.Flatten(scene)
	if err != nil {
		return err
	}
	if err := raster.Encode(w, img, format, opts); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Save flattens scene into a file, choosing the format from its extension
func (r *Renderer) Save(scene session.Scene, path string, opts raster.EncodeOptions) error {
	img, err := r.Flatten(scene)
	if err != nil {
		return err
	}
	return raster.Save(img, path, raster.FormatFromPath(path), opts)
}
