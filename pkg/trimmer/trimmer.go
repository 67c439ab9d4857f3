// Package trimmer crops sticker images to the bounding box of their
// non-transparent pixels.
//
// A pixel counts as opaque when its alpha is non-zero, so partially
// transparent edges such as anti-aliased outlines are kept. An image with no
// opaque pixel at all is returned unchanged instead of being cropped to a
// zero-size raster.
package trimmer

import (
	"image"

	"github.com/disintegration/imaging"
)

// BoundingBox is an integer pixel rectangle in source image coordinates.
// Right and Bottom are exclusive.
type BoundingBox struct {
	Top    int
	Left   int
	Right  int
	Bottom int
}

// Width returns the horizontal extent of the box
func (b BoundingBox) Width() int {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box
func (b BoundingBox) Height() int {
	return b.Bottom - b.Top
}

// Rect converts the box into an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// bounds accumulates the extremes of opaque pixel coordinates. The first
// opaque pixel seeds all four sides; later pixels may only widen them.
type bounds struct {
	set bool

	top, left, right, bottom int
}

func (b *bounds) add(x, y int) {
	if !b.set {
		b.top, b.left, b.right, b.bottom = y, x, x, y
		b.set = true
		return
	}
	if x < b.left {
		b.left = x
	}
	if x > b.right {
		b.right = x
	}
	if y > b.bottom {
		b.bottom = y
	}
}

// Bounds scans img in row-major order and returns the smallest box that
// encloses every pixel with non-zero alpha. The second result is false when
// the image is fully transparent.
func Bounds(img image.Image) (BoundingBox, bool) {
	r := img.Bounds()
	var acc bounds

	switch src := img.(type) {
	case *image.NRGBA:
		scanAlpha(src.Pix, src.Stride, 4, 3, r, &acc)
	case *image.RGBA:
		scanAlpha(src.Pix, src.Stride, 4, 3, r, &acc)
	case *image.Alpha:
		scanAlpha(src.Pix, src.Stride, 1, 0, r, &acc)
	default:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
					acc.add(x, y)
				}
			}
		}
	}

	if !acc.set {
		return BoundingBox{}, false
	}

	// Extend past the last opaque row and column so they are included
	return BoundingBox{
		Top:    acc.top,
		Left:   acc.left,
		Right:  acc.right + 1,
		Bottom: acc.bottom + 1,
	}, true
}

func scanAlpha(pix []uint8, stride, bpp, alphaOffset int, r image.Rectangle, acc *bounds) {
	w := r.Dx()
	for y := 0; y < r.Dy(); y++ {
		row := pix[y*stride : y*stride+w*bpp]
		for x := 0; x < w; x++ {
			if row[x*bpp+alphaOffset] != 0 {
				acc.add(r.Min.X+x, r.Min.Y+y)
			}
		}
	}
}

// Trim returns img cropped to its opaque bounding box, with the crop's
// top-left corner at (0,0). A fully transparent image is returned as is.
func Trim(img image.Image) image.Image {
	box, ok := Bounds(img)
	if !ok {
		return img
	}
	return imaging.Crop(img, box.Rect())
}

// TrimNRGBA is Trim for callers that need direct pixel access to the result.
// The fully transparent case returns a copy of the source.
func TrimNRGBA(img image.Image) *image.NRGBA {
	box, ok := Bounds(img)
	if !ok {
		return imaging.Clone(img)
	}
	return imaging.Crop(img, box.Rect())
}
