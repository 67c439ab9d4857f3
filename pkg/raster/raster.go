// Package raster handles decoding and encoding of background and sticker images.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Format identifies an output encoding
type Format string

// Supported output formats
const (
	PNG  Format = "png"
	JPEG Format = "jpg"
	WebP Format = "webp"
)

// ParseFormat converts a user supplied format name into a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "webp":
		return WebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// FormatFromPath picks the output format from a file extension, defaulting to PNG
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return PNG
	}
	return f
}

// EncodeOptions controls lossy encoders
type EncodeOptions struct {
	Quality  int
	Lossless bool
}

// DecodeError reports image bytes that could not be decoded
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to decode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrEmpty is returned for zero-length input or zero-area images
var ErrEmpty = errors.New("empty image")

// Decode decodes image bytes in any registered format, with WebP support
func Decode(data []byte) (image.Image, error) {
	return decodeNamed("", data)
}

// Load reads and decodes an image file
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return decodeNamed(path, data)
}

func decodeNamed(source string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: source, Err: ErrEmpty}
	}

	// Registered decoders first (png, jpeg, gif, bmp, tiff, webp)
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		// Fallback: libwebp handles extended WebP variants
		wimg, werr := webp.Decode(bytes.NewReader(data))
		if werr != nil {
			return nil, &DecodeError{Source: source, Err: err}
		}
		img = wimg
	}

	if img.Bounds().Empty() {
		return nil, &DecodeError{Source: source, Err: ErrEmpty}
	}
	return img, nil
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	switch format {
	case WebP:
		return webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)})
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case PNG, "":
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Save encodes img into the file at path
func Save(img image.Image, path string, format Format, opts EncodeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(f, img, format, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
}

// Info returns basic information about an image
func Info(img image.Image) ImageInfo {
	b := img.Bounds()
	info := ImageInfo{Width: b.Dx(), Height: b.Dy()}
	if info.Height > 0 {
		info.AspectRatio = float64(info.Width) / float64(info.Height)
	}
	return info
}
