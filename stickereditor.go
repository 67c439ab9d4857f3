// Package stickereditor provides a headless photo sticker editor.
//
// A background photo is fitted into a viewport, sticker images are trimmed
// to their opaque pixels and placed on top, and the composition can be
// zoomed, resized and exported as a single flattened image. Sticker
// positions are stored relative to the background, so they stay on the
// same spot of the photo whatever the zoom level or canvas size.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		stickereditor "github.com/menta2k/sticker-editor"
//	)
//
//	func main() {
//		editor, err := stickereditor.New("./stickers")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := editor.LoadBackground(context.Background(), "beach.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		star, err := editor.PlaceSticker("star.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//		editor.Session().Move(star.ID, 300, 200)
//		editor.Session().ZoomIn()
//
//		if err := editor.SaveExport("beach_edited.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package is a thin facade over four components:
//
// 1. Trimmer (pkg/trimmer): crops stickers to their non-transparent bounding box
// 2. Placement (pkg/placement): zoom independent sticker coordinates
// 3. Session (pkg/session): serialised editing state and background loading
// 4. Render (pkg/render): flattening and export
package stickereditor

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/render"
	"github.com/menta2k/sticker-editor/pkg/session"
	"github.com/menta2k/sticker-editor/pkg/stickers"
)

// Version of the sticker editor library
const Version = "1.0.0"

// Editor ties a session to a sticker library and a renderer
type Editor struct {
	session  *session.Session
	library  *stickers.Library
	renderer *render.Renderer
	encode   raster.EncodeOptions
	logger   *log.Logger
}

// New creates an Editor with default settings and stickers from stickerDir.
// An empty stickerDir disables PlaceSticker.
func New(stickerDir string) (*Editor, error) {
	var lib *stickers.Library
	if stickerDir != "" {
		var err error
		lib, err = stickers.Open(stickerDir, stickers.DefaultCacheSize)
		if err != nil {
			return nil, err
		}
	}
	return NewWithConfig(session.DefaultConfig(), render.DefaultOptions(), raster.EncodeOptions{Quality: 90}, lib)
}

// NewWithConfig creates an Editor with custom configuration
func NewWithConfig(sessionConfig session.Config, renderOptions render.Options, encode raster.EncodeOptions, lib *stickers.Library) (*Editor, error) {
	s, err := session.New(sessionConfig)
	if err != nil {
		return nil, err
	}
	r, err := render.NewRenderer(renderOptions)
	if err != nil {
		return nil, err
	}

	return &Editor{
		session:  s,
		library:  lib,
		renderer: r,
		encode:   encode,
	}, nil
}

// SetLogger enables step tracing; nil silences it
func (e *Editor) SetLogger(l *log.Logger) {
	e.logger = l
}

func (e *Editor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// Session returns the underlying editing session
func (e *Editor) Session() *session.Session {
	return e.session
}

// Library returns the sticker library, or nil if none was configured
func (e *Editor) Library() *stickers.Library {
	return e.library
}

// LoadBackground reads an image file and waits until it becomes the
// background. On failure the previous background stays in place.
func (e *Editor) LoadBackground(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open background: %w", err)
	}
	return e.LoadBackgroundBytes(ctx, data)
}

// LoadBackgroundBytes decodes data and waits until it becomes the
// background. Cancellation is checked when the result is committed, so a
// non-nil error always means the session was left unchanged.
func (e *Editor) LoadBackgroundBytes(ctx context.Context, data []byte) error {
	if err := <-e.session.LoadBackground(ctx, data); err != nil {
		return err
	}

	if f, ok := e.session.Frame(); ok {
		e.logf("background %dx%d fit=%.3f zoom=%.1f", f.NaturalWidth, f.NaturalHeight, f.FitScaleX, f.ZoomScale)
	}
	return nil
}

// PlaceSticker places a sticker from the library at the background centre
func (e *Editor) PlaceSticker(name string) (session.Placed, error) {
	if e.library == nil {
		return session.Placed{}, fmt.Errorf("no sticker library configured")
	}
	if !e.session.HasBackground() {
		return session.Placed{}, session.ErrNoBackground
	}

	img, err := e.library.Get(name)
	if err != nil {
		return session.Placed{}, err
	}
	p, err := e.session.AddSticker(img)
	if err != nil {
		return session.Placed{}, fmt.Errorf("failed to place %s: %w", name, err)
	}

	e.logf("placed %s as %s at %.1f,%.1f scale=%.3f", name, p.ID, p.Transform.Left, p.Transform.Top, p.Transform.ScaleX)
	return p, nil
}

// AddSticker trims and places an already decoded sticker image
func (e *Editor) AddSticker(img image.Image) (session.Placed, error) {
	return e.session.AddSticker(img)
}

// Flatten renders the current scene
func (e *Editor) Flatten() (*image.NRGBA, error) {
	return e.renderer.Flatten(e.session.Scene())
}

// Export writes the flattened scene to w
func (e *Editor) Export(w io.Writer, format raster.Format) error {
	return e.renderer.Export(w, e.session.Scene(), format, e.encode)
}

// SaveExport writes the flattened scene to path, format chosen by extension
func (e *Editor) SaveExport(path string) error {
	if err := e.renderer.Save(e.session.Scene(), path, e.encode); err != nil {
		return err
	}
	e.logf("wrote %s", path)
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
