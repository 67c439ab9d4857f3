package render

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/menta2k/sticker-editor/pkg/placement"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/session"
)

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
	grey = color.NRGBA{100, 100, 100, 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func nearest(t *testing.T, backdrop string) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{Backdrop: backdrop, Interpolation: "nearest"})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func TestFlattenBackdropAndOverlay(t *testing.T) {
	scene := session.Scene{
		Viewport: placement.Viewport{Width: 4, Height: 4},
		Overlays: []session.SceneOverlay{{
			ID:        "dot",
			Raster:    solid(1, 1, blue),
			Transform: placement.Transform{Left: 2, Top: 2, ScaleX: 2, ScaleY: 2},
		}},
	}

	img, err := nearest(t, "#ff0000").Flatten(scene)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	for _, p := range []image.Point{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		if got := img.NRGBAAt(p.X, p.Y); got != blue {
			t.Errorf("pixel %v = %v, want blue", p, got)
		}
	}
	for _, p := range []image.Point{{0, 0}, {3, 3}, {0, 2}} {
		if got := img.NRGBAAt(p.X, p.Y); got != red {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}
}

func TestFlattenBackgroundFit(t *testing.T) {
	frame, err := placement.NewFrame(2, 1, placement.Viewport{Width: 4, Height: 4}, 1)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	scene := session.Scene{
		Viewport:      placement.Viewport{Width: 4, Height: 4},
		HasBackground: true,
		Background:    solid(2, 1, grey),
		Frame:         frame,
	}

	img, err := nearest(t, "").Flatten(scene)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	// 2x1 scaled by 2 fills rows 1 and 2
	if got := img.NRGBAAt(0, 1); got != grey {
		t.Errorf("pixel (0,1) = %v, want grey", got)
	}
	if got := img.NRGBAAt(3, 2); got != grey {
		t.Errorf("pixel (3,2) = %v, want grey", got)
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("pixel (0,0) = %v, want transparent", got)
	}
}

func TestFlattenWithSession(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Viewport = placement.Viewport{Width: 40, Height: 40}
	s, err := session.New(cfg)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	if err := s.SetBackground(solid(20, 20, grey)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	p, err := s.AddSticker(solid(5, 5, blue))
	if err != nil {
		t.Fatalf("AddSticker failed: %v", err)
	}
	if _, err := s.Scale(p.ID, 0.5, 0.5); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if _, err := s.Move(p.ID, 30, 10); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	img, err := nearest(t, "").Flatten(s.Scene())
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	if got := img.NRGBAAt(30, 10); got != blue {
		t.Errorf("sticker centre = %v, want blue", got)
	}
	if got := img.NRGBAAt(5, 35); got != grey {
		t.Errorf("background corner = %v, want grey", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	scene := session.Scene{Viewport: placement.Viewport{Width: 6, Height: 3}}
	r := nearest(t, "#0000ff")

	var buf bytes.Buffer
	if err := r.Export(&buf, scene, raster.PNG, raster.EncodeOptions{}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	img, err := raster.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 3 {
		t.Errorf("Expected 6x3 export, got %v", img.Bounds())
	}

	path := filepath.Join(t.TempDir(), "edited.png")
	if err := r.Save(scene, path, raster.EncodeOptions{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	buf.Reset()
	if err := r.Export(&buf, scene, raster.WebP, raster.EncodeOptions{Lossless: true}); err != nil {
		t.Fatalf("WebP export failed: %v", err)
	}
	webpImg, err := raster.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode of WebP export failed: %v", err)
	}
	if webpImg.Bounds().Dx() != 6 || webpImg.Bounds().Dy() != 3 {
		t.Errorf("Expected 6x3 WebP export, got %v", webpImg.Bounds())
	}
	if rr, g, b, _ := webpImg.At(2, 1).RGBA(); rr != 0 || g != 0 || b != 0xffff {
		t.Errorf("Expected blue backdrop in WebP export, got %d,%d,%d", rr, g, b)
	}

	webpPath := filepath.Join(t.TempDir(), "edited.webp")
	if err := r.Save(scene, webpPath, raster.EncodeOptions{Lossless: true}); err != nil {
		t.Fatalf("WebP Save failed: %v", err)
	}
}

func TestNewRendererErrors(t *testing.T) {
	if _, err := NewRenderer(Options{Backdrop: "not-a-colour"}); err == nil {
		t.Error("Expected error for bad backdrop")
	}
	if _, err := NewRenderer(Options{Interpolation: "lanczos9"}); err == nil {
		t.Error("Expected error for unknown interpolation")
	}
}

func TestFlattenEmptyViewport(t *testing.T) {
	if _, err := nearest(t, "").Flatten(session.Scene{}); err == nil {
		t.Error("Expected error for empty viewport")
	}
}
