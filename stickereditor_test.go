package stickereditor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/session"
	"github.com/menta2k/sticker-editor/pkg/types"
)

// createTestImage creates an image with an opaque inner block and a
// transparent margin
func createTestImage(width, height, margin int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := margin; y < height-margin; y++ {
		for x := margin; x < width-margin; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// setupDir writes a background and a sticker directory to a temp dir
func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := raster.Save(createTestImage(320, 240, 0, color.NRGBA{30, 90, 160, 255}), filepath.Join(dir, "beach.png"), raster.PNG, raster.EncodeOptions{}); err != nil {
		t.Fatalf("failed to write background: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "stickers"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := raster.Save(createTestImage(60, 60, 5, color.NRGBA{255, 220, 0, 255}), filepath.Join(dir, "stickers", "star.png"), raster.PNG, raster.EncodeOptions{}); err != nil {
		t.Fatalf("failed to write sticker: %v", err)
	}
	return dir
}

func TestNew(t *testing.T) {
	editor, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if editor.Session() == nil {
		t.Error("session component is nil")
	}
	if editor.Library() != nil {
		t.Error("Expected no library without a sticker dir")
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing sticker dir")
	}
}

func TestPlaceStickerNeedsBackground(t *testing.T) {
	dir := setupDir(t)
	editor, err := New(filepath.Join(dir, "stickers"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := editor.PlaceSticker("star.png"); !errors.Is(err, session.ErrNoBackground) {
		t.Errorf("Expected ErrNoBackground, got %v", err)
	}
}

func TestEditAndExport(t *testing.T) {
	dir := setupDir(t)
	editor, err := New(filepath.Join(dir, "stickers"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := editor.LoadBackground(ctx, filepath.Join(dir, "beach.png")); err != nil {
		t.Fatalf("LoadBackground failed: %v", err)
	}

	p, err := editor.PlaceSticker("star.png")
	if err != nil {
		t.Fatalf("PlaceSticker failed: %v", err)
	}
	// 50 px after trimming, placed 250 px wide
	if p.Transform.ScaleX != 5 {
		t.Errorf("Expected scale 5, got %g", p.Transform.ScaleX)
	}

	var buf bytes.Buffer
	if err := editor.Export(&buf, raster.PNG); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	img, err := raster.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 1280 || img.Bounds().Dy() != 720 {
		t.Errorf("Expected viewport sized export, got %v", img.Bounds())
	}

	out := filepath.Join(dir, "out.png")
	if err := editor.SaveExport(out); err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}
}

func TestLoadBackgroundBadFileKeepsState(t *testing.T) {
	dir := setupDir(t)
	editor, _ := New("")
	ctx := context.Background()

	if err := editor.LoadBackground(ctx, filepath.Join(dir, "beach.png")); err != nil {
		t.Fatalf("LoadBackground failed: %v", err)
	}

	bad := filepath.Join(dir, "bad.png")
	os.WriteFile(bad, []byte("not a png"), 0644)

	var decErr *raster.DecodeError
	if err := editor.LoadBackground(ctx, bad); !errors.As(err, &decErr) {
		t.Errorf("Expected DecodeError, got %v", err)
	}
	if f, ok := editor.Session().Frame(); !ok || f.NaturalWidth != 320 {
		t.Errorf("Expected original background to remain, got %+v", f)
	}
}

func TestLoadBackgroundCancelledKeepsState(t *testing.T) {
	dir := setupDir(t)
	editor, _ := New("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := editor.LoadBackground(ctx, filepath.Join(dir, "beach.png"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if editor.Session().HasBackground() {
		t.Error("Cancelled load must not install a background")
	}

	// A load that reports success has always been committed
	if err := editor.LoadBackground(context.Background(), filepath.Join(dir, "beach.png")); err != nil {
		t.Fatalf("LoadBackground failed: %v", err)
	}
	if !editor.Session().HasBackground() {
		t.Error("Expected background after successful load")
	}
}

func TestRunScript(t *testing.T) {
	dir := setupDir(t)
	editor, err := New(filepath.Join(dir, "stickers"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	script := &types.Script{
		Background: "beach.png",
		Viewport:   &types.Size{Width: 640, Height: 480},
		Steps: []types.Step{
			{Op: types.OpSticker, Sticker: "star.png", As: "a"},
			{Op: types.OpSticker, Sticker: "star.png", As: "b"},
			{Op: types.OpMove, Target: "a", X: 420, Y: 240},
			{Op: types.OpScale, Target: "a", ScaleX: 2, ScaleY: 2},
			{Op: types.OpZoomIn},
			{Op: types.OpDelete, Target: "b"},
		},
	}

	res, err := editor.RunScript(context.Background(), script, dir)
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	if res.Steps != 6 {
		t.Errorf("Expected 6 steps, got %d", res.Steps)
	}
	if _, ok := res.Labels["b"]; ok {
		t.Error("Expected deleted label to be dropped")
	}

	// 320x240 in 640x480: fit 2, origin (320,240); moved 100 px right = 50 local
	o, err := editor.Session().Overlay(res.Labels["a"])
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if o.RelativeX != 50 || o.RelativeY != 0 {
		t.Errorf("Expected relative 50,0, got %g,%g", o.RelativeX, o.RelativeY)
	}
	if o.RelativeScale != 2 {
		t.Errorf("Expected relative scale 2, got %g", o.RelativeScale)
	}
	if len(editor.Session().Overlays()) != 1 {
		t.Errorf("Expected one overlay left, got %d", len(editor.Session().Overlays()))
	}
}

func TestRunScriptStopsOnError(t *testing.T) {
	dir := setupDir(t)
	editor, _ := New(filepath.Join(dir, "stickers"))

	script := &types.Script{
		Steps: []types.Step{
			{Op: types.OpSticker, Sticker: "star.png", As: "a"},
		},
	}
	res, err := editor.RunScript(context.Background(), script, dir)
	if !errors.Is(err, session.ErrNoBackground) {
		t.Errorf("Expected ErrNoBackground, got %v", err)
	}
	if res == nil || res.Steps != 0 {
		t.Errorf("Expected no completed steps, got %+v", res)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %q, want %q", GetVersion(), Version)
	}
}
