// Package session owns the state of one editing session: the background
// image with its placement frame and the ordered collection of sticker
// overlays. All mutations are serialised; Scene returns consistent
// snapshots for rendering.
package session

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/menta2k/sticker-editor/pkg/placement"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/trimmer"
)

// Config holds the editing parameters of a session
type Config struct {
	// StickerWidth is the canvas width of a freshly placed sticker at zoom 1
	StickerWidth float64
	Zoom         placement.ZoomLimits
	Viewport     placement.Viewport
}

// DefaultConfig returns the editor defaults
func DefaultConfig() Config {
	return Config{
		StickerWidth: 250,
		Zoom:         placement.DefaultZoomLimits(),
		Viewport:     placement.Viewport{Width: 1280, Height: 720},
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.StickerWidth <= 0 {
		return fmt.Errorf("sticker width must be positive, got %g", c.StickerWidth)
	}
	if !c.Viewport.Valid() {
		return fmt.Errorf("invalid viewport: %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	return c.Zoom.Validate()
}

// Placed is the rendering view of one overlay
type Placed struct {
	ID        string
	Transform placement.Transform
}

// Session is a single editing session
type Session struct {
	mu sync.Mutex

	cfg        Config
	viewport   placement.Viewport
	zoom       float64
	frame      *placement.Frame
	background image.Image
	overlays   []*placement.Overlay

	// loadSeq identifies the most recently requested background load
	loadSeq uint64
}

// New creates an empty session
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	return &Session{
		cfg:      cfg,
		viewport: cfg.Viewport,
		zoom:     cfg.Zoom.Clamp(1),
	}, nil
}

// LoadBackground decodes data in the background and installs it as the new
// background image. The returned channel yields exactly one value: nil on
// success, a *raster.DecodeError for bad bytes, ErrSuperseded if a newer
// load was requested meanwhile, or the context's error. Only a nil result
// changes the session.
func (s *Session) LoadBackground(ctx context.Context, data []byte) <-chan error {
	seq := s.nextLoad()
	done := make(chan error, 1)

	go func() {
		img, err := raster.Decode(data)
		if err != nil {
			done <- err
			return
		}
		done <- s.commitBackground(ctx, seq, img)
	}()

	return done
}

// SetBackground installs an already decoded background. It also cancels any
// load still in flight.
func (s *Session) SetBackground(img image.Image) error {
	return s.commitBackground(context.Background(), s.nextLoad(), img)
}

func (s *Session) nextLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSeq++
	return s.loadSeq
}

func (s *Session) commitBackground(ctx context.Context, seq uint64, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.loadSeq {
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b := img.Bounds()
	frame, err := placement.NewFrame(b.Dx(), b.Dy(), s.viewport, s.zoom)
	if err != nil {
		return fmt.Errorf("failed to place background: %w", err)
	}

	s.background = img
	s.frame = &frame
	placement.RecomputeAll(frame, s.overlays)
	return nil
}

// HasBackground reports whether a background image is loaded
func (s *Session) HasBackground() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame != nil
}

// Frame returns the current placement frame, if any
func (s *Session) Frame() (placement.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return placement.Frame{}, false
	}
	return *s.frame, true
}

// Zoom returns the current zoom level
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Viewport returns the current canvas size
func (s *Session) Viewport() placement.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// AddSticker trims img and places it at the centre of the background with
// the configured default width. The overlay only becomes part of the
// session once trimming has finished.
func (s *Session) AddSticker(img image.Image) (Placed, error) {
	if img == nil {
		return Placed{}, fmt.Errorf("nil sticker image")
	}
	if !s.HasBackground() {
		return Placed{}, ErrNoBackground
	}

	trimmed := trimmer.TrimNRGBA(img)
	w := trimmed.Bounds().Dx()
	if w == 0 {
		return Placed{}, fmt.Errorf("sticker has no pixels")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The background may have been cleared while trimming
	if s.frame == nil {
		return Placed{}, ErrNoBackground
	}

	scale := s.cfg.StickerWidth / float64(w) * s.zoom
	o, err := placement.Register(s.frame, uuid.NewString(), trimmed, scale)
	if err != nil {
		return Placed{}, err
	}
	s.overlays = append(s.overlays, o)
	return Placed{ID: o.ID, Transform: o.Transform}, nil
}

// Move records that an overlay was dragged to an absolute canvas position
func (s *Session) Move(id string, left, top float64) (placement.Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.find(id)
	if o == nil {
		return placement.Transform{}, fmt.Errorf("move %s: %w", id, ErrOverlayNotFound)
	}
	return placement.Move(s.frame, o, left, top), nil
}

// Scale records a resize gesture on an overlay
func (s *Session) Scale(id string, scaleX, scaleY float64) (placement.Transform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.find(id)
	if o == nil {
		return placement.Transform{}, fmt.Errorf("scale %s: %w", id, ErrOverlayNotFound)
	}
	return placement.Scale(s.frame, o, scaleX, scaleY)
}

// ZoomIn steps the zoom level up and repositions every overlay
func (s *Session) ZoomIn() (float64, []Placed) {
	return s.setZoom(s.cfg.Zoom.In)
}

// ZoomOut steps the zoom level down and repositions every overlay
func (s *Session) ZoomOut() (float64, []Placed) {
	return s.setZoom(s.cfg.Zoom.Out)
}

// ZoomBy changes the zoom level by delta, clamped to the configured range
func (s *Session) ZoomBy(delta float64) (float64, []Placed) {
	return s.setZoom(func(z float64) float64 { return s.cfg.Zoom.Apply(z, delta) })
}

func (s *Session) setZoom(next func(float64) float64) (float64, []Placed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.zoom = next(s.zoom)
	if s.frame != nil {
		f := s.frame.WithZoom(s.zoom)
		s.frame = &f
		placement.RecomputeAll(f, s.overlays)
	}
	return s.zoom, s.placedLocked()
}

// Resize refits the background to a new viewport size
func (s *Session) Resize(viewport placement.Viewport) ([]Placed, error) {
	if !viewport.Valid() {
		return nil, fmt.Errorf("invalid viewport: %gx%g", viewport.Width, viewport.Height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = viewport
	if s.frame != nil {
		f := s.frame.Refit(viewport)
		s.frame = &f
		placement.RecomputeAll(f, s.overlays)
	}
	return s.placedLocked(), nil
}

// Delete removes an overlay and releases its raster
func (s *Session) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.overlays, func(o *placement.Overlay) bool { return o.ID == id })
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrOverlayNotFound)
	}
	s.overlays[i].Raster = nil
	s.overlays = slices.Delete(s.overlays, i, i+1)
	return nil
}

// Clear removes the background and every overlay and resets the zoom. Any
// background load in flight is discarded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.overlays {
		o.Raster = nil
	}
	s.overlays = nil
	s.frame = nil
	s.background = nil
	s.zoom = s.cfg.Zoom.Clamp(1)
	s.loadSeq++
}

// Overlays returns the current transform of every overlay in stacking order
func (s *Session) Overlays() []Placed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placedLocked()
}

// Overlay returns a copy of one overlay's state
func (s *Session) Overlay(id string) (placement.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.find(id)
	if o == nil {
		return placement.Overlay{}, fmt.Errorf("lookup %s: %w", id, ErrOverlayNotFound)
	}
	return *o, nil
}

func (s *Session) find(id string) *placement.Overlay {
	for _, o := range s.overlays {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *Session) placedLocked() []Placed {
	out := make([]Placed, len(s.overlays))
	for i, o := range s.overlays {
		out[i] = Placed{ID: o.ID, Transform: o.Transform}
	}
	return out
}
