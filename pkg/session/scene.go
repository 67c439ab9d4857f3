package session

import (
	"image"

	"github.com/menta2k/sticker-editor/pkg/placement"
)

// SceneOverlay is one overlay as captured in a Scene
type SceneOverlay struct {
	ID        string
	Raster    *image.NRGBA
	Transform placement.Transform
}

// Scene is an immutable snapshot of everything needed to draw the canvas.
// Rasters are shared with the session and must not be modified.
type Scene struct {
	Viewport      placement.Viewport
	Zoom          float64
	HasBackground bool
	Background    image.Image
	Frame         placement.Frame
	Overlays      []SceneOverlay
}

// Scene captures the session state under a single lock, so a snapshot never
// mixes overlays from before and after a zoom, resize or background change.
func (s *Session) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := Scene{
		Viewport: s.viewport,
		Zoom:     s.zoom,
		Overlays: make([]SceneOverlay, len(s.overlays)),
	}
	if s.frame != nil {
		sc.HasBackground = true
		sc.Background = s.background
		sc.Frame = *s.frame
	}
	for i, o := range s.overlays {
		sc.Overlays[i] = SceneOverlay{ID: o.ID, Raster: o.Raster, Transform: o.Transform}
	}
	return sc
}
