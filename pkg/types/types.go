package types

import (
	"encoding/json"
	"fmt"
	"os"
)

// Op names an editing action in a script
type Op string

// Script operations, mirroring the editor's controls
const (
	OpBackground Op = "background"
	OpSticker    Op = "sticker"
	OpMove       Op = "move"
	OpScale      Op = "scale"
	OpZoomIn     Op = "zoom-in"
	OpZoomOut    Op = "zoom-out"
	OpZoom       Op = "zoom"
	OpResize     Op = "resize"
	OpDelete     Op = "delete"
	OpClear      Op = "clear"
)

// Size is a width/height pair in canvas pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Step is one editing action. Stickers are referred to by the label given
// in As when they were placed.
type Step struct {
	Op      Op      `json:"op"`
	Path    string  `json:"path,omitempty"`
	Sticker string  `json:"sticker,omitempty"`
	As      string  `json:"as,omitempty"`
	Target  string  `json:"target,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	ScaleX  float64 `json:"scale_x,omitempty"`
	ScaleY  float64 `json:"scale_y,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// Script is a replayable editing session
type Script struct {
	Background string `json:"background,omitempty"`
	Viewport   *Size  `json:"viewport,omitempty"`
	Steps      []Step `json:"steps"`
	Output     string `json:"output,omitempty"`
}

// LoadScript reads a JSON script file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step has the fields its operation needs
func (s *Script) Validate() error {
	labels := map[string]bool{}
	for i, st := range s.Steps {
		switch st.Op {
		case OpBackground:
			if st.Path == "" {
				return fmt.Errorf("step %d: background needs a path", i)
			}
		case OpSticker:
			if st.Sticker == "" {
				return fmt.Errorf("step %d: sticker needs a name", i)
			}
			if st.As != "" {
				labels[st.As] = true
			}
		case OpMove, OpScale, OpDelete:
			if !labels[st.Target] {
				return fmt.Errorf("step %d: %s targets unknown sticker %q", i, st.Op, st.Target)
			}
			if st.Op == OpScale && (st.ScaleX <= 0 || st.ScaleY <= 0) {
				return fmt.Errorf("step %d: scale needs positive scale_x and scale_y", i)
			}
		case OpResize:
			if st.Width <= 0 || st.Height <= 0 {
				return fmt.Errorf("step %d: resize needs positive width and height", i)
			}
		case OpZoomIn, OpZoomOut, OpZoom, OpClear:
		default:
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return nil
}
