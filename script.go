package stickereditor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/menta2k/sticker-editor/pkg/placement"
	"github.com/menta2k/sticker-editor/pkg/types"
)

// ScriptResult reports the outcome of RunScript
type ScriptResult struct {
	// Labels maps script labels to overlay IDs still present at the end
	Labels map[string]string
	Steps  int
}

// RunScript replays an editing script against the editor. Relative
// background paths are resolved against baseDir.
func (e *Editor) RunScript(ctx context.Context, s *types.Script, baseDir string) (*ScriptResult, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	if s.Viewport != nil {
		if _, err := e.session.Resize(placement.Viewport{Width: s.Viewport.Width, Height: s.Viewport.Height}); err != nil {
			return nil, err
		}
	}
	if s.Background != "" {
		if err := e.LoadBackground(ctx, resolve(baseDir, s.Background)); err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
	}

	res := &ScriptResult{Labels: map[string]string{}}
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.runStep(ctx, st, baseDir, res.Labels); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
		res.Steps++
	}
	return res, nil
}

func (e *Editor) runStep(ctx context.Context, st types.Step, baseDir string, labels map[string]string) error {
	s := e.session

	switch st.Op {
	case types.OpBackground:
		return e.LoadBackground(ctx, resolve(baseDir, st.Path))
	case types.OpSticker:
		p, err := e.PlaceSticker(st.Sticker)
		if err != nil {
			return err
		}
		if st.As != "" {
			labels[st.As] = p.ID
		}
	case types.OpMove:
		t, err := s.Move(labels[st.Target], st.X, st.Y)
		if err != nil {
			return err
		}
		e.logf("moved %s to %.1f,%.1f", st.Target, t.Left, t.Top)
	case types.OpScale:
		t, err := s.Scale(labels[st.Target], st.ScaleX, st.ScaleY)
		if err != nil {
			return err
		}
		e.logf("scaled %s to %.3f", st.Target, t.ScaleX)
	case types.OpZoomIn:
		z, _ := s.ZoomIn()
		e.logf("zoom %.1f", z)
	case types.OpZoomOut:
		z, _ := s.ZoomOut()
		e.logf("zoom %.1f", z)
	case types.OpZoom:
		z, _ := s.ZoomBy(st.Delta)
		e.logf("zoom %.1f", z)
	case types.OpResize:
		if _, err := s.Resize(placement.Viewport{Width: st.Width, Height: st.Height}); err != nil {
			return err
		}
	case types.OpDelete:
		if err := s.Delete(labels[st.Target]); err != nil {
			return err
		}
		delete(labels, st.Target)
	case types.OpClear:
		s.Clear()
		clear(labels)
	}
	return nil
}

func resolve(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
