package session

import (
	"errors"

	"github.com/menta2k/sticker-editor/pkg/placement"
)

var (
	// ErrNoBackground is returned for overlay operations attempted before a
	// background image is loaded.
	ErrNoBackground = placement.ErrNoBackground

	// ErrOverlayNotFound is returned when an overlay ID is not in the session
	ErrOverlayNotFound = errors.New("overlay not found")

	// ErrSuperseded is delivered to a background load whose result arrived
	// after a newer load was requested.
	ErrSuperseded = errors.New("background load superseded by a newer request")
)
