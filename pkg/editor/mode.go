// Package editor holds the per-user editing state of the workflow dashboard:
// the view/edit mode gate, the workflow and node selection, and the inspector
// that stages edits before committing them to the workflow service.
package editor

import (
	"errors"
	"fmt"
)

// Mode gates which canvas gestures are allowed.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

var (
	// ErrReadOnly is returned for structural canvas gestures while in view mode.
	ErrReadOnly = errors.New("editor is in view mode")
	// ErrInvalidMode is returned when parsing an unknown mode.
	ErrInvalidMode = errors.New("invalid editor mode")
)

// ParseMode converts a raw value into a Mode.
func ParseMode(raw string) (Mode, error) {
	mode := Mode(raw)
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}

	return mode, nil
}

func (m Mode) IsValid() bool {
	return m == ModeView || m == ModeEdit
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == ModeEdit {
		return ModeView
	}

	return ModeEdit
}

// Capabilities is what the canvas may do in a given mode.
type Capabilities struct {
	Draggable   bool `json:"draggable"`
	Connectable bool `json:"connectable"`
	Selectable  bool `json:"selectable"`
}

func (m Mode) Capabilities() Capabilities {
	editing := m == ModeEdit

	return Capabilities{
		Draggable:   editing,
		Connectable: editing,
		Selectable:  true,
	}
}
