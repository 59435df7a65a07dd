package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_Capabilities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode     Mode
		expected Capabilities
	}{
		{mode: ModeView, expected: Capabilities{Draggable: false, Connectable: false, Selectable: true}},
		{mode: ModeEdit, expected: Capabilities{Draggable: true, Connectable: true, Selectable: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.mode.Capabilities())
		})
	}
}

func TestMode_ToggleTwiceIsIdentity(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeView, ModeEdit} {
		assert.NotEqual(t, mode, mode.Toggle())
		assert.Equal(t, mode, mode.Toggle().Toggle())
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("edit")
	require.NoError(t, err)
	assert.Equal(t, ModeEdit, mode)

	_, err = ParseMode("design")
	require.ErrorIs(t, err, ErrInvalidMode)
}
