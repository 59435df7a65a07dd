package placement

import (
	"testing"

	"github.com/facilityops/flowdesk/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		positions []models.Position
		expected  models.Position
	}{
		{
			name:      "empty graph uses canvas center",
			positions: nil,
			expected:  models.Position{X: 400, Y: 300},
		},
		{
			name:      "single node",
			positions: []models.Position{{X: 250, Y: 100}},
			expected:  models.Position{X: 250, Y: 250},
		},
		{
			name:      "two nodes on a row",
			positions: []models.Position{{X: 100, Y: 100}, {X: 300, Y: 100}},
			expected:  models.Position{X: 200, Y: 250},
		},
		{
			name:      "non integral centroid",
			positions: []models.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
			expected:  models.Position{X: 2.0 / 3.0, Y: 1.0/3.0 + 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Next(tt.positions)
			assert.InDelta(t, tt.expected.X, got.X, 1e-9)
			assert.InDelta(t, tt.expected.Y, got.Y, 1e-9)
		})
	}
}

func TestCentroid_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.Position{}, Centroid(nil))
}
