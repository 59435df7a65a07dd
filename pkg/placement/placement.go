// Package placement computes where a newly inserted workflow node is drawn.
package placement

import "github.com/facilityops/flowdesk/pkg/models"

const (
	// DefaultX and DefaultY are the canvas center used for the first node of an empty graph.
	DefaultX = 400
	DefaultY = 300

	// VerticalOffset is how far below the centroid a new node is placed.
	VerticalOffset = 150
)

// Next returns the position for a node appended to a graph whose nodes sit at
// positions. An empty graph gets the canvas center; otherwise the node goes
// directly below the centroid. Overlap with nodes already below the centroid
// is not avoided.
func Next(positions []models.Position) models.Position {
	if len(positions) == 0 {
		return models.Position{X: DefaultX, Y: DefaultY}
	}

	centroid := Centroid(positions)

	return models.Position{X: centroid.X, Y: centroid.Y + VerticalOffset}
}

// Centroid returns the arithmetic mean of positions. It returns the zero
// position for an empty slice.
func Centroid(positions []models.Position) models.Position {
	if len(positions) == 0 {
		return models.Position{}
	}

	var sumX, sumY float64
	for _, p := range positions {
		sumX += p.X
		sumY += p.Y
	}

	n := float64(len(positions))

	return models.Position{X: sumX / n, Y: sumY / n}
}
