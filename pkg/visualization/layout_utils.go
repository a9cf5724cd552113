package visualization

import (
	"math"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// normalizePositions scales positions to fit within bounds
func normalizePositions(positions map[string]Position, width, height, padding float64) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	// Find bounds
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64

	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[string]Position, len(positions))
	for name, pos := range positions {
		normalized[name] = Position{
			X: scaleAxis(pos.X, minX, rangeX, padding, targetWidth),
			Y: scaleAxis(pos.Y, minY, rangeY, padding, targetHeight),
		}
	}

	return normalized
}

// scaleAxis maps v onto [padding, padding+target]. A degenerate axis is
// centred.
func scaleAxis(v, min, span, padding, target float64) float64 {
	if span < 0.01 {
		return padding + target/2
	}
	return padding + ((v-min)/span)*target
}

// neighbours builds an undirected adjacency set restricted to names.
func neighbours(t *topology.Topology, names []string) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(names))
	for _, name := range names {
		adj[name] = make(map[string]bool)
	}
	for _, l := range t.Links {
		if adj[l.Origin] == nil || adj[l.Destination] == nil {
			continue
		}
		adj[l.Origin][l.Destination] = true
		adj[l.Destination][l.Origin] = true
	}
	return adj
}
