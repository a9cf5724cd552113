package visualization

import (
	"math"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// CircularLayout arranges endpoints in a circle
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout places names on a circle in the given order.
func (cl *CircularLayout) ComputeLayout(_ *topology.Topology, names []string) (map[string]Position, error) {
	positions := make(map[string]Position, len(names))

	if len(names) == 0 {
		return positions, nil
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	radius := math.Min(centerX, centerY) - cl.config.Padding

	angleStep := 2 * math.Pi / float64(len(names))

	for i, name := range names {
		angle := float64(i) * angleStep
		positions[name] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}
