package visualization

import (
	"math"
	"math/rand"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// ForceDirectedLayout implements force-directed graph layout over the
// topology links. The same seed gives the same layout.
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using force-directed algorithm
func (fdl *ForceDirectedLayout) ComputeLayout(t *topology.Topology, names []string) (map[string]Position, error) {
	if len(names) == 0 {
		return make(map[string]Position), nil
	}

	// Single endpoint - center it
	if len(names) == 1 {
		return map[string]Position{
			names[0]: {
				X: fdl.config.Width / 2,
				Y: fdl.config.Height / 2,
			},
		}, nil
	}

	rng := rand.New(rand.NewSource(fdl.config.Seed))

	positions := make(map[string]Position, len(names))
	for _, name := range names {
		positions[name] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	adj := neighbours(t, names)

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(names))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position, len(names))

		// Repulsion between all endpoints
		for i, a := range names {
			for j := i + 1; j < len(names); j++ {
				b := names[j]
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					dist = 0.01
				}

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along links, walked in name order
		for _, a := range names {
			for _, b := range names {
				if !adj[a][b] {
					continue
				}

				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X - fx, Y: forces[a].Y - fy}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, name := range names {
			fx := forces[name].X
			fy := forces[name].Y
			force := math.Sqrt(fx*fx + fy*fy)

			if force > 0 {
				step := math.Min(force, temperature) * cool
				positions[name] = Position{
					X: positions[name].X + (fx/force)*step,
					Y: positions[name].Y + (fy/force)*step,
				}
			}
		}

		temperature *= 0.95
	}

	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding), nil
}
