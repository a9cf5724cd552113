package visualization

import (
	"errors"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// Layout algorithm names accepted by Build.
const (
	AlgorithmGeographic   = "geographic"
	AlgorithmCircular     = "circular"
	AlgorithmForce        = "force"
	AlgorithmHierarchical = "hierarchical"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown layout algorithm")
	ErrUnplaced         = errors.New("endpoint has no placement")
)

// Position represents a 2D canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Algorithm  string  `yaml:"algorithm" validate:"omitempty,oneof=geographic circular force hierarchical"`
	Width      float64 `yaml:"width" validate:"gte=0"`      // Canvas width
	Height     float64 `yaml:"height" validate:"gte=0"`     // Canvas height
	Iterations int     `yaml:"iterations" validate:"gte=0"` // Number of iterations for iterative algorithms
	Padding    float64 `yaml:"padding" validate:"gte=0"`    // Padding from edges
	Seed       int64   `yaml:"seed"`                        // Initial positions of the force layout
}

// DefaultLayoutConfig returns an 800x600 geographic layout.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Algorithm:  AlgorithmGeographic,
		Width:      800,
		Height:     600,
		Iterations: 50,
		Padding:    50,
	}
}

func (c *LayoutConfig) applyDefaults() {
	d := DefaultLayoutConfig()
	if c.Algorithm == "" {
		c.Algorithm = d.Algorithm
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.Padding == 0 {
		c.Padding = d.Padding
	}
}

// Layout interface for different layout algorithms
type Layout interface {
	ComputeLayout(t *topology.Topology, names []string) (map[string]Position, error)
}
