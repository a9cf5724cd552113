package visualization

import (
	"fmt"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// GeographicLayout scales the placement coordinates of the topology onto
// the canvas.
type GeographicLayout struct {
	config *LayoutConfig
}

func NewGeographicLayout(config *LayoutConfig) *GeographicLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &GeographicLayout{config: config}
}

// ComputeLayout fails with ErrUnplaced if any name has no placement.
func (gl *GeographicLayout) ComputeLayout(t *topology.Topology, names []string) (map[string]Position, error) {
	raw := make(map[string]Position, len(names))
	for _, name := range names {
		pos, ok := placement(t, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnplaced, name)
		}
		raw[name] = Position{X: float64(pos.X), Y: float64(pos.Y)}
	}
	return normalizePositions(raw, gl.config.Width, gl.config.Height, gl.config.Padding), nil
}

func placement(t *topology.Topology, name string) (topology.Position, bool) {
	if n, ok := t.Node(name); ok {
		return n.Position(), n.Placed()
	}
	if ap, ok := t.AccessPoint(name); ok {
		return ap.Position(), ap.Placed()
	}
	return topology.Position{}, false
}
