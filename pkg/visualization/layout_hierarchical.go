package visualization

import (
	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// HierarchicalLayout arranges endpoints in rows by hop distance from a root.
// In wifi topologies the access points are the roots; otherwise the first
// name is.
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges endpoints level by level
func (hl *HierarchicalLayout) ComputeLayout(t *topology.Topology, names []string) (map[string]Position, error) {
	positions := make(map[string]Position, len(names))

	if len(names) == 0 {
		return positions, nil
	}

	adj := neighbours(t, names)

	roots := make([]string, 0, len(t.AccessPoints))
	for _, ap := range t.AccessPoints {
		if _, ok := adj[ap.Name]; ok {
			roots = append(roots, ap.Name)
		}
	}
	if len(roots) == 0 {
		roots = []string{names[0]}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool, len(names))
	for _, r := range roots {
		visited[r] = true
	}
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, name := range currentLevel {
			for _, other := range names {
				if adj[name][other] && !visited[other] {
					nextLevel = append(nextLevel, other)
					visited[other] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Unreachable endpoints share an extra bottom row
	var orphans []string
	for _, name := range names {
		if !visited[name] {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		levels = append(levels, orphans)
	}

	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))
	levelWidth := hl.config.Width - 2*hl.config.Padding

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)

		for i, name := range level {
			positions[name] = Position{X: hl.config.Padding + spacing*float64(i+1), Y: y}
		}
	}

	return positions, nil
}
