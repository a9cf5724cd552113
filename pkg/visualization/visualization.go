package visualization

import (
	"encoding/json"
	"fmt"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// NodeView is one drawn endpoint.
type NodeView struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	AccessPoint bool     `json:"access_point,omitempty"`
	Range       int      `json:"range,omitempty"`
	Position    Position `json:"position"`
}

// LinkView is one drawn link.
type LinkView struct {
	From      string `json:"from"`
	To        string `json:"to"`
	DelayMs   int64  `json:"delay_ms"`
	Bandwidth int    `json:"bw"`
	Loss      int    `json:"loss,omitempty"`
}

// Visualization represents a topology with a computed layout
type Visualization struct {
	Nodes     []NodeView
	Links     []LinkView
	Positions map[string]Position
}

// NewLayout returns the layout named by config.Algorithm.
func NewLayout(config *LayoutConfig) (Layout, error) {
	switch config.Algorithm {
	case AlgorithmGeographic, "":
		return NewGeographicLayout(config), nil
	case AlgorithmCircular:
		return NewCircularLayout(config), nil
	case AlgorithmForce:
		return NewForceDirectedLayout(config), nil
	case AlgorithmHierarchical:
		return NewHierarchicalLayout(config), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, config.Algorithm)
}

// Build lays out every node and access point of t on the configured canvas.
// Zero config fields take the DefaultLayoutConfig values.
func Build(t *topology.Topology, config LayoutConfig) (*Visualization, error) {
	config.applyDefaults()
	layout, err := NewLayout(&config)
	if err != nil {
		return nil, err
	}

	names := t.EndpointNames()
	positions, err := layout.ComputeLayout(t, names)
	if err != nil {
		return nil, fmt.Errorf("%s layout: %w", config.Algorithm, err)
	}

	v := &Visualization{
		Nodes:     make([]NodeView, 0, len(names)),
		Links:     make([]LinkView, 0, len(t.Links)),
		Positions: positions,
	}
	for _, n := range t.Nodes {
		v.Nodes = append(v.Nodes, NodeView{
			Name:     n.Name,
			Kind:     n.Kind.String(),
			Position: positions[n.Name],
		})
	}
	for _, ap := range t.AccessPoints {
		v.Nodes = append(v.Nodes, NodeView{
			Name:        ap.Name,
			Kind:        ap.Kind.String(),
			AccessPoint: true,
			Range:       ap.Range,
			Position:    positions[ap.Name],
		})
	}
	for _, l := range t.Links {
		v.Links = append(v.Links, LinkView{
			From:      l.Origin,
			To:        l.Destination,
			DelayMs:   l.Delay.Milliseconds(),
			Bandwidth: l.Bandwidth,
			Loss:      l.LossPercent,
		})
	}
	return v, nil
}

// ExportJSON exports the visualization to JSON
func (v *Visualization) ExportJSON() ([]byte, error) {
	data := struct {
		Nodes []NodeView `json:"nodes"`
		Links []LinkView `json:"links"`
	}{
		Nodes: v.Nodes,
		Links: v.Links,
	}
	return json.Marshal(data)
}
