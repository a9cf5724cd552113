package topology

import (
	"fmt"
)

// Topology is the generated network: stations (or plain nodes), the access
// points of the wifi variant, and the links between them.
type Topology struct {
	// RunID identifies the generation run in logs and file headers.
	RunID string
	// Seed is the generator seed, zero when unknown.
	Seed int64

	Nodes        []*Node
	AccessPoints []*AccessPoint
	Links        []Link
}

// New assembles a topology. It does not validate; call Validate for that.
func New(nodes []*Node, accessPoints []*AccessPoint, links []Link) *Topology {
	return &Topology{
		Nodes:        nodes,
		AccessPoints: accessPoints,
		Links:        links,
	}
}

// HasAccessPoints reports whether this is a wifi topology.
func (t *Topology) HasAccessPoints() bool {
	return len(t.AccessPoints) > 0
}

// NodeNames returns the node names in topology order.
func (t *Topology) NodeNames() []string {
	names := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		names[i] = n.Name
	}
	return names
}

// EndpointNames returns node names followed by access point names.
func (t *Topology) EndpointNames() []string {
	names := make([]string, 0, len(t.Nodes)+len(t.AccessPoints))
	names = append(names, t.NodeNames()...)
	for _, ap := range t.AccessPoints {
		names = append(names, ap.Name)
	}
	return names
}

// EndpointCount is the number of nodes plus access points.
func (t *Topology) EndpointCount() int {
	return len(t.Nodes) + len(t.AccessPoints)
}

// Node returns the node with the given name.
func (t *Topology) Node(name string) (*Node, bool) {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// AccessPoint returns the access point with the given name.
func (t *Topology) AccessPoint(name string) (*AccessPoint, bool) {
	for _, ap := range t.AccessPoints {
		if ap.Name == name {
			return ap, true
		}
	}
	return nil, false
}

// HasEndpoint reports whether name is a node or access point.
func (t *Topology) HasEndpoint(name string) bool {
	if _, ok := t.Node(name); ok {
		return true
	}
	_, ok := t.AccessPoint(name)
	return ok
}

// Degrees returns the link count of every endpoint, including zeros.
func (t *Topology) Degrees() map[string]int {
	degrees := make(map[string]int, t.EndpointCount())
	for _, name := range t.EndpointNames() {
		degrees[name] = 0
	}
	for _, l := range t.Links {
		degrees[l.Origin]++
		degrees[l.Destination]++
	}
	return degrees
}

// Validate checks the topology invariants: unique endpoint names, links
// without self-loops, no unordered pair linked twice, and every link
// endpoint present in the topology.
func (t *Topology) Validate() error {
	endpoints := make(map[string]struct{}, t.EndpointCount())
	for _, name := range t.EndpointNames() {
		if _, dup := endpoints[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		endpoints[name] = struct{}{}
	}

	pairs := make(map[PairKey]struct{}, len(t.Links))
	for i, l := range t.Links {
		if l.Origin == l.Destination {
			return fmt.Errorf("links[%d]: %w: %s", i, ErrSelfLoop, l.Origin)
		}
		if _, ok := endpoints[l.Origin]; !ok {
			return fmt.Errorf("links[%d]: %w: %s", i, ErrUnknownEndpoint, l.Origin)
		}
		if _, ok := endpoints[l.Destination]; !ok {
			return fmt.Errorf("links[%d]: %w: %s", i, ErrUnknownEndpoint, l.Destination)
		}
		key := l.Key()
		if _, dup := pairs[key]; dup {
			return fmt.Errorf("links[%d]: %w: %s-%s", i, ErrDuplicateLink, key.A, key.B)
		}
		pairs[key] = struct{}{}
	}
	return nil
}
