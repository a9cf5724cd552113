package topology

import (
	"fmt"
)

// DefaultRange is the radio range written for stations and access points.
const DefaultRange = 116

// Node is a simulated terminal. Its kind is fixed at construction and its
// position can be set exactly once.
type Node struct {
	Name string
	Kind Kind

	pos    Position
	placed bool
}

// NewNode creates an unplaced node, deriving its kind from the name prefix.
func NewNode(name string) (*Node, error) {
	kind, err := KindFromName(name)
	if err != nil {
		return nil, err
	}
	return &Node{Name: name, Kind: kind}, nil
}

// NewPlacedNode creates a node at the given coordinate.
func NewPlacedNode(name string, x, y int) (*Node, error) {
	n, err := NewNode(name)
	if err != nil {
		return nil, err
	}
	if err := n.Place(x, y); err != nil {
		return nil, err
	}
	return n, nil
}

// Place sets the node position. It fails if the node was already placed or
// a coordinate is negative.
func (n *Node) Place(x, y int) error {
	if n.placed {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyPlaced, n.Name, n.pos)
	}
	if x < 0 || y < 0 {
		return fmt.Errorf("%w: %s at (%d, %d)", ErrInvalidCoordinate, n.Name, x, y)
	}
	n.pos = Position{X: x, Y: y}
	n.placed = true
	return nil
}

func (n *Node) Position() Position { return n.pos }
func (n *Node) Placed() bool       { return n.placed }

// DistanceTo returns the Euclidean distance between two nodes.
func (n *Node) DistanceTo(other *Node) float64 {
	return n.pos.DistanceTo(other.pos)
}

func (n *Node) String() string {
	return fmt.Sprintf("<Node %s at %s>", n.Name, n.pos)
}

// AccessPoint relays station traffic in wifi topologies.
type AccessPoint struct {
	Node
	Range int
}

// NewAccessPoint creates an unplaced access point. Access points have no
// host kind.
func NewAccessPoint(name string, radioRange int) *AccessPoint {
	return &AccessPoint{
		Node:  Node{Name: name, Kind: KindOther},
		Range: radioRange,
	}
}

// AccessPointName returns the name of the index-th access point (1-based).
func AccessPointName(index int) string {
	return fmt.Sprintf("ap%d", index)
}

func (ap *AccessPoint) String() string {
	return fmt.Sprintf("<AccessPoint %s at %s>", ap.Name, ap.pos)
}
