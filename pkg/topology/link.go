package topology

import (
	"fmt"
	"time"
)

// LinkAttributes are the emulated properties of a link.
type LinkAttributes struct {
	Delay       time.Duration
	Bandwidth   int
	LossPercent int
}

// DefaultLinkAttributes returns the attributes of a generated neighbour link.
func DefaultLinkAttributes() LinkAttributes {
	return LinkAttributes{Delay: 10 * time.Millisecond, Bandwidth: 10}
}

// Link is an undirected edge with a stable origin/destination orientation
// used for serialization.
type Link struct {
	Origin      string
	Destination string
	LinkAttributes
}

// NewLink creates a link, rejecting self-loops.
func NewLink(origin, destination string, attrs LinkAttributes) (Link, error) {
	if origin == destination {
		return Link{}, fmt.Errorf("%w: %s", ErrSelfLoop, origin)
	}
	return Link{Origin: origin, Destination: destination, LinkAttributes: attrs}, nil
}

// PairKey identifies the unordered endpoint pair of a link.
type PairKey struct {
	A string
	B string
}

// NewPairKey orders the two names so a↔b and b↔a share a key.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Key returns the unordered pair of the link.
func (l Link) Key() PairKey {
	return NewPairKey(l.Origin, l.Destination)
}

// Touches reports whether name is one of the endpoints.
func (l Link) Touches(name string) bool {
	return l.Origin == name || l.Destination == name
}

// Other returns the endpoint opposite name.
func (l Link) Other(name string) string {
	if l.Origin == name {
		return l.Destination
	}
	return l.Origin
}

func (l Link) String() string {
	return fmt.Sprintf("<Link %s->%s, delay=%dms>", l.Origin, l.Destination, l.Delay.Milliseconds())
}
