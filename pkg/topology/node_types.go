package topology

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the terminal type of a node.
type Kind int

const (
	KindOther Kind = iota
	KindHuman
	KindSensor
	KindDrone
	KindVehicle
)

// HostKinds lists the kinds a host name prefix can map to.
var HostKinds = []Kind{KindHuman, KindSensor, KindDrone, KindVehicle}

func (k Kind) String() string {
	switch k {
	case KindHuman:
		return "human"
	case KindSensor:
		return "sensor"
	case KindDrone:
		return "drone"
	case KindVehicle:
		return "vehicle"
	default:
		return "other"
	}
}

// Prefix returns the host name prefix of the kind, or 0 for KindOther.
func (k Kind) Prefix() byte {
	switch k {
	case KindHuman:
		return 'h'
	case KindSensor:
		return 's'
	case KindDrone:
		return 'd'
	case KindVehicle:
		return 'v'
	default:
		return 0
	}
}

// KindFromName derives the kind from the first character of a host name.
func KindFromName(name string) (Kind, error) {
	if name == "" {
		return KindOther, fmt.Errorf("%w: empty host name", ErrUnknownKind)
	}
	switch name[0] {
	case 'h':
		return KindHuman, nil
	case 's':
		return KindSensor, nil
	case 'd':
		return KindDrone, nil
	case 'v':
		return KindVehicle, nil
	default:
		return KindOther, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// ParseKind accepts a kind name ("drone") or its prefix ("d").
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range HostKinds {
		if s == k.String() || (len(s) == 1 && s[0] == k.Prefix()) {
			return k, nil
		}
	}
	return KindOther, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Position is an integer coordinate on the placement grid.
type Position struct {
	X int
	Y int
}

// DistanceTo returns the Euclidean distance to other.
func (p Position) DistanceTo(other Position) float64 {
	dx := float64(other.X - p.X)
	dy := float64(other.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Polar returns the radius and angle (radians) of the position.
func (p Position) Polar() (radius, angle float64) {
	x, y := float64(p.X), float64(p.Y)
	return math.Hypot(x, y), math.Atan2(y, x)
}

// PositionFromPolar rounds polar coordinates onto the grid.
func PositionFromPolar(radius, angle float64) Position {
	return Position{
		X: int(math.Round(math.Cos(angle) * radius)),
		Y: int(math.Round(math.Sin(angle) * radius)),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
