package traffic

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

// DefaultTimeFactor divides the nominal TTLs and periods of the default
// classes to shorten experiments.
const DefaultTimeFactor = 2

// Catalog is the immutable set of traffic classes and the table of which
// classes each host kind originates.
type Catalog struct {
	classes  []TrafficClass
	index    map[int]int
	dispatch map[topology.Kind][]int
}

// NewCatalog validates the classes and dispatch table. Class IDs must be
// unique and the dispatch table may only reference known classes.
func NewCatalog(classes []TrafficClass, dispatch map[topology.Kind][]int) (*Catalog, error) {
	c := &Catalog{
		classes:  make([]TrafficClass, 0, len(classes)),
		index:    make(map[int]int, len(classes)),
		dispatch: make(map[topology.Kind][]int, len(dispatch)),
	}

	for i, class := range classes {
		if err := validation.Struct(class); err != nil {
			return nil, fmt.Errorf("%w: classes[%d]: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.index[class.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate class id %d", ErrInvalidCatalog, class.ID)
		}
		class.ReceiverKinds = append([]topology.Kind(nil), class.ReceiverKinds...)
		c.index[class.ID] = len(c.classes)
		c.classes = append(c.classes, class)
	}

	for kind, ids := range dispatch {
		if kind == topology.KindOther {
			return nil, fmt.Errorf("%w: dispatch for kind %s", ErrInvalidCatalog, kind)
		}
		for _, id := range ids {
			if _, ok := c.index[id]; !ok {
				return nil, fmt.Errorf("%w: dispatch for %s references class %d: %w",
					ErrInvalidCatalog, kind, id, ErrUnknownClass)
			}
		}
		c.dispatch[kind] = append([]int(nil), ids...)
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on error. It is meant for static
// class tables.
func MustCatalog(classes []TrafficClass, dispatch map[topology.Kind][]int) *Catalog {
	c, err := NewCatalog(classes, dispatch)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultClasses returns the six command-and-control classes of the
// experiments with their times divided by DefaultTimeFactor.
func DefaultClasses() []TrafficClass {
	receivers := []topology.Kind{topology.KindDrone, topology.KindHuman, topology.KindVehicle}
	class := func(id int, ttl, period time.Duration, payload int) TrafficClass {
		return TrafficClass{
			ID:            id,
			TTL:           ttl / DefaultTimeFactor,
			Period:        period / DefaultTimeFactor,
			PayloadBytes:  payload,
			ReceiverKinds: receivers,
			ReceiverRatio: 1.0,
			JitterRatio:   0.2,
		}
	}

	return []TrafficClass{
		// Control data
		class(1, 10*time.Second, time.Minute, 1024),
		class(2, time.Minute, time.Minute, 5*1024),
		// Operational data
		class(3, 2*time.Minute, 2*time.Minute, 100*1024),
		class(4, 5*time.Minute, 5*time.Minute, 500*1024*1024),
		class(5, 10*time.Minute, 10*time.Minute, 5*1024*1024),
		class(6, 20*time.Minute, 10*time.Minute, 10*1024*1024),
	}
}

// DefaultDispatch lets sensors originate control data and the first
// operational class only. Every other kind originates all classes.
func DefaultDispatch() map[topology.Kind][]int {
	all := []int{1, 2, 3, 4, 5, 6}
	return map[topology.Kind][]int{
		topology.KindHuman:   all,
		topology.KindDrone:   all,
		topology.KindVehicle: all,
		topology.KindSensor:  {1, 2, 3},
	}
}

// DefaultCatalog returns the catalog used by the experiments.
func DefaultCatalog() *Catalog {
	return MustCatalog(DefaultClasses(), DefaultDispatch())
}

// Len returns the number of classes.
func (c *Catalog) Len() int {
	return len(c.classes)
}

// Classes returns a copy of the classes in catalog order.
func (c *Catalog) Classes() []TrafficClass {
	return append([]TrafficClass(nil), c.classes...)
}

// ClassesFor returns the classes a host of the given kind originates.
func (c *Catalog) ClassesFor(kind topology.Kind) []TrafficClass {
	ids := c.dispatch[kind]
	out := make([]TrafficClass, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.classes[c.index[id]])
	}
	return out
}

// Class returns the class with the given ID.
func (c *Catalog) Class(id int) (TrafficClass, bool) {
	i, ok := c.index[id]
	if !ok {
		return TrafficClass{}, false
	}
	return c.classes[i], true
}

// TTLFor returns the TTL of the class with the given ID.
func (c *Catalog) TTLFor(id int) (time.Duration, error) {
	class, ok := c.Class(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownClass, id)
	}
	return class.TTL, nil
}

// TTLValues returns the TTL of every class in catalog order.
func (c *Catalog) TTLValues() []time.Duration {
	out := make([]time.Duration, len(c.classes))
	for i, class := range c.classes {
		out[i] = class.TTL
	}
	return out
}

// PayloadSizes returns the payload size of every class in catalog order.
func (c *Catalog) PayloadSizes() []int {
	out := make([]int, len(c.classes))
	for i, class := range c.classes {
		out[i] = class.PayloadBytes
	}
	return out
}

// AveragePayloadSize returns the mean class payload, or 0 for an empty
// catalog.
func (c *Catalog) AveragePayloadSize() float64 {
	if len(c.classes) == 0 {
		return 0
	}
	sum := 0
	for _, class := range c.classes {
		sum += class.PayloadBytes
	}
	return float64(sum) / float64(len(c.classes))
}

// TTLParam returns the TTLs in milliseconds joined by spaces, as passed to
// consumer command lines.
func (c *Catalog) TTLParam() string {
	parts := make([]string, len(c.classes))
	for i, class := range c.classes {
		parts[i] = strconv.FormatInt(class.TTL.Milliseconds(), 10)
	}
	return strings.Join(parts, " ")
}

// PayloadParam returns the payload sizes joined by spaces.
func (c *Catalog) PayloadParam() string {
	parts := make([]string, len(c.classes))
	for i, class := range c.classes {
		parts[i] = strconv.Itoa(class.PayloadBytes)
	}
	return strings.Join(parts, " ")
}

// Info returns one line per class.
func (c *Catalog) Info() string {
	var b strings.Builder
	for i, class := range c.classes {
		fmt.Fprintf(&b, "[%d] - %s\n", i, class)
	}
	return b.String()
}
