package topology

import (
	"math/rand"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
)

// Default generator parameters
const (
	DefaultMaxLinks       = 5
	DefaultMaxX           = 100
	DefaultMaxY           = 100
	DefaultPlacementTries = 20
)

// GeneratorConfig controls topology synthesis.
type GeneratorConfig struct {
	// MaxLinks is k, the number of nearest neighbours each endpoint links to.
	MaxLinks int `validate:"gte=0"`
	MaxX     int `validate:"gte=1"`
	MaxY     int `validate:"gte=1"`
	// PlacementTries bounds the random draws per node before giving up.
	PlacementTries int `validate:"gte=1"`
	// Wifi places one access point next to every station and links access
	// points instead of stations.
	Wifi             bool
	AccessPointRange int `validate:"gte=0"`
	Link             LinkAttributes
}

// DefaultGeneratorConfig returns the configuration used by the experiments.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxLinks:         DefaultMaxLinks,
		MaxX:             DefaultMaxX,
		MaxY:             DefaultMaxY,
		PlacementTries:   DefaultPlacementTries,
		AccessPointRange: DefaultRange,
		Link:             DefaultLinkAttributes(),
	}
}

// Mode returns "wifi" or "plain".
func (c GeneratorConfig) Mode() string {
	if c.Wifi {
		return "wifi"
	}
	return "plain"
}

// Generator places nodes and links them. It is not safe for concurrent use
// because it owns its random source.
type Generator struct {
	config  GeneratorConfig
	seed    int64
	rng     *rand.Rand
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.OrNop(logger).With(logging.Component("topology"))
	}
}

// WithMetrics records generation metrics in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(g *Generator) {
		g.metrics = r
	}
}

// WithRand replaces the seeded random source. The seed is then unknown
// and reported as zero.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
		g.seed = 0
	}
}

// site is anything the nearest-neighbour linker can connect.
type site struct {
	name string
	pos  Position
}

type neighbour struct {
	index    int
	distance float64
}
