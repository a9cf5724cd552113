package traffic

import (
	"math/rand"
	"time"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
)

// Spread defaults
const (
	DefaultSpreadSlots    = 100
	DefaultSpreadInterval = 500 * time.Millisecond
	spreadSequenceID      = 1
)

// SpreadOptions controls single-origin spread generation.
type SpreadOptions struct {
	Slots    int           `validate:"gte=1"`
	Interval time.Duration `validate:"gt=0"`
}

// DefaultSpreadOptions returns 100 slots half a second apart.
func DefaultSpreadOptions() SpreadOptions {
	return SpreadOptions{Slots: DefaultSpreadSlots, Interval: DefaultSpreadInterval}
}

// Generator builds data queues from a catalog. It is not safe for
// concurrent use because it owns its random source.
type Generator struct {
	catalog         *Catalog
	rng             *rand.Rand
	logger          logging.Logger
	metrics         *metrics.Registry
	skipUnreachable bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.OrNop(logger).With(logging.Component("traffic"))
	}
}

// WithMetrics records generation metrics in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(g *Generator) {
		g.metrics = r
	}
}

// WithRand replaces the seeded random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithSkipUnreachable makes Generate log and skip a class that has no
// eligible receivers for a host instead of aborting.
func WithSkipUnreachable(skip bool) Option {
	return func(g *Generator) {
		g.skipUnreachable = skip
	}
}
