package algorithms

import (
	"errors"
	"fmt"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// ErrNotConnected is returned when no generated topology was connected.
var ErrNotConnected = errors.New("topology is not connected")

// Checker runs connectivity checks and reports islands.
type Checker struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewChecker creates a checker. Both arguments may be nil.
func NewChecker(logger logging.Logger, reg *metrics.Registry) *Checker {
	return &Checker{
		logger:  logging.OrNop(logger).With(logging.Component("connectivity")),
		metrics: reg,
	}
}

// Check runs CheckConnectivity. Islands are logged as a warning and are
// not an error.
func (c *Checker) Check(t *topology.Topology) *ConnectivityResult {
	result := CheckConnectivity(t)
	if c.metrics != nil {
		c.metrics.RecordConnectivity(result.Connected, len(result.Unreachable))
	}

	if result.Connected {
		c.logger.Debug("topology connected",
			logging.RunID(t.RunID),
			logging.Count(t.EndpointCount()),
		)
		return result
	}

	islands := ConnectedComponents(t)
	c.logger.Warn("topology has islands",
		logging.RunID(t.RunID),
		logging.Int("islands", len(islands.Islands)),
		logging.Int("reached", len(result.Reached)),
		logging.Any("unreachable", result.Unreachable),
	)
	return result
}

// GenerateConnected regenerates until the topology is connected, at most
// attempts times. When every attempt has islands the last topology is
// returned together with ErrNotConnected.
func (c *Checker) GenerateConnected(g *topology.Generator, hosts []string, attempts int) (*topology.Topology, *ConnectivityResult, error) {
	if attempts < 1 {
		attempts = 1
	}

	var (
		topo   *topology.Topology
		result *ConnectivityResult
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		topo, err = g.Generate(hosts)
		if err != nil {
			return nil, nil, err
		}
		result = c.Check(topo)
		if result.Connected {
			c.logger.Info("connected topology found",
				logging.RunID(topo.RunID),
				logging.Int("attempt", attempt),
			)
			return topo, result, nil
		}
	}
	return topo, result, fmt.Errorf("%w after %d attempts: %d unreachable",
		ErrNotConnected, attempts, len(result.Unreachable))
}

// GenerateConnected is Checker.GenerateConnected without logging or metrics.
func GenerateConnected(g *topology.Generator, hosts []string, attempts int) (*topology.Topology, *ConnectivityResult, error) {
	return NewChecker(nil, nil).GenerateConnected(g, hosts, attempts)
}
