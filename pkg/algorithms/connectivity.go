package algorithms

import (
	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// CheckConnectivity grows a connected set from the endpoints of the first
// link. Each pass over the remaining links absorbs the far endpoint of
// every link touching the set and drops that link; it stops when a pass
// adds nothing. The topology is connected iff every node and access point
// was reached.
//
// Zero or one endpoint is connected. Several endpoints without links are
// not, and all of them are reported unreachable.
func CheckConnectivity(t *topology.Topology) *ConnectivityResult {
	names := t.EndpointNames()
	if len(names) <= 1 {
		return &ConnectivityResult{Connected: true, Reached: names, Unreachable: []string{}}
	}
	if len(t.Links) == 0 {
		return &ConnectivityResult{Connected: false, Reached: []string{}, Unreachable: names}
	}

	reached := map[string]bool{
		t.Links[0].Origin:      true,
		t.Links[0].Destination: true,
	}
	pool := append([]topology.Link(nil), t.Links[1:]...)

	for {
		grown := false
		remaining := pool[:0]
		for _, l := range pool {
			switch {
			case reached[l.Origin] && reached[l.Destination]:
				// both ends already in the set
			case reached[l.Origin]:
				reached[l.Destination] = true
				grown = true
			case reached[l.Destination]:
				reached[l.Origin] = true
				grown = true
			default:
				remaining = append(remaining, l)
			}
		}
		pool = remaining
		if !grown || len(pool) == 0 {
			break
		}
	}

	result := &ConnectivityResult{
		Reached:     make([]string, 0, len(reached)),
		Unreachable: make([]string, 0),
	}
	for _, name := range names {
		if reached[name] {
			result.Reached = append(result.Reached, name)
		} else {
			result.Unreachable = append(result.Unreachable, name)
		}
	}
	result.Connected = len(result.Unreachable) == 0
	return result
}

// IsConnected reports whether every endpoint of the topology is reachable
// from every other one.
func IsConnected(t *topology.Topology) bool {
	return CheckConnectivity(t).Connected
}

// DegreeStats computes link-count statistics over all endpoints.
func DegreeStats(t *topology.Topology) DegreeSummary {
	names := t.EndpointNames()
	if len(names) == 0 {
		return DegreeSummary{Isolated: []string{}}
	}

	degrees := t.Degrees()
	stats := DegreeSummary{Min: degrees[names[0]], Isolated: make([]string, 0)}
	total := 0
	for _, name := range names {
		d := degrees[name]
		total += d
		stats.Min = min(stats.Min, d)
		stats.Max = max(stats.Max, d)
		if d == 0 {
			stats.Isolated = append(stats.Isolated, name)
		}
	}
	stats.Mean = float64(total) / float64(len(names))
	return stats
}
