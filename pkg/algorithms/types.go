package algorithms

// Island is a connected component of a topology.
type Island struct {
	ID      int
	Members []string
	Size    int
}

// ComponentsResult contains the islands of a topology
type ComponentsResult struct {
	Islands        []*Island
	EndpointIsland map[string]int // Endpoint name -> Island ID
}

// Largest returns the island with the most members, or nil.
func (r *ComponentsResult) Largest() *Island {
	var largest *Island
	for _, island := range r.Islands {
		if largest == nil || island.Size > largest.Size {
			largest = island
		}
	}
	return largest
}

// ConnectivityResult reports whether every endpoint of a topology is
// reachable from the first link.
type ConnectivityResult struct {
	Connected   bool
	Reached     []string
	Unreachable []string
}

// DegreeSummary summarizes the number of links per endpoint.
type DegreeSummary struct {
	Min      int
	Max      int
	Mean     float64
	Isolated []string
}
