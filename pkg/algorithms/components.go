package algorithms

import (
	"container/list"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// adjacency builds an undirected neighbour list in link order.
func adjacency(t *topology.Topology) map[string][]string {
	adj := make(map[string][]string, t.EndpointCount())
	for _, l := range t.Links {
		adj[l.Origin] = append(adj[l.Origin], l.Destination)
		adj[l.Destination] = append(adj[l.Destination], l.Origin)
	}
	return adj
}

// ConnectedComponents finds all islands in the topology. Islands are
// numbered in endpoint order: nodes first, then access points.
func ConnectedComponents(t *topology.Topology) *ComponentsResult {
	adj := adjacency(t)
	visited := make(map[string]bool, t.EndpointCount())
	endpointIsland := make(map[string]int, t.EndpointCount())
	islands := make([]*Island, 0)
	islandID := 0

	// BFS to find each island
	for _, start := range t.EndpointNames() {
		if visited[start] {
			continue
		}

		island := &Island{
			ID:      islandID,
			Members: make([]string, 0),
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			name, ok := queue.Remove(queue.Front()).(string)
			if !ok {
				continue
			}
			island.Members = append(island.Members, name)
			endpointIsland[name] = islandID

			for _, next := range adj[name] {
				if !visited[next] {
					visited[next] = true
					queue.PushBack(next)
				}
			}
		}

		island.Size = len(island.Members)
		islands = append(islands, island)
		islandID++
	}

	return &ComponentsResult{
		Islands:        islands,
		EndpointIsland: endpointIsland,
	}
}
