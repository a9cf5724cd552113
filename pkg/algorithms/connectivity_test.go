package algorithms

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// buildTopology creates plain nodes on a line and links them as given.
func buildTopology(t *testing.T, names []string, pairs [][2]string) *topology.Topology {
	t.Helper()
	nodes := make([]*topology.Node, 0, len(names))
	for i, name := range names {
		n, err := topology.NewPlacedNode(name, i+1, 1)
		if err != nil {
			t.Fatalf("Failed to create node %s: %v", name, err)
		}
		nodes = append(nodes, n)
	}
	links := make([]topology.Link, 0, len(pairs))
	for _, p := range pairs {
		l, err := topology.NewLink(p[0], p[1], topology.DefaultLinkAttributes())
		if err != nil {
			t.Fatalf("Failed to create link %v: %v", p, err)
		}
		links = append(links, l)
	}
	return topology.New(nodes, nil, links)
}

// TestCheckConnectivity_Empty tests that an empty topology is connected
func TestCheckConnectivity_Empty(t *testing.T) {
	result := CheckConnectivity(topology.New(nil, nil, nil))
	if !result.Connected {
		t.Error("Empty topology should be connected")
	}
}

// TestCheckConnectivity_SingleNode tests that one endpoint is connected
func TestCheckConnectivity_SingleNode(t *testing.T) {
	result := CheckConnectivity(buildTopology(t, []string{"h0"}, nil))
	if !result.Connected {
		t.Error("Single node should be connected")
	}
}

// TestCheckConnectivity_NoLinks tests several endpoints without links
func TestCheckConnectivity_NoLinks(t *testing.T) {
	result := CheckConnectivity(buildTopology(t, []string{"h0", "h1", "s0"}, nil))
	if result.Connected {
		t.Error("Unlinked nodes should not be connected")
	}
	if len(result.Unreachable) != 3 {
		t.Errorf("Expected 3 unreachable, got %v", result.Unreachable)
	}
}

// TestCheckConnectivity_Chain tests a chain listed out of order
func TestCheckConnectivity_Chain(t *testing.T) {
	// d0 - h0 - h1 - s0, listed so that a single pass is not enough
	topo := buildTopology(t, []string{"h0", "h1", "s0", "d0"}, [][2]string{
		{"h1", "s0"},
		{"d0", "h0"},
		{"h0", "h1"},
	})

	result := CheckConnectivity(topo)
	if !result.Connected {
		t.Fatalf("Chain should be connected, unreachable: %v", result.Unreachable)
	}
	if len(result.Reached) != 4 {
		t.Errorf("Expected 4 reached, got %v", result.Reached)
	}
}

// TestCheckConnectivity_Islands tests two disjoint pairs
func TestCheckConnectivity_Islands(t *testing.T) {
	topo := buildTopology(t, []string{"h0", "h1", "s0", "s1"}, [][2]string{
		{"h0", "h1"},
		{"s0", "s1"},
	})

	result := CheckConnectivity(topo)
	if result.Connected {
		t.Fatal("Two islands should not be connected")
	}
	if len(result.Unreachable) != 2 || result.Unreachable[0] != "s0" || result.Unreachable[1] != "s1" {
		t.Errorf("Expected s0 and s1 unreachable, got %v", result.Unreachable)
	}
}

// TestCheckConnectivity_IsolatedAccessPoint tests that access points count
func TestCheckConnectivity_IsolatedAccessPoint(t *testing.T) {
	topo := buildTopology(t, []string{"h0", "h1"}, [][2]string{{"h0", "h1"}})
	ap := topology.NewAccessPoint("ap1", topology.DefaultRange)
	if err := ap.Place(1, 2); err != nil {
		t.Fatalf("Failed to place access point: %v", err)
	}
	topo.AccessPoints = append(topo.AccessPoints, ap)

	if IsConnected(topo) {
		t.Error("Unlinked access point should make the topology disconnected")
	}
}

// TestCheckConnectivity_Idempotent tests that checking twice agrees
func TestCheckConnectivity_Idempotent(t *testing.T) {
	topo := buildTopology(t, []string{"h0", "h1", "s0"}, [][2]string{{"h0", "h1"}})
	first := CheckConnectivity(topo)
	second := CheckConnectivity(topo)
	if first.Connected != second.Connected || len(first.Unreachable) != len(second.Unreachable) {
		t.Errorf("Results differ: %+v vs %+v", first, second)
	}
	if len(topo.Links) != 1 {
		t.Error("Check must not consume the topology links")
	}
}

// TestConnectedComponents tests island detection
func TestConnectedComponents(t *testing.T) {
	topo := buildTopology(t, []string{"h0", "h1", "s0", "s1", "v0"}, [][2]string{
		{"h0", "h1"},
		{"s1", "s0"},
	})

	result := ConnectedComponents(topo)
	if len(result.Islands) != 3 {
		t.Fatalf("Expected 3 islands, got %d", len(result.Islands))
	}
	if result.EndpointIsland["h0"] != result.EndpointIsland["h1"] {
		t.Error("h0 and h1 should share an island")
	}
	if result.EndpointIsland["s0"] == result.EndpointIsland["h0"] {
		t.Error("s0 and h0 should be in different islands")
	}
	if largest := result.Largest(); largest == nil || largest.Size != 2 {
		t.Errorf("Expected largest island of size 2, got %+v", largest)
	}
}

// TestDegreeStats tests link-count summary
func TestDegreeStats(t *testing.T) {
	topo := buildTopology(t, []string{"h0", "h1", "h2", "s0"}, [][2]string{
		{"h0", "h1"},
		{"h0", "h2"},
	})

	stats := DegreeStats(topo)
	if stats.Min != 0 || stats.Max != 2 {
		t.Errorf("Expected min 0 max 2, got %d %d", stats.Min, stats.Max)
	}
	if stats.Mean != 1.0 {
		t.Errorf("Expected mean 1.0, got %f", stats.Mean)
	}
	if len(stats.Isolated) != 1 || stats.Isolated[0] != "s0" {
		t.Errorf("Expected s0 isolated, got %v", stats.Isolated)
	}
}

// TestGenerateConnected tests regeneration with a dense configuration
func TestGenerateConnected(t *testing.T) {
	cfg := topology.DefaultGeneratorConfig()
	cfg.MaxLinks = 10
	g, err := topology.NewGenerator(cfg, 3)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	topo, result, err := GenerateConnected(g, topology.HostList(2, 2, 2, 2), 3)
	if err != nil {
		t.Fatalf("GenerateConnected failed: %v", err)
	}
	if !result.Connected || topo == nil {
		t.Error("Expected a connected topology")
	}
}

// TestGenerateConnected_Exhausted tests that k=0 never connects
func TestGenerateConnected_Exhausted(t *testing.T) {
	cfg := topology.DefaultGeneratorConfig()
	cfg.MaxLinks = 0
	g, err := topology.NewGenerator(cfg, 3)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	topo, result, err := GenerateConnected(g, []string{"h0", "h1"}, 2)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected, got %v", err)
	}
	if topo == nil || result == nil || result.Connected {
		t.Error("Expected the last disconnected topology to be returned")
	}
}

// TestGenerateConnected_GeneratorError tests that generation errors surface
func TestGenerateConnected_GeneratorError(t *testing.T) {
	g, err := topology.NewGenerator(topology.DefaultGeneratorConfig(), 3)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if _, _, err := GenerateConnected(g, []string{"q0"}, 2); !errors.Is(err, topology.ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

// TestCheckConnectivity_PermutationInvariant checks that the verdict does
// not depend on link order
func TestCheckConnectivity_PermutationInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("connectivity is invariant under link permutation", prop.ForAll(
		func(humans, sensors, k int, seed int64) bool {
			cfg := topology.DefaultGeneratorConfig()
			cfg.MaxLinks = k
			g, err := topology.NewGenerator(cfg, seed)
			if err != nil {
				return false
			}
			topo, err := g.Generate(topology.HostList(humans, 0, sensors, 0))
			if err != nil {
				return false
			}
			want := CheckConnectivity(topo)

			shuffled := append([]topology.Link(nil), topo.Links...)
			rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			got := CheckConnectivity(topology.New(topo.Nodes, topo.AccessPoints, shuffled))

			return got.Connected == want.Connected &&
				got.Connected == (len(ConnectedComponents(topo).Islands) <= 1)
		},
		gen.IntRange(0, 10),
		gen.IntRange(0, 10),
		gen.IntRange(0, 3),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
