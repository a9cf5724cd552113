package topology

import (
	"cmp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/dd0wney/icnsim-workload/pkg/metrics"
)

func newTestGenerator(t *testing.T, mutate func(*GeneratorConfig)) *Generator {
	t.Helper()
	cfg := DefaultGeneratorConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := NewGenerator(cfg, 42)
	require.NoError(t, err)
	return g
}

// nearestNames returns the k nearest endpoints of name in node order.
func nearestNames(topo *Topology, name string, k int) []string {
	from, _ := topo.Node(name)
	type cand struct {
		name string
		dist float64
	}
	var cands []cand
	for _, n := range topo.Nodes {
		if n.Name == name {
			continue
		}
		cands = append(cands, cand{n.Name, from.DistanceTo(n)})
	}
	slices.SortStableFunc(cands, func(a, b cand) int { return cmp.Compare(a.dist, b.dist) })
	out := make([]string, 0, k)
	for _, c := range cands[:min(k, len(cands))] {
		out = append(out, c.name)
	}
	return out
}

func TestGeneratePlainNearestNeighbours(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) { c.MaxLinks = 2 })
	hosts := []string{"h1", "d1", "d2", "s1"}

	topo, err := g.Generate(hosts)
	require.NoError(t, err)
	require.NoError(t, topo.Validate())

	assert.NotEmpty(t, topo.RunID)
	assert.Len(t, topo.Nodes, 4)
	assert.Empty(t, topo.AccessPoints)

	linked := make(map[PairKey]bool)
	originated := make(map[string]int)
	for _, l := range topo.Links {
		linked[l.Key()] = true
		originated[l.Origin]++
		assert.Equal(t, DefaultLinkAttributes(), l.LinkAttributes)
	}

	for _, name := range hosts {
		assert.LessOrEqual(t, originated[name], 2)
		for _, other := range nearestNames(topo, name, 2) {
			assert.True(t, linked[NewPairKey(name, other)], "%s not linked to neighbour %s", name, other)
		}
	}

	degrees := topo.Degrees()
	for _, name := range hosts {
		assert.GreaterOrEqual(t, degrees[name], 1, name)
	}
}

func TestGenerateDistinctPositions(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) {
		c.MaxX = 5
		c.MaxY = 5
		c.PlacementTries = 200
	})
	topo, err := g.Generate(HostList(5, 5, 5, 5))
	require.NoError(t, err)

	seen := make(map[Position]string)
	for _, n := range topo.Nodes {
		assert.True(t, n.Placed())
		p := n.Position()
		assert.GreaterOrEqual(t, p.X, 1)
		assert.LessOrEqual(t, p.X, 5)
		assert.GreaterOrEqual(t, p.Y, 1)
		assert.LessOrEqual(t, p.Y, 5)
		if other, dup := seen[p]; dup {
			t.Fatalf("%s and %s share %s", n.Name, other, p)
		}
		seen[p] = n.Name
	}
}

func TestGenerateKAtLeastNodeCountGivesCompleteGraph(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) { c.MaxLinks = 10 })
	topo, err := g.Generate([]string{"h0", "s0", "v0"})
	require.NoError(t, err)
	assert.Len(t, topo.Links, 3)
}

func TestGenerateZeroLinks(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) { c.MaxLinks = 0 })
	topo, err := g.Generate([]string{"h0", "s0"})
	require.NoError(t, err)
	assert.Empty(t, topo.Links)
}

func TestGenerateWifi(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) {
		c.Wifi = true
		c.MaxLinks = 2
	})
	hosts := HostList(2, 1, 1, 1)

	topo, err := g.Generate(hosts)
	require.NoError(t, err)
	require.NoError(t, topo.Validate())
	require.Len(t, topo.AccessPoints, len(hosts))

	for i, st := range topo.Nodes {
		ap := topo.AccessPoints[i]
		assert.Equal(t, AccessPointName(i+1), ap.Name)
		assert.Equal(t, DefaultRange, ap.Range)
		assert.Equal(t, Position{X: st.Position().X, Y: st.Position().Y + 1}, ap.Position())
	}

	stationLinks := 0
	for _, l := range topo.Links {
		_, originIsNode := topo.Node(l.Origin)
		_, destIsNode := topo.Node(l.Destination)
		require.False(t, originIsNode && destIsNode, "station-station link %s", l)
		if originIsNode || destIsNode {
			stationLinks++
			assert.Equal(t, LinkAttributes{}, l.LinkAttributes)
		}
	}
	assert.Equal(t, len(hosts), stationLinks)
}

func TestGeneratePlacementExhausted(t *testing.T) {
	g := newTestGenerator(t, func(c *GeneratorConfig) {
		c.MaxX = 1
		c.MaxY = 1
	})
	_, err := g.Generate([]string{"h0", "h1"})
	assert.ErrorIs(t, err, ErrPlacementExhausted)
}

func TestGenerateRejectsBadHosts(t *testing.T) {
	g := newTestGenerator(t, nil)

	_, err := g.Generate([]string{"h0", "x1"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = g.Generate([]string{"h0", "h0"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = g.Generate([]string{"h0", "h-1"})
	assert.Error(t, err)
}

func TestGenerateEmpty(t *testing.T) {
	g := newTestGenerator(t, nil)
	topo, err := g.Generate(nil)
	require.NoError(t, err)
	assert.Empty(t, topo.Nodes)
	assert.Empty(t, topo.Links)
}

func TestGenerateDeterministic(t *testing.T) {
	hosts := HostList(3, 3, 3, 3)
	a, err := newTestGenerator(t, nil).Generate(hosts)
	require.NoError(t, err)
	b, err := newTestGenerator(t, nil).Generate(hosts)
	require.NoError(t, err)

	for i := range a.Nodes {
		assert.Equal(t, a.Nodes[i].Position(), b.Nodes[i].Position())
	}
	assert.Equal(t, a.Links, b.Links)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, int64(42), a.Seed)
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MaxX = 0
	_, err := NewGenerator(cfg, 1)
	assert.Error(t, err)

	cfg = DefaultGeneratorConfig()
	cfg.MaxLinks = -1
	_, err = NewGenerator(cfg, 1)
	assert.Error(t, err)
}

func TestGenerateRecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	g, err := NewGenerator(DefaultGeneratorConfig(), 7, WithMetrics(reg))
	require.NoError(t, err)

	_, err = g.Generate(HostList(2, 0, 0, 0))
	require.NoError(t, err)

	families, err := reg.GetPrometheusRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["icnsim_topologies_generated_total"])
	assert.True(t, names["icnsim_links_created_total"])
}

func TestGenerateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("generated topologies are valid and leave no node isolated", prop.ForAll(
		func(humans, sensors, k int, wifi bool, seed int64) bool {
			cfg := DefaultGeneratorConfig()
			cfg.MaxLinks = k
			cfg.Wifi = wifi
			g, err := NewGenerator(cfg, seed)
			if err != nil {
				return false
			}
			topo, err := g.Generate(HostList(humans, 0, sensors, 0))
			if err != nil {
				return false
			}
			if topo.Validate() != nil {
				return false
			}
			if topo.EndpointCount() < 2 {
				return true
			}
			degrees := topo.Degrees()
			for _, name := range topo.EndpointNames() {
				if degrees[name] == 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(1, 5),
		gen.Bool(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
