package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

func generateTopology(t *testing.T, wifi bool, seed int64, hosts []string) *topology.Topology {
	t.Helper()
	cfg := topology.DefaultGeneratorConfig()
	cfg.Wifi = wifi
	cfg.MaxLinks = 2
	g, err := topology.NewGenerator(cfg, seed)
	require.NoError(t, err)
	topo, err := g.Generate(hosts)
	require.NoError(t, err)
	return topo
}

func assertSameTopology(t *testing.T, want, got *topology.Topology) {
	t.Helper()
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Seed, got.Seed)
	require.Len(t, got.Nodes, len(want.Nodes))
	for i := range want.Nodes {
		assert.Equal(t, want.Nodes[i].Name, got.Nodes[i].Name)
		assert.Equal(t, want.Nodes[i].Kind, got.Nodes[i].Kind)
		assert.Equal(t, want.Nodes[i].Position(), got.Nodes[i].Position())
	}
	require.Len(t, got.AccessPoints, len(want.AccessPoints))
	for i := range want.AccessPoints {
		assert.Equal(t, want.AccessPoints[i].Name, got.AccessPoints[i].Name)
		assert.Equal(t, want.AccessPoints[i].Range, got.AccessPoints[i].Range)
		assert.Equal(t, want.AccessPoints[i].Position(), got.AccessPoints[i].Position())
	}
	assert.Equal(t, want.Links, got.Links)
}

func TestTopologyRoundTripPlain(t *testing.T) {
	topo := generateTopology(t, false, 11, topology.HostList(3, 2, 2, 1))
	topo.Links[0].LossPercent = 3

	var buf bytes.Buffer
	require.NoError(t, WriteTopology(&buf, topo))
	assert.Contains(t, buf.String(), SectionNodes)
	assert.NotContains(t, buf.String(), SectionStations)
	assert.Contains(t, buf.String(), " loss=3")

	got, err := ReadTopology(&buf)
	require.NoError(t, err)
	assertSameTopology(t, topo, got)
}

func TestTopologyRoundTripWifi(t *testing.T) {
	topo := generateTopology(t, true, 5, topology.HostList(2, 2, 0, 1))

	var buf bytes.Buffer
	require.NoError(t, WriteTopology(&buf, topo))
	text := buf.String()
	assert.Contains(t, text, SectionStations)
	assert.Contains(t, text, SectionAccessPoints)
	assert.Contains(t, text, "h0:ap1 delay=0ms bw=0\n")

	got, err := ReadTopology(&buf)
	require.NoError(t, err)
	assertSameTopology(t, topo, got)
}

func TestWriteTopologyLineFormat(t *testing.T) {
	h1, err := topology.NewPlacedNode("h1", 3, 4)
	require.NoError(t, err)
	d1, err := topology.NewPlacedNode("d1", 4, 3)
	require.NoError(t, err)
	link, err := topology.NewLink("h1", "d1", topology.DefaultLinkAttributes())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTopology(&buf, topology.New([]*topology.Node{h1, d1}, nil, []topology.Link{link})))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "[nodes]", lines[0])
	assert.Equal(t, "h1: _ radius=5.000000 angle=0.927295", lines[1])
	assert.Equal(t, "[links]", lines[3])
	assert.Equal(t, "h1:d1 delay=10ms bw=10", lines[4])
}

func TestReadTopologyDefaultsMissingAttributes(t *testing.T) {
	input := `# generated by hand
[stations]
h0: range=116 position=1,1,0
s0: range=116 position=5,5,0
[links]
h0:s0
`
	topo, err := ReadTopology(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, topo.Links, 1)
	assert.Equal(t, topology.LinkAttributes{}, topo.Links[0].LinkAttributes)
	assert.Empty(t, topo.RunID)
}

func TestReadTopologyDelayWithoutUnit(t *testing.T) {
	input := "[nodes]\nh0: _ radius=1 angle=0\nh1: _ radius=2 angle=0\n[links]\nh0:h1 delay=25 bw=3 loss=1\n"
	topo, err := ReadTopology(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, topo.Links[0].Delay)
	assert.Equal(t, 3, topo.Links[0].Bandwidth)
	assert.Equal(t, 1, topo.Links[0].LossPercent)
}

func TestReadTopologyErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		line  int
	}{
		{"unknown section", "[nodes]\n[switches]\n", ErrUnknownSection, 2},
		{"line before section", "h0: _ radius=1 angle=0\n", ErrMalformedLine, 1},
		{"bad radius", "[nodes]\nh0: _ radius=x angle=0\n", ErrMalformedLine, 2},
		{"bad link", "[nodes]\nh0: _ radius=1 angle=0\n[links]\nh0 delay=1ms\n", ErrMalformedLine, 4},
		{"self loop", "[nodes]\nh0: _ radius=1 angle=0\n[links]\nh0:h0\n", topology.ErrSelfLoop, 4},
		{"unknown endpoint", "[nodes]\nh0: _ radius=1 angle=0\n[links]\nh0:h9\n", topology.ErrUnknownEndpoint, 0},
		{"bad seed header", "# seed=abc\n[nodes]\n", ErrMalformedLine, 1},
		{"host name with separator", "[stations]\nh;0: range=116 position=1,1,0\n", validation.ErrInvalidHostName, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTopology(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestReadHostNames(t *testing.T) {
	topo := generateTopology(t, true, 9, []string{"h0", "d0", "v0"})
	var buf bytes.Buffer
	require.NoError(t, WriteTopology(&buf, topo))

	names, err := ReadHostNames(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"h0", "d0", "v0"}, names)

	_, err = ReadHostNames(strings.NewReader("[nodes]\nno colon here\n"))
	assert.ErrorIs(t, err, ErrMalformedLine)

	// a name that would break the ';' separated queue lines
	_, err = ReadHostNames(strings.NewReader("[nodes]\nh0: _ radius=1 angle=0\nh;1: _ radius=2 angle=0\n"))
	require.ErrorIs(t, err, validation.ErrInvalidHostName)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Line)
}

func TestTopologySeedHeader(t *testing.T) {
	topo := generateTopology(t, false, 77, topology.HostList(2, 1, 0, 0))
	require.Equal(t, int64(77), topo.Seed)

	var buf bytes.Buffer
	require.NoError(t, WriteTopology(&buf, topo))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "# run_id="+topo.RunID, lines[0])
	assert.Equal(t, "# seed=77", lines[1])

	got, err := ReadTopology(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(77), got.Seed)
}

func TestTopologyRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("write then read reproduces the topology", prop.ForAll(
		func(humans, sensors int, wifi bool, seed int64) bool {
			cfg := topology.DefaultGeneratorConfig()
			cfg.Wifi = wifi
			g, err := topology.NewGenerator(cfg, seed)
			if err != nil {
				return false
			}
			topo, err := g.Generate(topology.HostList(humans, 0, sensors, 0))
			if err != nil {
				return false
			}

			var buf bytes.Buffer
			if err := WriteTopology(&buf, topo); err != nil {
				return false
			}
			got, err := ReadTopology(&buf)
			if err != nil {
				return false
			}
			if len(got.Nodes) != len(topo.Nodes) || len(got.AccessPoints) != len(topo.AccessPoints) {
				return false
			}
			for i := range topo.Nodes {
				if got.Nodes[i].Name != topo.Nodes[i].Name || got.Nodes[i].Position() != topo.Nodes[i].Position() {
					return false
				}
			}
			if len(got.Links) != len(topo.Links) {
				return false
			}
			for i := range topo.Links {
				if got.Links[i] != topo.Links[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 6),
		gen.Bool(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
