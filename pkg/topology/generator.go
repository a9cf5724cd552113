package topology

import (
	"cmp"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

// NewGenerator creates a generator whose random source is seeded with seed.
func NewGenerator(config GeneratorConfig, seed int64, opts ...Option) (*Generator, error) {
	if err := validation.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}

	g := &Generator{
		config: config,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Generate places the hosts at random and links them to their nearest
// neighbours. In wifi mode every host gets its own access point and only
// access points are linked to each other.
func (g *Generator) Generate(hosts []string) (*Topology, error) {
	start := time.Now()
	mode := g.config.Mode()
	runID := uuid.New().String()
	logger := g.logger.With(logging.RunID(runID), logging.String("mode", mode), logging.Seed(g.seed))

	logger.Info("generating topology",
		logging.Count(len(hosts)),
		logging.Int("max_x", g.config.MaxX),
		logging.Int("max_y", g.config.MaxY),
		logging.Int("max_links", g.config.MaxLinks),
	)

	topo, err := g.generate(hosts, logger)
	if err != nil {
		g.recordTopology(mode, "error", time.Since(start))
		logger.Error("topology generation failed", logging.Error(err))
		return nil, err
	}
	topo.RunID = runID
	topo.Seed = g.seed

	g.recordTopology(mode, "success", time.Since(start))
	logger.Info("topology generated",
		logging.Int("nodes", len(topo.Nodes)),
		logging.Int("access_points", len(topo.AccessPoints)),
		logging.Int("links", len(topo.Links)),
		logging.Latency(time.Since(start)),
	)
	return topo, nil
}

func (g *Generator) generate(hosts []string, logger logging.Logger) (*Topology, error) {
	if len(hosts) == 0 {
		return New(nil, nil, nil), nil
	}
	if err := checkHosts(hosts); err != nil {
		return nil, err
	}

	nodes, err := g.placeNodes(hosts, logger)
	if err != nil {
		return nil, err
	}

	if !g.config.Wifi {
		sites := make([]site, len(nodes))
		for i, n := range nodes {
			sites[i] = site{name: n.Name, pos: n.Position()}
		}
		links := linkNearest(sites, g.config.MaxLinks, g.config.Link)
		g.recordLinks("neighbour", len(links))
		return New(nodes, nil, links), nil
	}

	aps, stationLinks, err := g.attachAccessPoints(nodes, logger)
	if err != nil {
		return nil, err
	}
	sites := make([]site, len(aps))
	for i, ap := range aps {
		sites[i] = site{name: ap.Name, pos: ap.Position()}
	}
	apLinks := linkNearest(sites, g.config.MaxLinks, g.config.Link)
	g.recordLinks("station_ap", len(stationLinks))
	g.recordLinks("neighbour", len(apLinks))

	logger.Debug("wifi links created",
		logging.Int("station_links", len(stationLinks)),
		logging.Int("ap_links", len(apLinks)),
	)
	return New(nodes, aps, append(stationLinks, apLinks...)), nil
}

// checkHosts rejects unknown kind prefixes, names the topology file grammar
// cannot carry, and duplicates.
func checkHosts(hosts []string) error {
	seen := make(map[string]struct{}, len(hosts))
	for _, name := range hosts {
		if _, err := KindFromName(name); err != nil {
			return err
		}
		if err := validation.ValidateHostName(name); err != nil {
			return fmt.Errorf("invalid host: %w", err)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// placeNodes draws a free coordinate for every host. Placement is final, so
// a candidate is checked against occupied coordinates before Place.
func (g *Generator) placeNodes(hosts []string, logger logging.Logger) ([]*Node, error) {
	nodes := make([]*Node, 0, len(hosts))
	occupied := make(map[Position]struct{}, len(hosts))

	for _, name := range hosts {
		node, err := NewNode(name)
		if err != nil {
			return nil, err
		}

		pos, tries, err := g.freePosition(occupied)
		if g.metrics != nil {
			g.metrics.RecordPlacement(tries)
		}
		if err != nil {
			return nil, fmt.Errorf("place %s: %w", name, err)
		}
		if err := node.Place(pos.X, pos.Y); err != nil {
			return nil, err
		}

		occupied[pos] = struct{}{}
		nodes = append(nodes, node)
		logger.Debug("node placed",
			logging.Host(name),
			logging.Kind(node.Kind.String()),
			logging.Int("x", pos.X),
			logging.Int("y", pos.Y),
			logging.Int("tries", tries),
		)
	}
	return nodes, nil
}

func (g *Generator) freePosition(occupied map[Position]struct{}) (Position, int, error) {
	for try := 1; try <= g.config.PlacementTries; try++ {
		pos := Position{
			X: 1 + g.rng.Intn(g.config.MaxX),
			Y: 1 + g.rng.Intn(g.config.MaxY),
		}
		if _, taken := occupied[pos]; !taken {
			return pos, try, nil
		}
	}
	return Position{}, g.config.PlacementTries, fmt.Errorf("%w: %d tries in %dx%d area",
		ErrPlacementExhausted, g.config.PlacementTries, g.config.MaxX, g.config.MaxY)
}

// attachAccessPoints places one access point directly above every station
// and links the pair with a zero-cost link.
func (g *Generator) attachAccessPoints(stations []*Node, logger logging.Logger) ([]*AccessPoint, []Link, error) {
	aps := make([]*AccessPoint, 0, len(stations))
	links := make([]Link, 0, len(stations))
	occupied := make(map[Position]string, 2*len(stations))
	for _, st := range stations {
		occupied[st.Position()] = st.Name
	}

	for i, st := range stations {
		ap := NewAccessPoint(AccessPointName(i+1), g.config.AccessPointRange)
		pos := Position{X: st.Position().X, Y: st.Position().Y + 1}
		if err := ap.Place(pos.X, pos.Y); err != nil {
			return nil, nil, err
		}
		if other, taken := occupied[pos]; taken {
			logger.Warn("access point shares a coordinate",
				logging.String("access_point", ap.Name),
				logging.String("other", other),
				logging.Int("x", pos.X),
				logging.Int("y", pos.Y),
			)
		}
		occupied[pos] = ap.Name

		link, err := NewLink(st.Name, ap.Name, LinkAttributes{})
		if err != nil {
			return nil, nil, err
		}
		aps = append(aps, ap)
		links = append(links, link)
	}
	return aps, links, nil
}

// linkNearest links every site to its k nearest sites. Candidates are
// ordered by distance with a stable sort, so ties keep site order. A pair
// already linked from the other side is skipped, which can leave a site
// with fewer than k links of its own.
func linkNearest(sites []site, k int, attrs LinkAttributes) []Link {
	perSite := 0
	if len(sites) > 0 {
		perSite = min(k, len(sites)-1)
	}
	links := make([]Link, 0, len(sites)*perSite)
	linked := make(map[PairKey]struct{}, len(sites)*perSite)

	for i, from := range sites {
		candidates := make([]neighbour, 0, len(sites)-1)
		for j, to := range sites {
			if j == i {
				continue
			}
			candidates = append(candidates, neighbour{index: j, distance: from.pos.DistanceTo(to.pos)})
		}
		slices.SortStableFunc(candidates, func(a, b neighbour) int {
			return cmp.Compare(a.distance, b.distance)
		})

		for _, c := range candidates[:min(k, len(candidates))] {
			to := sites[c.index]
			key := NewPairKey(from.name, to.name)
			if _, dup := linked[key]; dup {
				continue
			}
			linked[key] = struct{}{}
			links = append(links, Link{Origin: from.name, Destination: to.name, LinkAttributes: attrs})
		}
	}
	return links
}

func (g *Generator) recordTopology(mode, status string, d time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordTopology(mode, status, d)
	}
}

func (g *Generator) recordLinks(kind string, n int) {
	if g.metrics != nil {
		g.metrics.RecordLinks(kind, n)
	}
}
