package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dd0wney/icnsim-workload/pkg/algorithms"
	"github.com/dd0wney/icnsim-workload/pkg/config"
	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/storage"
	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/visualization"
)

func main() {
	var (
		configFile = flag.String("config", "", "Experiment configuration file (YAML)")
		output     = flag.String("out", "", "Topology file to write")
		seed       = flag.Int64("seed", 0, "Random seed")
		hosts      = flag.String("hosts", "", "Comma separated host names (overrides the per-kind counts)")
		humans     = flag.Int("humans", 0, "Number of humans")
		drones     = flag.Int("drones", 0, "Number of drones")
		sensors    = flag.Int("sensors", 0, "Number of sensors")
		vehicles   = flag.Int("vehicles", 0, "Number of vehicles")
		maxLinks   = flag.Int("links", 0, "Nearest neighbours linked per endpoint")
		wifi       = flag.Bool("wifi", false, "Give every station an access point")
		attempts   = flag.Int("attempts", 0, "Regenerate until connected, at most this many times")
		vizFile    = flag.String("viz", "", "Write a JSON visualization to this file")
		layout     = flag.String("layout", "", "Visualization layout (geographic, circular, force, hierarchical)")
		metricsOut = flag.String("metrics", "", "Write Prometheus metrics to this textfile")
		strict     = flag.Bool("strict", false, "Fail when no connected topology was found")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Topology = *output
		case "seed":
			cfg.Run.Seed = *seed
		case "hosts":
			cfg.Topology.Hosts = splitHosts(*hosts)
		case "humans":
			cfg.Topology.Humans = *humans
		case "drones":
			cfg.Topology.Drones = *drones
		case "sensors":
			cfg.Topology.Sensors = *sensors
		case "vehicles":
			cfg.Topology.Vehicles = *vehicles
		case "links":
			cfg.Topology.MaxLinks = *maxLinks
		case "wifi":
			cfg.Topology.Wifi = *wifi
		case "attempts":
			cfg.Topology.ConnectAttempts = *attempts
		case "viz":
			cfg.Output.Visualization = *vizFile
		case "layout":
			cfg.Visualization.Algorithm = *layout
		case "metrics":
			cfg.Output.MetricsTextfile = *metricsOut
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	seed := cfg.EnsureSeed()
	logger := logging.NewStderrLogger(cfg.LogLevel()).With(logging.Component("topogen"), logging.Seed(seed))
	reg := metrics.NewRegistry()

	if err := run(cfg, logger, reg, *strict); err != nil {
		logger.Error("topology generation failed", logging.Error(err))
		writeMetrics(cfg, reg, logger)
		os.Exit(1)
	}
	writeMetrics(cfg, reg, logger)
}

func run(cfg *config.Config, logger logging.Logger, reg *metrics.Registry, strict bool) error {
	gen, err := topology.NewGenerator(cfg.GeneratorConfig(), cfg.Run.Seed,
		topology.WithLogger(logger),
		topology.WithMetrics(reg),
	)
	if err != nil {
		return err
	}

	checker := algorithms.NewChecker(logger, reg)
	topo, result, err := checker.GenerateConnected(gen, cfg.HostNames(), cfg.Topology.ConnectAttempts)
	switch {
	case errors.Is(err, algorithms.ErrNotConnected):
		if strict {
			return err
		}
		logger.Warn("writing topology with islands", logging.Error(err))
	case err != nil:
		return err
	}

	if cfg.Run.RunID != "" {
		topo.RunID = cfg.Run.RunID
	}

	store := storage.NewStore(logger, reg)
	if err := store.SaveTopology(cfg.Output.Topology, topo); err != nil {
		return err
	}

	if cfg.Output.Visualization != "" {
		if err := writeVisualization(cfg, topo); err != nil {
			return err
		}
		logger.Info("visualization written", logging.Path(cfg.Output.Visualization))
	}

	stats := algorithms.DegreeStats(topo)
	fmt.Printf("Topology %s (run %s)\n", cfg.Output.Topology, topo.RunID)
	fmt.Printf("  seed:          %d\n", topo.Seed)
	fmt.Printf("  nodes:         %d\n", len(topo.Nodes))
	fmt.Printf("  access points: %d\n", len(topo.AccessPoints))
	fmt.Printf("  links:         %d\n", len(topo.Links))
	fmt.Printf("  degree:        min %d, max %d, mean %.2f\n", stats.Min, stats.Max, stats.Mean)
	fmt.Printf("  connected:     %t\n", result.Connected)
	return nil
}

func writeVisualization(cfg *config.Config, topo *topology.Topology) error {
	viz, err := visualization.Build(topo, cfg.Visualization)
	if err != nil {
		return err
	}
	data, err := viz.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output.Visualization, data, 0644); err != nil {
		return fmt.Errorf("failed to write visualization: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeMetrics(cfg *config.Config, reg *metrics.Registry, logger logging.Logger) {
	if cfg.Output.MetricsTextfile == "" {
		return
	}
	if err := reg.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
		logger.Warn("metrics not written", logging.Error(err))
	}
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
