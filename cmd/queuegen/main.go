package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/dd0wney/icnsim-workload/pkg/config"
	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/storage"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
	"github.com/dd0wney/icnsim-workload/pkg/transport"
)

func main() {
	var (
		configFile = flag.String("config", "", "Experiment configuration file (YAML)")
		topoFile   = flag.String("topology", "", "Topology file to read hosts from")
		seed       = flag.Int64("seed", 0, "Random seed")
		mission    = flag.Duration("mission", 0, "Mission duration")
		mode       = flag.String("mode", "", "Generation mode (periodic, spread)")
		origin     = flag.String("origin", "", "Spread origin host")
		format     = flag.String("format", "", "Queue file format (text, binary)")
		skip       = flag.Bool("skip-unreachable", false, "Skip classes without eligible receivers")
		payloadDir = flag.String("payloads", "", "Create payload files in this directory")
		send       = flag.String("send", "", "Ship the queue to a receiver at this address")
		metricsOut = flag.String("metrics", "", "Write Prometheus metrics to this textfile")
		info       = flag.Bool("info", false, "Print the traffic catalog and consumer parameters")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "topology":
			cfg.Output.Topology = *topoFile
		case "seed":
			cfg.Run.Seed = *seed
		case "mission":
			cfg.Traffic.Mission = *mission
		case "mode":
			cfg.Traffic.Mode = *mode
		case "origin":
			cfg.Traffic.Spread.Origin = *origin
		case "format":
			cfg.Output.QueueFormat = *format
		case "skip-unreachable":
			cfg.Traffic.SkipUnreachable = *skip
		case "payloads":
			cfg.Output.PayloadDir = *payloadDir
		case "send":
			cfg.Transport.Address = *send
		case "metrics":
			cfg.Output.MetricsTextfile = *metricsOut
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatalf("Invalid traffic catalog: %v", err)
	}
	if *info {
		fmt.Print(catalog.Info())
		fmt.Printf("ttl:     %s\n", catalog.TTLParam())
		fmt.Printf("payload: %s\n", catalog.PayloadParam())
		fmt.Printf("average payload: %.0f bytes\n", catalog.AveragePayloadSize())
		return
	}

	seed := cfg.EnsureSeed()
	logger := logging.NewStderrLogger(cfg.LogLevel()).With(logging.Component("queuegen"), logging.Seed(seed))
	reg := metrics.NewRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, catalog, logger, reg, *send != "")
	if cfg.Output.MetricsTextfile != "" {
		if werr := reg.WriteTextfile(cfg.Output.MetricsTextfile); werr != nil {
			logger.Warn("metrics not written", logging.Error(werr))
		}
	}
	if err != nil {
		logger.Error("queue generation failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, catalog *traffic.Catalog, logger logging.Logger, reg *metrics.Registry, ship bool) error {
	store := storage.NewStore(logger, reg)

	hosts, err := store.LoadHostNames(cfg.Output.Topology)
	if err != nil {
		return err
	}

	gen, err := traffic.NewGenerator(catalog, cfg.Run.Seed,
		traffic.WithLogger(logger),
		traffic.WithMetrics(reg),
		traffic.WithSkipUnreachable(cfg.Traffic.SkipUnreachable),
	)
	if err != nil {
		return err
	}

	var q traffic.Queue
	switch cfg.Traffic.Mode {
	case config.ModeSpread:
		origin := cfg.Traffic.Spread.Origin
		switch {
		case origin == "":
			q, err = gen.GenerateSpread(hosts, cfg.SpreadOptions())
		case !slices.Contains(hosts, origin):
			return fmt.Errorf("spread origin %q is not in %s", origin, cfg.Output.Topology)
		default:
			q, err = gen.Spread(hosts, origin, cfg.SpreadOptions())
		}
	default:
		q, err = gen.Generate(hosts, cfg.Traffic.Mission)
	}
	if err != nil {
		return err
	}

	format, err := cfg.QueueFormat()
	if err != nil {
		return err
	}
	runID := cfg.EnsureRunID()
	path, err := store.SaveQueue(cfg.Output.Topology, format, runID, q)
	if err != nil {
		return err
	}

	if cfg.Output.PayloadDir != "" {
		n, err := store.CreatePayloadFiles(q, cfg.Output.PayloadDir)
		if err != nil {
			return err
		}
		logger.Info("payload files ready", logging.Path(cfg.Output.PayloadDir), logging.Count(n))
	}

	if ship {
		if err := shipQueue(ctx, cfg.Transport, runID, q, logger); err != nil {
			return err
		}
	}

	fmt.Printf("Queue %s (run %s)\n", path, runID)
	fmt.Printf("  seed:    %d\n", cfg.Run.Seed)
	fmt.Printf("  hosts:   %d\n", len(hosts))
	fmt.Printf("  entries: %d\n", len(q))
	counts := q.CountByClass()
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Printf("  class %d: %d\n", id, counts[id])
	}
	return nil
}

func shipQueue(ctx context.Context, cfg transport.Config, runID string, q traffic.Queue, logger logging.Logger) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	sender, err := transport.NewSender(transport.NewNNGSocketFactory(), cfg, logger)
	if err != nil {
		return err
	}
	defer sender.Close()
	return sender.Send(ctx, id, q)
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
