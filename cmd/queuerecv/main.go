// Command queuerecv is the receiving end of queuegen -send. It listens for
// one queue and stores it next to the given topology file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/icnsim-workload/pkg/config"
	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/storage"
	"github.com/dd0wney/icnsim-workload/pkg/transport"
)

func main() {
	var (
		configFile = flag.String("config", "", "Experiment configuration file (YAML)")
		listen     = flag.String("listen", "", "Address to listen on")
		topoFile   = flag.String("topology", "", "Topology file the queue belongs to")
		format     = flag.String("format", "", "Queue file format (text, binary)")
		timeout    = flag.Duration("timeout", 0, "Receive deadline per frame")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Transport.Address = *listen
		case "topology":
			cfg.Output.Topology = *topoFile
		case "format":
			cfg.Output.QueueFormat = *format
		case "timeout":
			cfg.Transport.RecvTimeout = *timeout
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewStderrLogger(cfg.LogLevel()).With(logging.Component("queuerecv"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("receive failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	format, err := cfg.QueueFormat()
	if err != nil {
		return err
	}

	receiver, err := transport.NewReceiver(transport.NewNNGSocketFactory(), cfg.Transport, logger)
	if err != nil {
		return err
	}
	defer receiver.Close()

	logger.Info("waiting for queue", logging.String("address", cfg.Transport.Address))
	runID, q, err := receiver.Receive(ctx)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	store := storage.NewStore(logger, reg)
	path, err := store.SaveQueue(cfg.Output.Topology, format, runID.String(), q)
	if err != nil {
		return err
	}
	fmt.Printf("Received %d entries (run %s) into %s\n", len(q), runID, path)
	return nil
}
