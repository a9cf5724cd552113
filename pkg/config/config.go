package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/storage"
	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
	"github.com/dd0wney/icnsim-workload/pkg/transport"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
	"github.com/dd0wney/icnsim-workload/pkg/visualization"
)

// Default population and mission
const (
	DefaultHumans          = 5
	DefaultDrones          = 5
	DefaultSensors         = 5
	DefaultMission         = 300 * time.Second
	DefaultConnectAttempts = 10
	DefaultTopologyPath    = "topology.conf"
)

// Environment overrides applied by ApplyEnv
const (
	EnvSeed     = "ICNSIM_SEED"
	EnvRunID    = "ICNSIM_RUN_ID"
	EnvTopology = "ICNSIM_TOPOLOGY"
	EnvLogLevel = "LOG_LEVEL"
)

var ErrNoHosts = errors.New("no hosts configured")

// Default returns the experiment defaults: 5 humans, 5 drones and 5 sensors
// on a 100x100 area, a five minute periodic mission with the default
// catalog, text queue output.
func Default() *Config {
	gen := topology.DefaultGeneratorConfig()
	spread := traffic.DefaultSpreadOptions()
	return &Config{
		Topology: TopologyConfig{
			Humans:           DefaultHumans,
			Drones:           DefaultDrones,
			Sensors:          DefaultSensors,
			MaxLinks:         gen.MaxLinks,
			MaxX:             gen.MaxX,
			MaxY:             gen.MaxY,
			PlacementTries:   gen.PlacementTries,
			AccessPointRange: gen.AccessPointRange,
			LinkDelay:        gen.Link.Delay,
			LinkBandwidth:    gen.Link.Bandwidth,
			LinkLoss:         gen.Link.LossPercent,
			ConnectAttempts:  DefaultConnectAttempts,
		},
		Traffic: TrafficConfig{
			Mission: DefaultMission,
			Mode:    ModePeriodic,
			Spread: SpreadConfig{
				Slots:    spread.Slots,
				Interval: spread.Interval,
			},
		},
		Output: OutputConfig{
			Topology:    DefaultTopologyPath,
			QueueFormat: string(storage.FormatText),
		},
		Transport:     transport.DefaultConfig(),
		Visualization: visualization.DefaultLayoutConfig(),
		Logging:       LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML experiment file over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the seed, run id, topology path and log level from the
// environment. Malformed values are reported, unset ones ignored.
func (c *Config) ApplyEnv() error {
	if s := os.Getenv(EnvSeed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Run.Seed = seed
	}
	c.Run.RunID = getEnvOrDefault(EnvRunID, c.Run.RunID)
	c.Output.Topology = getEnvOrDefault(EnvTopology, c.Output.Topology)
	c.Logging.Level = getEnvOrDefault(EnvLogLevel, c.Logging.Level)
	return nil
}

// Validate checks the struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("config")
	for i, class := range c.Traffic.Classes {
		cv.RangeFloat(fmt.Sprintf("traffic.classes[%d].receiver_ratio", i), class.ReceiverRatio, 0, 1)
		cv.RangeFloat(fmt.Sprintf("traffic.classes[%d].jitter_ratio", i), class.JitterRatio, 0, 1)
	}
	cv.When(len(c.Topology.Hosts) > 0, func(cv *validation.ConfigValidator) {
		cv.Custom("topology.hosts", func() error {
			return validation.ValidateHostNames(c.Topology.Hosts)
		})
	})
	cv.Custom("topology", func() error {
		if len(c.HostNames()) == 0 {
			return ErrNoHosts
		}
		return nil
	})
	cv.When(c.Traffic.Mode == ModeSpread && c.Traffic.Spread.Origin != "" && len(c.Topology.Hosts) > 0, func(cv *validation.ConfigValidator) {
		cv.Custom("traffic.spread.origin", func() error {
			if !slices.Contains(c.HostNames(), c.Traffic.Spread.Origin) {
				return fmt.Errorf("origin %q is not a configured host", c.Traffic.Spread.Origin)
			}
			return nil
		})
	})
	cv.Custom("traffic.classes", func() error {
		_, err := c.Catalog()
		return err
	})
	return cv.Validate()
}

// HostNames returns the explicit host list, or the list built from the
// per-kind counts.
func (c *Config) HostNames() []string {
	if len(c.Topology.Hosts) > 0 {
		return slices.Clone(c.Topology.Hosts)
	}
	t := c.Topology
	return topology.HostList(t.Humans, t.Drones, t.Sensors, t.Vehicles)
}

// GeneratorConfig converts the topology section for topology.NewGenerator.
func (c *Config) GeneratorConfig() topology.GeneratorConfig {
	t := c.Topology
	return topology.GeneratorConfig{
		MaxLinks:         t.MaxLinks,
		MaxX:             t.MaxX,
		MaxY:             t.MaxY,
		PlacementTries:   t.PlacementTries,
		Wifi:             t.Wifi,
		AccessPointRange: t.AccessPointRange,
		Link: topology.LinkAttributes{
			Delay:       t.LinkDelay,
			Bandwidth:   t.LinkBandwidth,
			LossPercent: t.LinkLoss,
		},
	}
}

// Catalog builds the traffic catalog. Without configured classes the
// default classes are used; a dispatch override applies either way.
func (c *Config) Catalog() (*traffic.Catalog, error) {
	classes := traffic.DefaultClasses()
	if len(c.Traffic.Classes) > 0 {
		classes = make([]traffic.TrafficClass, 0, len(c.Traffic.Classes))
		for i, cc := range c.Traffic.Classes {
			class, err := cc.toClass()
			if err != nil {
				return nil, fmt.Errorf("classes[%d]: %w", i, err)
			}
			classes = append(classes, class)
		}
	}

	dispatch := traffic.DefaultDispatch()
	if len(c.Traffic.Dispatch) > 0 {
		dispatch = make(map[topology.Kind][]int, len(c.Traffic.Dispatch))
		for name, ids := range c.Traffic.Dispatch {
			kind, err := topology.ParseKind(name)
			if err != nil {
				return nil, fmt.Errorf("dispatch: %w", err)
			}
			dispatch[kind] = slices.Clone(ids)
		}
	} else if len(c.Traffic.Classes) > 0 {
		dispatch = dispatchAll(classes)
	}

	return traffic.NewCatalog(classes, dispatch)
}

// dispatchAll lets every host kind originate every class.
func dispatchAll(classes []traffic.TrafficClass) map[topology.Kind][]int {
	ids := make([]int, len(classes))
	for i, class := range classes {
		ids[i] = class.ID
	}
	dispatch := make(map[topology.Kind][]int, len(topology.HostKinds))
	for _, kind := range topology.HostKinds {
		dispatch[kind] = slices.Clone(ids)
	}
	return dispatch
}

func (cc ClassConfig) toClass() (traffic.TrafficClass, error) {
	kinds := make([]topology.Kind, 0, len(cc.Receivers))
	for _, name := range cc.Receivers {
		kind, err := topology.ParseKind(name)
		if err != nil {
			return traffic.TrafficClass{}, err
		}
		kinds = append(kinds, kind)
	}
	return traffic.TrafficClass{
		ID:            cc.ID,
		TTL:           cc.TTL,
		Period:        cc.Period,
		PayloadBytes:  cc.PayloadBytes,
		ReceiverKinds: kinds,
		ReceiverRatio: cc.ReceiverRatio,
		JitterRatio:   cc.JitterRatio,
	}, nil
}

// SpreadOptions converts the spread section.
func (c *Config) SpreadOptions() traffic.SpreadOptions {
	return traffic.SpreadOptions{
		Slots:    c.Traffic.Spread.Slots,
		Interval: c.Traffic.Spread.Interval,
	}
}

// SpreadOrigin returns the configured origin or the first host.
func (c *Config) SpreadOrigin() string {
	if c.Traffic.Spread.Origin != "" {
		return c.Traffic.Spread.Origin
	}
	hosts := c.HostNames()
	if len(hosts) == 0 {
		return ""
	}
	return hosts[0]
}

// QueueFormat parses the output queue format.
func (c *Config) QueueFormat() (storage.Format, error) {
	return storage.ParseFormat(c.Output.QueueFormat)
}

// EnsureRunID fills in a fresh run id when none is configured and returns
// the run id.
func (c *Config) EnsureRunID() string {
	if c.Run.RunID == "" {
		c.Run.RunID = uuid.NewString()
	}
	return c.Run.RunID
}

// EnsureSeed draws a seed from the clock when none is configured and
// returns the seed. Zero never comes back, so a second call is stable.
func (c *Config) EnsureSeed() int64 {
	for c.Run.Seed == 0 {
		c.Run.Seed = time.Now().UnixNano()
	}
	return c.Run.Seed
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
