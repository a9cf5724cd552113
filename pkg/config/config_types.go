package config

import (
	"time"

	"github.com/dd0wney/icnsim-workload/pkg/transport"
	"github.com/dd0wney/icnsim-workload/pkg/visualization"
)

// Traffic generation modes
const (
	ModePeriodic = "periodic"
	ModeSpread   = "spread"
)

// Config is one experiment: where the hosts come from, how the topology and
// the data queue are generated and where the results go.
type Config struct {
	Run           RunConfig                  `yaml:"run"`
	Topology      TopologyConfig             `yaml:"topology"`
	Traffic       TrafficConfig              `yaml:"traffic"`
	Output        OutputConfig               `yaml:"output"`
	Transport     transport.Config           `yaml:"transport"`
	Visualization visualization.LayoutConfig `yaml:"visualization"`
	Logging       LoggingConfig              `yaml:"logging"`
}

type RunConfig struct {
	Seed  int64  `yaml:"seed"`                             // Zero draws a fresh seed per run
	RunID string `yaml:"run_id" validate:"omitempty,uuid"` // Generated when empty
}

// TopologyConfig selects the hosts and the generator parameters. An explicit
// host list wins over the per-kind counts.
type TopologyConfig struct {
	Hosts    []string `yaml:"hosts"`
	Humans   int      `yaml:"humans" validate:"gte=0"`
	Drones   int      `yaml:"drones" validate:"gte=0"`
	Sensors  int      `yaml:"sensors" validate:"gte=0"`
	Vehicles int      `yaml:"vehicles" validate:"gte=0"`

	MaxLinks         int  `yaml:"max_links" validate:"gte=0"`
	MaxX             int  `yaml:"max_x" validate:"gte=1"`
	MaxY             int  `yaml:"max_y" validate:"gte=1"`
	PlacementTries   int  `yaml:"placement_tries" validate:"gte=1"`
	Wifi             bool `yaml:"wifi"`
	AccessPointRange int  `yaml:"ap_range" validate:"gte=0"`

	LinkDelay     time.Duration `yaml:"link_delay" validate:"gte=0"`
	LinkBandwidth int           `yaml:"link_bandwidth" validate:"gte=0"`
	LinkLoss      int           `yaml:"link_loss" validate:"gte=0,lte=100"`

	// ConnectAttempts bounds regeneration until the topology is connected.
	// One means a single try without retry.
	ConnectAttempts int `yaml:"connect_attempts" validate:"gte=1"`
}

type TrafficConfig struct {
	Mission         time.Duration `yaml:"mission" validate:"gt=0"`
	Mode            string        `yaml:"mode" validate:"oneof=periodic spread"`
	SkipUnreachable bool          `yaml:"skip_unreachable"`
	Spread          SpreadConfig  `yaml:"spread"`

	// Classes replaces the default catalog when set. Dispatch maps a kind
	// name ("human" or "h") to the class ids it originates.
	Classes  []ClassConfig    `yaml:"classes" validate:"dive"`
	Dispatch map[string][]int `yaml:"dispatch"`
}

type SpreadConfig struct {
	Origin   string        `yaml:"origin"` // Defaults to the first host
	Slots    int           `yaml:"slots" validate:"gte=1"`
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
}

// ClassConfig is the file form of a traffic class. Receivers are kind names.
type ClassConfig struct {
	ID            int           `yaml:"id" validate:"gte=1"`
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	Period        time.Duration `yaml:"period" validate:"gt=0"`
	PayloadBytes  int           `yaml:"payload_bytes" validate:"gt=0"`
	Receivers     []string      `yaml:"receivers" validate:"required,min=1"`
	ReceiverRatio float64       `yaml:"receiver_ratio"`
	JitterRatio   float64       `yaml:"jitter_ratio"`
}

type OutputConfig struct {
	Topology        string `yaml:"topology" validate:"required"`
	QueueFormat     string `yaml:"queue_format" validate:"oneof=text binary"`
	Visualization   string `yaml:"visualization"`    // Skipped when empty
	MetricsTextfile string `yaml:"metrics_textfile"` // Skipped when empty
	PayloadDir      string `yaml:"payload_dir"`      // Skipped when empty
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
}
