package storage

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

// Format selects the queue file encoding.
type Format string

// Queue file formats
const (
	FormatText   Format = "text"
	FormatBinary Format = "binary"
)

// ParseFormat accepts "text" or "binary".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatBinary:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// QueuePath returns the queue file path for the format next to the
// topology file.
func (f Format) QueuePath(topologyPath string) string {
	if f == FormatBinary {
		return QueueBinaryPath(topologyPath)
	}
	return QueueTextPath(topologyPath)
}

// Store reads and writes topology and queue files.
type Store struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewStore creates a store. Both arguments may be nil.
func NewStore(logger logging.Logger, reg *metrics.Registry) *Store {
	return &Store{
		logger:  logging.OrNop(logger).With(logging.Component("storage")),
		metrics: reg,
	}
}

// SaveTopology writes t to path.
func (s *Store) SaveTopology(path string, t *topology.Topology) error {
	n, err := writeFileAtomic(path, func(w io.Writer) error {
		return WriteTopology(w, t)
	})
	if err != nil {
		return withPath(NewError("write").Topology().Path(path).Cause(err).Err(), path)
	}
	s.record("topology", n)
	s.logger.Info("topology saved",
		logging.Path(path),
		logging.RunID(t.RunID),
		logging.Int64("bytes", n),
	)
	return nil
}

// LoadTopology reads the topology file at path.
func (s *Store) LoadTopology(path string) (*topology.Topology, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewError("open").Topology().Path(path).Cause(err).Err()
	}
	defer file.Close()

	t, err := ReadTopology(file)
	if err != nil {
		return nil, withPath(err, path)
	}
	s.logger.Debug("topology loaded",
		logging.Path(path),
		logging.Int("nodes", len(t.Nodes)),
		logging.Int("links", len(t.Links)),
	)
	return t, nil
}

// LoadHostNames reads the host names of the topology file at path.
func (s *Store) LoadHostNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewError("open").Topology().Path(path).Cause(err).Err()
	}
	defer file.Close()

	names, err := ReadHostNames(file)
	if err != nil {
		return nil, withPath(err, path)
	}
	return names, nil
}

// SaveQueue writes q next to the topology file and returns the queue file
// path. runID goes into the binary header; an empty run id gets a fresh
// one.
func (s *Store) SaveQueue(topologyPath string, format Format, runID string, q traffic.Queue) (string, error) {
	path := format.QueuePath(topologyPath)

	var write func(io.Writer) error
	switch format {
	case FormatText:
		write = func(w io.Writer) error { return WriteQueueText(w, q) }
	case FormatBinary:
		id, err := parseRunID(runID)
		if err != nil {
			return "", NewError("write").Queue().Path(path).Cause(err).Err()
		}
		write = func(w io.Writer) error { return WriteQueueBinary(w, id, q) }
	default:
		return "", NewError("write").Queue().Path(path).Cause(fmt.Errorf("%w: %q", ErrUnknownFormat, format)).Err()
	}

	n, err := writeFileAtomic(path, write)
	if err != nil {
		return "", withPath(NewError("write").Queue().Path(path).Cause(err).Err(), path)
	}
	s.record("queue_"+string(format), n)
	s.logger.Info("data queue saved",
		logging.Path(path),
		logging.String("format", string(format)),
		logging.Count(len(q)),
		logging.Int64("bytes", n),
	)
	return path, nil
}

// LoadQueue reads the queue stored next to the topology file.
func (s *Store) LoadQueue(topologyPath string, format Format) (traffic.Queue, error) {
	path := format.QueuePath(topologyPath)
	file, err := os.Open(path)
	if err != nil {
		return nil, NewError("open").Queue().Path(path).Cause(err).Err()
	}
	defer file.Close()

	var q traffic.Queue
	switch format {
	case FormatText:
		q, err = ReadQueueText(file)
	case FormatBinary:
		var header QueueHeader
		header, q, err = ReadQueueBinary(file)
		if err == nil {
			s.logger.Debug("binary queue header",
				logging.RunID(header.RunID.String()),
				logging.Int("count", int(header.Count)),
			)
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		if IsCorrupt(err) {
			s.logger.Error("queue file corrupt", logging.Path(path), logging.Error(err))
		}
		return nil, withPath(err, path)
	}
	return q, nil
}

func (s *Store) record(format string, n int64) {
	if s.metrics != nil {
		s.metrics.RecordPersisted(format, n)
	}
}

func parseRunID(runID string) (uuid.UUID, error) {
	if runID == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(runID)
}
