package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/metrics"
	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

func testCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestQueuePaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/exp/topos", "queue_drones.txt"), QueueTextPath("/exp/topos/drones.conf"))
	assert.Equal(t, filepath.Join("/exp/topos", "queue_drones.bin"), QueueBinaryPath("/exp/topos/drones.conf"))
	assert.Equal(t, "queue_plain.txt", QueueTextPath("plain.conf"))
	assert.Equal(t, "queue_topo.txt.txt", QueueTextPath("topo.txt"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Binary")
	require.NoError(t, err)
	assert.Equal(t, FormatBinary, f)

	_, err = ParseFormat("pickle")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestStoreTopology(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "topo.conf")
	reg := metrics.NewRegistry()
	var logs bytes.Buffer
	store := NewStore(logging.NewJSONLogger(&logs, logging.DebugLevel), reg)

	topo := generateTopology(t, false, 21, topology.HostList(2, 2, 2, 2))
	require.NoError(t, store.SaveTopology(path, topo))
	assert.False(t, FileExists(path+".new"))

	got, err := store.LoadTopology(path)
	require.NoError(t, err)
	assertSameTopology(t, topo, got)

	names, err := store.LoadHostNames(path)
	require.NoError(t, err)
	assert.Equal(t, topo.NodeNames(), names)

	assert.Contains(t, logs.String(), `"msg":"topology saved"`)
	assert.Contains(t, logs.String(), topo.RunID)

	counter, err := reg.PersistedBytes.GetMetricWithLabelValues("topology")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, float64(info.Size()), testCounterValue(t, counter))
}

func TestStoreLoadTopologyMissing(t *testing.T) {
	store := NewStore(nil, nil)
	path := filepath.Join(t.TempDir(), "missing.conf")
	_, err := store.LoadTopology(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Path)
}

func TestStoreLoadTopologyReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	require.NoError(t, os.WriteFile(path, []byte("[nodes]\nh0 radius\n"), 0644))

	_, err := NewStore(nil, nil).LoadTopology(path)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Path)
	assert.Equal(t, 2, se.Line)
}

func TestStoreQueueFormats(t *testing.T) {
	q := generateQueue(t, 5)
	topoPath := filepath.Join(t.TempDir(), "experiment.conf")
	store := NewStore(nil, metrics.NewRegistry())

	for _, format := range []Format{FormatText, FormatBinary} {
		t.Run(string(format), func(t *testing.T) {
			path, err := store.SaveQueue(topoPath, format, uuid.NewString(), q)
			require.NoError(t, err)
			assert.Equal(t, format.QueuePath(topoPath), path)
			assert.True(t, FileExists(path))

			got, err := store.LoadQueue(topoPath, format)
			require.NoError(t, err)
			assert.Equal(t, q, got)
		})
	}
}

func TestStoreSaveQueueInvalidRunID(t *testing.T) {
	topoPath := filepath.Join(t.TempDir(), "experiment.conf")
	_, err := NewStore(nil, nil).SaveQueue(topoPath, FormatBinary, "not-a-uuid", nil)
	assert.Error(t, err)

	_, err = NewStore(nil, nil).SaveQueue(topoPath, Format("yaml"), "", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestStoreLoadCorruptQueue(t *testing.T) {
	q := generateQueue(t, 6)
	topoPath := filepath.Join(t.TempDir(), "experiment.conf")
	store := NewStore(nil, nil)

	path, err := store.SaveQueue(topoPath, FormatBinary, "", q)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = store.LoadQueue(topoPath, FormatBinary)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestCreatePayloadFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "payloads")
	q := traffic.Queue{
		{Package: traffic.DataPackage{PayloadBytes: 1024}},
		{Package: traffic.DataPackage{PayloadBytes: 3000}},
		{Package: traffic.DataPackage{PayloadBytes: 1024}},
	}
	store := NewStore(nil, nil)

	created, err := store.CreatePayloadFiles(q, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.True(t, PayloadExists(1024, dir))
	assert.True(t, PayloadExists(3000, dir))

	info, err := os.Stat(traffic.PayloadFileName(3000, dir))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), info.Size())

	created, err = store.CreatePayloadFiles(q, dir)
	require.NoError(t, err)
	assert.Zero(t, created, "existing files are kept")
}
