package storage

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/parallel"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

// PayloadWorkers bounds the payload files written concurrently.
const PayloadWorkers = 4

// CreatePayloadFiles writes one file of random base64 text per distinct
// payload size in q into dir. Existing files are kept. It returns the
// number of files created.
func (s *Store) CreatePayloadFiles(q traffic.Queue, dir string) (int, error) {
	if err := EnsureDir(dir); err != nil {
		return 0, NewError("write").Queue().Path(dir).Context("payload").Cause(err).Err()
	}

	var (
		created atomic.Int64
		tasks   []func() error
	)
	for _, size := range q.PayloadSizes() {
		path := traffic.PayloadFileName(size, dir)
		if FileExists(path) {
			continue
		}
		tasks = append(tasks, func() error {
			n, err := writeFileAtomic(path, func(w io.Writer) error {
				return writeRandomText(w, int64(size))
			})
			if err != nil {
				return NewError("write").Queue().Path(path).Context("payload").Cause(err).Err()
			}
			created.Add(1)
			s.record("payload", n)
			s.logger.Debug("payload file created", logging.Path(path), logging.Int("bytes", size))
			return nil
		})
	}

	err := parallel.Run(PayloadWorkers, s.logger, tasks)
	s.logger.Info("payload files created", logging.Count(int(created.Load())), logging.Path(dir))
	return int(created.Load()), err
}

// writeRandomText writes exactly size bytes of base64 encoded random data.
func writeRandomText(w io.Writer, size int64) error {
	enc := base64.NewEncoder(base64.StdEncoding, &limitWriter{w: w, remaining: size})
	if _, err := io.CopyN(enc, rand.Reader, size); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return enc.Close()
}

// limitWriter discards everything after remaining bytes.
type limitWriter struct {
	w         io.Writer
	remaining int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.remaining <= 0 {
		return n, nil
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	written, err := l.w.Write(p)
	l.remaining -= int64(written)
	if err != nil {
		return written, err
	}
	return n, nil
}

// PayloadExists reports whether the payload file for size exists in dir.
func PayloadExists(size int, dir string) bool {
	_, err := os.Stat(traffic.PayloadFileName(size, dir))
	return err == nil
}
