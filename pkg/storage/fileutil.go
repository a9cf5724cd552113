package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFileAtomic writes to a temporary file next to path and renames it
// into place, so readers never see a partial file. It returns the number
// of bytes written.
func writeFileAtomic(path string, write func(io.Writer) error) (int64, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".new"
	file, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	writer := bufio.NewWriter(file)
	counter := &countingWriter{w: writer}
	if err := write(counter); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to flush: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to sync: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close: %w", err)
	}

	// Atomic rename (on POSIX systems)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename file: %w", err)
	}
	return counter.n, nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TopologySuffix is stripped from topology file names when deriving queue
// file names.
const TopologySuffix = ".conf"

// QueueTextPath returns queue_<topology>.txt next to the topology file.
func QueueTextPath(topologyPath string) string {
	return queuePath(topologyPath, ".txt")
}

// QueueBinaryPath returns queue_<topology>.bin next to the topology file.
func QueueBinaryPath(topologyPath string) string {
	return queuePath(topologyPath, ".bin")
}

func queuePath(topologyPath, ext string) string {
	name := strings.TrimSuffix(filepath.Base(topologyPath), TopologySuffix)
	return filepath.Join(filepath.Dir(topologyPath), "queue_"+name+ext)
}
