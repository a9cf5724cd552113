package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

const queueFieldCount = 6

// WriteQueueText writes one entry per line as
// <timestampMs>;<classId>;<sequenceId>;<payloadBytes>;<origin>;<destination>.
func WriteQueueText(w io.Writer, q traffic.Queue) error {
	bw := bufio.NewWriter(w)
	for _, e := range q {
		p := e.Package
		if _, err := fmt.Fprintf(bw, "%d;%d;%d;%d;%s;%s\n",
			e.TimestampMs, p.ClassID, p.SequenceID, p.PayloadBytes, p.Origin, p.Destination); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadQueueText parses a text queue. Blank lines are skipped and entry
// order is preserved.
func ReadQueueText(r io.Reader) (traffic.Queue, error) {
	q := make(traffic.Queue, 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e, err := parseQueueLine(line)
		if err != nil {
			return nil, QueueLineError(lineNo, err)
		}
		q = append(q, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError("read").Queue().Cause(err).Err()
	}
	return q, nil
}

func parseQueueLine(line string) (traffic.Entry, error) {
	fields := strings.Split(line, ";")
	if len(fields) != queueFieldCount {
		return traffic.Entry{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedLine, queueFieldCount, len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return traffic.Entry{}, fmt.Errorf("%w: timestamp: %w", ErrMalformedLine, err)
	}
	ints := make([]int, 3)
	for i, name := range []string{"class", "sequence", "payload"} {
		if ints[i], err = strconv.Atoi(fields[i+1]); err != nil {
			return traffic.Entry{}, fmt.Errorf("%w: %s: %w", ErrMalformedLine, name, err)
		}
	}
	if fields[4] == "" || fields[5] == "" {
		return traffic.Entry{}, fmt.Errorf("%w: empty host", ErrMalformedLine)
	}

	return traffic.Entry{
		TimestampMs: ts,
		Package: traffic.DataPackage{
			ClassID:      ints[0],
			SequenceID:   ints[1],
			PayloadBytes: ints[2],
			Origin:       fields[4],
			Destination:  fields[5],
		},
	}, nil
}
