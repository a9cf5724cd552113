package transport

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/icnsim-workload/pkg/storage"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

// Frame kinds. A transfer is one start frame, one entry frame per queue
// entry and one end frame.
const (
	frameStart byte = 'S'
	frameEntry byte = 'E'
	frameEnd   byte = 'Z'
)

var (
	ErrUnexpectedFrame = errors.New("unexpected frame")
	ErrCountMismatch   = errors.New("entry count mismatch")
)

// start frame: [kind:1][runID:16][count:4]
func encodeStart(runID uuid.UUID, count int) []byte {
	buf := make([]byte, 0, 1+16+4)
	buf = append(buf, frameStart)
	buf = append(buf, runID[:]...)
	return binary.BigEndian.AppendUint32(buf, uint32(count))
}

func decodeStart(b []byte) (uuid.UUID, uint32, error) {
	if len(b) != 1+16+4 || b[0] != frameStart {
		return uuid.Nil, 0, fmt.Errorf("%w: want start frame", ErrUnexpectedFrame)
	}
	var runID uuid.UUID
	copy(runID[:], b[1:17])
	return runID, binary.BigEndian.Uint32(b[17:21]), nil
}

// entry frame: [kind:1][snappy(record)]
func encodeEntry(e traffic.Entry) ([]byte, error) {
	record, err := storage.EncodeEntry(e)
	if err != nil {
		return nil, err
	}
	return append([]byte{frameEntry}, storage.CompressRecord(record)...), nil
}

func decodeEntry(b []byte) (traffic.Entry, error) {
	record, err := storage.DecompressRecord(b[1:])
	if err != nil {
		return traffic.Entry{}, err
	}
	return storage.DecodeEntry(record)
}
