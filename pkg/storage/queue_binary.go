package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

// Binary queue file layout
//
//	header: [magic:4 "ICNQ"][version:2][runID:16][count:4]
//	frame:  [len:4][snappy(record):len][crc32(compressed):4]
//	record: [ts:8][class:4][seq:4][payload:8][originLen:2][origin][destLen:2][dest]
//
// All integers are big endian.
const (
	QueueMagic   = "ICNQ"
	QueueVersion = uint16(1)

	queueHeaderSize = 4 + 2 + 16 + 4
	recordFixedSize = 8 + 4 + 4 + 8
	maxRecordSize   = recordFixedSize + 4 + 2*math.MaxUint16
)

// maxFrameSize bounds the compressed frame length accepted on read.
var maxFrameSize = snappy.MaxEncodedLen(maxRecordSize)

// QueueHeader describes a binary queue file.
type QueueHeader struct {
	Version uint16
	RunID   uuid.UUID
	Count   uint32
}

// EncodeEntry encodes one entry as an uncompressed record.
func EncodeEntry(e traffic.Entry) ([]byte, error) {
	p := e.Package
	if len(p.Origin) > math.MaxUint16 || len(p.Destination) > math.MaxUint16 {
		return nil, errors.New("host name too long")
	}
	buf := make([]byte, 0, recordFixedSize+4+len(p.Origin)+len(p.Destination))
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.TimestampMs))
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.ClassID))
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.SequenceID))
	buf = binary.BigEndian.AppendUint64(buf, uint64(p.PayloadBytes))
	buf = appendString(buf, p.Origin)
	buf = appendString(buf, p.Destination)
	return buf, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// DecodeEntry decodes a record produced by EncodeEntry.
func DecodeEntry(b []byte) (traffic.Entry, error) {
	if len(b) < recordFixedSize {
		return traffic.Entry{}, fmt.Errorf("%w: record of %d bytes", ErrTruncated, len(b))
	}
	e := traffic.Entry{TimestampMs: int64(binary.BigEndian.Uint64(b[0:8]))}
	e.Package.ClassID = int(int32(binary.BigEndian.Uint32(b[8:12])))
	e.Package.SequenceID = int(int32(binary.BigEndian.Uint32(b[12:16])))
	e.Package.PayloadBytes = int(binary.BigEndian.Uint64(b[16:24]))

	rest := b[recordFixedSize:]
	var err error
	if e.Package.Origin, rest, err = readString(rest); err != nil {
		return traffic.Entry{}, err
	}
	if e.Package.Destination, rest, err = readString(rest); err != nil {
		return traffic.Entry{}, err
	}
	if len(rest) != 0 {
		return traffic.Entry{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedLine, len(rest))
	}
	return e, nil
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, fmt.Errorf("%w: string length", ErrTruncated)
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return "", nil, fmt.Errorf("%w: string of %d bytes", ErrTruncated, n)
	}
	return string(b[2 : 2+n]), b[2+n:], nil
}

// WriteQueueBinary writes the header and one compressed, checksummed frame
// per entry.
func WriteQueueBinary(w io.Writer, runID uuid.UUID, q traffic.Queue) error {
	if uint64(len(q)) > math.MaxUint32 {
		return NewError("write").Queue().Cause(fmt.Errorf("%d entries", len(q))).Err()
	}
	bw := bufio.NewWriter(w)

	header := make([]byte, 0, queueHeaderSize)
	header = append(header, QueueMagic...)
	header = binary.BigEndian.AppendUint16(header, QueueVersion)
	header = append(header, runID[:]...)
	header = binary.BigEndian.AppendUint32(header, uint32(len(q)))
	if _, err := bw.Write(header); err != nil {
		return err
	}

	for i, e := range q {
		record, err := EncodeEntry(e)
		if err != nil {
			return NewError("write").Queue().Line(i + 1).Cause(err).Err()
		}
		if err := writeFrame(bw, record); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeFrame(w io.Writer, record []byte) error {
	compressed := snappy.Encode(nil, record)
	frame := make([]byte, 0, 8+len(compressed))
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(compressed)))
	frame = append(frame, compressed...)
	frame = binary.BigEndian.AppendUint32(frame, crc32.ChecksumIEEE(compressed))
	_, err := w.Write(frame)
	return err
}

// ReadQueueBinary reads a binary queue file, verifying every frame.
func ReadQueueBinary(r io.Reader) (QueueHeader, traffic.Queue, error) {
	br := bufio.NewReader(r)

	header, err := readQueueHeader(br)
	if err != nil {
		return QueueHeader{}, nil, err
	}

	q := make(traffic.Queue, 0, min(header.Count, 1<<16))
	for i := 1; i <= int(header.Count); i++ {
		record, err := readFrame(br, i)
		if err != nil {
			return header, nil, err
		}
		e, err := DecodeEntry(record)
		if err != nil {
			return header, nil, NewError("read").Queue().Line(i).Cause(err).Err()
		}
		q = append(q, e)
	}
	return header, q, nil
}

func readQueueHeader(r io.Reader) (QueueHeader, error) {
	buf := make([]byte, queueHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return QueueHeader{}, NewError("read").Queue().Context("header").Cause(truncated(err)).Err()
	}
	if string(buf[:4]) != QueueMagic {
		return QueueHeader{}, NewError("read").Queue().Context("header").Cause(ErrBadMagic).Err()
	}

	h := QueueHeader{Version: binary.BigEndian.Uint16(buf[4:6])}
	if h.Version != QueueVersion {
		return QueueHeader{}, NewError("read").Queue().Context(fmt.Sprintf("version %d", h.Version)).
			Cause(ErrUnsupportedVersion).Err()
	}
	copy(h.RunID[:], buf[6:22])
	h.Count = binary.BigEndian.Uint32(buf[22:26])
	return h, nil
}

func readFrame(r io.Reader, entry int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, NewError("read").Queue().Line(entry).Cause(truncated(err)).Err()
	}
	frameLen := binary.BigEndian.Uint32(lenBuf[:])
	if uint64(frameLen) > uint64(maxFrameSize) {
		return nil, NewError("read").Queue().Line(entry).
			Cause(fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, frameLen, maxFrameSize)).Err()
	}
	compressed := make([]byte, frameLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, NewError("read").Queue().Line(entry).Cause(truncated(err)).Err()
	}
	var sumBuf [4]byte
	if _, err := io.ReadFull(r, sumBuf[:]); err != nil {
		return nil, NewError("read").Queue().Line(entry).Cause(truncated(err)).Err()
	}

	// Verify checksum (on compressed data)
	if crc32.ChecksumIEEE(compressed) != binary.BigEndian.Uint32(sumBuf[:]) {
		return nil, ChecksumError(entry)
	}
	record, err := DecompressRecord(compressed)
	if err != nil {
		return nil, NewError("read").Queue().Line(entry).Cause(err).Err()
	}
	return record, nil
}

// CompressRecord compresses an encoded record like a file frame does,
// for transports that ship entries one by one.
func CompressRecord(record []byte) []byte {
	return snappy.Encode(nil, record)
}

// DecompressRecord reverses CompressRecord. Records claiming a decoded size
// above the largest encodable entry are rejected before decoding.
func DecompressRecord(b []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailed, err)
	}
	if n > maxRecordSize {
		return nil, fmt.Errorf("%w: decoded length %d > %d", ErrFrameTooLarge, n, maxRecordSize)
	}
	record, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailed, err)
	}
	return record, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
