package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/traffic"
)

// Config holds the queue transfer address and deadlines.
type Config struct {
	Address     string        `yaml:"address" validate:"required"`
	SendTimeout time.Duration `yaml:"send_timeout" validate:"gte=0"`
	RecvTimeout time.Duration `yaml:"recv_timeout" validate:"gte=0"`
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		Address:     "tcp://127.0.0.1:9092",
		SendTimeout: 5 * time.Second,
		RecvTimeout: 30 * time.Second,
	}
}

// Sender pushes queues to a listening Receiver.
type Sender struct {
	sock   DialSocket
	logger logging.Logger
}

// NewSender dials cfg.Address with a push socket.
func NewSender(factory SocketFactory, cfg Config, logger logging.Logger) (*Sender, error) {
	sock, err := factory.NewPushSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create push socket: %w", err)
	}
	if cfg.SendTimeout > 0 {
		if err := sock.SetSendDeadline(cfg.SendTimeout); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set send deadline: %w", err)
		}
	}
	if err := sock.Dial(cfg.Address); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.Address, err)
	}

	return &Sender{
		sock:   sock,
		logger: logging.OrNop(logger).With(logging.Component("transport"), logging.String("address", cfg.Address)),
	}, nil
}

// Send ships q as one start frame, one frame per entry and an end frame.
func (s *Sender) Send(ctx context.Context, runID uuid.UUID, q traffic.Queue) error {
	timer := logging.StartTimer(s.logger, "send queue", logging.RunID(runID.String()), logging.Count(len(q)))

	if err := s.sock.Send(encodeStart(runID, len(q))); err != nil {
		timer.EndError(err)
		return fmt.Errorf("send start frame: %w", err)
	}
	for i, e := range q {
		if err := ctx.Err(); err != nil {
			timer.EndError(err)
			return err
		}
		frame, err := encodeEntry(e)
		if err != nil {
			timer.EndError(err)
			return fmt.Errorf("encode entry %d: %w", i+1, err)
		}
		if err := s.sock.Send(frame); err != nil {
			timer.EndError(err)
			return fmt.Errorf("send entry %d: %w", i+1, err)
		}
	}
	if err := s.sock.Send([]byte{frameEnd}); err != nil {
		timer.EndError(err)
		return fmt.Errorf("send end frame: %w", err)
	}
	timer.End()
	return nil
}

// Close closes the socket.
func (s *Sender) Close() error {
	return s.sock.Close()
}

// Receiver listens with a pull socket and collects queues.
type Receiver struct {
	sock   ListenSocket
	logger logging.Logger
}

// NewReceiver listens on cfg.Address.
func NewReceiver(factory SocketFactory, cfg Config, logger logging.Logger) (*Receiver, error) {
	sock, err := factory.NewPullSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create pull socket: %w", err)
	}
	if cfg.RecvTimeout > 0 {
		if err := sock.SetRecvDeadline(cfg.RecvTimeout); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set receive deadline: %w", err)
		}
	}
	if err := sock.Listen(cfg.Address); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	return &Receiver{
		sock:   sock,
		logger: logging.OrNop(logger).With(logging.Component("transport"), logging.String("address", cfg.Address)),
	}, nil
}

// Receive reads one transfer and returns its run id and queue. Frames are
// read until the end frame; the entry count must match the start frame.
func (r *Receiver) Receive(ctx context.Context) (uuid.UUID, traffic.Queue, error) {
	frame, err := r.sock.Recv()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("receive start frame: %w", err)
	}
	runID, count, err := decodeStart(frame)
	if err != nil {
		return uuid.Nil, nil, err
	}

	q := make(traffic.Queue, 0, min(count, 1<<16))
	for {
		if err := ctx.Err(); err != nil {
			return runID, nil, err
		}
		frame, err := r.sock.Recv()
		if err != nil {
			return runID, nil, fmt.Errorf("receive entry %d: %w", len(q)+1, err)
		}
		if len(frame) == 0 {
			return runID, nil, fmt.Errorf("%w: empty frame", ErrUnexpectedFrame)
		}

		switch frame[0] {
		case frameEntry:
			e, err := decodeEntry(frame)
			if err != nil {
				return runID, nil, fmt.Errorf("decode entry %d: %w", len(q)+1, err)
			}
			q = append(q, e)
		case frameEnd:
			if uint32(len(q)) != count {
				return runID, nil, fmt.Errorf("%w: announced %d, received %d", ErrCountMismatch, count, len(q))
			}
			r.logger.Info("queue received", logging.RunID(runID.String()), logging.Count(len(q)))
			return runID, q, nil
		default:
			return runID, nil, fmt.Errorf("%w: kind %q", ErrUnexpectedFrame, frame[0])
		}
	}
}

// Close closes the socket.
func (r *Receiver) Close() error {
	return r.sock.Close()
}
