package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kdbgo/qipc/errs"
	"github.com/kdbgo/qipc/frame"
	"github.com/kdbgo/qipc/internal/options"
	"github.com/kdbgo/qipc/value"
)

// Stream wraps one transport connection and its frame codec, offering the
// request/response API applications use (Connect/Accept, SendSync,
// SendAsync, Shutdown, Split).
//
// A Stream's background reader goroutine runs for the connection's
// lifetime, independent of any individual SendSync/SendAsync call: a
// cancelled SendSync abandons only its own wait, never the reader, so
// bytes already read off the wire are never lost.
type Stream struct {
	id     uuid.UUID
	conn   net.Conn
	cfg    Config
	logger *zap.Logger

	encoder *frame.Encoder
	decoder *frame.Decoder

	writeMu sync.Mutex
	syncMu  sync.Mutex

	respCh  chan frame.Decoded
	asyncCh chan frame.Decoded
	errCh   chan error

	closeOnce sync.Once
	closeErr  error
}

// Connect opens a transport connection to host:port over method,
// completes the credential handshake, and returns a ready Stream.
func Connect(method Method, host string, port int, cred Credential, opts ...Option) (*Stream, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	conn, err := dial(method, host, port, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("stream: dialing %s %s:%d: %w", method, host, port, err)
	}

	if _, err := clientHandshake(conn, cred, DefaultCapability); err != nil {
		conn.Close()
		return nil, err
	}

	return newStream(conn, cfg), nil
}

// Accept waits for one inbound connection on host:port over method,
// completes the server side of the handshake (validating against accounts
// if non-nil), and returns a ready Stream.
func Accept(method Method, host string, port int, accounts AccountFile, opts ...Option) (*Stream, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	ln, err := listen(method, host, port)
	if err != nil {
		return nil, fmt.Errorf("stream: listening %s %s:%d: %w", method, host, port, err)
	}
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("stream: accepting connection: %w", err)
	}

	if _, err := serverHandshake(conn, accounts, DefaultCapability); err != nil {
		conn.Close()
		return nil, err
	}

	return newStream(conn, cfg), nil
}

func newStream(conn net.Conn, cfg Config) *Stream {
	enc, _ := frame.NewEncoder(cfg.FrameOptions...)
	dec, _ := frame.NewDecoder(cfg.FrameOptions...)

	s := &Stream{
		id:      uuid.New(),
		conn:    conn,
		cfg:     cfg,
		logger:  cfg.Logger,
		encoder: enc,
		decoder: dec,
		respCh:  make(chan frame.Decoded),
		asyncCh: make(chan frame.Decoded, cfg.AsyncQueue),
		errCh:   make(chan error, 1),
	}

	s.logger.Debug("stream connected", zap.String("stream_id", s.id.String()), zap.String("remote", conn.RemoteAddr().String()))

	go s.readLoop()

	return s
}

// readLoop is the Stream's single background reader: it never stops on a
// caller's context cancellation, only on a transport error or Shutdown.
func (s *Stream) readLoop() {
	buf := make([]byte, 32*1024)

	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.decoder.Feed(buf[:n])

			for {
				decoded, decErr := s.decoder.Decode()
				if decErr == frame.ErrNeedMore {
					break
				}
				if decErr != nil {
					s.dispatchErr(decErr)
					return
				}

				s.dispatch(decoded)
			}
		}
		if err != nil {
			s.dispatchErr(wrapReadErr(err))
			return
		}
	}
}

// wrapReadErr classifies a transport read error as a graceful close
// (ErrConnectionClosed) versus any other I/O failure (ErrIO). A SendSync
// waiting on a response when the peer closes the connection must see
// ConnectionClosed, not a generic I/O error.
func wrapReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", errs.ErrConnectionClosed, err)
	}

	return fmt.Errorf("%w: %v", errs.ErrIO, err)
}

func (s *Stream) dispatch(decoded frame.Decoded) {
	switch decoded.Type {
	case frame.MessageResponse:
		s.respCh <- decoded
	default:
		select {
		case s.asyncCh <- decoded:
		default:
			s.logger.Warn("dropping async frame, queue full", zap.String("stream_id", s.id.String()))
		}
	}
}

func (s *Stream) dispatchErr(err error) {
	select {
	case s.errCh <- err:
	default:
	}
}

// SendSync sends v as a sync frame and waits for a response frame,
// returning its payload. At most one SendSync is ever in flight on a given
// Stream; concurrent callers block until the previous call completes.
func (s *Stream) SendSync(ctx context.Context, v value.V) (value.V, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if err := s.write(v, frame.MessageSync); err != nil {
		return value.V{}, err
	}

	select {
	case <-ctx.Done():
		return value.V{}, ctx.Err()
	case err := <-s.errCh:
		return value.V{}, err
	case resp := <-s.respCh:
		return resp.Value, nil
	}
}

// SendAsync sends v as an async frame; no response is awaited.
func (s *Stream) SendAsync(v value.V) error {
	return s.write(v, frame.MessageAsync)
}

// ReceiveAsync returns the next async frame delivered while no SendSync
// call was waiting for it, or ctx.Err()/the stream's transport error if
// neither is available before ctx is done.
func (s *Stream) ReceiveAsync(ctx context.Context) (value.V, error) {
	select {
	case <-ctx.Done():
		return value.V{}, ctx.Err()
	case err := <-s.errCh:
		return value.V{}, err
	case decoded := <-s.asyncCh:
		return decoded.Value, nil
	}
}

func (s *Stream) write(v value.V, msgType frame.MessageType) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	frameBytes, err := s.encoder.Encode(v, msgType)
	if err != nil {
		return err
	}

	if _, err := s.conn.Write(frameBytes); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}

// Shutdown half-closes the write side (if the transport supports it),
// then closes the connection, aggregating any errors from each step.
func (s *Stream) Shutdown() error {
	s.closeOnce.Do(func() {
		var err error

		if half, ok := s.conn.(interface{ CloseWrite() error }); ok {
			err = multierr.Append(err, half.CloseWrite())
		}
		err = multierr.Append(err, s.conn.Close())

		s.logger.Debug("stream shutdown", zap.String("stream_id", s.id.String()), zap.Error(err))
		s.closeErr = err
	})

	return s.closeErr
}

// ReadHalf is the read-only view of a split Stream.
type ReadHalf struct {
	stream *Stream
}

// Receive returns the next frame of any type, sync/response correlation
// left to the caller.
func (r *ReadHalf) Receive(ctx context.Context) (frame.Decoded, error) {
	select {
	case <-ctx.Done():
		return frame.Decoded{}, ctx.Err()
	case err := <-r.stream.errCh:
		return frame.Decoded{}, err
	case decoded := <-r.stream.respCh:
		return decoded, nil
	case decoded := <-r.stream.asyncCh:
		return decoded, nil
	}
}

// WriteHalf is the write-only view of a split Stream.
type WriteHalf struct {
	stream *Stream
}

// Send writes v as a frame of the given type without waiting for a
// response.
func (w *WriteHalf) Send(v value.V, msgType frame.MessageType) error {
	return w.stream.write(v, msgType)
}

// Split decomposes the Stream into independent read and write halves for
// full concurrent duplex use. After Split, callers are responsible for
// their own request/response correlation — SendSync must not be used
// concurrently with the returned halves.
func (s *Stream) Split() (*ReadHalf, *WriteHalf) {
	return &ReadHalf{stream: s}, &WriteHalf{stream: s}
}
