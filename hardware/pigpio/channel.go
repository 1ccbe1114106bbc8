package pigpio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultCommandTimeout bounds how long a command waits for its response.
const DefaultCommandTimeout = 500 * time.Millisecond

// maxResponseData caps the data a single reply may carry.
const maxResponseData = 1 << 16

// Sender sends one request and returns the daemon's response.
type Sender interface {
	Send(ctx context.Context, tx Packet) (Packet, error)
}

// ChannelConfig configures a Channel.
type ChannelConfig struct {
	// Timeout is the response deadline per command (default 500ms).
	Timeout time.Duration

	Logger  *logrus.Logger
	Metrics *Metrics
}

// Channel is a synchronous command connection to the daemon. The protocol has
// no correlation id, so exactly one request is in flight at a time; Send
// serializes callers. Any I/O failure is fatal and every later Send fails
// with ErrChannelBroken.
type Channel struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
	logger  *logrus.Logger
	metrics *Metrics

	mu  sync.Mutex
	err error
}

// compile-time check for whether Channel satisfies the Sender interface
var _ Sender = &Channel{}

// DialChannel dials into the pigpio socket interface (normally running on
// port 8888).
func DialChannel(ctx context.Context, addr string, config ChannelConfig) (*Channel, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Addr: addr, Err: err}
	}

	return NewChannel(conn, config), nil
}

// NewChannel wraps an established connection.
func NewChannel(conn net.Conn, config ChannelConfig) *Channel {
	if config.Timeout <= 0 {
		config.Timeout = DefaultCommandTimeout
	}

	return &Channel{
		conn:    conn,
		addr:    conn.RemoteAddr().String(),
		timeout: config.Timeout,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
}

// Addr returns the remote address of the channel.
func (c *Channel) Addr() string {
	return c.addr
}

// Broken reports whether the channel has failed or been closed.
func (c *Channel) Broken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err != nil
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a fatal error already closed the connection
	if c.err != nil {
		return nil
	}

	c.err = ErrChannelBroken
	return c.conn.Close()
}

// Send writes tx and waits for its response. A negative result is returned as
// a normal response; interpreting it is up to the caller.
func (c *Channel) Send(ctx context.Context, tx Packet) (Packet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return Packet{}, &TransportError{Op: tx.Command.String(), Addr: c.addr, Err: ErrChannelBroken}
	}

	// nothing was written, so the channel stays usable
	if err := ctx.Err(); err != nil {
		return Packet{}, &TransportError{Op: tx.Command.String(), Addr: c.addr, Err: err}
	}

	if c.logger != nil {
		c.logger.WithField("addr", c.addr).Tracef("[TX] -> %s", tx)
	}

	start := time.Now()
	rx, err := c.roundTrip(ctx, tx)
	took := time.Since(start)
	if err != nil {
		c.err = err
		_ = c.conn.Close()
		c.metrics.observeCommand(tx.Command, "transport", took)

		var ferr *FramingError
		if errors.As(err, &ferr) {
			return Packet{}, err
		}

		return Packet{}, &TransportError{Op: tx.Command.String(), Addr: c.addr, Err: err}
	}

	if c.logger != nil {
		c.logger.WithField("addr", c.addr).Tracef("[RX] <- %s", rx)
	}

	result := "ok"
	if !rx.Success() {
		result = "error"
	}
	c.metrics.observeCommand(tx.Command, result, took)

	return rx, nil
}

func (c *Channel) roundTrip(ctx context.Context, tx Packet) (Packet, error) {
	deadline := time.Now().Add(c.timeout + delayAllowance(tx))
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetDeadline(deadline); err != nil {
		return Packet{}, fmt.Errorf("unable to set socket deadline: %w", err)
	}

	// cancelling ctx expires the deadline so a blocked read returns at once
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := c.conn.Write(tx.Encode()); err != nil {
		if ctx.Err() != nil {
			return Packet{}, ctx.Err()
		}
		return Packet{}, fmt.Errorf("unable to write request to socket: %w", err)
	}

	rx, err := ReadPacket(c.conn, tx.Command.HasResponseData(), maxResponseData)
	if err != nil {
		if ctx.Err() != nil {
			return Packet{}, ctx.Err()
		}

		if errors.Is(err, os.ErrDeadlineExceeded) {
			return Packet{}, fmt.Errorf("%w in %s", ErrTimeout, c.timeout)
		}

		var ferr *FramingError
		if errors.As(err, &ferr) {
			return Packet{}, err
		}

		return Packet{}, fmt.Errorf("unable to read response from socket: %w", err)
	}

	if rx.Command != tx.Command {
		return Packet{}, &FramingError{Len: HeaderSize, Reason: fmt.Sprintf("response for %s while waiting for %s", rx.Command, tx.Command)}
	}

	return rx, nil
}

// delayAllowance extends the response deadline for commands that make the
// daemon sleep before answering.
func delayAllowance(tx Packet) time.Duration {
	switch tx.Command {
	case CmdMICS:
		return time.Duration(tx.P1) * time.Microsecond
	case CmdMILS:
		return time.Duration(tx.P1) * time.Millisecond
	}

	return 0
}
