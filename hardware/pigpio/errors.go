package pigpio

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

var (
	// ErrNotConnected is returned by facade operations before Open succeeds.
	ErrNotConnected = errors.New("pigpio: not connected to daemon")

	// ErrShutdown is returned once a Client or Monitor has been closed.
	ErrShutdown = errors.New("pigpio: shut down")

	// ErrTimeout is wrapped by a TransportError when the daemon doesn't answer
	// a command in time.
	ErrTimeout = errors.New("pigpio: no response from daemon")

	// ErrChannelBroken is returned when a Channel is used after a fatal
	// transport failure.
	ErrChannelBroken = errors.New("pigpio: command channel is unusable")
)

// ValidationError reports a parameter rejected before any I/O took place.
type ValidationError struct {
	Op    string
	Param string
	Value int64
	Min   int64
	Max   int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pigpio: %s: invalid %s %d (supported %d-%d)", e.Op, e.Param, e.Value, e.Min, e.Max)
}

// FramingError reports a packet or record that can't be decoded.
type FramingError struct {
	Len    int
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("pigpio: malformed packet (%d bytes): %s", e.Len, e.Reason)
}

// TransportError reports a connect, read or write failure, or a response
// timeout. The channel that produced it must not be reused.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("pigpio: %s: %s", e.Op, e.Err)
	}

	return fmt.Sprintf("pigpio: %s %s: %s", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a missed response deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, ErrTimeout) {
		return true
	}

	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ProtocolError reports a negative result returned by the daemon.
type ProtocolError struct {
	Op      string
	Command Command
	Handle  int
	Code    ErrorCode
	Result  int32
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("pigpio: %s: %s failed", e.Op, e.Command)
	if e.Handle >= 0 {
		msg += " on handle " + strconv.Itoa(e.Handle)
	}

	if e.Code == CodeUnknown {
		return fmt.Sprintf("%s: unknown error (%d)", msg, e.Result)
	}

	return msg + ": " + e.Code.Error()
}

// Unwrap exposes the ErrorCode so callers can use errors.Is(err, CodeBadHandle).
func (e *ProtocolError) Unwrap() error {
	return e.Code
}

// IsProtocolError reports whether err carries a daemon error code, and
// returns it.
func IsProtocolError(err error) (ErrorCode, bool) {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr.Code, true
	}

	return CodeUnknown, false
}
