package pigpio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// MonitorState is the state of the notification session.
type MonitorState int

const (
	StateIdle MonitorState = iota
	StateConnecting
	StateSubscribed
	StateRetryWait
	StateStopped
)

func (s MonitorState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateRetryWait:
		return "RETRY_WAIT"
	case StateStopped:
		return "STOPPED"
	}

	return fmt.Sprintf("STATE(%d)", int(s))
}

const (
	DefaultMonitorReadTimeout = time.Second
	DefaultReconnectDelay     = 5 * time.Second
	DefaultDialTimeout        = 5 * time.Second
)

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Addr of the daemon. The monitor opens its own connection.
	Addr string

	DialTimeout    time.Duration
	CommandTimeout time.Duration

	// ReadTimeout bounds each read of the record stream (default 1s).
	ReadTimeout time.Duration

	// ReconnectDelay is the pause before reconnecting after a failure
	// (default 5s).
	ReconnectDelay time.Duration

	// Sender carries subscription updates (NB, NC) while records stream in
	// on the monitor connection.
	Sender Sender

	// Dispatch receives every state change event, in arrival order.
	Dispatch func(e StateChangeEvent)

	Logger  *logrus.Logger
	Metrics *Metrics
}

// Monitor watches pins 0-31 over a dedicated notification connection and
// turns level snapshots into state change events. The connection is opened
// when the first pin is enabled and re-established after any failure until
// Stop is called.
type Monitor struct {
	config MonitorConfig

	mu      sync.Mutex
	mask    uint32
	state   MonitorState
	session *session
	stopped bool

	// dispatching is set while the session goroutine runs listeners
	dispatching atomic.Bool
}

// session is one run of the background goroutine. It owns the monitored mask
// copy, the level snapshot and the connection.
type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan uint32
	done    chan struct{}
}

// push hands the latest mask to the session, replacing an unread one.
// Must be called with Monitor.mu held.
func (s *session) push(mask uint32) {
	for {
		select {
		case s.updates <- mask:
			return
		default:
		}

		select {
		case <-s.updates:
		default:
		}
	}
}

var (
	errSessionIdle    = errors.New("no pins monitored")
	errSessionStopped = errors.New("monitor stopped")
)

// NewMonitor creates an idle monitor.
func NewMonitor(config MonitorConfig) *Monitor {
	if config.DialTimeout <= 0 {
		config.DialTimeout = DefaultDialTimeout
	}

	if config.CommandTimeout <= 0 {
		config.CommandTimeout = DefaultCommandTimeout
	}

	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultMonitorReadTimeout
	}

	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = DefaultReconnectDelay
	}

	return &Monitor{config: config}
}

// State returns the current session state.
func (m *Monitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Mask returns the set of monitored pins as a bitmask.
func (m *Monitor) Mask() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mask
}

// Enable adds pin to the monitored set, starting a session if none is running.
func (m *Monitor) Enable(pin int) error {
	if err := validateUserPin("enable", pin); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrShutdown
	}

	m.mask |= 1 << uint(pin)

	if m.session == nil {
		m.start()
		return nil
	}

	m.session.push(m.mask)
	return nil
}

// Disable removes pin from the monitored set. When no pins remain the session
// unsubscribes and closes its connection.
func (m *Monitor) Disable(pin int) error {
	if err := validateUserPin("disable", pin); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.mask &^= 1 << uint(pin)
	if m.session != nil {
		m.session.push(m.mask)
	}

	return nil
}

// DisableAll clears the monitored set.
func (m *Monitor) DisableAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mask = 0
	if m.session != nil {
		m.session.push(0)
	}
}

// Stop ends the session for good and waits for it to finish. After Stop,
// Enable returns ErrShutdown. Called from a listener, Stop only cancels the
// session, which finishes once the listener returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	s := m.session
	if s == nil {
		m.state = StateStopped
	}
	m.mu.Unlock()

	if s == nil {
		return
	}

	s.cancel()
	if m.dispatching.Load() {
		return
	}
	<-s.done
}

// start launches a session. Must be called with mu held.
func (m *Monitor) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan uint32, 1),
		done:    make(chan struct{}),
	}

	m.session = s
	m.state = StateConnecting

	go m.run(s, m.mask)
}

func (m *Monitor) setState(state MonitorState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == state {
		return
	}

	if m.config.Logger != nil {
		m.config.Logger.WithField("state", state).Debugf("notification session %s -> %s", m.state, state)
	}
	m.state = state
}

// finish detaches s from the monitor, unless pins were enabled again while
// it was winding down, in which case it returns the mask to resubscribe with.
func (m *Monitor) finish(s *session, stopped bool) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !stopped && !m.stopped && m.mask != 0 {
		// drop any update already superseded by m.mask
		select {
		case <-s.updates:
		default:
		}
		return m.mask, false
	}

	m.session = nil
	if stopped || m.stopped {
		m.state = StateStopped
	} else {
		m.state = StateIdle
	}

	return 0, true
}

func (m *Monitor) run(s *session, mask uint32) {
	defer close(s.done)
	defer s.cancel()

	failures := 0
	for {
		m.setState(StateConnecting)

		err := m.subscribe(s, &mask, failures > 0)
		switch {
		case errors.Is(err, errSessionStopped):
			m.finish(s, true)
			return

		case errors.Is(err, errSessionIdle):
			next, done := m.finish(s, false)
			if done {
				return
			}
			mask = next
			failures = 0
			continue
		}

		failures++
		if m.config.Logger != nil {
			m.config.Logger.WithFields(logrus.Fields{
				"addr":    m.config.Addr,
				"attempt": failures,
			}).Warnf("notification session failed, reconnecting in %s: %s", m.config.ReconnectDelay, err)
		}

		m.setState(StateRetryWait)
		if err := m.wait(s, &mask); err != nil {
			if errors.Is(err, errSessionStopped) {
				m.finish(s, true)
				return
			}

			next, done := m.finish(s, false)
			if done {
				return
			}
			mask = next
		}
	}
}

// wait sleeps for the reconnect delay, following mask updates meanwhile.
func (m *Monitor) wait(s *session, mask *uint32) error {
	timer := time.NewTimer(m.config.ReconnectDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return errSessionStopped
		case next := <-s.updates:
			*mask = next
			if next == 0 {
				return errSessionIdle
			}
		case <-timer.C:
			return nil
		}
	}
}

// subscribe runs one connection of the session until it fails, is stopped or
// no pins remain.
func (m *Monitor) subscribe(s *session, mask *uint32, reconnect bool) error {
	dialCtx, cancel := context.WithTimeout(s.ctx, m.config.DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", m.config.Addr)
	if err != nil {
		if s.ctx.Err() != nil {
			return errSessionStopped
		}
		return &TransportError{Op: "dial", Addr: m.config.Addr, Err: err}
	}
	defer conn.Close()

	// stopping closes the connection so a pending read or write returns at once
	stopClose := context.AfterFunc(s.ctx, func() {
		_ = conn.Close()
	})
	defer stopClose()

	if m.config.Logger != nil {
		m.config.Logger.WithField("addr", m.config.Addr).Info("connected notification session")
	}

	snapshot, handle, err := m.handshake(s.ctx, conn)
	if err != nil {
		if s.ctx.Err() != nil {
			return errSessionStopped
		}
		return err
	}

	if err := m.command(s.ctx, CmdNB, handle, *mask); err != nil {
		if s.ctx.Err() != nil {
			return errSessionStopped
		}
		return err
	}

	if reconnect {
		m.config.Metrics.reconnected()
	}
	m.setState(StateSubscribed)

	records := make(chan NotificationRecord)
	errc := make(chan error, 1)
	quit := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.read(conn, records, errc, quit)
	}()

	defer wg.Wait()
	defer conn.Close()
	defer close(quit)

	for {
		select {
		case <-s.ctx.Done():
			return errSessionStopped

		case err := <-errc:
			if s.ctx.Err() != nil {
				return errSessionStopped
			}
			return &TransportError{Op: "notify", Addr: m.config.Addr, Err: err}

		case rec := <-records:
			snapshot = m.process(rec, snapshot, *mask)

		case next := <-s.updates:
			if next == *mask {
				continue
			}

			*mask = next
			if next == 0 {
				m.unsubscribe(s.ctx, handle)
				return errSessionIdle
			}

			if err := m.command(s.ctx, CmdNB, handle, next); err != nil {
				if s.ctx.Err() != nil {
					return errSessionStopped
				}
				return err
			}
		}
	}
}

// handshake seeds the level snapshot with BR1 and turns conn into a
// notification stream with NOIB.
func (m *Monitor) handshake(ctx context.Context, conn net.Conn) (uint32, int32, error) {
	ch := NewChannel(conn, ChannelConfig{
		Timeout: m.config.CommandTimeout,
		Logger:  m.config.Logger,
		Metrics: m.config.Metrics,
	})

	rx, err := ch.Send(ctx, NewPacket(CmdBR1, 0, 0))
	if err != nil {
		return 0, 0, err
	}
	snapshot := uint32(rx.Result())

	rx, err = ch.Send(ctx, NewPacket(CmdNOIB, 0, 0))
	if err != nil {
		return 0, 0, err
	}

	if !rx.Success() {
		return 0, 0, &ProtocolError{Op: "subscribe", Command: CmdNOIB, Handle: -1, Code: LookupError(rx.Result()), Result: rx.Result()}
	}

	if m.config.Logger != nil {
		m.config.Logger.WithField("handle", rx.Result()).Tracef("notification handle opened, levels %032b", snapshot)
	}

	return snapshot, rx.Result(), nil
}

func (m *Monitor) command(ctx context.Context, cmd Command, handle int32, mask uint32) error {
	if m.config.Sender == nil {
		return ErrNotConnected
	}

	tx := NewPacket(cmd, handle, int32(mask))
	rx, err := m.config.Sender.Send(ctx, tx)
	if err != nil {
		return err
	}

	if !rx.Success() {
		return &ProtocolError{Op: "subscribe", Command: cmd, Handle: int(handle), Code: LookupError(rx.Result()), Result: rx.Result()}
	}

	return nil
}

// unsubscribe clears the daemon side subscription. Failures are logged only;
// the connection is closed right after.
func (m *Monitor) unsubscribe(ctx context.Context, handle int32) {
	for _, cmd := range []Command{CmdNB, CmdNC} {
		if err := m.command(ctx, cmd, handle, 0); err != nil && m.config.Logger != nil {
			m.config.Logger.WithField("handle", handle).Warnf("unable to release notification handle with %s: %s", cmd, err)
		}
	}
}

// read decodes records from conn until it fails. Read timeouts only give the
// loop a chance to notice quit; a partially read record is kept.
func (m *Monitor) read(conn net.Conn, records chan<- NotificationRecord, errc chan<- error, quit <-chan struct{}) {
	buf := make([]byte, RecordSize)
	n := 0

	for {
		select {
		case <-quit:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(m.config.ReadTimeout)); err != nil {
			errc <- err
			return
		}

		k, err := conn.Read(buf[n:])
		n += k

		if n == RecordSize {
			rec, _ := DecodeRecord(buf)
			n = 0

			select {
			case records <- rec:
			case <-quit:
				return
			}
		}

		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if errors.Is(err, io.EOF) && n > 0 {
				err = &FramingError{Len: n, Reason: "connection closed mid record"}
			}

			errc <- err
			return
		}
	}
}

// process dispatches the edges between snapshot and rec and returns the new
// snapshot. Event records carry an event number instead of levels and leave
// the snapshot untouched.
func (m *Monitor) process(rec NotificationRecord, snapshot uint32, mask uint32) uint32 {
	if m.config.Logger != nil {
		m.config.Logger.Tracef("[NOTIFY] SEQ=%d FLAGS=%#x TICK=%d LEVELS=%032b", rec.Sequence, rec.Flags, rec.Tick, rec.Levels)
	}

	if rec.Flags&FlagEvent != 0 {
		return snapshot
	}

	events := diffLevels(snapshot, rec, mask)
	if len(events) > 0 && m.config.Dispatch != nil {
		m.dispatching.Store(true)
		for _, e := range events {
			m.config.Dispatch(e)
		}
		m.dispatching.Store(false)
	}

	return rec.Levels
}
