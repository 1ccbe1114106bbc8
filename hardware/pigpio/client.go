package pigpio

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DefaultAddr is where pigpiod listens unless told otherwise.
const DefaultAddr = "127.0.0.1:8888"

// noHandle marks a ProtocolError that isn't about an open resource.
const noHandle = -1

// Address joins a daemon host and port.
func Address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Config configures a Client. Zero values are replaced by defaults on Open.
type Config struct {
	Addr               string
	DialTimeout        time.Duration
	CommandTimeout     time.Duration
	MonitorReadTimeout time.Duration
	ReconnectDelay     time.Duration

	Logger *logrus.Logger

	// Registerer receives the client's collectors; nil disables metrics.
	Registerer prometheus.Registerer
}

type clientState int

const (
	stateUninitialized clientState = iota
	stateConnected
	stateClosing
	stateShutDown
)

// Client talks to a pigpio daemon over its socket interface. It holds one
// command connection, re-dialed lazily after a transport failure, and a
// Monitor with its own connection for pin notifications.
type Client struct {
	Config Config

	mu      sync.Mutex
	state   clientState
	channel *Channel
	version int

	// opening counts open calls in flight; Close waits for them before it
	// sweeps the handle sets
	opening sync.WaitGroup

	metrics   *Metrics
	monitor   *Monitor
	listeners *Registry

	i2c    *handleSet
	spi    *handleSet
	serial *handleSet
}

// New creates an unconnected client.
func New(config Config) *Client {
	return &Client{Config: config}
}

// Open connects to the daemon and checks the link with PIGPV, returning the
// daemon version.
func (c *Client) Open(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateConnected:
		return c.version, nil
	case stateClosing, stateShutDown:
		return 0, ErrShutdown
	}

	if c.Config.Addr == "" {
		c.Config.Addr = DefaultAddr
	}

	if c.Config.DialTimeout <= 0 {
		c.Config.DialTimeout = DefaultDialTimeout
	}

	if c.Config.CommandTimeout <= 0 {
		c.Config.CommandTimeout = DefaultCommandTimeout
	}

	if c.Config.MonitorReadTimeout <= 0 {
		c.Config.MonitorReadTimeout = DefaultMonitorReadTimeout
	}

	if c.Config.ReconnectDelay <= 0 {
		c.Config.ReconnectDelay = DefaultReconnectDelay
	}

	if c.metrics == nil {
		c.metrics = NewMetrics(c.Config.Registerer)
	}

	ch, err := c.dial(ctx)
	if err != nil {
		return 0, err
	}

	rx, err := ch.Send(ctx, NewPacket(CmdPIGPV, 0, 0))
	if err != nil {
		_ = ch.Close()
		return 0, err
	}

	if !rx.Success() {
		_ = ch.Close()
		return 0, c.protocolError("open", CmdPIGPV, noHandle, rx)
	}

	c.channel = ch
	c.version = int(rx.Result())
	c.state = stateConnected

	c.i2c = newHandleSet()
	c.spi = newHandleSet()
	c.serial = newHandleSet()

	c.monitor = NewMonitor(MonitorConfig{
		Addr:           c.Config.Addr,
		DialTimeout:    c.Config.DialTimeout,
		CommandTimeout: c.Config.CommandTimeout,
		ReadTimeout:    c.Config.MonitorReadTimeout,
		ReconnectDelay: c.Config.ReconnectDelay,
		Sender:         clientSender{c},
		Logger:         c.Config.Logger,
		Metrics:        c.metrics,
	})

	c.listeners = NewRegistry(RegistryConfig{
		Enable:  c.monitor.Enable,
		Disable: c.monitor.Disable,
		Logger:  c.Config.Logger,
		Metrics: c.metrics,
	})
	c.monitor.config.Dispatch = c.listeners.Dispatch

	if c.Config.Logger != nil {
		c.Config.Logger.WithField("addr", c.Config.Addr).Infof("connected to pigpio daemon version %d", c.version)
	}

	return c.version, nil
}

// Close releases every tracked SPI, serial and I2C handle, stops pin
// monitoring and closes the command connection. New opens are refused once
// Close starts; opens already in flight finish and are released too. Errors
// while releasing handles are logged and ignored, and the first transport
// failure ends the sweep. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	switch c.state {
	case stateClosing:
		c.mu.Unlock()
		return nil
	case stateUninitialized, stateShutDown:
		c.state = stateShutDown
		c.mu.Unlock()
		return nil
	}
	c.state = stateClosing
	c.mu.Unlock()

	c.opening.Wait()

	ctx := context.Background()
	sweeps := []struct {
		kind  HandleKind
		set   *handleSet
		close func(context.Context, int) error
	}{
		{KindSPI, c.spi, c.SPIClose},
		{KindSerial, c.serial, c.SerialClose},
		{KindI2C, c.i2c, c.I2CClose},
	}

	for _, sw := range sweeps {
		if err := c.sweep(ctx, sw.kind, sw.set, sw.close); err != nil {
			if c.Config.Logger != nil {
				c.Config.Logger.WithField("addr", c.Config.Addr).Warnf("daemon unreachable, leaving remaining handles open: %s", err)
			}
			break
		}
	}

	c.monitor.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = stateShutDown
	if c.channel == nil {
		return nil
	}

	err := c.channel.Close()
	c.channel = nil

	if c.Config.Logger != nil {
		c.Config.Logger.WithField("addr", c.Config.Addr).Info("disconnected from pigpio daemon")
	}

	return err
}

// sweep closes every handle in set. It stops at the first TransportError and
// returns it; other failures are logged.
func (c *Client) sweep(ctx context.Context, kind HandleKind, set *handleSet, close func(context.Context, int) error) error {
	for _, h := range set.snapshot() {
		err := close(ctx, h)
		if err == nil {
			continue
		}

		var terr *TransportError
		if errors.As(err, &terr) {
			return err
		}

		if c.Config.Logger != nil {
			c.Config.Logger.WithFields(logrus.Fields{
				"handle": h,
				"kind":   kind,
			}).Warnf("unable to close handle on shutdown: %s", err)
		}
	}

	return nil
}

// beginOpen registers an open call in flight. The caller must call
// c.opening.Done when it returns.
func (c *Client) beginOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateUninitialized:
		return ErrNotConnected
	case stateClosing, stateShutDown:
		return ErrShutdown
	}

	c.opening.Add(1)
	return nil
}

// Version returns the daemon version reported on Open.
func (c *Client) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// Handles returns the tracked open handles of one kind.
func (c *Client) Handles(kind HandleKind) []int {
	return c.handles(kind).snapshot()
}

func (c *Client) handles(kind HandleKind) *handleSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case KindI2C:
		return c.i2c
	case KindSPI:
		return c.spi
	case KindSerial:
		return c.serial
	}

	return nil
}

// Monitor returns the notification monitor, or nil before Open.
func (c *Client) Monitor() *Monitor {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.monitor
}

func (c *Client) dial(ctx context.Context) (*Channel, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.Config.DialTimeout)
	defer cancel()

	return DialChannel(dialCtx, c.Config.Addr, ChannelConfig{
		Timeout: c.Config.CommandTimeout,
		Logger:  c.Config.Logger,
		Metrics: c.metrics,
	})
}

// getChannel returns the command channel, dialing a new one if the last one
// broke.
func (c *Client) getChannel(ctx context.Context) (*Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateUninitialized:
		return nil, ErrNotConnected
	case stateShutDown:
		return nil, ErrShutdown
	}

	if c.channel != nil && !c.channel.Broken() {
		return c.channel, nil
	}

	if c.Config.Logger != nil {
		c.Config.Logger.WithField("addr", c.Config.Addr).Info("redialing command connection")
	}

	ch, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.channel = ch

	return ch, nil
}

// send performs one request on the command channel. A failed request is never
// resent; the broken channel is replaced on the next call.
func (c *Client) send(ctx context.Context, tx Packet) (Packet, error) {
	ch, err := c.getChannel(ctx)
	if err != nil {
		return Packet{}, err
	}

	return ch.Send(ctx, tx)
}

// do sends tx and turns a negative result into a ProtocolError.
func (c *Client) do(ctx context.Context, op string, handle int, tx Packet) (Packet, error) {
	rx, err := c.send(ctx, tx)
	if err != nil {
		return Packet{}, err
	}

	if !rx.Success() {
		return rx, c.protocolError(op, tx.Command, handle, rx)
	}

	return rx, nil
}

func (c *Client) protocolError(op string, cmd Command, handle int, rx Packet) error {
	return &ProtocolError{
		Op:      op,
		Command: cmd,
		Handle:  handle,
		Code:    LookupError(rx.Result()),
		Result:  rx.Result(),
	}
}

// clientSender routes monitor subscription commands over the command channel.
type clientSender struct {
	c *Client
}

func (s clientSender) Send(ctx context.Context, tx Packet) (Packet, error) {
	return s.c.send(ctx, tx)
}

func (c *Client) registry() (*Registry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateUninitialized:
		return nil, ErrNotConnected
	case stateShutDown:
		return nil, ErrShutdown
	}

	return c.listeners, nil
}

// AddListener registers l for state changes of every monitored pin. Global
// listeners don't enable monitoring by themselves.
func (c *Client) AddListener(l Listener) (remove func(), err error) {
	r, err := c.registry()
	if err != nil {
		return nil, err
	}

	return r.AddListener(l), nil
}

// RemoveListener unregisters a global listener.
func (c *Client) RemoveListener(l Listener) {
	if r, err := c.registry(); err == nil {
		r.RemoveListener(l)
	}
}

// RemoveAllListeners unregisters every global listener.
func (c *Client) RemoveAllListeners() {
	if r, err := c.registry(); err == nil {
		r.RemoveAllListeners()
	}
}

// AddPinListener registers l for state changes of pin and starts monitoring
// it.
func (c *Client) AddPinListener(pin int, l Listener) (remove func(), err error) {
	r, err := c.registry()
	if err != nil {
		return nil, err
	}

	return r.AddPinListener(pin, l)
}

// RemovePinListener unregisters a pin listener; the pin stops being monitored
// with its last listener.
func (c *Client) RemovePinListener(pin int, l Listener) {
	if r, err := c.registry(); err == nil {
		r.RemovePinListener(pin, l)
	}
}

// RemovePinListeners unregisters every listener of pin.
func (c *Client) RemovePinListeners(pin int) {
	if r, err := c.registry(); err == nil {
		r.RemovePinListeners(pin)
	}
}

// RemoveAllPinListeners unregisters every pin listener.
func (c *Client) RemoveAllPinListeners() {
	if r, err := c.registry(); err == nil {
		r.RemoveAllPinListeners()
	}
}
