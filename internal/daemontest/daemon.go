// Package daemontest runs an in-process fake pigpio daemon that speaks the
// socket protocol, for tests.
package daemontest

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
)

// Version is what the fake daemon answers to PIGPV.
const Version = 79

// Handler answers one request. Returning false sends no reply at all.
type Handler func(req pigpio.Packet) (pigpio.Packet, bool)

// Result replies with a fixed result and no data.
func Result(result int32) Handler {
	return func(req pigpio.Packet) (pigpio.Packet, bool) {
		return reply(req, result), true
	}
}

// Data replies with data and its length as the result.
func Data(data []byte) Handler {
	return func(req pigpio.Packet) (pigpio.Packet, bool) {
		rx := reply(req, int32(len(data)))
		rx.Payload = append([]byte(nil), data...)
		return rx, true
	}
}

// Silent never replies.
func Silent() Handler {
	return func(req pigpio.Packet) (pigpio.Packet, bool) {
		return pigpio.Packet{}, false
	}
}

func reply(req pigpio.Packet, result int32) pigpio.Packet {
	return pigpio.Packet{Command: req.Command, P1: req.P1, P2: req.P2, P3: result}
}

// Daemon is a fake pigpiod listening on a loopback port.
type Daemon struct {
	ln net.Listener
	wg sync.WaitGroup

	mu            sync.Mutex
	handlers      map[pigpio.Command]Handler
	requests      []pigpio.Packet
	levels        uint32
	sequence      uint16
	nextHandle    map[pigpio.Command]int32
	conns         map[net.Conn]struct{}
	notifiers     map[net.Conn]int32
	subscriptions map[int32]uint32
	accepted      int
	closed        bool
}

// New starts a daemon that is shut down when tb finishes.
func New(tb testing.TB) *Daemon {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("unable to listen: %s", err)
	}

	d := &Daemon{
		ln:            ln,
		handlers:      map[pigpio.Command]Handler{},
		nextHandle:    map[pigpio.Command]int32{},
		conns:         map[net.Conn]struct{}{},
		notifiers:     map[net.Conn]int32{},
		subscriptions: map[int32]uint32{},
	}

	d.wg.Add(1)
	go d.accept()

	tb.Cleanup(d.Close)

	return d
}

// Addr returns the address clients should dial.
func (d *Daemon) Addr() string {
	return d.ln.Addr().String()
}

// Handle overrides the reply to cmd.
func (d *Daemon) Handle(cmd pigpio.Command, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[cmd] = h
}

// Requests returns every request received so far, in order.
func (d *Daemon) Requests() []pigpio.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]pigpio.Packet(nil), d.requests...)
}

// RequestsFor returns the requests received for cmd.
func (d *Daemon) RequestsFor(cmd pigpio.Command) []pigpio.Packet {
	var out []pigpio.Packet
	for _, req := range d.Requests() {
		if req.Command == cmd {
			out = append(out, req)
		}
	}

	return out
}

// SetLevels sets the bank 1 levels reported by BR1.
func (d *Daemon) SetLevels(levels uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.levels = levels
}

// PushLevels stores levels and sends a notification record with them to every
// notification connection.
func (d *Daemon) PushLevels(levels uint32) {
	d.mu.Lock()
	d.levels = levels
	d.sequence++
	rec := pigpio.NotificationRecord{Sequence: d.sequence, Tick: uint32(d.sequence) * 1000, Levels: levels}
	d.mu.Unlock()

	d.Push(rec)
}

// Push sends rec to every notification connection.
func (d *Daemon) Push(rec pigpio.NotificationRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := rec.Encode()
	for conn := range d.notifiers {
		_, _ = conn.Write(b)
	}
}

// Notifiers returns the number of connections that issued NOIB.
func (d *Daemon) Notifiers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.notifiers)
}

// Subscription returns the pin mask last set with NB for handle, and whether
// the handle is open.
func (d *Daemon) Subscription(handle int32) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mask, ok := d.subscriptions[handle]
	return mask, ok
}

// Accepted returns the number of connections accepted so far.
func (d *Daemon) Accepted() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.accepted
}

// DropNotifiers closes every notification connection.
func (d *Daemon) DropNotifiers() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for conn := range d.notifiers {
		_ = conn.Close()
		delete(d.notifiers, conn)
	}
}

// DropConnections closes every open connection.
func (d *Daemon) DropConnections() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for conn := range d.conns {
		_ = conn.Close()
	}
}

// Close stops the daemon and waits for its goroutines.
func (d *Daemon) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true

	_ = d.ln.Close()
	for conn := range d.conns {
		_ = conn.Close()
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Daemon) accept() {
	defer d.wg.Done()

	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			_ = conn.Close()
			return
		}
		d.conns[conn] = struct{}{}
		d.accepted++
		d.mu.Unlock()

		d.wg.Add(1)
		go d.serve(conn)
	}
}

func (d *Daemon) serve(conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.conns, conn)
		delete(d.notifiers, conn)
		d.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		req, err := readRequest(conn)
		if err != nil {
			return
		}

		d.mu.Lock()
		d.requests = append(d.requests, req)
		h, ok := d.handlers[req.Command]
		d.mu.Unlock()

		var rx pigpio.Packet
		send := true
		if ok {
			rx, send = h(req)
		} else {
			rx = d.builtin(conn, req)
		}

		if !send {
			continue
		}

		d.mu.Lock()
		_, err = conn.Write(rx.Encode())
		if err == nil && req.Command == pigpio.CmdNOIB && rx.P3 >= 0 {
			d.notifiers[conn] = rx.P3
			d.subscriptions[rx.P3] = 0
		}
		d.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// builtin answers the commands the daemon models itself.
func (d *Daemon) builtin(conn net.Conn, req pigpio.Packet) pigpio.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch req.Command {
	case pigpio.CmdPIGPV:
		return reply(req, Version)

	case pigpio.CmdBR1:
		return reply(req, int32(d.levels))

	case pigpio.CmdREAD:
		return reply(req, int32(d.levels>>uint(req.P1&31)&1))

	case pigpio.CmdNOIB:
		h := d.nextHandle[pigpio.CmdNOIB]
		d.nextHandle[pigpio.CmdNOIB]++
		return reply(req, h)

	case pigpio.CmdNB:
		if _, ok := d.subscriptions[req.P1]; !ok {
			return reply(req, int32(pigpio.CodeBadHandle))
		}
		d.subscriptions[req.P1] = uint32(req.P2)
		return reply(req, 0)

	case pigpio.CmdNC:
		if _, ok := d.subscriptions[req.P1]; !ok {
			return reply(req, int32(pigpio.CodeBadHandle))
		}
		delete(d.subscriptions, req.P1)
		return reply(req, 0)

	case pigpio.CmdI2CO, pigpio.CmdSPIO, pigpio.CmdSERO:
		h := d.nextHandle[req.Command]
		d.nextHandle[req.Command]++
		return reply(req, h)
	}

	return reply(req, 0)
}

func readRequest(rd io.Reader) (pigpio.Packet, error) {
	var hdr [pigpio.HeaderSize]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return pigpio.Packet{}, err
	}

	req, err := pigpio.Decode(hdr[:])
	if err != nil {
		return pigpio.Packet{}, err
	}

	if req.P3 <= 0 {
		return req, nil
	}

	if req.P3 > 1<<16 {
		return pigpio.Packet{}, errors.New("request payload too large")
	}

	req.Payload = make([]byte, req.P3)
	if _, err := io.ReadFull(rd, req.Payload); err != nil {
		return pigpio.Packet{}, err
	}

	return req, nil
}
