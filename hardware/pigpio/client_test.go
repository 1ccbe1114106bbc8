package pigpio_test

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/internal/daemontest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openClient(t *testing.T, d *daemontest.Daemon, config pigpio.Config) *pigpio.Client {
	t.Helper()

	config.Addr = d.Addr()
	if config.Logger == nil {
		config.Logger = logrus.New()
		config.Logger.SetOutput(io.Discard)
		config.Logger.SetLevel(logrus.TraceLevel)
	}

	c := pigpio.New(config)
	version, err := c.Open(context.Background())
	require.NoError(t, err)
	require.Equal(t, daemontest.Version, version)

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func lastRequest(t *testing.T, d *daemontest.Daemon) pigpio.Packet {
	t.Helper()

	reqs := d.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8888", pigpio.Address("127.0.0.1", 8888))
	assert.Equal(t, "[::1]:8888", pigpio.Address("::1", 8888))
}

func TestClientNotOpened(t *testing.T) {
	c := pigpio.New(pigpio.Config{})

	_, err := c.Read(context.Background(), 4)
	assert.ErrorIs(t, err, pigpio.ErrNotConnected)

	_, err = c.AddPinListener(4, pigpio.ListenerFunc(func(pigpio.StateChangeEvent) {}))
	assert.ErrorIs(t, err, pigpio.ErrNotConnected)
}

func TestClientOpenFails(t *testing.T) {
	d := daemontest.New(t)
	addr := d.Addr()
	d.Close()

	c := pigpio.New(pigpio.Config{Addr: addr, DialTimeout: time.Second})
	_, err := c.Open(context.Background())

	var terr *pigpio.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "dial", terr.Op)
}

func TestI2CEndToEnd(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	h, err := c.I2COpen(ctx, 1, 0x20, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{h}, c.Handles(pigpio.KindI2C))

	open := lastRequest(t, d)
	assert.Equal(t, pigpio.CmdI2CO, open.Command)
	assert.Equal(t, int32(1), open.P1)
	assert.Equal(t, int32(0x20), open.P2)
	assert.Equal(t, le32(0), open.Payload)

	require.NoError(t, c.I2CWriteByteData(ctx, h, 0x10, 0xAB))

	write := lastRequest(t, d)
	assert.Equal(t, pigpio.CmdI2CWB, write.Command)
	assert.Equal(t, int32(h), write.P1)
	assert.Equal(t, int32(0x10), write.P2)
	assert.Equal(t, int32(4), write.P3)
	assert.Equal(t, []byte{0xAB, 0, 0, 0}, write.Payload)

	d.Handle(pigpio.CmdI2CC, daemontest.Result(int32(pigpio.CodeBadHandle)))

	err = c.I2CClose(ctx, h)
	assert.ErrorIs(t, err, pigpio.CodeBadHandle)
	assert.Empty(t, c.Handles(pigpio.KindI2C))
}

func TestOpenFailureNotTracked(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	d.Handle(pigpio.CmdI2CO, daemontest.Result(int32(pigpio.CodeI2COpenFailed)))

	_, err := c.I2COpen(ctx, 1, 0x20, 0)

	var perr *pigpio.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "i2cOpen", perr.Op)
	assert.Equal(t, pigpio.CodeI2COpenFailed, perr.Code)
	assert.Empty(t, c.Handles(pigpio.KindI2C))
}

func TestRequestLayouts(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	tests := []struct {
		name string
		call func() error
		want pigpio.Packet
	}{
		{
			name: "set mode",
			call: func() error { return c.SetMode(ctx, 4, pigpio.ModeOutput) },
			want: pigpio.Packet{Command: pigpio.CmdMODES, P1: 4, P2: 1},
		},
		{
			name: "get mode",
			call: func() error { _, err := c.Mode(ctx, 4); return err },
			want: pigpio.Packet{Command: pigpio.CmdMODEG, P1: 4},
		},
		{
			name: "set pull",
			call: func() error { return c.SetPull(ctx, 4, pigpio.PullUp) },
			want: pigpio.Packet{Command: pigpio.CmdPUD, P1: 4, P2: 2},
		},
		{
			name: "write",
			call: func() error { return c.Write(ctx, 17, pigpio.High) },
			want: pigpio.Packet{Command: pigpio.CmdWRITE, P1: 17, P2: 1},
		},
		{
			name: "glitch filter",
			call: func() error { return c.SetGlitchFilter(ctx, 4, 1000) },
			want: pigpio.Packet{Command: pigpio.CmdFG, P1: 4, P2: 1000},
		},
		{
			name: "noise filter",
			call: func() error { return c.SetNoiseFilter(ctx, 4, 100, 200) },
			want: pigpio.Packet{Command: pigpio.CmdFN, P1: 4, P2: 100, P3: 4, Payload: le32(200)},
		},
		{
			name: "pwm",
			call: func() error { return c.SetPWMDutyCycle(ctx, 4, 128) },
			want: pigpio.Packet{Command: pigpio.CmdPWM, P1: 4, P2: 128},
		},
		{
			name: "pwm range",
			call: func() error { _, err := c.SetPWMRange(ctx, 4, 1000); return err },
			want: pigpio.Packet{Command: pigpio.CmdPRS, P1: 4, P2: 1000},
		},
		{
			name: "pwm frequency",
			call: func() error { _, err := c.SetPWMFrequency(ctx, 4, 800); return err },
			want: pigpio.Packet{Command: pigpio.CmdPFS, P1: 4, P2: 800},
		},
		{
			name: "hardware pwm",
			call: func() error { return c.HardwarePWM(ctx, 18, 800, 250000) },
			want: pigpio.Packet{Command: pigpio.CmdHP, P1: 18, P2: 800, P3: 4, Payload: le32(250000)},
		},
		{
			name: "servo",
			call: func() error { return c.SetServoPulseWidth(ctx, 12, 1500) },
			want: pigpio.Packet{Command: pigpio.CmdSERVO, P1: 12, P2: 1500},
		},
		{
			name: "servo width",
			call: func() error { _, err := c.ServoPulseWidth(ctx, 12); return err },
			want: pigpio.Packet{Command: pigpio.CmdGPW, P1: 12},
		},
		{
			name: "micros",
			call: func() error { return c.DelayMicroseconds(ctx, 10) },
			want: pigpio.Packet{Command: pigpio.CmdMICS, P1: 10},
		},
		{
			name: "i2c word",
			call: func() error { return c.I2CWriteWordData(ctx, 2, 0x05, 0x1234) },
			want: pigpio.Packet{Command: pigpio.CmdI2CWW, P1: 2, P2: 5, P3: 4, Payload: le32(0x1234)},
		},
		{
			name: "i2c quick",
			call: func() error { return c.I2CWriteQuick(ctx, 2, 1) },
			want: pigpio.Packet{Command: pigpio.CmdI2CWQ, P1: 2, P2: 1},
		},
		{
			name: "i2c block",
			call: func() error { return c.I2CWriteI2CBlockData(ctx, 2, 0x40, []byte{1, 2, 3}) },
			want: pigpio.Packet{Command: pigpio.CmdI2CWI, P1: 2, P2: 0x40, P3: 3, Payload: []byte{1, 2, 3}},
		},
		{
			name: "i2c read block",
			call: func() error { _, err := c.I2CReadI2CBlockData(ctx, 2, 0x40, 6); return err },
			want: pigpio.Packet{Command: pigpio.CmdI2CRI, P1: 2, P2: 0x40, P3: 4, Payload: le32(6)},
		},
		{
			name: "spi open",
			call: func() error { _, err := c.SPIOpen(ctx, 1, 500000, 3); return err },
			want: pigpio.Packet{Command: pigpio.CmdSPIO, P1: 1, P2: 500000, P3: 4, Payload: le32(3)},
		},
		{
			name: "serial open",
			call: func() error { _, err := c.SerialOpen(ctx, "/dev/ttyAMA0", 115200, 0); return err },
			want: pigpio.Packet{Command: pigpio.CmdSERO, P1: 115200, P3: 12, Payload: []byte("/dev/ttyAMA0")},
		},
		{
			name: "serial byte",
			call: func() error { return c.SerialWriteByte(ctx, 1, 'x') },
			want: pigpio.Packet{Command: pigpio.CmdSERWB, P1: 1, P2: 'x'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			assert.Equal(t, tt.want, lastRequest(t, d))
		})
	}
}

func TestReadResults(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	d.SetLevels(1 << 4)

	state, err := c.Read(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, pigpio.High, state)

	state, err = c.Read(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, pigpio.Low, state)

	levels, err := c.ReadBank1(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<4), levels)

	d.Handle(pigpio.CmdTICK, daemontest.Result(-5))
	tick, err := c.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xfffffffb), tick)

	d.Handle(pigpio.CmdHWVER, daemontest.Result(0xa02082))
	rev, err := c.HardwareRevisionString(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a02082", rev)

	d.Handle(pigpio.CmdHWVER, daemontest.Result(0))
	_, err = c.HardwareRevision(ctx)
	var perr *pigpio.ProtocolError
	assert.ErrorAs(t, err, &perr)

	d.Handle(pigpio.CmdREAD, daemontest.Result(int32(pigpio.CodeBadGPIO)))
	_, err = c.Read(ctx, 4)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)
	assert.ErrorIs(t, err, pigpio.CodeBadGPIO)
}

func TestDataReplies(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	d.Handle(pigpio.CmdI2CRD, daemontest.Data([]byte{1, 2, 3}))
	data, err := c.I2CReadDevice(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	d.Handle(pigpio.CmdSPIX, func(req pigpio.Packet) (pigpio.Packet, bool) {
		rx := pigpio.Packet{Command: req.Command, P3: req.P3}
		for _, b := range req.Payload {
			rx.Payload = append(rx.Payload, ^b)
		}
		return rx, true
	})
	data, err = c.SPITransfer(ctx, 0, []byte{0x00, 0x0f})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xf0}, data)

	d.Handle(pigpio.CmdSERDA, daemontest.Result(3))
	d.Handle(pigpio.CmdSERR, daemontest.Data([]byte{9, 9, 9}))
	n, err := c.SerialDrain(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	serr := d.RequestsFor(pigpio.CmdSERR)
	require.Len(t, serr, 1)
	assert.Equal(t, int32(3), serr[0].P2)

	d.Handle(pigpio.CmdI2CRK, daemontest.Result(int32(pigpio.CodeI2CReadFailed)))
	_, err = c.I2CReadBlockData(ctx, 0, 0x10)
	assert.ErrorIs(t, err, pigpio.CodeI2CReadFailed)
}

func TestCommandTimeoutRedials(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{CommandTimeout: 50 * time.Millisecond})

	d.Handle(pigpio.CmdREAD, daemontest.Silent())

	_, err := c.Read(ctx, 4)

	var terr *pigpio.TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Timeout())
	assert.ErrorIs(t, err, pigpio.ErrTimeout)

	d.Handle(pigpio.CmdREAD, daemontest.Result(1))

	state, err := c.Read(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, pigpio.High, state)

	assert.Equal(t, 2, d.Accepted())
	assert.Len(t, d.RequestsFor(pigpio.CmdREAD), 2)
}

func TestDelayExtendsTimeout(t *testing.T) {
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{CommandTimeout: 100 * time.Millisecond})

	d.Handle(pigpio.CmdMILS, func(req pigpio.Packet) (pigpio.Packet, bool) {
		time.Sleep(time.Duration(req.P1) * time.Millisecond)
		return pigpio.Packet{Command: req.Command, P1: req.P1}, true
	})

	require.NoError(t, c.DelayMilliseconds(context.Background(), 150))
}

func TestCloseSweepsHandles(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)

	c := pigpio.New(pigpio.Config{Addr: d.Addr()})
	_, err := c.Open(ctx)
	require.NoError(t, err)

	i2c, err := c.I2COpen(ctx, 1, 0x20, 0)
	require.NoError(t, err)
	spi, err := c.SPIOpen(ctx, 0, 1000000, 0)
	require.NoError(t, err)
	serial, err := c.SerialOpen(ctx, "/dev/serial0", 9600, 0)
	require.NoError(t, err)

	// cleanup is best effort, so a failing close doesn't fail Close
	d.Handle(pigpio.CmdSPIC, daemontest.Result(int32(pigpio.CodeBadHandle)))

	require.NoError(t, c.Close())

	for cmd, h := range map[pigpio.Command]int{pigpio.CmdI2CC: i2c, pigpio.CmdSPIC: spi, pigpio.CmdSERC: serial} {
		reqs := d.RequestsFor(cmd)
		require.Len(t, reqs, 1, cmd.String())
		assert.Equal(t, int32(h), reqs[0].P1, cmd.String())
	}

	_, err = c.Read(ctx, 4)
	assert.ErrorIs(t, err, pigpio.ErrShutdown)

	_, err = c.Open(ctx)
	assert.ErrorIs(t, err, pigpio.ErrShutdown)

	assert.NoError(t, c.Close())
}

func TestCloseStopsAtTransportFailure(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{})

	_, err := c.I2COpen(ctx, 1, 0x20, 0)
	require.NoError(t, err)
	_, err = c.I2COpen(ctx, 1, 0x21, 0)
	require.NoError(t, err)
	_, err = c.SPIOpen(ctx, 0, 1000000, 0)
	require.NoError(t, err)

	d.Close()

	require.NoError(t, c.Close())

	// SPI is released first and fails on the dead connection; I2C is left alone
	assert.Empty(t, c.Handles(pigpio.KindSPI))
	assert.Len(t, c.Handles(pigpio.KindI2C), 2)
}

// blockingHandler holds its reply until release is called.
func blockingHandler(result int32) (h daemontest.Handler, entered <-chan struct{}, release func()) {
	enter := make(chan struct{})
	unblock := make(chan struct{})
	var enterOnce, releaseOnce sync.Once

	h = func(req pigpio.Packet) (pigpio.Packet, bool) {
		enterOnce.Do(func() { close(enter) })
		<-unblock
		return daemontest.Result(result)(req)
	}

	return h, enter, func() { releaseOnce.Do(func() { close(unblock) }) }
}

func TestCloseRejectsOpens(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{CommandTimeout: 5 * time.Second})

	_, err := c.SPIOpen(ctx, 0, 1000000, 0)
	require.NoError(t, err)

	h, entered, release := blockingHandler(0)
	defer release()
	d.Handle(pigpio.CmdSPIC, h)

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("Close never released the SPI handle")
	}

	_, err = c.I2COpen(ctx, 1, 0x20, 0)
	assert.ErrorIs(t, err, pigpio.ErrShutdown)
	_, err = c.SerialOpen(ctx, "/dev/serial0", 9600, 0)
	assert.ErrorIs(t, err, pigpio.ErrShutdown)
	assert.Empty(t, d.RequestsFor(pigpio.CmdI2CO))
	assert.Empty(t, d.RequestsFor(pigpio.CmdSERO))

	// a second Close while the first is sweeping returns at once
	assert.NoError(t, c.Close())

	release()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Close did not return")
	}
}

func TestCloseWaitsForOpens(t *testing.T) {
	ctx := context.Background()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{CommandTimeout: 5 * time.Second})

	h, entered, release := blockingHandler(7)
	defer release()
	d.Handle(pigpio.CmdI2CO, h)

	opened := make(chan error, 1)
	go func() {
		_, err := c.I2COpen(ctx, 1, 0x20, 0)
		opened <- err
	}()

	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("I2COpen never reached the daemon")
	}

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	require.Eventually(t, func() bool {
		_, err := c.Open(ctx)
		return errors.Is(err, pigpio.ErrShutdown)
	}, waitFor, tick)

	_, err := c.SPIOpen(ctx, 0, 1000000, 0)
	assert.ErrorIs(t, err, pigpio.ErrShutdown)

	release()

	require.NoError(t, <-opened)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Close did not return")
	}

	reqs := d.RequestsFor(pigpio.CmdI2CC)
	require.Len(t, reqs, 1)
	assert.Equal(t, int32(7), reqs[0].P1)
	assert.Empty(t, c.Handles(pigpio.KindI2C))
}

func TestCommandMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	d := daemontest.New(t)
	c := openClient(t, d, pigpio.Config{Registerer: reg})

	_, err := c.Read(ctx, 4)
	require.NoError(t, err)

	d.Handle(pigpio.CmdREAD, daemontest.Result(int32(pigpio.CodeBadGPIO)))
	_, err = c.Read(ctx, 4)
	require.Error(t, err)

	// PIGPV ok, READ ok, READ error
	count, err := testutil.GatherAndCount(reg, "pigpio_client_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = testutil.GatherAndCount(reg, "pigpio_client_command_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
