package hardware

import (
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/internal/daemontest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openClient(t *testing.T) (*pigpio.Client, *daemontest.Daemon) {
	t.Helper()

	d := daemontest.New(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := pigpio.New(pigpio.Config{Addr: d.Addr(), Logger: logger})
	_, err := client.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, d
}

func last(t *testing.T, d *daemontest.Daemon, cmd pigpio.Command) pigpio.Packet {
	t.Helper()

	reqs := d.RequestsFor(cmd)
	require.NotEmpty(t, reqs, "no %s request", cmd)

	return reqs[len(reqs)-1]
}

func TestI2CDevice(t *testing.T) {
	client, d := openClient(t)

	dev, err := OpenI2C(client, 1, 0x68)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, client.Handles(pigpio.KindI2C))

	open := last(t, d, pigpio.CmdI2CO)
	assert.Equal(t, int32(1), open.P1)
	assert.Equal(t, int32(0x68), open.P2)

	d.Handle(pigpio.CmdI2CRB, daemontest.Result(0x71))
	b, err := ReadRegisterByte(dev, 0x75)
	require.NoError(t, err)
	assert.Equal(t, byte(0x71), b)
	assert.Equal(t, int32(0x75), last(t, d, pigpio.CmdI2CRB).P2)

	d.Handle(pigpio.CmdI2CRI, daemontest.Data([]byte{0x01, 0x02}))
	v, err := ReadRegisterUint16(dev, 0x3b, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v)

	require.NoError(t, WriteRegisterByte(dev, 0x6b, 0x00))
	wb := last(t, d, pigpio.CmdI2CWB)
	assert.Equal(t, int32(0x6b), wb.P2)

	require.NoError(t, WriteRegisterUint16(dev, 0x10, 0xabcd, binary.LittleEndian))
	assert.Equal(t, []byte{0xcd, 0xab}, last(t, d, pigpio.CmdI2CWI).Payload)

	require.NoError(t, dev.Write([]byte{1, 2, 3}))
	assert.Equal(t, []byte{1, 2, 3}, last(t, d, pigpio.CmdI2CWD).Payload)

	require.NoError(t, dev.Close())
	assert.Empty(t, client.Handles(pigpio.KindI2C))
}

func TestSPIDevice(t *testing.T) {
	client, d := openClient(t)

	dev, err := OpenSPI(client, 0, 1000000, 0)
	require.NoError(t, err)

	d.Handle(pigpio.CmdSPIX, daemontest.Data([]byte{0xff, 0x10}))
	rx, err := dev.Transfer([]byte{0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x10}, rx)
	assert.Equal(t, []byte{0x80, 0x00}, last(t, d, pigpio.CmdSPIX).Payload)

	d.Handle(pigpio.CmdSPIW, daemontest.Result(2))
	require.NoError(t, dev.Write([]byte{0x01, 0x02}))

	d.Handle(pigpio.CmdSPIW, daemontest.Result(1))
	assert.Error(t, dev.Write([]byte{0x01, 0x02}))

	require.NoError(t, dev.Close())
	assert.Empty(t, client.Handles(pigpio.KindSPI))
}

func TestSerialDevice(t *testing.T) {
	client, d := openClient(t)

	dev, err := OpenSerial(client, "/dev/serial0", 9600)
	require.NoError(t, err)
	assert.Equal(t, []byte("/dev/serial0"), last(t, d, pigpio.CmdSERO).Payload)

	require.NoError(t, WriteString(dev, "AT\r\n"))
	assert.Equal(t, []byte("AT\r\n"), last(t, d, pigpio.CmdSERW).Payload)

	d.Handle(pigpio.CmdSERDA, daemontest.Result(4))
	n, err := dev.Available()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	d.Handle(pigpio.CmdSERR, daemontest.Data([]byte("OK\r\n")))
	s, err := ReadString(dev, n)
	require.NoError(t, err)
	assert.Equal(t, "OK\r\n", s)

	require.NoError(t, dev.Close())
}

func TestOpenI2CFailure(t *testing.T) {
	client, d := openClient(t)

	d.Handle(pigpio.CmdI2CO, daemontest.Result(int32(pigpio.CodeI2COpenFailed)))

	_, err := OpenI2C(client, 1, 0x20)
	require.Error(t, err)
	assert.ErrorIs(t, err, pigpio.CodeI2COpenFailed)
	assert.Empty(t, client.Handles(pigpio.KindI2C))
}
