package hardware

import (
	"context"
	"fmt"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
)

// pigpioI2C is an I2C device opened through the pigpio daemon.
type pigpioI2C struct {
	client *pigpio.Client
	handle int
}

// compile-time check for whether the pigpio devices satisfy their interfaces
var (
	_ I2C    = &pigpioI2C{}
	_ SPI    = &pigpioSPI{}
	_ Serial = &pigpioSerial{}
)

// OpenI2C opens the device at addr on bus.
func OpenI2C(client *pigpio.Client, bus, addr int) (I2C, error) {
	h, err := client.I2COpen(context.Background(), bus, addr, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open i2c device %#x on bus %d: %w", addr, bus, err)
	}

	return &pigpioI2C{client: client, handle: h}, nil
}

func (d *pigpioI2C) Read(n int) ([]byte, error) {
	return d.client.I2CReadDevice(context.Background(), d.handle, n)
}

func (d *pigpioI2C) Write(data []byte) error {
	return d.client.I2CWriteDevice(context.Background(), d.handle, data)
}

func (d *pigpioI2C) ReadRegister(reg int, n int) ([]byte, error) {
	if n == 1 {
		b, err := d.client.I2CReadByteData(context.Background(), d.handle, reg)
		if err != nil {
			return nil, err
		}
		return []byte{b}, nil
	}

	return d.client.I2CReadI2CBlockData(context.Background(), d.handle, reg, n)
}

func (d *pigpioI2C) WriteRegister(reg int, data []byte) error {
	if len(data) == 1 {
		return d.client.I2CWriteByteData(context.Background(), d.handle, reg, data[0])
	}

	return d.client.I2CWriteI2CBlockData(context.Background(), d.handle, reg, data)
}

func (d *pigpioI2C) Close() error {
	return d.client.I2CClose(context.Background(), d.handle)
}

// pigpioSPI is an SPI channel opened through the pigpio daemon.
type pigpioSPI struct {
	client *pigpio.Client
	handle int
}

// OpenSPI opens an SPI channel at baud bits per second.
func OpenSPI(client *pigpio.Client, channel, baud int, flags uint32) (SPI, error) {
	h, err := client.SPIOpen(context.Background(), channel, baud, flags)
	if err != nil {
		return nil, fmt.Errorf("unable to open spi channel %d: %w", channel, err)
	}

	return &pigpioSPI{client: client, handle: h}, nil
}

func (d *pigpioSPI) Read(n int) ([]byte, error) {
	return d.client.SPIRead(context.Background(), d.handle, n)
}

func (d *pigpioSPI) Write(data []byte) error {
	n, err := d.client.SPIWrite(context.Background(), d.handle, data)
	if err != nil {
		return err
	}

	if n != len(data) {
		return fmt.Errorf("spi write sent %d of %d bytes", n, len(data))
	}

	return nil
}

func (d *pigpioSPI) Transfer(data []byte) ([]byte, error) {
	return d.client.SPITransfer(context.Background(), d.handle, data)
}

func (d *pigpioSPI) Close() error {
	return d.client.SPIClose(context.Background(), d.handle)
}

// pigpioSerial is a serial port opened through the pigpio daemon.
type pigpioSerial struct {
	client *pigpio.Client
	handle int
}

// OpenSerial opens a serial device such as "/dev/serial0".
func OpenSerial(client *pigpio.Client, device string, baud int) (Serial, error) {
	h, err := client.SerialOpen(context.Background(), device, baud, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open serial device %q: %w", device, err)
	}

	return &pigpioSerial{client: client, handle: h}, nil
}

func (d *pigpioSerial) Read(n int) ([]byte, error) {
	return d.client.SerialRead(context.Background(), d.handle, n)
}

func (d *pigpioSerial) Write(data []byte) error {
	return d.client.SerialWrite(context.Background(), d.handle, data)
}

func (d *pigpioSerial) Available() (int, error) {
	return d.client.SerialAvailable(context.Background(), d.handle)
}

func (d *pigpioSerial) Close() error {
	return d.client.SerialClose(context.Background(), d.handle)
}
