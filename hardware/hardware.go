package hardware

import (
	"encoding/binary"
	"fmt"
)

// Reader reads up to n bytes from a peripheral.
type Reader interface {
	Read(n int) ([]byte, error)
}

// Writer writes bytes to a peripheral.
type Writer interface {
	Write(data []byte) error
}

// RegisterDevice describes a peripheral with addressable registers, such as
// most I2C chips.
type RegisterDevice interface {
	ReadRegister(reg int, n int) ([]byte, error)
	WriteRegister(reg int, data []byte) error
}

// I2C is a device on an I2C bus.
type I2C interface {
	Reader
	Writer
	RegisterDevice
	Close() error
}

// SPI is a device on an SPI channel. Transfer clocks data out while reading
// the same number of bytes back.
type SPI interface {
	Reader
	Writer
	Transfer(data []byte) ([]byte, error)
	Close() error
}

// Serial is a serial port.
type Serial interface {
	Reader
	Writer
	Available() (int, error)
	Close() error
}

// ErrShortRead is returned when a peripheral delivers fewer bytes than asked
// for.
type ErrShortRead struct {
	error
}

func (err ErrShortRead) Is(target error) bool {
	_, ok := target.(ErrShortRead)
	return ok
}

func shortRead(want, got int) error {
	return ErrShortRead{fmt.Errorf("wanted %d bytes, got %d", want, got)}
}

// ReadFull reads exactly len(buf) bytes, issuing as many reads as needed.
// A read returning no data ends with an ErrShortRead.
func ReadFull(r Reader, buf []byte) error {
	n := 0
	for n < len(buf) {
		data, err := r.Read(len(buf) - n)
		if err != nil {
			return fmt.Errorf("unable to read from device: %w", err)
		}

		if len(data) == 0 {
			return shortRead(len(buf), n)
		}

		n += copy(buf[n:], data)
	}

	return nil
}

// WriteString writes the bytes of s.
func WriteString(w Writer, s string) error {
	return w.Write([]byte(s))
}

// ReadString reads up to n bytes and returns them as a string.
func ReadString(r Reader, n int) (string, error) {
	data, err := r.Read(n)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// WriteByte writes a single byte.
func WriteByte(w Writer, b byte) error {
	return w.Write([]byte{b})
}

// ReadByte reads a single byte.
func ReadByte(r Reader) (byte, error) {
	var buf [1]byte
	if err := ReadFull(r, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// ReadRegisterByte reads one byte from register reg.
func ReadRegisterByte(dev RegisterDevice, reg int) (byte, error) {
	data, err := dev.ReadRegister(reg, 1)
	if err != nil {
		return 0, err
	}

	if len(data) < 1 {
		return 0, shortRead(1, len(data))
	}

	return data[0], nil
}

// WriteRegisterByte writes one byte to register reg.
func WriteRegisterByte(dev RegisterDevice, reg int, v byte) error {
	return dev.WriteRegister(reg, []byte{v})
}

// ReadRegisterUint16 reads a 16 bit value stored in two consecutive registers
// starting at reg.
func ReadRegisterUint16(dev RegisterDevice, reg int, order binary.ByteOrder) (uint16, error) {
	data, err := dev.ReadRegister(reg, 2)
	if err != nil {
		return 0, err
	}

	if len(data) < 2 {
		return 0, shortRead(2, len(data))
	}

	return order.Uint16(data), nil
}

// WriteRegisterUint16 writes a 16 bit value to two consecutive registers
// starting at reg.
func WriteRegisterUint16(dev RegisterDevice, reg int, v uint16, order binary.ByteOrder) error {
	buf := make([]byte, 2)
	order.PutUint16(buf, v)

	return dev.WriteRegister(reg, buf)
}
