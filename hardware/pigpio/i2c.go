package pigpio

import "context"

// I2COpen opens the device at addr on bus and returns its handle (I2CO).
func (c *Client) I2COpen(ctx context.Context, bus, addr int, flags uint32) (int, error) {
	if err := validateMin("i2cOpen", "bus", int64(bus), 0); err != nil {
		return 0, err
	}

	if err := validateRange("i2cOpen", "address", int64(addr), 0, MaxI2CAddress); err != nil {
		return 0, err
	}

	if err := c.beginOpen(); err != nil {
		return 0, err
	}
	defer c.opening.Done()

	tx := NewPacket(CmdI2CO, int32(bus), int32(addr)).WithUint32(flags)
	rx, err := c.do(ctx, "i2cOpen", noHandle, tx)
	if err != nil {
		return 0, err
	}

	h := int(rx.Result())
	c.handles(KindI2C).add(h)

	return h, nil
}

// I2CClose closes an I2C handle (I2CC). The handle is no longer tracked
// afterwards, even if the daemon reports an error.
func (c *Client) I2CClose(ctx context.Context, handle int) error {
	if err := validateHandle("i2cClose", handle); err != nil {
		return err
	}

	c.handles(KindI2C).remove(handle)

	_, err := c.do(ctx, "i2cClose", handle, NewPacket(CmdI2CC, int32(handle), 0))
	return err
}

// I2CWriteQuick sends a single bit as the read/write flag (I2CWQ).
func (c *Client) I2CWriteQuick(ctx context.Context, handle int, bit int) error {
	if err := validateRange("i2cWriteQuick", "bit", int64(bit), 0, 1); err != nil {
		return err
	}

	_, err := c.handleOp(ctx, "i2cWriteQuick", handle, NewPacket(CmdI2CWQ, int32(handle), int32(bit)))
	return err
}

// I2CWriteByte sends a single byte (I2CWS).
func (c *Client) I2CWriteByte(ctx context.Context, handle int, b byte) error {
	_, err := c.handleOp(ctx, "i2cWriteByte", handle, NewPacket(CmdI2CWS, int32(handle), int32(b)))
	return err
}

// I2CReadByte receives a single byte (I2CRS).
func (c *Client) I2CReadByte(ctx context.Context, handle int) (byte, error) {
	rx, err := c.handleOp(ctx, "i2cReadByte", handle, NewPacket(CmdI2CRS, int32(handle), 0))
	if err != nil {
		return 0, err
	}

	return byte(rx.Result()), nil
}

// I2CWriteByteData writes value to register reg (I2CWB).
func (c *Client) I2CWriteByteData(ctx context.Context, handle, reg int, value byte) error {
	if err := validateRegister("i2cWriteByteData", reg); err != nil {
		return err
	}

	tx := NewPacket(CmdI2CWB, int32(handle), int32(reg)).WithUint32(uint32(value))
	_, err := c.handleOp(ctx, "i2cWriteByteData", handle, tx)
	return err
}

// I2CWriteWordData writes a 16 bit value to register reg (I2CWW).
func (c *Client) I2CWriteWordData(ctx context.Context, handle, reg int, value uint16) error {
	if err := validateRegister("i2cWriteWordData", reg); err != nil {
		return err
	}

	tx := NewPacket(CmdI2CWW, int32(handle), int32(reg)).WithUint32(uint32(value))
	_, err := c.handleOp(ctx, "i2cWriteWordData", handle, tx)
	return err
}

// I2CReadByteData reads register reg (I2CRB).
func (c *Client) I2CReadByteData(ctx context.Context, handle, reg int) (byte, error) {
	if err := validateRegister("i2cReadByteData", reg); err != nil {
		return 0, err
	}

	rx, err := c.handleOp(ctx, "i2cReadByteData", handle, NewPacket(CmdI2CRB, int32(handle), int32(reg)))
	if err != nil {
		return 0, err
	}

	return byte(rx.Result()), nil
}

// I2CReadWordData reads a 16 bit value from register reg (I2CRW).
func (c *Client) I2CReadWordData(ctx context.Context, handle, reg int) (uint16, error) {
	if err := validateRegister("i2cReadWordData", reg); err != nil {
		return 0, err
	}

	rx, err := c.handleOp(ctx, "i2cReadWordData", handle, NewPacket(CmdI2CRW, int32(handle), int32(reg)))
	if err != nil {
		return 0, err
	}

	return uint16(rx.Result()), nil
}

// I2CProcessCall writes value to register reg and reads back 16 bits (I2CPC).
func (c *Client) I2CProcessCall(ctx context.Context, handle, reg int, value uint16) (uint16, error) {
	if err := validateRegister("i2cProcessCall", reg); err != nil {
		return 0, err
	}

	tx := NewPacket(CmdI2CPC, int32(handle), int32(reg)).WithUint32(uint32(value))
	rx, err := c.handleOp(ctx, "i2cProcessCall", handle, tx)
	if err != nil {
		return 0, err
	}

	return uint16(rx.Result()), nil
}

// I2CWriteBlockData writes up to 32 bytes to register reg (I2CWK).
func (c *Client) I2CWriteBlockData(ctx context.Context, handle, reg int, data []byte) error {
	if err := validateRegister("i2cWriteBlockData", reg); err != nil {
		return err
	}

	if err := validateBlock("i2cWriteBlockData", len(data)); err != nil {
		return err
	}

	tx := NewPacket(CmdI2CWK, int32(handle), int32(reg)).WithPayload(data)
	_, err := c.handleOp(ctx, "i2cWriteBlockData", handle, tx)
	return err
}

// I2CReadBlockData reads a block from register reg; the device decides the
// length (I2CRK).
func (c *Client) I2CReadBlockData(ctx context.Context, handle, reg int) ([]byte, error) {
	if err := validateRegister("i2cReadBlockData", reg); err != nil {
		return nil, err
	}

	return c.readOp(ctx, "i2cReadBlockData", handle, NewPacket(CmdI2CRK, int32(handle), int32(reg)))
}

// I2CBlockProcessCall writes a block to register reg and reads one back
// (I2CPK).
func (c *Client) I2CBlockProcessCall(ctx context.Context, handle, reg int, data []byte) ([]byte, error) {
	if err := validateRegister("i2cBlockProcessCall", reg); err != nil {
		return nil, err
	}

	if err := validateBlock("i2cBlockProcessCall", len(data)); err != nil {
		return nil, err
	}

	tx := NewPacket(CmdI2CPK, int32(handle), int32(reg)).WithPayload(data)
	return c.readOp(ctx, "i2cBlockProcessCall", handle, tx)
}

// I2CReadI2CBlockData reads count bytes starting at register reg (I2CRI).
func (c *Client) I2CReadI2CBlockData(ctx context.Context, handle, reg, count int) ([]byte, error) {
	if err := validateRegister("i2cReadI2CBlockData", reg); err != nil {
		return nil, err
	}

	if err := validateBlock("i2cReadI2CBlockData", count); err != nil {
		return nil, err
	}

	tx := NewPacket(CmdI2CRI, int32(handle), int32(reg)).WithUint32(uint32(count))
	return c.readOp(ctx, "i2cReadI2CBlockData", handle, tx)
}

// I2CWriteI2CBlockData writes up to 32 bytes starting at register reg
// (I2CWI).
func (c *Client) I2CWriteI2CBlockData(ctx context.Context, handle, reg int, data []byte) error {
	if err := validateRegister("i2cWriteI2CBlockData", reg); err != nil {
		return err
	}

	if err := validateBlock("i2cWriteI2CBlockData", len(data)); err != nil {
		return err
	}

	tx := NewPacket(CmdI2CWI, int32(handle), int32(reg)).WithPayload(data)
	_, err := c.handleOp(ctx, "i2cWriteI2CBlockData", handle, tx)
	return err
}

// I2CReadDevice reads count raw bytes from the device (I2CRD).
func (c *Client) I2CReadDevice(ctx context.Context, handle, count int) ([]byte, error) {
	if err := validateRange("i2cReadDevice", "count", int64(count), 0, maxResponseData); err != nil {
		return nil, err
	}

	return c.readOp(ctx, "i2cReadDevice", handle, NewPacket(CmdI2CRD, int32(handle), int32(count)))
}

// I2CWriteDevice writes raw bytes to the device (I2CWD).
func (c *Client) I2CWriteDevice(ctx context.Context, handle int, data []byte) error {
	tx := NewPacket(CmdI2CWD, int32(handle), 0).WithPayload(data)
	_, err := c.handleOp(ctx, "i2cWriteDevice", handle, tx)
	return err
}

// handleOp validates handle and runs tx against it.
func (c *Client) handleOp(ctx context.Context, op string, handle int, tx Packet) (Packet, error) {
	if err := validateHandle(op, handle); err != nil {
		return Packet{}, err
	}

	return c.do(ctx, op, handle, tx)
}

// readOp runs tx against handle and returns a copy of the reply data.
func (c *Client) readOp(ctx context.Context, op string, handle int, tx Packet) ([]byte, error) {
	rx, err := c.handleOp(ctx, op, handle, tx)
	if err != nil {
		return nil, err
	}

	return append([]byte{}, rx.Data()...), nil
}
