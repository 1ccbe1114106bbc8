package pigpio

import "context"

// SerialOpen opens a serial device such as "/dev/ttyAMA0" and returns its
// handle (SERO).
func (c *Client) SerialOpen(ctx context.Context, device string, baud int, flags int) (int, error) {
	if device == "" {
		return 0, &ValidationError{Op: "serialOpen", Param: "device name length", Value: 0, Min: 1, Max: maxResponseData}
	}

	if err := validateMin("serialOpen", "baud", int64(baud), 0); err != nil {
		return 0, err
	}

	if err := validateMin("serialOpen", "flags", int64(flags), 0); err != nil {
		return 0, err
	}

	if err := c.beginOpen(); err != nil {
		return 0, err
	}
	defer c.opening.Done()

	tx := NewPacket(CmdSERO, int32(baud), int32(flags)).WithString(device)
	rx, err := c.do(ctx, "serialOpen", noHandle, tx)
	if err != nil {
		return 0, err
	}

	h := int(rx.Result())
	c.handles(KindSerial).add(h)

	return h, nil
}

// SerialClose closes a serial handle (SERC). The handle is no longer tracked
// afterwards, even if the daemon reports an error.
func (c *Client) SerialClose(ctx context.Context, handle int) error {
	if err := validateHandle("serialClose", handle); err != nil {
		return err
	}

	c.handles(KindSerial).remove(handle)

	_, err := c.do(ctx, "serialClose", handle, NewPacket(CmdSERC, int32(handle), 0))
	return err
}

// SerialWriteByte writes a single byte (SERWB).
func (c *Client) SerialWriteByte(ctx context.Context, handle int, b byte) error {
	_, err := c.handleOp(ctx, "serialWriteByte", handle, NewPacket(CmdSERWB, int32(handle), int32(b)))
	return err
}

// SerialReadByte reads a single byte (SERRB).
func (c *Client) SerialReadByte(ctx context.Context, handle int) (byte, error) {
	rx, err := c.handleOp(ctx, "serialReadByte", handle, NewPacket(CmdSERRB, int32(handle), 0))
	if err != nil {
		return 0, err
	}

	return byte(rx.Result()), nil
}

// SerialWrite writes data (SERW).
func (c *Client) SerialWrite(ctx context.Context, handle int, data []byte) error {
	_, err := c.handleOp(ctx, "serialWrite", handle, NewPacket(CmdSERW, int32(handle), 0).WithPayload(data))
	return err
}

// SerialRead reads up to count bytes (SERR).
func (c *Client) SerialRead(ctx context.Context, handle, count int) ([]byte, error) {
	if err := validateRange("serialRead", "count", int64(count), 0, maxResponseData); err != nil {
		return nil, err
	}

	return c.readOp(ctx, "serialRead", handle, NewPacket(CmdSERR, int32(handle), int32(count)))
}

// SerialAvailable returns the number of bytes waiting to be read (SERDA).
func (c *Client) SerialAvailable(ctx context.Context, handle int) (int, error) {
	rx, err := c.handleOp(ctx, "serialAvailable", handle, NewPacket(CmdSERDA, int32(handle), 0))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}

// SerialDrain reads and discards whatever is waiting, returning the number of
// bytes dropped.
func (c *Client) SerialDrain(ctx context.Context, handle int) (int, error) {
	n, err := c.SerialAvailable(ctx, handle)
	if err != nil || n == 0 {
		return 0, err
	}

	data, err := c.SerialRead(ctx, handle, n)
	if err != nil {
		return 0, err
	}

	return len(data), nil
}
