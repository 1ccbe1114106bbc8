package pigpio

import "context"

// SPIOpen opens an SPI channel at baud bits per second and returns its handle
// (SPIO). flags selects mode, chip select polarity and the auxiliary SPI
// device as documented for spiOpen.
func (c *Client) SPIOpen(ctx context.Context, channel, baud int, flags uint32) (int, error) {
	if err := validateRange("spiOpen", "channel", int64(channel), 0, 2); err != nil {
		return 0, err
	}

	if err := validateMin("spiOpen", "baud", int64(baud), 0); err != nil {
		return 0, err
	}

	if err := c.beginOpen(); err != nil {
		return 0, err
	}
	defer c.opening.Done()

	tx := NewPacket(CmdSPIO, int32(channel), int32(baud)).WithUint32(flags)
	rx, err := c.do(ctx, "spiOpen", noHandle, tx)
	if err != nil {
		return 0, err
	}

	h := int(rx.Result())
	c.handles(KindSPI).add(h)

	return h, nil
}

// SPIClose closes an SPI handle (SPIC). The handle is no longer tracked
// afterwards, even if the daemon reports an error.
func (c *Client) SPIClose(ctx context.Context, handle int) error {
	if err := validateHandle("spiClose", handle); err != nil {
		return err
	}

	c.handles(KindSPI).remove(handle)

	_, err := c.do(ctx, "spiClose", handle, NewPacket(CmdSPIC, int32(handle), 0))
	return err
}

// SPIWrite writes data and returns the number of bytes sent (SPIW).
func (c *Client) SPIWrite(ctx context.Context, handle int, data []byte) (int, error) {
	rx, err := c.handleOp(ctx, "spiWrite", handle, NewPacket(CmdSPIW, int32(handle), 0).WithPayload(data))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}

// SPIRead reads count bytes (SPIR).
func (c *Client) SPIRead(ctx context.Context, handle, count int) ([]byte, error) {
	if err := validateRange("spiRead", "count", int64(count), 0, maxResponseData); err != nil {
		return nil, err
	}

	return c.readOp(ctx, "spiRead", handle, NewPacket(CmdSPIR, int32(handle), int32(count)))
}

// SPITransfer writes data while reading the same number of bytes (SPIX).
func (c *Client) SPITransfer(ctx context.Context, handle int, data []byte) ([]byte, error) {
	return c.readOp(ctx, "spiTransfer", handle, NewPacket(CmdSPIX, int32(handle), 0).WithPayload(data))
}
