package pigpio

import "context"

// SetMode sets the function of a pin (MODES).
func (c *Client) SetMode(ctx context.Context, pin int, mode Mode) error {
	if err := validatePin("setMode", pin); err != nil {
		return err
	}

	if err := validateRange("setMode", "mode", int64(mode), int64(ModeInput), int64(ModeAlt3)); err != nil {
		return err
	}

	_, err := c.do(ctx, "setMode", noHandle, NewPacket(CmdMODES, int32(pin), int32(mode)))
	return err
}

// Mode returns the function of a pin (MODEG).
func (c *Client) Mode(ctx context.Context, pin int) (Mode, error) {
	if err := validatePin("mode", pin); err != nil {
		return 0, err
	}

	rx, err := c.do(ctx, "mode", noHandle, NewPacket(CmdMODEG, int32(pin), 0))
	if err != nil {
		return 0, err
	}

	return Mode(rx.Result()), nil
}

// SetPull sets the pull-up/down resistor of a pin (PUD).
func (c *Client) SetPull(ctx context.Context, pin int, pull Pull) error {
	if err := validatePin("setPull", pin); err != nil {
		return err
	}

	if err := validateRange("setPull", "pull", int64(pull), int64(PullOff), int64(PullUp)); err != nil {
		return err
	}

	_, err := c.do(ctx, "setPull", noHandle, NewPacket(CmdPUD, int32(pin), int32(pull)))
	return err
}

// Read returns the level of a pin (READ).
func (c *Client) Read(ctx context.Context, pin int) (PinState, error) {
	if err := validatePin("read", pin); err != nil {
		return Unknown, err
	}

	rx, err := c.do(ctx, "read", noHandle, NewPacket(CmdREAD, int32(pin), 0))
	if err != nil {
		return Unknown, err
	}

	return PinStateFrom(rx.Result()), nil
}

// Write sets the level of a pin (WRITE).
func (c *Client) Write(ctx context.Context, pin int, state PinState) error {
	if err := validatePin("write", pin); err != nil {
		return err
	}

	if state != Low && state != High {
		return &ValidationError{Op: "write", Param: "state", Value: int64(state), Min: int64(Low), Max: int64(High)}
	}

	_, err := c.do(ctx, "write", noHandle, NewPacket(CmdWRITE, int32(pin), int32(state)))
	return err
}

// ReadBank1 returns the levels of pins 0-31 as a bitmask (BR1).
func (c *Client) ReadBank1(ctx context.Context) (uint32, error) {
	rx, err := c.send(ctx, NewPacket(CmdBR1, 0, 0))
	if err != nil {
		return 0, err
	}

	return uint32(rx.Result()), nil
}

// SetGlitchFilter ignores level changes shorter than steady microseconds
// (FG).
func (c *Client) SetGlitchFilter(ctx context.Context, pin int, steady int) error {
	if err := validatePin("setGlitchFilter", pin); err != nil {
		return err
	}

	if err := validateRange("setGlitchFilter", "steady", int64(steady), 0, MaxGlitchFilter); err != nil {
		return err
	}

	_, err := c.do(ctx, "setGlitchFilter", noHandle, NewPacket(CmdFG, int32(pin), int32(steady)))
	return err
}

// SetNoiseFilter reports changes only after the level was stable for steady
// microseconds, then for active microseconds (FN).
func (c *Client) SetNoiseFilter(ctx context.Context, pin int, steady, active int) error {
	if err := validatePin("setNoiseFilter", pin); err != nil {
		return err
	}

	if err := validateRange("setNoiseFilter", "steady", int64(steady), 0, MaxNoiseSteady); err != nil {
		return err
	}

	if err := validateRange("setNoiseFilter", "active", int64(active), 0, MaxNoiseActive); err != nil {
		return err
	}

	tx := NewPacket(CmdFN, int32(pin), int32(steady)).WithUint32(uint32(active))
	_, err := c.do(ctx, "setNoiseFilter", noHandle, tx)
	return err
}
