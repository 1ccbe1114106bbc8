package pigpio

import "context"

// SetPWMDutyCycle starts software PWM on a pin (PWM). duty runs from 0 (off)
// to the pin's range.
func (c *Client) SetPWMDutyCycle(ctx context.Context, pin int, duty int) error {
	if err := validateUserPin("setPWMDutyCycle", pin); err != nil {
		return err
	}

	if err := validateRange("setPWMDutyCycle", "duty cycle", int64(duty), 0, MaxDutyCycle); err != nil {
		return err
	}

	_, err := c.do(ctx, "setPWMDutyCycle", noHandle, NewPacket(CmdPWM, int32(pin), int32(duty)))
	return err
}

// PWMDutyCycle returns the PWM duty cycle of a pin (GDC).
func (c *Client) PWMDutyCycle(ctx context.Context, pin int) (int, error) {
	return c.pinQuery(ctx, "pwmDutyCycle", CmdGDC, pin)
}

// SetPWMRange sets the duty cycle range of a pin (PRS) and returns the real
// range the hardware uses at the current frequency.
func (c *Client) SetPWMRange(ctx context.Context, pin int, rng int) (int, error) {
	if err := validateUserPin("setPWMRange", pin); err != nil {
		return 0, err
	}

	if err := validateRange("setPWMRange", "range", int64(rng), MinDutyRange, MaxDutyRange); err != nil {
		return 0, err
	}

	rx, err := c.do(ctx, "setPWMRange", noHandle, NewPacket(CmdPRS, int32(pin), int32(rng)))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}

// PWMRange returns the duty cycle range of a pin (PRG).
func (c *Client) PWMRange(ctx context.Context, pin int) (int, error) {
	return c.pinQuery(ctx, "pwmRange", CmdPRG, pin)
}

// PWMRealRange returns the real range used for a pin (PRRG).
func (c *Client) PWMRealRange(ctx context.Context, pin int) (int, error) {
	return c.pinQuery(ctx, "pwmRealRange", CmdPRRG, pin)
}

// SetPWMFrequency sets the PWM frequency of a pin (PFS) and returns the
// closest frequency the daemon could select.
func (c *Client) SetPWMFrequency(ctx context.Context, pin int, frequency int) (int, error) {
	if err := validateUserPin("setPWMFrequency", pin); err != nil {
		return 0, err
	}

	if err := validateMin("setPWMFrequency", "frequency", int64(frequency), 0); err != nil {
		return 0, err
	}

	rx, err := c.do(ctx, "setPWMFrequency", noHandle, NewPacket(CmdPFS, int32(pin), int32(frequency)))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}

// PWMFrequency returns the PWM frequency of a pin (PFG).
func (c *Client) PWMFrequency(ctx context.Context, pin int) (int, error) {
	return c.pinQuery(ctx, "pwmFrequency", CmdPFG, pin)
}

// HardwarePWM starts hardware PWM on a pin (HP). duty runs from 0 to
// 1000000 (fully on); a frequency of 0 turns PWM off.
func (c *Client) HardwarePWM(ctx context.Context, pin int, frequency int, duty int) error {
	if err := validateUserPin("hardwarePWM", pin); err != nil {
		return err
	}

	if err := validateMin("hardwarePWM", "frequency", int64(frequency), 0); err != nil {
		return err
	}

	if err := validateRange("hardwarePWM", "duty cycle", int64(duty), 0, MaxHardwareDuty); err != nil {
		return err
	}

	tx := NewPacket(CmdHP, int32(pin), int32(frequency)).WithUint32(uint32(duty))
	_, err := c.do(ctx, "hardwarePWM", noHandle, tx)
	return err
}

// SetServoPulseWidth starts servo pulses on a pin (SERVO). width is 0 (off)
// or 500-2500 microseconds.
func (c *Client) SetServoPulseWidth(ctx context.Context, pin int, width int) error {
	if err := validateUserPin("setServoPulseWidth", pin); err != nil {
		return err
	}

	if err := validatePulseWidth("setServoPulseWidth", width); err != nil {
		return err
	}

	_, err := c.do(ctx, "setServoPulseWidth", noHandle, NewPacket(CmdSERVO, int32(pin), int32(width)))
	return err
}

// ServoPulseWidth returns the servo pulse width of a pin (GPW).
func (c *Client) ServoPulseWidth(ctx context.Context, pin int) (int, error) {
	return c.pinQuery(ctx, "servoPulseWidth", CmdGPW, pin)
}

func (c *Client) pinQuery(ctx context.Context, op string, cmd Command, pin int) (int, error) {
	if err := validateUserPin(op, pin); err != nil {
		return 0, err
	}

	rx, err := c.do(ctx, op, noHandle, NewPacket(cmd, int32(pin), 0))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}
