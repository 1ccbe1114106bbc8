package pigpio

// Parameter limits enforced before a command is sent.
const (
	MinGPIO     = 0
	MaxGPIO     = 53
	MaxUserGPIO = 31

	MaxDutyCycle  = 40000
	MinDutyRange  = 25
	MaxDutyRange  = 40000
	MinPulseWidth = 500
	MaxPulseWidth = 2500

	MaxRegister   = 255
	MaxI2CAddress = 127
	MaxBlockLen   = 32

	MaxGlitchFilter = 300000
	MaxNoiseSteady  = 300000
	MaxNoiseActive  = 1000000

	MaxHardwareDuty = 1000000
	MaxMicrosDelay  = 1000000
	MaxMillisDelay  = 60000
)

func validateRange(op, param string, v, min, max int64) error {
	if v < min || v > max {
		return &ValidationError{Op: op, Param: param, Value: v, Min: min, Max: max}
	}

	return nil
}

func validateMin(op, param string, v, min int64) error {
	if v < min {
		return &ValidationError{Op: op, Param: param, Value: v, Min: min, Max: 1<<31 - 1}
	}

	return nil
}

func validatePin(op string, pin int) error {
	return validateRange(op, "pin", int64(pin), MinGPIO, MaxGPIO)
}

func validateUserPin(op string, pin int) error {
	return validateRange(op, "pin", int64(pin), MinGPIO, MaxUserGPIO)
}

func validateHandle(op string, handle int) error {
	return validateMin(op, "handle", int64(handle), 0)
}

func validateRegister(op string, reg int) error {
	return validateRange(op, "register", int64(reg), 0, MaxRegister)
}

func validateByte(op, param string, v int) error {
	return validateRange(op, param, int64(v), 0, 0xff)
}

func validateWord(op, param string, v int) error {
	return validateRange(op, param, int64(v), 0, 0xffff)
}

func validateBlock(op string, n int) error {
	return validateRange(op, "length", int64(n), 0, MaxBlockLen)
}

// validatePulseWidth accepts 0 (servo off) or MinPulseWidth..MaxPulseWidth.
func validatePulseWidth(op string, width int) error {
	if width == 0 {
		return nil
	}

	return validateRange(op, "pulse width", int64(width), MinPulseWidth, MaxPulseWidth)
}
