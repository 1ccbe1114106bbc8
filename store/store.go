package store

import (
	"errors"
	"fmt"
	"io"
)

// Kind describes how a preset drives its pin.
type Kind string

const (
	// KindOutput drives the pin as a digital output at Level.
	KindOutput Kind = "output"
	// KindPWM runs hardware PWM at Frequency with Duty (0 - 1).
	KindPWM Kind = "pwm"
	// KindServo emits servo pulses of PulseWidth microseconds.
	KindServo Kind = "servo"
)

// Preset is the state a pin is put into whenever presets are applied.
type Preset struct {
	Kind       Kind    `json:"kind"`
	Level      bool    `json:"level,omitempty"`
	Frequency  int     `json:"frequency,omitempty"`
	Duty       float64 `json:"duty,omitempty"`
	PulseWidth int     `json:"pulseWidth,omitempty"`
}

// Validate checks the fields the preset's kind relies on.
func (p Preset) Validate() error {
	switch p.Kind {
	case KindOutput:
		return nil
	case KindPWM:
		if p.Frequency < 0 {
			return fmt.Errorf("frequency %d is negative", p.Frequency)
		}
		if p.Duty < 0 || p.Duty > 1 {
			return fmt.Errorf("duty cycle %f not between 0 and 1", p.Duty)
		}
		return nil
	case KindServo:
		if p.PulseWidth < 0 {
			return fmt.Errorf("pulse width %d is negative", p.PulseWidth)
		}
		return nil
	}

	return fmt.Errorf("unknown preset kind %q", p.Kind)
}

// ErrNotFound is returned when no preset is stored for a pin.
var ErrNotFound = errors.New("preset does not exist")

// Store describes a persistent storage engine for pin presets.
type Store interface {
	Preset(pin int) (Preset, error)
	Presets() (map[int]Preset, error)
	PutPreset(pin int, p Preset) error
	DeletePreset(pin int) error

	io.Closer
}
