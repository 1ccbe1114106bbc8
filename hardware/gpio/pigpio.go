package gpio

import (
	"context"
	"fmt"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
)

// Pigpio is used for controlling GPIO over the pigpio socket interface
type Pigpio struct {
	client *pigpio.Client
	owned  bool
}

// compile-time check for whether Pigpio satisfies the GPIO and Watcher interfaces
var (
	_ GPIO    = &Pigpio{}
	_ Watcher = &Pigpio{}
)

// DialPigpio dials into the pigpio socket interface (normally running on port 8888)
func DialPigpio(addr string) (*Pigpio, error) {
	client := pigpio.New(pigpio.Config{Addr: addr})
	if _, err := client.Open(context.Background()); err != nil {
		return nil, fmt.Errorf("couldn't dial into pigpio socket: %w", err)
	}

	return &Pigpio{client: client, owned: true}, nil
}

// NewPigpio uses an already opened client. Closing the returned Pigpio leaves
// the client open.
func NewPigpio(client *pigpio.Client) *Pigpio {
	return &Pigpio{client: client}
}

// Client returns the underlying pigpio client.
func (p *Pigpio) Client() *pigpio.Client {
	return p.client
}

// Close closes the underlying pigpio socket interface connection
func (p *Pigpio) Close() error {
	if p.client == nil {
		return fmt.Errorf("connection is already closed")
	}

	client := p.client
	p.client = nil

	if !p.owned {
		return nil
	}

	return client.Close()
}

// Write sets a GPIO pin to LOW or HIGH.
func (p *Pigpio) Write(pin int, level Level) error {
	if p.client == nil {
		return fmt.Errorf("not connected to pigpio socket interface")
	}

	state := pigpio.Low
	if level {
		state = pigpio.High
	}

	if err := p.client.Write(context.Background(), pin, state); err != nil {
		return fmt.Errorf("unable to write pin %d: %w", pin, err)
	}

	return nil
}

// Read returns the level of a GPIO pin.
func (p *Pigpio) Read(pin int) (Level, error) {
	if p.client == nil {
		return Low, fmt.Errorf("not connected to pigpio socket interface")
	}

	state, err := p.client.Read(context.Background(), pin)
	if err != nil {
		return Low, fmt.Errorf("unable to read pin %d: %w", pin, err)
	}

	return state == pigpio.High, nil
}

// PWM sets frequency and duty cycle for hardware PWM on the given pin.
func (p *Pigpio) PWM(pin int, frequency int, duty float64) error {
	if p.client == nil {
		return fmt.Errorf("not connected to pigpio socket interface")
	}

	if duty < 0 || duty > 1 {
		return fmt.Errorf("duty cycle %f not between 0 and 1", duty)
	}

	if err := p.client.HardwarePWM(context.Background(), pin, frequency, int(pigpio.MaxHardwareDuty*duty)); err != nil {
		return fmt.Errorf("unable to set hardware PWM on pin %d: %w", pin, err)
	}

	return nil
}

// Watch calls fn for every level change of pin (0-31).
func (p *Pigpio) Watch(pin int, fn func(Edge)) (func(), error) {
	if p.client == nil {
		return nil, fmt.Errorf("not connected to pigpio socket interface")
	}

	stop, err := p.client.AddPinListener(pin, pigpio.ListenerFunc(func(e pigpio.StateChangeEvent) {
		fn(Edge{Pin: e.Pin, Level: e.State == pigpio.High, Tick: e.Tick})
	}))
	if err != nil {
		return nil, fmt.Errorf("unable to watch pin %d: %w", pin, err)
	}

	return stop, nil
}
