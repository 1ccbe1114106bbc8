package gpio

// Level describes the binary state of a GPIO pin: either LOW or HIGH.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}

	return "LOW"
}

type GPIO interface {
	// Write sets a pin to LOW or HIGH
	Write(pin int, level Level) error

	// Read returns the current level of a pin
	Read(pin int) (Level, error)

	// PWM sets the frequency and duty cycle (0 - 1) for a given pin.
	PWM(pin int, frequency int, duty float64) error
}

// Edge is a level change seen on a watched pin. Tick is the daemon's
// microsecond clock at the time of the change.
type Edge struct {
	Pin   int
	Level Level
	Tick  uint32
}

// Watcher describes GPIO that can report level changes as they happen.
type Watcher interface {
	// Watch calls fn for every level change of pin until stop is called.
	Watch(pin int, fn func(Edge)) (stop func(), err error)
}
