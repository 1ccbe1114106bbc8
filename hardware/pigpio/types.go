package pigpio

import (
	"encoding/binary"
	"fmt"
)

// PinState is the level of a GPIO pin.
type PinState int

const (
	Low     PinState = 0
	High    PinState = 1
	Unknown PinState = -1
)

// PinStateFrom maps a raw level result to a PinState.
func PinStateFrom(v int32) PinState {
	switch v {
	case 0:
		return Low
	case 1:
		return High
	}

	return Unknown
}

func (s PinState) String() string {
	switch s {
	case Low:
		return "LOW"
	case High:
		return "HIGH"
	}

	return "UNKNOWN"
}

// Mode is a GPIO pin function as numbered by the daemon.
type Mode int

const (
	ModeInput  Mode = 0
	ModeOutput Mode = 1
	ModeAlt0   Mode = 4
	ModeAlt1   Mode = 5
	ModeAlt2   Mode = 6
	ModeAlt3   Mode = 7
	ModeAlt4   Mode = 3
	ModeAlt5   Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "INPUT"
	case ModeOutput:
		return "OUTPUT"
	case ModeAlt0:
		return "ALT0"
	case ModeAlt1:
		return "ALT1"
	case ModeAlt2:
		return "ALT2"
	case ModeAlt3:
		return "ALT3"
	case ModeAlt4:
		return "ALT4"
	case ModeAlt5:
		return "ALT5"
	}

	return fmt.Sprintf("MODE(%d)", int(m))
}

// Pull is the pull-up/down resistor setting of a pin.
type Pull int

const (
	PullOff  Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

func (p Pull) String() string {
	switch p {
	case PullOff:
		return "OFF"
	case PullDown:
		return "DOWN"
	case PullUp:
		return "UP"
	}

	return fmt.Sprintf("PULL(%d)", int(p))
}

// RecordSize is the size of one notification record on the monitor socket.
const RecordSize = 12

// Notification flag bits.
const (
	FlagEvent    uint16 = 1 << 7
	FlagAlive    uint16 = 1 << 6
	FlagWatchdog uint16 = 1 << 5
	flagGPIOMask uint16 = 0x1f
	maxBankPins         = 32
)

// NotificationRecord is one fixed size record of the notification stream.
// Tick wraps roughly every 71.6 minutes.
type NotificationRecord struct {
	Sequence uint16
	Flags    uint16
	Tick     uint32
	Levels   uint32
}

// DecodeRecord parses a 12 byte little-endian notification record.
func DecodeRecord(b []byte) (NotificationRecord, error) {
	if len(b) < RecordSize {
		return NotificationRecord{}, &FramingError{Len: len(b), Reason: fmt.Sprintf("notification record needs %d bytes", RecordSize)}
	}

	return NotificationRecord{
		Sequence: binary.LittleEndian.Uint16(b[0:2]),
		Flags:    binary.LittleEndian.Uint16(b[2:4]),
		Tick:     binary.LittleEndian.Uint32(b[4:8]),
		Levels:   binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// Encode returns the wire form of the record.
func (r NotificationRecord) Encode() []byte {
	b := make([]byte, RecordSize)
	binary.LittleEndian.PutUint16(b[0:2], r.Sequence)
	binary.LittleEndian.PutUint16(b[2:4], r.Flags)
	binary.LittleEndian.PutUint32(b[4:8], r.Tick)
	binary.LittleEndian.PutUint32(b[8:12], r.Levels)
	return b
}

// Watchdog reports whether the record is a watchdog timeout, and for which pin.
func (r NotificationRecord) Watchdog() (int, bool) {
	return int(r.Flags & flagGPIOMask), r.Flags&FlagWatchdog != 0
}

// KeepAlive reports whether the record is a keep-alive tick.
func (r NotificationRecord) KeepAlive() bool {
	return r.Flags&FlagAlive != 0
}

// StateChangeEvent is an edge on a monitored pin, derived by comparing two
// consecutive level snapshots.
type StateChangeEvent struct {
	Pin      int
	State    PinState
	Sequence uint16
	Flags    uint16
	Tick     uint32
}

func (e StateChangeEvent) String() string {
	return fmt.Sprintf("pin %d -> %s (seq=%d tick=%d)", e.Pin, e.State, e.Sequence, e.Tick)
}

// diffLevels compares prev and next for every pin set in monitored and returns
// one event per changed pin, in ascending pin order.
func diffLevels(prev uint32, rec NotificationRecord, monitored uint32) []StateChangeEvent {
	changed := (prev ^ rec.Levels) & monitored
	if changed == 0 {
		return nil
	}

	var events []StateChangeEvent
	for pin := 0; pin < maxBankPins; pin++ {
		bit := uint32(1) << uint(pin)
		if changed&bit == 0 {
			continue
		}

		state := Low
		if rec.Levels&bit != 0 {
			state = High
		}

		events = append(events, StateChangeEvent{
			Pin:      pin,
			State:    state,
			Sequence: rec.Sequence,
			Flags:    rec.Flags,
			Tick:     rec.Tick,
		})
	}

	return events
}
