package pigpio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// HeaderSize is the size of the fixed command/response header.
const HeaderSize = 16

// Packet is a single pigpio socket command or response. P3 is a C union on the
// daemon side: in a request it is the length of Payload, in a response it is
// the result (or negative error code).
type Packet struct {
	Command Command
	P1      int32
	P2      int32
	P3      int32
	Payload []byte
}

// NewPacket builds a request without payload.
func NewPacket(cmd Command, p1, p2 int32) Packet {
	return Packet{Command: cmd, P1: p1, P2: p2}
}

// WithPayload attaches raw bytes and sets P3 to their length.
func (p Packet) WithPayload(data []byte) Packet {
	if len(data) == 0 {
		p.P3 = 0
		p.Payload = nil
		return p
	}

	p.Payload = append([]byte(nil), data...)
	p.P3 = int32(len(p.Payload))
	return p
}

// WithUint32 attaches a 4 byte little-endian integer payload.
func (p Packet) WithUint32(v uint32) Packet {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)

	p.Payload = buf
	p.P3 = 4
	return p
}

// WithString attaches ASCII string bytes.
func (p Packet) WithString(s string) Packet {
	return p.WithPayload([]byte(s))
}

// Result returns P3 interpreted as a response result.
func (p Packet) Result() int32 {
	return p.P3
}

// Success reports whether the response result is non-negative.
func (p Packet) Success() bool {
	return p.P3 >= 0
}

// Data returns the response data, trimmed to the reported result length.
func (p Packet) Data() []byte {
	if p.P3 <= 0 {
		return nil
	}

	if int(p.P3) < len(p.Payload) {
		return p.Payload[:p.P3]
	}

	return p.Payload
}

// Encode returns the wire form: the little-endian header followed by the
// payload, with no padding.
func (p Packet) Encode() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))

	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.Command))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.P1))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.P2))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(p.P3))
	copy(buf[HeaderSize:], p.Payload)

	return buf
}

// Decode parses a packet from raw bytes. The payload length is the smaller of
// P3 and the bytes remaining after the header, and no payload is read when P3
// is negative.
func Decode(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, &FramingError{Len: len(data), Reason: fmt.Sprintf("need at least %d header bytes", HeaderSize)}
	}

	p := decodeHeader(data[:HeaderSize])

	remaining := len(data) - HeaderSize
	if p.P3 > 0 {
		n := int(p.P3)
		if n > remaining {
			n = remaining
		}

		if n > 0 {
			p.Payload = append([]byte(nil), data[HeaderSize:HeaderSize+n]...)
		}
	}

	return p, nil
}

func decodeHeader(hdr []byte) Packet {
	return Packet{
		Command: CommandFromCode(int32(binary.LittleEndian.Uint32(hdr[0:4]))),
		P1:      int32(binary.LittleEndian.Uint32(hdr[4:8])),
		P2:      int32(binary.LittleEndian.Uint32(hdr[8:12])),
		P3:      int32(binary.LittleEndian.Uint32(hdr[12:16])),
	}
}

// ReadPacket reads exactly one packet from rd. When withData is set and P3 is
// positive, P3 payload bytes (up to maxData) are read after the header.
func ReadPacket(rd io.Reader, withData bool, maxData int) (Packet, error) {
	var hdr [HeaderSize]byte
	if n, err := io.ReadFull(rd, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Packet{}, &FramingError{Len: n, Reason: "short header"}
		}
		return Packet{}, err
	}

	p := decodeHeader(hdr[:])
	if !withData || p.P3 <= 0 {
		return p, nil
	}

	n := int(p.P3)
	if maxData > 0 && n > maxData {
		return p, &FramingError{Len: HeaderSize + n, Reason: fmt.Sprintf("payload exceeds %d bytes", maxData)}
	}

	p.Payload = make([]byte, n)
	if _, err := io.ReadFull(rd, p.Payload); err != nil {
		return p, fmt.Errorf("couldn't read %d payload bytes: %w", n, err)
	}

	return p, nil
}

func (p Packet) String() string {
	if len(p.Payload) > 0 {
		return fmt.Sprintf("CMD=%s(%d) P1=%d P2=%d P3=%d PAYLOAD=[%s]", p.Command, int32(p.Command), p.P1, p.P2, p.P3, hex.EncodeToString(p.Payload))
	}

	return fmt.Sprintf("CMD=%s(%d) P1=%d P2=%d P3=%d", p.Command, int32(p.Command), p.P1, p.P2, p.P3)
}
