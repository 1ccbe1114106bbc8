package pigpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := NotificationRecord{Sequence: 0xfffe, Flags: FlagWatchdog | 17, Tick: 0xfedcba98, Levels: 0x80000001}

	b := rec.Encode()
	require.Len(t, b, RecordSize)
	assert.Equal(t, []byte{0xfe, 0xff, 0x31, 0x00, 0x98, 0xba, 0xdc, 0xfe, 0x01, 0x00, 0x00, 0x80}, b)

	got, err := DecodeRecord(b)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	pin, ok := got.Watchdog()
	assert.True(t, ok)
	assert.Equal(t, 17, pin)
	assert.False(t, got.KeepAlive())
}

func TestDecodeRecordShort(t *testing.T) {
	_, err := DecodeRecord(make([]byte, 11))

	var ferr *FramingError
	require.ErrorAs(t, err, &ferr)
}

func TestDiffLevelsSequence(t *testing.T) {
	monitored := uint32(0x3)

	first := NotificationRecord{Sequence: 1, Tick: 100, Levels: 0x1}
	events := diffLevels(0x0, first, monitored)
	require.Len(t, events, 1)
	assert.Equal(t, StateChangeEvent{Pin: 0, State: High, Sequence: 1, Tick: 100}, events[0])

	second := NotificationRecord{Sequence: 2, Tick: 200, Levels: 0x3}
	events = diffLevels(first.Levels, second, monitored)
	require.Len(t, events, 1)
	assert.Equal(t, StateChangeEvent{Pin: 1, State: High, Sequence: 2, Tick: 200}, events[0])
}

func TestDiffLevelsIgnoresUnmonitored(t *testing.T) {
	rec := NotificationRecord{Levels: 0xffff0000}
	assert.Empty(t, diffLevels(0, rec, 0x0000ffff))
}

func TestDiffLevelsAscendingOrder(t *testing.T) {
	rec := NotificationRecord{Levels: 0x80000004}
	events := diffLevels(0x00000001, rec, 0xffffffff)

	require.Len(t, events, 3)
	assert.Equal(t, 0, events[0].Pin)
	assert.Equal(t, Low, events[0].State)
	assert.Equal(t, 2, events[1].Pin)
	assert.Equal(t, High, events[1].State)
	assert.Equal(t, 31, events[2].Pin)
	assert.Equal(t, High, events[2].State)
}

func TestPinStateFrom(t *testing.T) {
	assert.Equal(t, Low, PinStateFrom(0))
	assert.Equal(t, High, PinStateFrom(1))
	assert.Equal(t, Unknown, PinStateFrom(-3))
	assert.Equal(t, "UNKNOWN", Unknown.String())
}

func TestModeNames(t *testing.T) {
	assert.Equal(t, "ALT4", Mode(3).String())
	assert.Equal(t, "ALT5", Mode(2).String())
	assert.Equal(t, "MODE(9)", Mode(9).String())
	assert.Equal(t, "UP", PullUp.String())
}
