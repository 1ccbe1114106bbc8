package pigpio

import (
	"context"
	"strconv"
)

// Tick returns the daemon's microsecond tick, which wraps roughly every 71.6
// minutes (TICK).
func (c *Client) Tick(ctx context.Context) (uint32, error) {
	rx, err := c.send(ctx, NewPacket(CmdTICK, 0, 0))
	if err != nil {
		return 0, err
	}

	// the tick uses all 32 bits, so the result is never an error code
	return uint32(rx.Result()), nil
}

// HardwareRevision returns the board revision number (HWVER).
func (c *Client) HardwareRevision(ctx context.Context) (int, error) {
	rx, err := c.send(ctx, NewPacket(CmdHWVER, 0, 0))
	if err != nil {
		return 0, err
	}

	// 0 means the daemon couldn't determine the revision
	if rx.Result() <= 0 {
		return 0, c.protocolError("hardwareRevision", CmdHWVER, noHandle, rx)
	}

	return int(rx.Result()), nil
}

// HardwareRevisionString returns the board revision as the hex code used in
// /proc/cpuinfo, e.g. "a02082".
func (c *Client) HardwareRevisionString(ctx context.Context) (string, error) {
	rev, err := c.HardwareRevision(ctx)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(int64(rev), 16), nil
}

// DaemonVersion queries the daemon version (PIGPV).
func (c *Client) DaemonVersion(ctx context.Context) (int, error) {
	rx, err := c.do(ctx, "daemonVersion", noHandle, NewPacket(CmdPIGPV, 0, 0))
	if err != nil {
		return 0, err
	}

	return int(rx.Result()), nil
}

// DelayMicroseconds makes the daemon sleep before answering (MICS).
func (c *Client) DelayMicroseconds(ctx context.Context, micros int) error {
	if err := validateRange("delayMicroseconds", "delay", int64(micros), 0, MaxMicrosDelay); err != nil {
		return err
	}

	_, err := c.do(ctx, "delayMicroseconds", noHandle, NewPacket(CmdMICS, int32(micros), 0))
	return err
}

// DelayMilliseconds makes the daemon sleep before answering (MILS).
func (c *Client) DelayMilliseconds(ctx context.Context, millis int) error {
	if err := validateRange("delayMilliseconds", "delay", int64(millis), 0, MaxMillisDelay); err != nil {
		return err
	}

	_, err := c.do(ctx, "delayMilliseconds", noHandle, NewPacket(CmdMILS, int32(millis), 0))
	return err
}
