package pigpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCatalogComplete(t *testing.T) {
	names := map[string]int32{}

	for result := int32(-1); result >= -146; result-- {
		code := LookupError(result)
		require.Equal(t, ErrorCode(result), code, "result %d", result)

		name := code.Name()
		require.NotEqual(t, "UNKNOWN", name, "result %d", result)
		require.NotEmpty(t, code.Message(), "result %d", result)

		prev, dup := names[name]
		require.False(t, dup, "%s used by %d and %d", name, prev, result)
		names[name] = result
	}
}

func TestLookupErrorUnknown(t *testing.T) {
	for _, result := range []int32{-147, -1999, -4000, -9999, 0, 5} {
		code := LookupError(result)
		assert.Equal(t, CodeUnknown, code, "result %d", result)
		assert.Equal(t, "UNKNOWN", code.Name())
	}
}

func TestLookupErrorBands(t *testing.T) {
	assert.Equal(t, "PI_PIGIF_ERR_0", LookupError(-2000).Name())
	assert.Equal(t, "PI_PIGIF_ERR_99", LookupError(-2099).Name())
	assert.Equal(t, "PI_CUSTOM_ERR_0", LookupError(-3000).Name())
	assert.Equal(t, "PI_CUSTOM_ERR_999", LookupError(-3999).Name())
	assert.Equal(t, CodeUnknown, LookupError(-2100))
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "PI_BAD_GPIO", CodeBadGPIO.String())
	assert.Equal(t, "PI_BAD_GPIO (-3): GPIO not 0-53", CodeBadGPIO.Error())
}

func TestProtocolErrorUnwrapsCode(t *testing.T) {
	var err error = &ProtocolError{Op: "i2cClose", Command: CmdI2CC, Handle: 4, Code: CodeBadHandle, Result: -25}

	assert.True(t, errors.Is(err, CodeBadHandle))
	assert.False(t, errors.Is(err, CodeBadGPIO))
	assert.Contains(t, err.Error(), "on handle 4")

	code, ok := IsProtocolError(err)
	require.True(t, ok)
	assert.Equal(t, CodeBadHandle, code)
}

func TestCommandCatalog(t *testing.T) {
	tests := []struct {
		cmd  Command
		code int32
		name string
	}{
		{CmdMODES, 0, "MODES"},
		{CmdBR1, 10, "BR1"},
		{CmdTICK, 16, "TICK"},
		{CmdNB, 19, "NB"},
		{CmdNC, 21, "NC"},
		{CmdI2CO, 54, "I2CO"},
		{CmdI2CWB, 62, "I2CWB"},
		{CmdSPIX, 75, "SPIX"},
		{CmdSERO, 76, "SERO"},
		{CmdHP, 86, "HP"},
		{CmdFG, 97, "FG"},
		{CmdFN, 98, "FN"},
		{CmdNOIB, 99, "NOIB"},
		{CmdPROCU, 117, "PROCU"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.cmd.Code())
		assert.Equal(t, tt.cmd, CommandFromCode(tt.code))
		assert.Equal(t, tt.name, tt.cmd.String())
	}

	assert.Equal(t, CmdUnknown, CommandFromCode(118))
	assert.Equal(t, CmdUnknown, CommandFromCode(-7))
	assert.False(t, CmdUnknown.Known())
}

func TestCommandNamesDistinct(t *testing.T) {
	seen := map[string]bool{}
	for code := int32(0); code <= 117; code++ {
		name := CommandFromCode(code).String()
		require.NotEmpty(t, name, "code %d", code)
		require.False(t, seen[name], "%s repeated", name)
		seen[name] = true
	}
}
