package pigpio

import "strconv"

// Command is a pigpio daemon command code. The numeric values are part of the
// socket protocol and must match the daemon exactly.
type Command int32

// CmdUnknown is returned when decoding a command code this package doesn't
// know about. It is never sent.
const CmdUnknown Command = -1

// Command codes understood by the pigpio daemon.
const (
	CmdMODES Command = 0
	CmdMODEG Command = 1
	CmdPUD   Command = 2
	CmdREAD  Command = 3
	CmdWRITE Command = 4
	CmdPWM   Command = 5
	CmdPRS   Command = 6
	CmdPFS   Command = 7
	CmdSERVO Command = 8
	CmdWDOG  Command = 9
	CmdBR1   Command = 10
	CmdBR2   Command = 11
	CmdBC1   Command = 12
	CmdBC2   Command = 13
	CmdBS1   Command = 14
	CmdBS2   Command = 15
	CmdTICK  Command = 16
	CmdHWVER Command = 17
	CmdNO    Command = 18
	CmdNB    Command = 19
	CmdNP    Command = 20
	CmdNC    Command = 21
	CmdPRG   Command = 22
	CmdPFG   Command = 23
	CmdPRRG  Command = 24
	CmdHELP  Command = 25
	CmdPIGPV Command = 26
	CmdWVCLR Command = 27
	CmdWVAG  Command = 28
	CmdWVAS  Command = 29
	CmdWVGO  Command = 30
	CmdWVGOR Command = 31
	CmdWVBSY Command = 32
	CmdWVHLT Command = 33
	CmdWVSM  Command = 34
	CmdWVSP  Command = 35
	CmdWVSC  Command = 36
	CmdTRIG  Command = 37
	CmdPROC  Command = 38
	CmdPROCD Command = 39
	CmdPROCR Command = 40
	CmdPROCS Command = 41
	CmdSLRO  Command = 42
	CmdSLR   Command = 43
	CmdSLRC  Command = 44
	CmdPROCP Command = 45
	CmdMICS  Command = 46
	CmdMILS  Command = 47
	CmdPARSE Command = 48
	CmdWVCRE Command = 49
	CmdWVDEL Command = 50
	CmdWVTX  Command = 51
	CmdWVTXR Command = 52
	CmdWVNEW Command = 53
	CmdI2CO  Command = 54
	CmdI2CC  Command = 55
	CmdI2CRD Command = 56
	CmdI2CWD Command = 57
	CmdI2CWQ Command = 58
	CmdI2CRS Command = 59
	CmdI2CWS Command = 60
	CmdI2CRB Command = 61
	CmdI2CWB Command = 62
	CmdI2CRW Command = 63
	CmdI2CWW Command = 64
	CmdI2CRK Command = 65
	CmdI2CWK Command = 66
	CmdI2CRI Command = 67
	CmdI2CWI Command = 68
	CmdI2CPC Command = 69
	CmdI2CPK Command = 70
	CmdSPIO  Command = 71
	CmdSPIC  Command = 72
	CmdSPIR  Command = 73
	CmdSPIW  Command = 74
	CmdSPIX  Command = 75
	CmdSERO  Command = 76
	CmdSERC  Command = 77
	CmdSERRB Command = 78
	CmdSERWB Command = 79
	CmdSERR  Command = 80
	CmdSERW  Command = 81
	CmdSERDA Command = 82
	CmdGDC   Command = 83
	CmdGPW   Command = 84
	CmdHC    Command = 85
	CmdHP    Command = 86
	CmdCF1   Command = 87
	CmdCF2   Command = 88
	CmdBI2CC Command = 89
	CmdBI2CO Command = 90
	CmdBI2CZ Command = 91
	CmdI2CZ  Command = 92
	CmdWVCHA Command = 93
	CmdSLRI  Command = 94
	CmdCGI   Command = 95
	CmdCSI   Command = 96
	CmdFG    Command = 97
	CmdFN    Command = 98
	CmdNOIB  Command = 99
	CmdWVTXM Command = 100
	CmdWVTAT Command = 101
	CmdPADS  Command = 102
	CmdPADG  Command = 103
	CmdFO    Command = 104
	CmdFC    Command = 105
	CmdFR    Command = 106
	CmdFW    Command = 107
	CmdFS    Command = 108
	CmdFL    Command = 109
	CmdSHELL Command = 110
	CmdBSPIC Command = 111
	CmdBSPIO Command = 112
	CmdBSPIX Command = 113
	CmdBSCX  Command = 114
	CmdEVM   Command = 115
	CmdEVT   Command = 116
	CmdPROCU Command = 117
)

var commandNames = [...]string{
	CmdMODES: "MODES",
	CmdMODEG: "MODEG",
	CmdPUD:   "PUD",
	CmdREAD:  "READ",
	CmdWRITE: "WRITE",
	CmdPWM:   "PWM",
	CmdPRS:   "PRS",
	CmdPFS:   "PFS",
	CmdSERVO: "SERVO",
	CmdWDOG:  "WDOG",
	CmdBR1:   "BR1",
	CmdBR2:   "BR2",
	CmdBC1:   "BC1",
	CmdBC2:   "BC2",
	CmdBS1:   "BS1",
	CmdBS2:   "BS2",
	CmdTICK:  "TICK",
	CmdHWVER: "HWVER",
	CmdNO:    "NO",
	CmdNB:    "NB",
	CmdNP:    "NP",
	CmdNC:    "NC",
	CmdPRG:   "PRG",
	CmdPFG:   "PFG",
	CmdPRRG:  "PRRG",
	CmdHELP:  "HELP",
	CmdPIGPV: "PIGPV",
	CmdWVCLR: "WVCLR",
	CmdWVAG:  "WVAG",
	CmdWVAS:  "WVAS",
	CmdWVGO:  "WVGO",
	CmdWVGOR: "WVGOR",
	CmdWVBSY: "WVBSY",
	CmdWVHLT: "WVHLT",
	CmdWVSM:  "WVSM",
	CmdWVSP:  "WVSP",
	CmdWVSC:  "WVSC",
	CmdTRIG:  "TRIG",
	CmdPROC:  "PROC",
	CmdPROCD: "PROCD",
	CmdPROCR: "PROCR",
	CmdPROCS: "PROCS",
	CmdSLRO:  "SLRO",
	CmdSLR:   "SLR",
	CmdSLRC:  "SLRC",
	CmdPROCP: "PROCP",
	CmdMICS:  "MICS",
	CmdMILS:  "MILS",
	CmdPARSE: "PARSE",
	CmdWVCRE: "WVCRE",
	CmdWVDEL: "WVDEL",
	CmdWVTX:  "WVTX",
	CmdWVTXR: "WVTXR",
	CmdWVNEW: "WVNEW",
	CmdI2CO:  "I2CO",
	CmdI2CC:  "I2CC",
	CmdI2CRD: "I2CRD",
	CmdI2CWD: "I2CWD",
	CmdI2CWQ: "I2CWQ",
	CmdI2CRS: "I2CRS",
	CmdI2CWS: "I2CWS",
	CmdI2CRB: "I2CRB",
	CmdI2CWB: "I2CWB",
	CmdI2CRW: "I2CRW",
	CmdI2CWW: "I2CWW",
	CmdI2CRK: "I2CRK",
	CmdI2CWK: "I2CWK",
	CmdI2CRI: "I2CRI",
	CmdI2CWI: "I2CWI",
	CmdI2CPC: "I2CPC",
	CmdI2CPK: "I2CPK",
	CmdSPIO:  "SPIO",
	CmdSPIC:  "SPIC",
	CmdSPIR:  "SPIR",
	CmdSPIW:  "SPIW",
	CmdSPIX:  "SPIX",
	CmdSERO:  "SERO",
	CmdSERC:  "SERC",
	CmdSERRB: "SERRB",
	CmdSERWB: "SERWB",
	CmdSERR:  "SERR",
	CmdSERW:  "SERW",
	CmdSERDA: "SERDA",
	CmdGDC:   "GDC",
	CmdGPW:   "GPW",
	CmdHC:    "HC",
	CmdHP:    "HP",
	CmdCF1:   "CF1",
	CmdCF2:   "CF2",
	CmdBI2CC: "BI2CC",
	CmdBI2CO: "BI2CO",
	CmdBI2CZ: "BI2CZ",
	CmdI2CZ:  "I2CZ",
	CmdWVCHA: "WVCHA",
	CmdSLRI:  "SLRI",
	CmdCGI:   "CGI",
	CmdCSI:   "CSI",
	CmdFG:    "FG",
	CmdFN:    "FN",
	CmdNOIB:  "NOIB",
	CmdWVTXM: "WVTXM",
	CmdWVTAT: "WVTAT",
	CmdPADS:  "PADS",
	CmdPADG:  "PADG",
	CmdFO:    "FO",
	CmdFC:    "FC",
	CmdFR:    "FR",
	CmdFW:    "FW",
	CmdFS:    "FS",
	CmdFL:    "FL",
	CmdSHELL: "SHELL",
	CmdBSPIC: "BSPIC",
	CmdBSPIO: "BSPIO",
	CmdBSPIX: "BSPIX",
	CmdBSCX:  "BSCX",
	CmdEVM:   "EVM",
	CmdEVT:   "EVT",
	CmdPROCU: "PROCU",
}

// CommandFromCode maps a wire code to its Command. Codes outside the catalog
// map to CmdUnknown.
func CommandFromCode(code int32) Command {
	if code < 0 || int(code) >= len(commandNames) {
		return CmdUnknown
	}

	return Command(code)
}

// Code returns the wire code of the command.
func (c Command) Code() int32 {
	return int32(c)
}

// Known reports whether c is part of the catalog.
func (c Command) Known() bool {
	return c >= 0 && int(c) < len(commandNames)
}

func (c Command) String() string {
	if !c.Known() {
		return "UNKNOWN(" + strconv.Itoa(int(c)) + ")"
	}

	return commandNames[c]
}

// extendedResponse lists the commands whose replies are followed by P3 bytes
// of data when P3 is positive. Every other reply is a bare 16 byte header,
// with P3 holding a result that may be a large unsigned value (TICK).
var extendedResponse = map[Command]bool{
	CmdI2CRD: true,
	CmdI2CRK: true,
	CmdI2CRI: true,
	CmdI2CPK: true,
	CmdI2CZ:  true,
	CmdBI2CZ: true,
	CmdSPIR:  true,
	CmdSPIX:  true,
	CmdBSPIX: true,
	CmdBSCX:  true,
	CmdSERR:  true,
	CmdSLR:   true,
	CmdPROCP: true,
	CmdCF2:   true,
	CmdFR:    true,
	CmdFL:    true,
}

// HasResponseData reports whether a successful reply to c carries data bytes
// after the header.
func (c Command) HasResponseData() bool {
	return extendedResponse[c]
}
