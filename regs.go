package efc

// Base is the default address of the EFC register block. [FDV32S305-UM|Memory map]
const Base uint32 = 0x4001_0000

// Register offsets relative to the register block base. [FDV32S305-UM|EFC registers]
const (
	RegCR    = 0x00 // Control
	RegTNVS  = 0x04 // PROG/ERASE setup time
	RegTPROG = 0x08 // Program pulse time
	RegTPGS  = 0x0C // Program setup time
	RegTRCV  = 0x10 // Recovery time
	RegTERS  = 0x14 // Erase time
	RegWPT   = 0x18 // Write protect key
	RegSTS   = 0x1C // Status
	RegOPR   = 0x20 // Operation
)

// RegName returns the mnemonic of a register offset.
func RegName(off uint32) string {
	switch off {
	case RegCR:
		return "CR"
	case RegTNVS:
		return "TNVS"
	case RegTPROG:
		return "TPROG"
	case RegTPGS:
		return "TPGS"
	case RegTRCV:
		return "TRCV"
	case RegTERS:
		return "TERS"
	case RegWPT:
		return "WPT"
	case RegSTS:
		return "STS"
	case RegOPR:
		return "OPR"
	}
	return "?"
}

// Protected reports whether writes to the register at off need an unlock.
func Protected(off uint32) bool {
	switch off {
	case RegCR, RegTNVS, RegTPROG, RegTPGS, RegTRCV, RegTERS:
		return true
	}
	return false
}

// Write protect key, written to WPT in this order. The controller re-locks
// after the next protected register write.
const (
	WPTKey1 uint32 = 0x5A5A_5A5A
	WPTKey2 uint32 = 0xA5A5_A5A5
)

// CR fields.
//
//	Bits  | Field
//	------+-------------------------------------------
//	31:22 | ERS2KDIV: erase timer divider
//	21:16 | PRG2MDIV: program clock divider (to 2 MHz)
//	8     | LVDWARNEN: low voltage warning interrupt
//	6     | ATDEINTEN: auto timing done error interrupt
//	5     | ATTEINTEN: auto timing timeout error interrupt
//	4     | FTTEINTEN: flash timing error interrupt
//	3     | ADDREINTEN: address error interrupt
//	2     | FCINTEN: flash command error interrupt
//	1     | CDINTEN: command done interrupt
const (
	CRPRG2MDIVShift = 16
	CRPRG2MDIV      = 0x3F << CRPRG2MDIVShift
	CRERS2KDIVShift = 22
	CRERS2KDIV      = 0x3FF << CRERS2KDIVShift

	CRLVDWARNEN  = 1 << 8
	CRATDEINTEN  = 1 << 6
	CRATTEINTEN  = 1 << 5
	CRFTTEINTEN  = 1 << 4
	CRADDREINTEN = 1 << 3
	CRFCINTEN    = 1 << 2
	CRCDINTEN    = 1 << 1

	irqMask = CRLVDWARNEN | CRATDEINTEN | CRATTEINTEN | CRFTTEINTEN | CRADDREINTEN | CRFCINTEN | CRCDINTEN
)

// OPR phase markers. Each operation writes OPR once per marker, OR'd with the
// operation mode, so that every flash plane is configured.
const (
	oprPhase0 uint32 = 0x0000_0100
	oprPhase1 uint32 = 0x0000_0200
	oprPhase2 uint32 = 0x0000_0400
	oprPhase3 uint32 = 0x0000_0800

	OPRPhaseMask uint32 = oprPhase0 | oprPhase1 | oprPhase2 | oprPhase3
	OPRModeMask  uint32 = 0x0F
)

// OPRPhases lists the phase markers in the order they are written.
var OPRPhases = [4]uint32{oprPhase0, oprPhase1, oprPhase2, oprPhase3}

// Mode is an operation mode written to OPR.
type Mode uint32

const (
	ModeSingleProgram Mode = 0x1
	ModePageErase     Mode = 0x2
	ModeChipErase     Mode = 0x3
)

func (m Mode) String() string {
	switch m {
	case ModeSingleProgram:
		return "single-program"
	case ModePageErase:
		return "page-erase"
	case ModeChipErase:
		return "chip-erase"
	}
	return "unknown"
}

// Memory map. [FDV32S305-UM|Memory map]
const (
	FlashBase     uint32 = 0x0000_0000
	FlashSize     uint32 = 16 << 10
	FlashPageSize uint32 = 512

	EEPROMBase uint32 = 0x0008_0000
	EEPROMSize uint32 = 512

	// NVR n (1..8) starts at NVRBase + (n-1)*NVRSize.
	NVRBase  uint32 = 0x0010_0000
	NVRSize  uint32 = 512
	NVRCount        = 8
)

// Erased is the content of an erased word.
const Erased uint32 = 0xFFFF_FFFF
