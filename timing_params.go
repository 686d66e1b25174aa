package efc

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Timing holds the clock dividers and timing register values programmed by
// Init. Timing register values count core clock cycles.
type Timing struct {
	PRG2MDIV uint32
	ERS2KDIV uint32

	TNVS  uint32
	TPROG uint32
	TPGS  uint32
	TRCV  uint32
	TERS  uint32
}

func (t Timing) cr() uint32 {
	return t.PRG2MDIV<<CRPRG2MDIVShift | t.ERS2KDIV<<CRERS2KDIVShift
}

type clockProfile struct {
	name string
	Timing
}

const (
	minClock = 1 * physic.MegaHertz
	prgClock = 2 * physic.MegaHertz // program timer rate outside the fixed bands
)

// Timing register values packed from their sub-fields.
// [FDV32S305-UM|EFC timing registers]
const (
	// TRCV: tRCV(31:16) | tRCVE(15:9) | tRCVP(8:0)
	trcv1MHz = 0x4<<16 | 0x1f<<9 | 0x79
	trcv2MHz = 0x6<<16 | 0x3d<<9 | 0xf1
	trcvPLL  = 0xc<<16 | 0x78<<9 | 0x1e0 // 0xcf1e0

	// TERS: tERSH(15:7) | tERSL(6:0)
	ters1MHz = 0x09<<7 | 0x46
	tersPLL  = 0x4c6
)

// Fixed profiles for clocks too slow to divide down to 2MHz. The counts are
// the minimum cycle counts covering tNVS, tPROG and tPGS at that clock.
var knownClocks = map[physic.Frequency]clockProfile{
	1 * physic.MegaHertz: {
		name: "1MHz",

		Timing: Timing{
			PRG2MDIV: 1,
			ERS2KDIV: 0x0f9,
			TNVS:     0x03,
			TPROG:    0x03,
			TPGS:     0x01,
			TRCV:     trcv1MHz,
			TERS:     ters1MHz,
		},
	},

	2 * physic.MegaHertz: {
		name: "2MHz",

		Timing: Timing{
			PRG2MDIV: 1,
			ERS2KDIV: 0x1f3,
			TNVS:     0x06,
			TPROG:    0x06,
			TPGS:     0x04,
			TRCV:     trcv2MHz,
			TERS:     ters1MHz,
		},
	},
}

// Every other clock divides the program timer down to 2MHz, so the counts
// are fixed and only PRG2MDIV depends on the clock.
var pllProfile = clockProfile{
	name: "divided",

	Timing: Timing{
		ERS2KDIV: 0x3e7,
		TNVS:     0x0e,
		TPROG:    0x0e,
		TPGS:     0x0c,
		TRCV:     trcvPLL,
		TERS:     tersPLL,
	},
}

// profileFor selects the timing profile for the core clock f.
func profileFor(f physic.Frequency) (clockProfile, error) {
	if f < minClock {
		return clockProfile{}, fmt.Errorf("%w (%s)", ErrClockTooLow, f)
	}
	if p, ok := knownClocks[f]; ok {
		return p, nil
	}

	// Between 1MHz and 2MHz the divider is 0 and the program timer runs
	// undivided.
	div := uint64(f/prgClock)
	if div > 0 {
		div--
	}
	if div > CRPRG2MDIV>>CRPRG2MDIVShift {
		return clockProfile{}, fmt.Errorf("%w (%s: divider %d overflows PRG2MDIV)", ErrClockUnsupported, f, div)
	}
	p := pllProfile
	p.PRG2MDIV = uint32(div)
	return p, nil
}

// TimingFor returns the values Init would program for the core clock f.
func TimingFor(f physic.Frequency) (Timing, error) {
	p, err := profileFor(f)
	return p.Timing, err
}
