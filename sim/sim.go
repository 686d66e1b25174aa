// Package sim provides an in-memory EFC: the register block, main flash,
// NVR1..NVR8 and the EEPROM area, reachable through the efc.Bus interface.
//
// The simulator enforces the parts of the hardware protocol the driver relies
// on: protected registers only accept a write right after the unlock key, an
// operation only starts after all four OPR phases, programming can only clear
// bits, and status flags are cleared by writing them back.
package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gentam/efc"
)

// Access is one bus access seen by the simulator.
type Access struct {
	Write bool
	Addr  uint32
	Width efc.Width
	Value uint32
}

func (a Access) String() string {
	dir := "R"
	if a.Write {
		dir = "W"
	}
	return fmt.Sprintf("%s %d 0x%08X 0x%08X", dir, a.Width, a.Addr, a.Value)
}

// Operation is a program or erase started on the simulated controller.
type Operation struct {
	Mode efc.Mode
	Addr uint32
}

type lockState int

const (
	locked lockState = iota
	keyHalf
	unlocked
)

type span struct{ start, end uint32 }

// EFC is a simulated flash controller. It is not safe for concurrent use.
type EFC struct {
	CR, TNVS, TPROG, TPGS, TRCV, TERS uint32
	STS                               uint32

	Flash  []byte
	EEPROM []byte
	NVR    [efc.NVRCount][]byte

	// BusyReads is the number of status reads that return zero after an
	// operation was triggered.
	BusyReads int

	// Trace records every access when non-nil.
	Trace []Access
	// Violations records protocol errors: protected writes without unlock,
	// memory writes without an open operation.
	Violations []string
	// Operations records every operation the controller started.
	Operations []Operation

	base uint32
	lock lockState

	oprMode efc.Mode
	oprNext int
	armed   efc.Mode

	running  bool
	result   uint32
	busyLeft int
	wedged   bool
	hung     bool
	faults   []Fault

	protected []span
}

// New returns a simulator with the register block at efc.Base and every
// memory erased.
func New() *EFC {
	e := &EFC{
		Flash:  bytes.Repeat([]byte{0xFF}, int(efc.FlashSize)),
		EEPROM: bytes.Repeat([]byte{0xFF}, int(efc.EEPROMSize)),
		Trace:  []Access{},
		base:   efc.Base,
	}
	for i := range e.NVR {
		e.NVR[i] = bytes.Repeat([]byte{0xFF}, int(efc.NVRSize))
	}
	return e
}

// Wedge makes every following operation run forever: STS reads zero.
func (e *EFC) Wedge() { e.wedged = true }

// Fault makes an operation complete with Status instead of CD.
type Fault struct {
	// Mode selects the operation the fault applies to, 0 matches any
	Mode efc.Mode
	// Status is the completion status reported
	Status efc.StatusRegister
	// Apply still performs the memory effect of the operation
	Apply bool
	// Hang makes the operation never complete, like Wedge for one operation
	Hang bool
}

// Inject queues f for the next matching operation.
func (e *EFC) Inject(f Fault) { e.faults = append(e.faults, f) }

// FailNext makes the next operation complete with status sts and leave the
// memory untouched.
func (e *EFC) FailNext(sts efc.StatusRegister) { e.Inject(Fault{Status: sts}) }

func (e *EFC) takeFault(mode efc.Mode) (Fault, bool) {
	for i, f := range e.faults {
		if f.Mode == 0 || f.Mode == mode {
			e.faults = append(e.faults[:i], e.faults[i+1:]...)
			return f, true
		}
	}
	return Fault{}, false
}

// Protect makes program and erase of the n bytes at addr report success
// without changing them.
func (e *EFC) Protect(addr, n uint32) {
	e.protected = append(e.protected, span{addr, addr + n})
}

// Poke sets memory directly, bypassing the controller.
func (e *EFC) Poke(addr uint32, w efc.Width, v uint32) error {
	mem, err := e.cell(addr, w)
	if err != nil {
		return err
	}
	putLE(mem, w, v)
	return nil
}

// Peek reads memory without recording an access.
func (e *EFC) Peek(addr uint32, w efc.Width) (uint32, error) {
	mem, err := e.cell(addr, w)
	if err != nil {
		return 0, err
	}
	return getLE(mem, w), nil
}

// Writes returns the recorded write accesses.
func (e *EFC) Writes() []Access {
	var ws []Access
	for _, a := range e.Trace {
		if a.Write {
			ws = append(ws, a)
		}
	}
	return ws
}

// ResetTrace drops the recorded accesses, violations and operations.
func (e *EFC) ResetTrace() {
	e.Trace = e.Trace[:0]
	e.Violations = nil
	e.Operations = nil
}

func (e *EFC) record(a Access) {
	if e.Trace != nil {
		e.Trace = append(e.Trace, a)
	}
}

func (e *EFC) violation(format string, a ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, a...))
}

func (e *EFC) isReg(addr uint32) bool {
	return addr >= e.base && addr < e.base+efc.RegOPR+4
}

func (e *EFC) reg(off uint32) *uint32 {
	switch off {
	case efc.RegCR:
		return &e.CR
	case efc.RegTNVS:
		return &e.TNVS
	case efc.RegTPROG:
		return &e.TPROG
	case efc.RegTPGS:
		return &e.TPGS
	case efc.RegTRCV:
		return &e.TRCV
	case efc.RegTERS:
		return &e.TERS
	case efc.RegSTS:
		return &e.STS
	}
	return nil
}

func (e *EFC) Read(addr uint32, w efc.Width) (uint32, error) {
	v, err := e.read(addr, w)
	e.record(Access{Addr: addr, Width: w, Value: v})
	return v, err
}

func (e *EFC) read(addr uint32, w efc.Width) (uint32, error) {
	if e.isReg(addr) {
		off := addr - e.base
		if off == efc.RegSTS {
			return e.readStatus(), nil
		}
		if r := e.reg(off); r != nil {
			return *r & w.Mask(), nil
		}
		return 0, nil
	}
	mem, err := e.cell(addr, w)
	if err != nil {
		return 0, err
	}
	return getLE(mem, w), nil
}

func (e *EFC) readStatus() uint32 {
	if e.running {
		if e.wedged || e.hung {
			return 0
		}
		if e.busyLeft > 0 {
			e.busyLeft--
			return 0
		}
		e.running = false
		e.STS |= e.result
	}
	return e.STS
}

func (e *EFC) Write(addr uint32, w efc.Width, v uint32) error {
	e.record(Access{Write: true, Addr: addr, Width: w, Value: v})
	if e.isReg(addr) {
		e.writeReg(addr-e.base, v)
		return nil
	}
	return e.writeMem(addr, w, v)
}

func (e *EFC) writeReg(off, v uint32) {
	switch {
	case off == efc.RegWPT:
		switch {
		case v == efc.WPTKey1:
			e.lock = keyHalf
		case v == efc.WPTKey2 && e.lock == keyHalf:
			e.lock = unlocked
		default:
			e.lock = locked
		}
	case efc.Protected(off):
		if e.lock != unlocked {
			e.violation("write %s=0x%08X while locked", efc.RegName(off), v)
			return
		}
		e.lock = locked
		*e.reg(off) = v
	case off == efc.RegSTS:
		e.STS &^= v
	case off == efc.RegOPR:
		e.writeOPR(v)
	}
}

// writeOPR tracks the four phase writes; the operation is armed once all of
// them were written in order with the same mode.
func (e *EFC) writeOPR(v uint32) {
	phase := v & efc.OPRPhaseMask
	mode := efc.Mode(v & efc.OPRModeMask)
	switch {
	case phase == efc.OPRPhases[0]:
		e.oprMode, e.oprNext = mode, 1
	case e.oprNext > 0 && phase == efc.OPRPhases[e.oprNext] && mode == e.oprMode:
		e.oprNext++
	default:
		e.oprNext = 0
	}
	if e.oprNext == len(efc.OPRPhases) {
		e.armed, e.oprNext = e.oprMode, 0
	}
}

func (e *EFC) writeMem(addr uint32, w efc.Width, v uint32) error {
	if _, err := e.cell(addr, w); err != nil && e.armed == 0 {
		return err
	}
	if e.armed == 0 {
		e.violation("write 0x%08X=0x%08X without an open operation", addr, v)
		return nil
	}
	mode := e.armed
	e.armed = 0
	e.Operations = append(e.Operations, Operation{Mode: mode, Addr: addr})

	e.running = true
	e.busyLeft = e.BusyReads
	e.result, e.hung = e.execute(mode, addr, w, v)
	return nil
}

const (
	stsCD    = uint32(efc.StatusCD)
	stsADDRE = 1 << 2
	stsFCE   = 1 << 1
)

func (e *EFC) execute(mode efc.Mode, addr uint32, w efc.Width, v uint32) (sts uint32, hang bool) {
	f, ok := e.takeFault(mode)
	if !ok {
		return e.apply(mode, addr, w, v), false
	}
	if f.Apply {
		e.apply(mode, addr, w, v)
	}
	return uint32(f.Status), f.Hang
}

func (e *EFC) apply(mode efc.Mode, addr uint32, w efc.Width, v uint32) uint32 {
	if addr&uint32(w-1) != 0 {
		return stsADDRE
	}
	switch mode {
	case efc.ModeSingleProgram:
		mem, err := e.cell(addr, w)
		if err != nil {
			return stsADDRE
		}
		if !e.isProtected(addr, uint32(w)) {
			for i := range mem {
				mem[i] &= byte(v >> (8 * i))
			}
		}
	case efc.ModePageErase:
		start, n, ok := e.granule(addr)
		if !ok {
			return stsADDRE
		}
		e.erase(start, n)
	case efc.ModeChipErase:
		if addr < efc.FlashBase || addr >= efc.FlashBase+efc.FlashSize {
			return stsADDRE
		}
		e.erase(efc.FlashBase, efc.FlashSize)
		for i := 0; i < efc.NVRCount-1; i++ {
			e.erase(nvrBase(i), efc.NVRSize)
		}
	default:
		return stsFCE
	}
	return stsCD
}

// granule returns the erase unit containing addr.
func (e *EFC) granule(addr uint32) (start, n uint32, ok bool) {
	switch {
	case addr >= efc.FlashBase && addr < efc.FlashBase+efc.FlashSize:
		return addr &^ (efc.FlashPageSize - 1), efc.FlashPageSize, true
	case addr >= efc.EEPROMBase && addr < efc.EEPROMBase+efc.EEPROMSize:
		return addr &^ 3, 4, true
	case addr >= efc.NVRBase && addr < nvrBase(efc.NVRCount):
		return addr &^ (efc.NVRSize - 1), efc.NVRSize, true
	}
	return 0, 0, false
}

func (e *EFC) erase(start, n uint32) {
	for a := start; a < start+n; a++ {
		if e.isProtected(a, 1) {
			continue
		}
		mem, err := e.cell(a, efc.Byte)
		if err == nil {
			mem[0] = 0xFF
		}
	}
}

func (e *EFC) isProtected(addr, n uint32) bool {
	for _, s := range e.protected {
		if addr < s.end && addr+n > s.start {
			return true
		}
	}
	return false
}

func nvrBase(i int) uint32 {
	return efc.NVRBase + uint32(i)*efc.NVRSize
}

// cell returns the bytes backing an access of width w at addr.
func (e *EFC) cell(addr uint32, w efc.Width) ([]byte, error) {
	n := uint32(w)
	in := func(base, size uint32) bool {
		return addr >= base && addr+n <= base+size
	}
	switch {
	case in(efc.FlashBase, efc.FlashSize):
		off := addr - efc.FlashBase
		return e.Flash[off : off+n], nil
	case in(efc.EEPROMBase, efc.EEPROMSize):
		off := addr - efc.EEPROMBase
		return e.EEPROM[off : off+n], nil
	}
	for i := range e.NVR {
		if in(nvrBase(i), efc.NVRSize) {
			off := addr - nvrBase(i)
			return e.NVR[i][off : off+n], nil
		}
	}
	return nil, fmt.Errorf("sim: no memory at 0x%08X", addr)
}

func getLE(b []byte, w efc.Width) uint32 {
	switch w {
	case efc.Byte:
		return uint32(b[0])
	case efc.HalfWord:
		return uint32(binary.LittleEndian.Uint16(b))
	}
	return binary.LittleEndian.Uint32(b)
}

func putLE(b []byte, w efc.Width, v uint32) {
	switch w {
	case efc.Byte:
		b[0] = byte(v)
	case efc.HalfWord:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, v)
	}
}
