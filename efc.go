package efc

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Controller drives one EFC. It assumes exclusive ownership of the register
// block and is not safe for concurrent use; callers serialize access.
type Controller struct {
	bus   Bus
	clock Clock
	base  uint32
	cfg   Config
	log   *slog.Logger
}

// New returns a controller for the EFC reachable through bus. clock is only
// consulted by Init.
func New(bus Bus, clock Clock, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Controller{
		bus:   bus,
		clock: clock,
		base:  cfg.Base,
		cfg:   cfg,
		log:   cfg.Logger,
	}
	if c.log == nil {
		c.log = defaultLogger()
	}
	return c
}

// Init programs the clock dividers and timing registers for the current core
// clock. Nothing is written if the clock has no timing profile. A failed
// register write leaves the registers written so far in place.
func (c *Controller) Init() error {
	if c.clock == nil {
		return errors.New("no clock configured")
	}
	f, err := c.clock.Update()
	if err != nil {
		return fmt.Errorf("read core clock: %w", err)
	}
	p, err := profileFor(f)
	if err != nil {
		return err
	}
	c.log.Debug("efc timing", "clock", f, "profile", p.name,
		"prg2mdiv", p.PRG2MDIV, "ers2kdiv", p.ERS2KDIV)

	// Divider fields are cleared before the new values are OR'd in; the
	// interrupt enables in CR are kept.
	if err := c.protectedModify(RegCR, CRPRG2MDIV|CRERS2KDIV, 0); err != nil {
		return err
	}
	if err := c.protectedModify(RegCR, 0, p.cr()); err != nil {
		return err
	}

	for _, r := range []struct{ off, v uint32 }{
		{RegTNVS, p.TNVS},
		{RegTPROG, p.TPROG},
		{RegTPGS, p.TPGS},
		{RegTRCV, p.TRCV},
		{RegTERS, p.TERS},
	} {
		if err := c.protectedWrite(r.off, r.v); err != nil {
			return err
		}
	}
	return nil
}

// Timing reads back the dividers and timing registers.
func (c *Controller) Timing() (Timing, error) {
	var t Timing
	cr, err := c.readReg(RegCR)
	if err != nil {
		return t, err
	}
	t.PRG2MDIV = (cr & CRPRG2MDIV) >> CRPRG2MDIVShift
	t.ERS2KDIV = (cr & CRERS2KDIV) >> CRERS2KDIVShift
	for _, r := range []struct {
		off uint32
		v   *uint32
	}{
		{RegTNVS, &t.TNVS},
		{RegTPROG, &t.TPROG},
		{RegTPGS, &t.TPGS},
		{RegTRCV, &t.TRCV},
		{RegTERS, &t.TERS},
	} {
		if *r.v, err = c.readReg(r.off); err != nil {
			return t, err
		}
	}
	return t, nil
}

// SingleProgram programs data, truncated to w, at addr. Half-word and word
// addresses must be aligned; misaligned calls fail before any bus access.
func (c *Controller) SingleProgram(addr uint32, w Width, data uint32) error {
	if err := checkAlign(addr, w); err != nil {
		return err
	}
	return c.run(OpSingleProgram, addr, w, data&w.Mask())
}

// PageErase erases the erase granule containing addr: a flash page, or a
// single word in the EEPROM area.
func (c *Controller) PageErase(addr uint32) error {
	if err := checkAlign(addr, Word); err != nil {
		return err
	}
	return c.run(OpPageErase, addr, Word, Erased)
}

// ChipErase erases the main flash and NVR1 to NVR7. NVR8 and the EEPROM area
// are kept by the hardware. addr may be any word address in main flash.
func (c *Controller) ChipErase(addr uint32) error {
	if err := checkAlign(addr, Word); err != nil {
		return err
	}
	return c.run(OpChipErase, addr, Word, Erased)
}

// run clears stale status, opens the operation, performs the triggering
// write and waits for completion.
func (c *Controller) run(op Op, addr uint32, w Width, v uint32) error {
	if err := c.clearStatus(); err != nil {
		return err
	}
	if err := c.openMode(op.mode()); err != nil {
		return err
	}
	if err := c.bus.Write(addr, w, v); err != nil {
		return fmt.Errorf("%s at 0x%08X: %w", op, addr, err)
	}
	sr, err := c.waitDone(op)
	if err != nil {
		return err
	}
	if sr != StatusCD {
		return &StatusError{Op: op, Addr: addr, Status: sr}
	}
	c.log.Debug("efc done", "op", op, "addr", fmt.Sprintf("0x%08X", addr), "width", w)
	return nil
}

// clearStatus writes STS back onto itself, clearing every pending flag.
func (c *Controller) clearStatus() error {
	sts, err := c.readReg(RegSTS)
	if err != nil {
		return err
	}
	return c.writeReg(RegSTS, sts)
}

// openMode writes OPR once per phase marker. Every marker must be written for
// all flash planes to take part in the operation.
func (c *Controller) openMode(m Mode) error {
	for _, phase := range OPRPhases {
		if err := c.writeReg(RegOPR, phase|uint32(m)); err != nil {
			return err
		}
	}
	return nil
}

// waitDone polls STS until it is nonzero. Without a poll limit or timeout it
// never gives up, so a controller that never completes hangs the caller.
func (c *Controller) waitDone(op Op) (StatusRegister, error) {
	var deadline time.Time
	if c.cfg.PollTimeout > 0 {
		deadline = time.Now().Add(c.cfg.PollTimeout)
	}

	for reads := 1; ; reads++ {
		sr, err := c.Status()
		if err != nil {
			return 0, err
		}
		if sr != 0 {
			return sr, nil
		}
		if c.cfg.PollLimit > 0 && reads >= c.cfg.PollLimit {
			return 0, &PollTimeoutError{Op: op, Reads: reads}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, &PollTimeoutError{Op: op, Reads: reads}
		}
	}
}

// EEPROMWrite erases the word containing addr, checks that it reads erased,
// programs data and checks the result by reading it back.
//
// The status of the program step is not part of the result: the read-back
// decides. Nothing is restored when a later step fails.
func (c *Controller) EEPROMWrite(addr uint32, w Width, data uint32) error {
	if err := checkAlign(addr, w); err != nil {
		return err
	}
	word := addr &^ 3
	if err := c.PageErase(word); err != nil {
		return err
	}
	got, err := c.Read(word, Word)
	if err != nil {
		return err
	}
	if got != Erased {
		return &VerifyError{Stage: StageErase, Addr: word, Want: Erased, Got: got}
	}

	if err := c.SingleProgram(addr, w, data); err != nil {
		var se *StatusError
		if !errors.As(err, &se) {
			return err
		}
		c.log.Warn("efc program status ignored, verifying by read-back", "err", err)
	}

	want := data & w.Mask()
	got, err = c.Read(addr, w)
	if err != nil {
		return err
	}
	if got != want {
		return &VerifyError{Stage: StageProgram, Addr: addr, Want: want, Got: got}
	}
	return nil
}

// EnableIRQ enables the EFC interrupts: low voltage warning, the timing and
// address error interrupts, command error and command done.
func (c *Controller) EnableIRQ() error {
	return c.protectedModify(RegCR, 0, irqMask)
}

// DisableIRQ disables the interrupts enabled by EnableIRQ.
func (c *Controller) DisableIRQ() error {
	return c.protectedModify(RegCR, irqMask, 0)
}

// Read reads a cell of width w at addr.
func (c *Controller) Read(addr uint32, w Width) (uint32, error) {
	if err := checkAlign(addr, w); err != nil {
		return 0, err
	}
	v, err := c.bus.Read(addr, w)
	if err != nil {
		return 0, fmt.Errorf("read 0x%08X: %w", addr, err)
	}
	return v, nil
}

// Status reads the status register.
func (c *Controller) Status() (StatusRegister, error) {
	v, err := c.readReg(RegSTS)
	return StatusRegister(v), err
}

// StatusRegister represents the EFC status register. Flags are cleared by
// writing them back. [FDV32S305-UM|EFC_STS]
//
//	Bit | Flag
//	----+-------------------------------------
//	6   | LVDWARN: low voltage warning
//	5   | ATDE: auto timing done error
//	4   | ATTE: auto timing timeout error
//	3   | FTTE: flash timing error
//	2   | ADDRE: address error
//	1   | FCE: flash command error
//	0   | CD: command done
type StatusRegister uint32

// StatusCD is the status of an operation that completed without error.
const StatusCD StatusRegister = 1 << 0

func (sr StatusRegister) LowVoltageWarning() bool      { return sr&(1<<6) != 0 }
func (sr StatusRegister) AutoTimingDoneError() bool    { return sr&(1<<5) != 0 }
func (sr StatusRegister) AutoTimingTimeoutError() bool { return sr&(1<<4) != 0 }
func (sr StatusRegister) FlashTimingError() bool       { return sr&(1<<3) != 0 }
func (sr StatusRegister) AddressError() bool           { return sr&(1<<2) != 0 }
func (sr StatusRegister) CommandError() bool           { return sr&(1<<1) != 0 }
func (sr StatusRegister) CommandDone() bool            { return sr&(1<<0) != 0 }

func (sr StatusRegister) String() string {
	b := fmt.Sprintf("%07b", uint32(sr))
	s := []string{}
	if sr.LowVoltageWarning() {
		s = append(s, "LVDWARN")
	}
	if sr.AutoTimingDoneError() {
		s = append(s, "ATDE")
	}
	if sr.AutoTimingTimeoutError() {
		s = append(s, "ATTE")
	}
	if sr.FlashTimingError() {
		s = append(s, "FTTE")
	}
	if sr.AddressError() {
		s = append(s, "ADDRE")
	}
	if sr.CommandError() {
		s = append(s, "FCE")
	}
	if sr.CommandDone() {
		s = append(s, "CD")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}
