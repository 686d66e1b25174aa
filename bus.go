package efc

import (
	"errors"
	"fmt"
)

// Width is the size of a single memory access in bytes.
type Width uint8

const (
	Byte     Width = 1
	HalfWord Width = 2
	Word     Width = 4
)

func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case HalfWord:
		return "half-word"
	case Word:
		return "word"
	}
	return fmt.Sprintf("Width(%d)", uint8(w))
}

// Mask returns the value bits covered by an access of width w.
func (w Width) Mask() uint32 {
	switch w {
	case Byte:
		return 0xFF
	case HalfWord:
		return 0xFFFF
	}
	return 0xFFFF_FFFF
}

// ParseWidth accepts "b", "h", "w" or the full names returned by String.
func ParseWidth(s string) (Width, error) {
	switch s {
	case "b", "byte", "8":
		return Byte, nil
	case "h", "half-word", "halfword", "16":
		return HalfWord, nil
	case "w", "word", "32":
		return Word, nil
	}
	return 0, fmt.Errorf("unknown width %q", s)
}

// checkAlign returns an *AlignmentError if addr is not aligned for w.
func checkAlign(addr uint32, w Width) error {
	switch w {
	case Byte:
		return nil
	case HalfWord, Word:
		if addr&uint32(w-1) != 0 {
			return &AlignmentError{Addr: addr, Width: w}
		}
		return nil
	}
	return fmt.Errorf("%w: invalid width %d", ErrPrecondition, w)
}

// Bus performs ordered register and memory accesses. Accesses must reach the
// hardware in call order and must not be cached or merged.
type Bus interface {
	Read(addr uint32, w Width) (uint32, error)
	Write(addr uint32, w Width, v uint32) error
}

var errGrantConsumed = errors.New("write grant already used")

// writeGrant permits exactly one protected register write after an unlock.
type writeGrant struct {
	c    *Controller
	used bool
}

// unlock writes the write protect key and returns a grant for the next write.
func (c *Controller) unlock() (*writeGrant, error) {
	wpt := c.base + RegWPT
	if err := c.bus.Write(wpt, Word, WPTKey1); err != nil {
		return nil, fmt.Errorf("unlock: %w", err)
	}
	if err := c.bus.Write(wpt, Word, WPTKey2); err != nil {
		return nil, fmt.Errorf("unlock: %w", err)
	}
	return &writeGrant{c: c}, nil
}

func (g *writeGrant) write(off, v uint32) error {
	if g.used {
		return errGrantConsumed
	}
	g.used = true
	if err := g.c.bus.Write(g.c.base+off, Word, v); err != nil {
		return fmt.Errorf("write %s: %w", RegName(off), err)
	}
	return nil
}

// protectedWrite unlocks and writes v to the register at off.
func (c *Controller) protectedWrite(off, v uint32) error {
	g, err := c.unlock()
	if err != nil {
		return err
	}
	return g.write(off, v)
}

// protectedModify unlocks, then clears and sets bits of the register at off in
// a single read-modify-write.
func (c *Controller) protectedModify(off, clear, set uint32) error {
	g, err := c.unlock()
	if err != nil {
		return err
	}
	v, err := c.readReg(off)
	if err != nil {
		return err
	}
	return g.write(off, v&^clear | set)
}

func (c *Controller) readReg(off uint32) (uint32, error) {
	v, err := c.bus.Read(c.base+off, Word)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", RegName(off), err)
	}
	return v, nil
}

func (c *Controller) writeReg(off, v uint32) error {
	if err := c.bus.Write(c.base+off, Word, v); err != nil {
		return fmt.Errorf("write %s: %w", RegName(off), err)
	}
	return nil
}
