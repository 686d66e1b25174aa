package efc

import (
	"errors"
	"fmt"
)

// ErrPrecondition is matched by every error returned before the controller
// was touched because an argument or the clock was unusable.
var ErrPrecondition = errors.New("precondition failed")

var (
	ErrClockTooLow      = fmt.Errorf("%w: core clock below 1MHz", ErrPrecondition)
	ErrClockUnsupported = fmt.Errorf("%w: core clock has no timing profile", ErrPrecondition)
)

// Op identifies a program or erase primitive.
type Op int

const (
	OpSingleProgram Op = iota
	OpPageErase
	OpChipErase
)

func (op Op) String() string {
	switch op {
	case OpSingleProgram:
		return "single program"
	case OpPageErase:
		return "page erase"
	case OpChipErase:
		return "chip erase"
	}
	return "unknown operation"
}

func (op Op) mode() Mode {
	switch op {
	case OpPageErase:
		return ModePageErase
	case OpChipErase:
		return ModeChipErase
	}
	return ModeSingleProgram
}

// AlignmentError indicates an address that is not aligned for the access width.
type AlignmentError struct {
	Addr  uint32
	Width Width
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("address 0x%08X is not aligned for %s access", e.Addr, e.Width)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrPrecondition }

// StatusError indicates an operation that completed with a status other than
// StatusCD.
type StatusError struct {
	Op     Op
	Addr   uint32
	Status StatusRegister
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s at 0x%08X failed: status %s", e.Op, e.Addr, e.Status)
}

// Stage names the step of an EEPROM write whose read-back failed.
type Stage int

const (
	StageErase Stage = iota
	StageProgram
)

func (s Stage) String() string {
	if s == StageErase {
		return "erase"
	}
	return "program"
}

// VerifyError indicates that the controller reported success but the cell
// does not hold the expected value.
type VerifyError struct {
	Stage Stage
	Addr  uint32
	Want  uint32
	Got   uint32
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s verify at 0x%08X: expected 0x%08X, read 0x%08X",
		e.Stage, e.Addr, e.Want, e.Got)
}

// PollTimeoutError indicates that the status register stayed zero for longer
// than the configured poll limit or timeout.
type PollTimeoutError struct {
	Op    Op
	Reads int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("%s: controller did not complete after %d status reads", e.Op, e.Reads)
}
