package efc

import (
	"sync/atomic"
	"unsafe"
)

// MMIO is a Bus for code running on the target. Addresses are used as
// pointers after adding Offset, which is zero on the target.
//
// Every read is an atomic load of the aligned word holding the cell, so it is
// neither reordered nor elided. Word writes are atomic stores. Byte and
// half-word writes are plain stores: widening them would also write the
// neighbouring cells. They only occur as the triggering write of an operation,
// which is ordered by the atomic OPR writes before it and the STS reads after
// it.
type MMIO struct {
	Offset uintptr
}

func (m MMIO) ptr(addr uint32) unsafe.Pointer {
	return unsafe.Add(nil, m.Offset+uintptr(addr))
}

func (m MMIO) Read(addr uint32, w Width) (uint32, error) {
	v := atomic.LoadUint32((*uint32)(m.ptr(addr &^ 3)))
	if w == Word {
		return v, nil
	}
	// little-endian core
	return (v >> (8 * (addr & 3))) & w.Mask(), nil
}

func (m MMIO) Write(addr uint32, w Width, v uint32) error {
	p := m.ptr(addr)
	switch w {
	case Byte:
		*(*uint8)(p) = uint8(v)
	case HalfWord:
		*(*uint16)(p) = uint16(v)
	default:
		atomic.StoreUint32((*uint32)(p), v)
	}
	return nil
}
