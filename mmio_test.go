package efc

import (
	"testing"
	"unsafe"
)

// Global so that it never moves while only a uintptr refers to it.
var mmioMem [16]uint32

func TestMMIO(t *testing.T) {
	m := MMIO{Offset: uintptr(unsafe.Pointer(&mmioMem[0]))}

	if err := m.Write(4, Word, 0x11223344); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(8, HalfWord, 0xBEEF); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(12, Byte, 0x5A); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		addr uint32
		w    Width
		want uint32
	}{
		{4, Word, 0x11223344},
		{8, HalfWord, 0xBEEF},
		{8, Word, 0xBEEF},
		{12, Byte, 0x5A},
		{5, Byte, 0x33},
		{6, HalfWord, 0x1122},
		{7, Byte, 0x11},
	}
	for _, tt := range tests {
		got, err := m.Read(tt.addr, tt.w)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Read(%d, %s) = %#x, want %#x", tt.addr, tt.w, got, tt.want)
		}
	}
	if mmioMem[1] != 0x11223344 {
		t.Errorf("mmioMem[1] = %#x", mmioMem[1])
	}
}
