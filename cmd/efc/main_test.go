package main

import (
	"bytes"
	"testing"

	"github.com/gentam/efc"
	"github.com/gentam/efc/sim"
)

func TestProgramFileReadBack(t *testing.T) {
	s := sim.New()
	c := efc.New(s, efc.FixedClock(0))

	in := []byte{1, 2, 3, 4, 5, 6}
	if err := programFile(c, 0x400, bytes.NewReader(in)); err != nil {
		t.Fatal(err)
	}
	if len(s.Operations) != 2 {
		t.Fatalf("operations = %v, want 2 word programs", s.Operations)
	}

	got, err := readMemory(c, 0x401, 9)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{2, 3, 4, 5, 6, 0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("readMemory() = % X, want % X", got, want)
	}
}

func TestUint32Flag(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0x80000", 0x80000, true},
		{"4096", 4096, true},
		{"0b101", 5, true},
		{"0x1_0000_0000", 0, false},
		{"page", 0, false},
	}
	for _, tt := range tests {
		var f uint32Flag
		err := f.Set(tt.in)
		if (err == nil) != tt.ok || (tt.ok && uint32(f) != tt.want) {
			t.Errorf("Set(%q) = %#x, %v", tt.in, uint32(f), err)
		}
	}
}

func TestOpenTarget(t *testing.T) {
	defer func(name string) { busName = name }(busName)
	defer func(f func()) { closeTarget = f }(closeTarget)

	busName = "sim"
	tg, err := openTarget()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tg.bus.(*sim.EFC); !ok {
		t.Errorf("bus = %T, want *sim.EFC", tg.bus)
	}
	// fatalf and the deferred close may both run
	closeTarget()
	tg.close()

	busName = "jtag"
	if _, err := openTarget(); err == nil {
		t.Error("openTarget() with an unknown bus succeeded")
	}
}
