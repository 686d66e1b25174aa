package efc

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestPackedTimingConstants(t *testing.T) {
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"trcv1MHz", trcv1MHz, 0x43e79},
		{"trcv2MHz", trcv2MHz, 0x67af1},
		{"trcvPLL", trcvPLL, 0xcf1e0},
		{"ters1MHz", ters1MHz, 0x4c6},
		{"tersPLL", tersPLL, 0x4c6},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#x, want %#x", tt.name, tt.got, tt.want)
		}
	}
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name string
		f    physic.Frequency
		want Timing
	}{
		{
			name: "1MHz",
			f:    1 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 1, ERS2KDIV: 0xf9, TNVS: 0x03, TPROG: 0x03, TPGS: 0x01, TRCV: 0x43e79, TERS: 0x4c6},
		},
		{
			name: "2MHz",
			f:    2 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 1, ERS2KDIV: 0x1f3, TNVS: 0x06, TPROG: 0x06, TPGS: 0x04, TRCV: 0x67af1, TERS: 0x4c6},
		},
		{
			name: "4MHz",
			f:    4 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 1, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "24MHz",
			f:    24 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 11, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "25MHz rounds down",
			f:    25 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 11, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "3MHz",
			f:    3 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 0, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "1.5MHz",
			f:    1_500_000 * physic.Hertz,
			want: Timing{PRG2MDIV: 0, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "just below 2MHz",
			f:    1_999_999 * physic.Hertz,
			want: Timing{PRG2MDIV: 0, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
		{
			name: "128MHz",
			f:    128 * physic.MegaHertz,
			want: Timing{PRG2MDIV: 63, ERS2KDIV: 0x3e7, TNVS: 0x0e, TPROG: 0x0e, TPGS: 0x0c, TRCV: 0xcf1e0, TERS: 0x4c6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimingFor(tt.f)
			if err != nil {
				t.Fatalf("TimingFor(%s) error = %v", tt.f, err)
			}
			if got != tt.want {
				t.Errorf("TimingFor(%s) = %+v, want %+v", tt.f, got, tt.want)
			}
		})
	}
}

func TestProfileForRejects(t *testing.T) {
	tests := []struct {
		name string
		f    physic.Frequency
		want error
	}{
		{"zero", 0, ErrClockTooLow},
		{"32kHz", 32768 * physic.Hertz, ErrClockTooLow},
		{"just below 1MHz", 999_999 * physic.Hertz, ErrClockTooLow},
		{"130MHz", 130 * physic.MegaHertz, ErrClockUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profileFor(tt.f)
			if !errors.Is(err, tt.want) {
				t.Fatalf("profileFor(%s) error = %v, want %v", tt.f, err, tt.want)
			}
			if !errors.Is(err, ErrPrecondition) {
				t.Errorf("profileFor(%s) error %v is not a precondition error", tt.f, err)
			}
		})
	}
}

func TestTimingCR(t *testing.T) {
	got := Timing{PRG2MDIV: 1, ERS2KDIV: 0xf9}.cr()
	want := uint32(1<<16 | 0xf9<<22)
	if got != want {
		t.Errorf("cr() = %#x, want %#x", got, want)
	}
	if got&^(CRPRG2MDIV|CRERS2KDIV) != 0 {
		t.Errorf("cr() = %#x sets bits outside the divider fields", got)
	}
}
