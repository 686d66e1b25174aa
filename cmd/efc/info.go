package main

import (
	"fmt"

	"github.com/gentam/efc"
	"periph.io/x/host/v3/ftdi"
)

func infoCommand() {
	t, err := openTarget()
	if err != nil {
		fatalf("open %s bus: %v", busName, err)
	}
	defer t.close()

	if t.dev != nil {
		printFTDI(t.dev.FTDI)
		fmt.Println()
	}

	c := efc.New(t.bus, efc.FixedClock(coreClock))
	sts, err := c.Status()
	if err != nil {
		fatalf("read status: %v", err)
	}
	tm, err := c.Timing()
	if err != nil {
		fatalf("read timing: %v", err)
	}
	fmt.Printf("Bus:             %s\n", busName)
	fmt.Printf("Status:          %s\n", sts)
	fmt.Printf("PRG2MDIV:        %d\n", tm.PRG2MDIV)
	fmt.Printf("ERS2KDIV:        %d\n", tm.ERS2KDIV)
	fmt.Printf("TNVS:            %#x\n", tm.TNVS)
	fmt.Printf("TPROG:           %#x\n", tm.TPROG)
	fmt.Printf("TPGS:            %#x\n", tm.TPGS)
	fmt.Printf("TRCV:            %#x\n", tm.TRCV)
	fmt.Printf("TERS:            %#x\n", tm.TERS)

	if want, err := efc.TimingFor(coreClock); err != nil {
		fmt.Printf("Profile:         %v\n", err)
	} else if want != tm {
		fmt.Printf("Profile:         does not match %s, run init\n", coreClock)
	} else {
		fmt.Printf("Profile:         %s\n", coreClock)
	}
}

func printFTDI(ft *ftdi.FT232H) {
	// Reference: https://github.com/periph/cmd/tree/main/ftdi-list
	i := ftdi.Info{}
	ft.Info(&i)
	fmt.Printf("Type:            %s\n", i.Type)
	fmt.Printf("Vendor ID:       %#04x\n", i.VenID)
	fmt.Printf("Device ID:       %#04x\n", i.DevID)

	ee := ftdi.EEPROM{}
	if err := ft.EEPROM(&ee); err != nil {
		fatalf("failed to read EEPROM: %v", err)
	}
	fmt.Printf("Manufacturer:    %s\n", ee.Manufacturer)
	fmt.Printf("Desc:            %s\n", ee.Desc)
	fmt.Printf("Serial:          %s\n", ee.Serial)

	for _, p := range ft.Header() {
		fmt.Printf("%s: %s\n", p, p.Function())
	}
}
