package main

import (
	"errors"
	"fmt"

	"github.com/gentam/efc"
)

func initCommand() {
	c, done := newController()
	defer done()

	if err := c.Init(); err != nil {
		if errors.Is(err, efc.ErrPrecondition) {
			fatalUsage("init at %s: %v", coreClock, err)
		}
		fatalf("init failed: %v", err)
	}
	t, err := c.Timing()
	if err != nil {
		fatalf("read timing: %v", err)
	}
	fmt.Printf("%s: %+v\n", coreClock, t)
}

func irqCommand(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fatalUsage("usage: efc irq on|off")
	}
	c, done := newController()
	defer done()

	var err error
	if args[0] == "on" {
		err = c.EnableIRQ()
	} else {
		err = c.DisableIRQ()
	}
	if err != nil {
		fatalf("irq %s failed: %v", args[0], err)
	}
}
