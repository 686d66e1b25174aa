package main

import (
	"encoding/binary"
	"flag"
	"io"
	"os"

	"github.com/gentam/efc"
)

func programCommand(args []string) {
	fs := flag.NewFlagSet("program", flag.ExitOnError)
	var (
		addr     uint32Flag
		width    = widthFlag(efc.Word)
		filename string
	)
	fs.Var(&addr, "a", "address")
	fs.Var(&width, "w", "access width: b, h or w")
	fs.StringVar(&filename, "f", "", "input file, programmed word by word from -a")
	fs.Parse(args)

	if filename == "" && fs.NArg() != 1 {
		fatalUsage("usage: efc program [-a addr] [-w width] value | -f file")
	}

	c, done := newController()
	defer done()

	if filename == "" {
		if err := c.SingleProgram(uint32(addr), efc.Width(width), parseValue(fs.Arg(0))); err != nil {
			fatalf("program failed: %v", err)
		}
		return
	}

	input, err := os.Open(filename)
	if err != nil {
		fatalf("failed to open file: %v", err)
	}
	defer input.Close()

	if err := programFile(c, uint32(addr), input); err != nil {
		fatalf("program failed: %v", err)
	}
}

// programFile programs r word by word from addr; a short tail is padded with
// erased bytes.
func programFile(c *efc.Controller, addr uint32, r io.Reader) error {
	buf := [4]byte{}
	for {
		n, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return nil
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return err
		}
		for i := n; i < len(buf); i++ {
			buf[i] = 0xFF
		}
		if err := c.SingleProgram(addr, efc.Word, binary.LittleEndian.Uint32(buf[:])); err != nil {
			return err
		}
		addr += 4
	}
}

func eraseCommand(args []string) {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	var (
		addr uint32Flag
		chip bool
	)
	fs.Var(&addr, "a", "address in the page to erase")
	fs.BoolVar(&chip, "chip", false, "erase main flash and NVR1-7")
	fs.Parse(args)

	c, done := newController()
	defer done()

	var err error
	if chip {
		err = c.ChipErase(uint32(addr))
	} else {
		err = c.PageErase(uint32(addr))
	}
	if err != nil {
		fatalf("erase failed: %v", err)
	}
}

func eepromCommand(args []string) {
	fs := flag.NewFlagSet("eeprom", flag.ExitOnError)
	var (
		addr  = uint32Flag(efc.EEPROMBase)
		width = widthFlag(efc.Word)
	)
	fs.Var(&addr, "a", "address")
	fs.Var(&width, "w", "access width: b, h or w")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatalUsage("usage: efc eeprom [-a addr] [-w width] value")
	}

	c, done := newController()
	defer done()

	if err := c.EEPROMWrite(uint32(addr), efc.Width(width), parseValue(fs.Arg(0))); err != nil {
		fatalf("eeprom write failed: %v", err)
	}
}
