package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/gentam/efc"
)

func readCommand(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	var (
		addr       uint32Flag
		nread      int
		statusOnly bool
		outFile    string
	)
	fs.Var(&addr, "a", "start address")
	fs.IntVar(&nread, "n", 256, "number of bytes to read")
	fs.BoolVar(&statusOnly, "s", false, "just print the status register")
	fs.StringVar(&outFile, "o", "", "output file (default: hexdump)")
	fs.Parse(args)

	c, done := newController()
	defer done()

	if statusOnly {
		sts, err := c.Status()
		if err != nil {
			fatalf("read status failed: %v", err)
		}
		fmt.Println(sts)
		return
	}

	data, err := readMemory(c, uint32(addr), nread)
	if err != nil {
		fatalf("read failed: %v", err)
	}
	if outFile == "" {
		fmt.Println(hex.Dump(data))
		return
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "write file failed:", err)
	}
}

// readMemory reads n bytes starting at addr, using word accesses where the
// address allows it.
func readMemory(c *efc.Controller, addr uint32, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		w := efc.Byte
		if addr&3 == 0 && n-len(out) >= 4 {
			w = efc.Word
		}
		v, err := c.Read(addr, w)
		if err != nil {
			return out, err
		}
		if w == efc.Word {
			out = binary.LittleEndian.AppendUint32(out, v)
		} else {
			out = append(out, byte(v))
		}
		addr += uint32(w)
	}
	return out, nil
}
