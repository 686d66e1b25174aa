package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gentam/efc"
	"periph.io/x/conn/v3/physic"
)

var (
	busName     string
	portName    string
	baudRate    int
	coreClock   = 24 * physic.MegaHertz
	pollLimit   int
	pollTimeout time.Duration
	verbose     bool
)

// closeTarget releases the open target, if any.
var closeTarget = func() {}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	closeTarget()
	os.Exit(1)
}

func fatalUsage(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	closeTarget()
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
	efc [flags] <command> [arguments]

Commands:
	info	 print adapter and controller state
	init	 program the timing registers for -clock
	read	 read memory or registers
	program	 program a value or a file
	erase	 erase a page or the whole chip
	eeprom	 erase, program and verify one unit
	irq	 enable or disable EFC interrupts

Flags:
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.StringVar(&busName, "bus", "sim", "register bus: sim, ftdi or serial")
	flag.StringVar(&portName, "port", "/dev/ttyUSB0", "serial port for -bus serial")
	flag.IntVar(&baudRate, "baud", 115200, "baud rate for -bus serial")
	flag.Var(&coreClock, "clock", "target core clock, e.g. 24MHz")
	flag.IntVar(&pollLimit, "poll-limit", 0, "give up after n busy status reads (0: never)")
	flag.DurationVar(&pollTimeout, "poll-timeout", 0, "give up polling after this long (0: never)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	if verbose {
		efc.SetLogLevel(slog.LevelDebug)
	}

	switch cmd := flag.Arg(0); cmd {
	case "info":
		infoCommand()
	case "init":
		initCommand()
	case "read":
		readCommand(flag.Args()[1:])
	case "program":
		programCommand(flag.Args()[1:])
	case "erase":
		eraseCommand(flag.Args()[1:])
	case "eeprom":
		eepromCommand(flag.Args()[1:])
	case "irq":
		irqCommand(flag.Args()[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", cmd)
		usage()
	}
}

// newController opens the bus selected by -bus. The returned function
// releases it.
func newController() (*efc.Controller, func()) {
	t, err := openTarget()
	if err != nil {
		fatalf("open %s bus: %v", busName, err)
	}
	c := efc.New(t.bus, efc.FixedClock(coreClock),
		efc.WithPollLimit(pollLimit),
		efc.WithPollTimeout(pollTimeout),
	)
	return c, t.close
}

// uint32Flag accepts decimal, 0x hex and 0b binary values.
type uint32Flag uint32

func (f *uint32Flag) String() string { return fmt.Sprintf("0x%08X", uint32(*f)) }

func (f *uint32Flag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*f = uint32Flag(v)
	return nil
}

type widthFlag efc.Width

func (f *widthFlag) String() string { return efc.Width(*f).String() }

func (f *widthFlag) Set(s string) error {
	w, err := efc.ParseWidth(s)
	if err != nil {
		return err
	}
	*f = widthFlag(w)
	return nil
}

func parseValue(s string) uint32 {
	var v uint32Flag
	if err := v.Set(s); err != nil {
		fatalUsage("invalid value %q: %v", s, err)
	}
	return uint32(v)
}
