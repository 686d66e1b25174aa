package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/albenik/go-serial/v2"
	"github.com/gentam/efc"
	"github.com/gentam/efc/sim"
	"periph.io/x/conn/v3/gpio"
)

type target struct {
	bus   efc.Bus
	dev   *efc.Device // -bus ftdi only
	close func()
}

// openTarget opens the -bus target. fatalf closes it before exiting.
func openTarget() (*target, error) {
	t, err := dialTarget()
	if err != nil {
		return nil, err
	}
	t.close = sync.OnceFunc(t.close)
	closeTarget = t.close
	return t, nil
}

func dialTarget() (*target, error) {
	switch busName {
	case "sim":
		return &target{bus: sim.New(), close: func() {}}, nil
	case "ftdi":
		d, err := efc.NewDevice()
		if err != nil {
			return nil, err
		}
		// let the core run so the bridge answers
		if err := d.ResetTarget(gpio.High); err != nil {
			d.Close()
			return nil, fmt.Errorf("release target reset: %w", err)
		}
		return &target{
			bus: d.Bridge,
			dev: d,
			close: func() {
				if err := d.Close(); err != nil {
					fmt.Fprintln(os.Stderr, "close adapter:", err)
				}
			},
		}, nil
	case "serial":
		p, err := serial.Open(portName,
			serial.WithBaudrate(baudRate),
			serial.WithReadTimeout(readTimeoutMs),
		)
		if err != nil {
			return nil, err
		}
		sc := &efc.StreamConn{RW: &timeoutPort{p}, Name: portName}
		return &target{
			bus:   efc.NewBridge(sc, nil),
			close: func() { p.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown bus %q", busName)
}

const readTimeoutMs = 500

var errReadTimeout = errors.New("serial read timeout")

// timeoutPort turns the empty read the port returns on timeout into an error.
type timeoutPort struct {
	*serial.Port
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, errReadTimeout
	}
	return n, err
}
