package efc

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// FT2232H USB IDs.
const (
	ftdiVendorID  = 0x0403
	ft2232HDevice = 0x6010
)

// bridgeClock is the fastest SCK the target's bridge slave accepts.
const bridgeClock = 10 * physic.MegaHertz

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// Device is an FT2232H adapter wired to the SPI debug bridge of the target.
//
//	ADBUS0 | SCK
//	ADBUS1 | MOSI
//	ADBUS2 | MISO
//	ADBUS4 | bridge CS
//	ADBUS7 | target nRST
type Device struct {
	FTDI   *ftdi.FT232H
	Bridge *Bridge

	port  spi.PortCloser
	reset gpio.PinIO
}

// NewDevice opens the first FT2232H and connects to the bridge in SPI mode 0.
// [FTDI AN_114|1.2] MPSSE only supports modes 0 and 2.
func NewDevice() (*Device, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("host initialization failed: %w", err)
	}
	ft, err := openFT2232H()
	if err != nil {
		return nil, err
	}

	port, err := ft.SPI()
	if err != nil {
		return nil, fmt.Errorf("FT2232H SPI port: %w", err)
	}
	c, err := port.Connect(bridgeClock, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("FT2232H SPI connect at %s: %w", bridgeClock, err)
	}

	return &Device{
		FTDI:   ft,
		Bridge: NewBridge(c, ft.D4),
		port:   port,
		reset:  ft.D7,
	}, nil
}

// ResetTarget drives the target reset line: low holds the target in reset,
// high lets it run.
func (d *Device) ResetTarget(l gpio.Level) error {
	return d.reset.Out(l)
}

// Close releases the target from reset and closes the SPI port. The bridge
// must not be used afterwards.
func (d *Device) Close() error {
	rerr := d.ResetTarget(gpio.High)
	if err := d.port.Close(); err != nil {
		return err
	}
	return rerr
}

func openFT2232H() (*ftdi.FT232H, error) {
	var info ftdi.Info
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != ftdiVendorID || info.DevID != ft2232HDevice {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			return ft, nil
		}
	}
	return nil, fmt.Errorf("no FT2232H (%04x:%04x) found", ftdiVendorID, ft2232HDevice)
}
