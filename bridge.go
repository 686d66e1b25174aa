package efc

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Debug bridge commands. A command frame is
//
//	cmd | width | addr[31:24] | addr[23:16] | addr[15:8] | addr[7:0] | payload
//
// A write carries the value as 4 little-endian bytes. On a full-duplex link a
// read clocks one turnaround byte and then 4 little-endian data bytes; on a
// half-duplex link the bridge answers the header with the 4 data bytes.
const (
	bridgeCmdRead  = 0x0B
	bridgeCmdWrite = 0x02

	bridgeHeaderLen = 6
)

// Bridge is a Bus reaching the EFC through a debug bridge on the target,
// over SPI or a UART.
type Bridge struct {
	conn conn.Conn
	cs   gpio.PinOut
}

// NewBridge returns a bridge talking over c. cs is driven low around each
// frame; pass nil when the transport delimits frames itself.
func NewBridge(c conn.Conn, cs gpio.PinOut) *Bridge {
	return &Bridge{conn: c, cs: cs}
}

func (b *Bridge) String() string {
	return "bridge(" + b.conn.String() + ")"
}

// tx wraps a transaction with CS assertion.
func (b *Bridge) tx(w, r []byte) (err error) {
	if b.cs == nil {
		return b.conn.Tx(w, r)
	}
	if err = b.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := b.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = b.conn.Tx(w, r)
	return
}

func bridgeHeader(cmd byte, addr uint32, w Width, extra int) []byte {
	buf := make([]byte, bridgeHeaderLen, bridgeHeaderLen+extra)
	buf[0] = cmd
	buf[1] = byte(w)
	binary.BigEndian.PutUint32(buf[2:], addr)
	return buf
}

func (b *Bridge) Read(addr uint32, w Width) (uint32, error) {
	var data []byte
	if b.conn.Duplex() == conn.Full {
		buf := bridgeHeader(bridgeCmdRead, addr, w, 5)
		buf = append(buf, 0, 0, 0, 0, 0) // turnaround + data
		if err := b.tx(buf, buf); err != nil {
			return 0, fmt.Errorf("bridge read 0x%08X: %w", addr, err)
		}
		data = buf[bridgeHeaderLen+1:]
	} else {
		data = make([]byte, 4)
		if err := b.tx(bridgeHeader(bridgeCmdRead, addr, w, 0), data); err != nil {
			return 0, fmt.Errorf("bridge read 0x%08X: %w", addr, err)
		}
	}
	return binary.LittleEndian.Uint32(data) & w.Mask(), nil
}

func (b *Bridge) Write(addr uint32, w Width, v uint32) error {
	buf := bridgeHeader(bridgeCmdWrite, addr, w, 4)
	buf = binary.LittleEndian.AppendUint32(buf, v&w.Mask())

	var r []byte
	if b.conn.Duplex() == conn.Full {
		r = buf
	}
	if err := b.tx(buf, r); err != nil {
		return fmt.Errorf("bridge write 0x%08X: %w", addr, err)
	}
	return nil
}
