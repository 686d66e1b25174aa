package efc

import (
	"io"

	"periph.io/x/conn/v3"
)

// StreamConn is a half-duplex conn.Conn over a byte stream such as a UART
// port: Tx writes w, then reads exactly len(r) bytes.
type StreamConn struct {
	RW   io.ReadWriter
	Name string
}

func (s *StreamConn) String() string {
	if s.Name == "" {
		return "stream"
	}
	return s.Name
}

func (s *StreamConn) Duplex() conn.Duplex { return conn.Half }

func (s *StreamConn) Tx(w, r []byte) error {
	if len(w) > 0 {
		if _, err := s.RW.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if _, err := io.ReadFull(s.RW, r); err != nil {
			return err
		}
	}
	return nil
}
