// Package led drives the front-panel LED indicator. The physical
// panel is an external collaborator (§6 "Serial (LED panel)"); this
// package owns the single-byte protocol and repeat cadence the
// Supervisor expects, with a null implementation for devices that
// have no panel wired up.
package led

import (
	"time"

	"go.bug.st/serial"
)

// repeatPeriod is how often the last-written color is re-sent to the
// panel (§6 "Writes repeat every 500 ms").
const repeatPeriod = 500 * time.Millisecond

// Writer accepts single-byte color tokens for the panel (§6).
type Writer interface {
	WriteColor(c byte) error
	Close() error
}

// NullWriter discards writes; used when no LED panel is configured.
type NullWriter struct{}

func (NullWriter) WriteColor(byte) error { return nil }
func (NullWriter) Close() error          { return nil }

// SerialWriter drives a real panel over a serial device, repeating the
// last color every 500ms so the panel keeps refreshing even if the
// Supervisor's 2s evaluation doesn't change it.
type SerialWriter struct {
	port serial.Port

	last  chan byte
	stop  chan struct{}
}

// NewSerialWriter opens portName at 9600 baud, 8N1 (matching the
// single-byte token protocol in §6).
func NewSerialWriter(portName string) (*SerialWriter, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	w := &SerialWriter{
		port: port,
		last: make(chan byte, 1),
		stop: make(chan struct{}),
	}
	w.last <- 'A'
	go w.repeatLoop()
	return w, nil
}

// WriteColor sends c immediately and becomes the value repeated every
// 500ms thereafter.
func (w *SerialWriter) WriteColor(c byte) error {
	select {
	case <-w.last:
	default:
	}
	w.last <- c
	_, err := w.port.Write([]byte{c})
	return err
}

func (w *SerialWriter) repeatLoop() {
	ticker := time.NewTicker(repeatPeriod)
	defer ticker.Stop()
	var current byte = 'A'
	for {
		select {
		case <-w.stop:
			return
		case c := <-w.last:
			current = c
			w.last <- c
		case <-ticker.C:
			_, _ = w.port.Write([]byte{current})
		}
	}
}

// Close stops the repeat loop and the serial port.
func (w *SerialWriter) Close() error {
	close(w.stop)
	return w.port.Close()
}
