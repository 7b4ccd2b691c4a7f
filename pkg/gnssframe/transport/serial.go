// Package transport adapts the receiver-side transports — a serial device
// and a UDP datagram socket. Serial is a plain io.ReadWriteCloser the
// worker loop reads bytes from, so the dispatcher and framers never need
// to know which device is underneath; UDP instead carries the datagram
// envelope through Send and Receive. Grounded on the teacher's OpenSerial/
// SerialComm (hardware/topgnss/top708 and the former pkg/gnssgo/stream),
// trimmed of the TCP-forwarding and NTRIP-specific branches that have no
// home in this core.
package transport

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/trace"
)

const (
	defaultBaudRate = 9600
	defaultDataBits = 8
	defaultStopBits = 1
	defaultTimeout  = 100 * time.Millisecond
)

// Serial wraps a go.bug.st/serial port with the mutex discipline the
// worker loop and any future forwarding path both need.
type Serial struct {
	port serial.Port
	mode *serial.Mode
	lock sync.Mutex
}

// OpenSerial opens a device at path using a "brate[:bsize[:parity[:stopb]]]"
// settings suffix (spec.md §6's `-D <device>`/`-b <bps>` CLI flags feed this
// through Config before the colon-delimited suffix is appended by the
// caller if a non-default rate is wanted).
func OpenSerial(path string, settings string) (*Serial, error) {
	brate, bsize, stopb := defaultBaudRate, defaultDataBits, defaultStopBits
	parity := serial.NoParity

	if settings != "" {
		parts := strings.Split(settings, ":")
		if len(parts) > 0 && parts[0] != "" {
			if v, err := strconv.Atoi(parts[0]); err == nil {
				brate = v
			}
		}
		if len(parts) > 1 && parts[1] != "" {
			if v, err := strconv.Atoi(parts[1]); err == nil {
				bsize = v
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			switch parts[2] {
			case "E", "e":
				parity = serial.EvenParity
			case "O", "o":
				parity = serial.OddParity
			}
		}
		if len(parts) > 3 && parts[3] != "" {
			if v, err := strconv.Atoi(parts[3]); err == nil {
				stopb = v
			}
		}
	}

	mode := &serial.Mode{BaudRate: brate, DataBits: bsize, Parity: parity, StopBits: serial.OneStopBit}
	if stopb == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	trace.T(3, "transport: opening serial %s baud=%d bits=%d\n", path, brate, bsize)
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, gnsserr.Wrap(gnsserr.ENODATA, fmt.Sprintf("serial open %s", path), err)
	}
	if err := port.SetReadTimeout(defaultTimeout); err != nil {
		port.Close()
		return nil, gnsserr.Wrap(gnsserr.ENODATA, "serial set read timeout", err)
	}
	return &Serial{port: port, mode: mode}, nil
}

func (s *Serial) Read(buf []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.port.Read(buf)
}

func (s *Serial) Write(buf []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.port.Write(buf)
}

func (s *Serial) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.port.Close()
}

// SetBaudRate closes and reopens the underlying port at a new baud rate —
// go.bug.st/serial, like the teacher's dependency, has no live baud-rate
// change primitive.
func (s *Serial) SetBaudRate(path string, brate int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.port.Close()
	s.mode.BaudRate = brate
	port, err := serial.Open(path, s.mode)
	if err != nil {
		return gnsserr.Wrap(gnsserr.ENODATA, "serial reopen at new baud rate", err)
	}
	if err := port.SetReadTimeout(defaultTimeout); err != nil {
		port.Close()
		return gnsserr.Wrap(gnsserr.ENODATA, "serial set read timeout", err)
	}
	s.port = port
	return nil
}
