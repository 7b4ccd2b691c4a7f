package top708

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// GNSSSerialPort implements SerialPort over a real go.bug.st/serial UART,
// grounded on the sibling example's internal/port.GNSSSerialPort. Open
// records the port name it was given; baud-rate changes are done by the
// caller closing and reopening the port (see TOP708Device.ChangeBaudRate),
// and GetPortDetails enumerates every port on the system.
type GNSSSerialPort struct {
	port     serial.Port
	mode     *serial.Mode
	portName string
	timeout  time.Duration
}

// NewGNSSSerialPort returns a SerialPort ready for Open.
func NewGNSSSerialPort() *GNSSSerialPort {
	return &GNSSSerialPort{
		mode:    &serial.Mode{DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit},
		timeout: 500 * time.Millisecond,
	}
}

func (p *GNSSSerialPort) Open(portName string, baudRate int) error {
	if baudRate > 0 {
		p.mode.BaudRate = baudRate
	}
	port, err := serial.Open(portName, p.mode)
	if err != nil {
		return fmt.Errorf("top708: open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(p.timeout); err != nil {
		port.Close()
		return fmt.Errorf("top708: set read timeout: %w", err)
	}
	p.port = port
	p.portName = portName
	return nil
}

func (p *GNSSSerialPort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

func (p *GNSSSerialPort) Read(buffer []byte) (int, error) {
	if p.port == nil {
		return 0, fmt.Errorf("top708: port not open")
	}
	return p.port.Read(buffer)
}

func (p *GNSSSerialPort) Write(data []byte) (int, error) {
	if p.port == nil {
		return 0, fmt.Errorf("top708: port not open")
	}
	return p.port.Write(data)
}

func (p *GNSSSerialPort) SetReadTimeout(timeout time.Duration) error {
	p.timeout = timeout
	if p.port == nil {
		return nil
	}
	return p.port.SetReadTimeout(timeout)
}

func (p *GNSSSerialPort) ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

func (p *GNSSSerialPort) GetPortDetails() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// parseHexToUint16 parses a "0x..." or bare hex VID/PID string as
// reported by the enumerator.
func parseHexToUint16(hexStr string) (uint16, error) {
	hexStr = strings.TrimPrefix(strings.TrimPrefix(hexStr, "0x"), "0X")
	v, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
