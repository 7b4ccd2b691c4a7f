// Package top708 adapts the multi-framer dispatcher and protocol parsers
// in pkg/gnssframe to a concrete serial receiver: a TOPGNSS TOP708, which
// emits NMEA-0183, UBX, and RTCM3.3 interleaved on one UART at a
// configurable baud rate. It owns the receiver-specific PMTK command set
// (output message selection, update rate, positioning mode, satellite
// system mask) that spec.md §1 calls out as the one thing genuinely
// specific to a receiver model, not part of the protocol-agnostic core.
package top708

import (
	"time"

	"go.bug.st/serial/enumerator"
)

// Protocol names surfaced through MonitorConfig and logging.
const (
	ProtocolNMEA = "NMEA-0183"
	ProtocolRTCM = "RTCM3.3"
	ProtocolUBX  = "UBX"
)

// SerialPort is the minimal surface Device needs from a serial
// connection, grounded on the sibling example's internal/port.SerialPort
// — small enough to fake in tests without a real UART.
type SerialPort interface {
	Open(portName string, baudRate int) error
	Close() error
	Read(buffer []byte) (int, error)
	Write(data []byte) (int, error)
	SetReadTimeout(timeout time.Duration) error
	ListPorts() ([]string, error)
	GetPortDetails() ([]*enumerator.PortDetails, error)
}

// GNSSDevice is the behavior any GNSS receiver driver in this tree
// exposes to callers: connection lifecycle, raw I/O, and command
// delivery. TOP708Device is the only implementation; the interface
// exists so higher layers (internal/worker, cmd/gnssframed) don't need
// to know the concrete receiver model.
type GNSSDevice interface {
	Connect(portName string, baudRate int) error
	Disconnect() error
	IsConnected() bool
	VerifyConnection(timeout time.Duration) bool
	ReadRaw(buffer []byte) (int, error)
	WriteRaw(data []byte) (int, error)
	WriteCommand(command string) error
	ChangeBaudRate(portName string, baudRate int) error
	GetAvailablePorts() ([]string, error)
	GetPortDetails() ([]PortDetail, error)
}

// PortDetail is a trimmed, value-typed view of enumerator.PortDetails —
// VID/PID decoded to uint16 so callers don't carry a hex-string
// dependency just to compare two ports.
type PortDetail struct {
	Name    string
	IsUSB   bool
	VID     uint16
	PID     uint16
	Product string
}

// FrameHandler receives every unit the multi-framer dispatcher completes
// while monitoring a device, already validated and folded into the
// shared database (spec.md §4.3, §4.7). Each message's Dropped field
// distinguishes a record update from a policy drop (no fix, inactive
// status, ...); Err is set only for structural/semantic parser errors,
// never for framing or integrity failures (those are handled inside
// Bridge's dispatcher and never reach the handler).
type FrameHandler interface {
	HandleNMEA(sentence NMEASentence)
	HandleUBX(message UBXMessage)
	HandleRTCM(message RTCMMessage)
}

// NMEASentence is a framed, checksum-verified NMEA sentence together
// with the outcome of routing it through pkg/gnssframe/nmea.
type NMEASentence struct {
	Raw     string
	Talker  string
	Type    string
	Dropped bool
	Err     error
}

// RTCMMessage is a framed, CRC-verified RTCM message together with its
// classified message number.
type RTCMMessage struct {
	Raw           []byte
	MessageNumber int
	System        string
	Keepalive     bool
	Dropped       bool
	Err           error
}

// UBXMessage is a framed, checksum-verified UBX packet together with the
// outcome of routing it through pkg/gnssframe/ubx.
type UBXMessage struct {
	Raw     []byte
	Class   byte
	ID      byte
	Dropped bool
	Err     error
}

// MonitorConfig holds configuration for a Monitor run. Unlike the
// teacher's per-protocol configuration, one Monitor run always frames
// all three protocols simultaneously (spec.md §4.3) — Handler callbacks
// simply go unused for protocols the caller doesn't care about.
type MonitorConfig struct {
	BufferSize   int
	PollInterval time.Duration
	Handler      FrameHandler
}

// DefaultMonitorConfig returns a MonitorConfig sized for mixed
// NMEA/UBX/RTCM traffic: the RTCM maximum (1029 bytes) dominates.
func DefaultMonitorConfig(handler FrameHandler) MonitorConfig {
	return MonitorConfig{
		BufferSize:   2048,
		PollInterval: 100 * time.Millisecond,
		Handler:      handler,
	}
}
