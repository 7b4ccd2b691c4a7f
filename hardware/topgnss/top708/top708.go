package top708

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// TOP708Device implements GNSSDevice for a TOPGNSS TOP708 receiver over
// a serial UART, grounded on the teacher's connection-lifecycle and
// PMTK-command methods but with logging moved to logrus (spec.md §2
// ambient stack) and monitoring rebuilt on top of Bridge instead of
// string scanning.
type TOP708Device struct {
	serialPort SerialPort
	connected  bool
	mutex      sync.Mutex
	stopChan   chan struct{}
	log        *logrus.Entry
	portName   string
	baudRate   int
	retryCount int
	retryDelay time.Duration
}

// DefaultBaudRate is the TOP708's factory baud rate.
const DefaultBaudRate = 38400

// NewTOP708Device creates a device driver over serialPort. log may be
// nil, in which case an entry on the standard logrus logger carrying a
// component=top708 field is used.
func NewTOP708Device(serialPort SerialPort, log *logrus.Entry) *TOP708Device {
	if log == nil {
		log = logrus.WithField("component", "top708")
	}
	return &TOP708Device{
		serialPort: serialPort,
		log:        log,
		retryCount: 3,
		retryDelay: time.Second,
	}
}

// SetRetryOptions configures Connect's retry behavior.
func (d *TOP708Device) SetRetryOptions(retryCount int, retryDelay time.Duration) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.retryCount = retryCount
	d.retryDelay = retryDelay
}

// Connect opens portName at baudRate (DefaultBaudRate if <= 0), retrying
// up to retryCount times with retryDelay between attempts.
func (d *TOP708Device) Connect(portName string, baudRate int) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.connected {
		return fmt.Errorf("top708: already connected")
	}
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	d.portName, d.baudRate = portName, baudRate
	d.log.WithFields(logrus.Fields{"port": portName, "baud": baudRate}).Info("connecting")

	var err error
	for attempt := 0; attempt <= d.retryCount; attempt++ {
		if attempt > 0 {
			d.log.WithField("attempt", attempt).Info("retrying connection")
			time.Sleep(d.retryDelay)
		}
		if err = d.serialPort.Open(portName, baudRate); err == nil {
			d.connected = true
			d.stopChan = make(chan struct{})
			d.log.Info("connected")
			return nil
		}
		d.log.WithError(err).Warn("connection attempt failed")
	}
	return fmt.Errorf("top708: connect after %d attempts: %w", d.retryCount+1, err)
}

// Disconnect stops any active Monitor and closes the port.
func (d *TOP708Device) Disconnect() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.connected {
		return nil
	}
	if d.stopChan != nil {
		close(d.stopChan)
		d.stopChan = nil
	}
	err := d.serialPort.Close()
	d.connected = false
	if err != nil {
		return fmt.Errorf("top708: disconnect: %w", err)
	}
	d.log.Info("disconnected")
	return nil
}

// IsConnected reports whether the port is currently open.
func (d *TOP708Device) IsConnected() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.connected
}

// VerifyConnection reads for up to timeout looking for a recognizable
// NMEA talker prefix, confirming the receiver is actually producing data
// rather than just that the port opened.
func (d *TOP708Device) VerifyConnection(timeout time.Duration) bool {
	if !d.IsConnected() {
		return false
	}
	buffer := make([]byte, 1024)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		n, err := d.serialPort.Read(buffer)
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if n > 0 && (strings.Contains(string(buffer[:n]), "$GN") || strings.Contains(string(buffer[:n]), "$GP")) {
			return true
		}
	}
	return false
}

// ReadRaw reads whatever bytes the port currently has buffered.
func (d *TOP708Device) ReadRaw(buffer []byte) (int, error) {
	if !d.IsConnected() {
		return 0, fmt.Errorf("top708: not connected")
	}
	return d.serialPort.Read(buffer)
}

// WriteRaw writes data verbatim to the port.
func (d *TOP708Device) WriteRaw(data []byte) (int, error) {
	if !d.IsConnected() {
		return 0, fmt.Errorf("top708: not connected")
	}
	return d.serialPort.Write(data)
}

// WriteCommand sends an NMEA-style command line, appending CRLF if the
// caller didn't already.
func (d *TOP708Device) WriteCommand(command string) error {
	if !d.IsConnected() {
		return fmt.Errorf("top708: not connected")
	}
	if !strings.HasSuffix(command, "\r\n") {
		command += "\r\n"
	}
	_, err := d.serialPort.Write([]byte(command))
	return err
}

func pmtkChecksum(body string) string {
	var c byte
	for i := 0; i < len(body); i++ {
		c ^= body[i]
	}
	return fmt.Sprintf("%02X", c)
}

func pmtkCommand(body string) string {
	return fmt.Sprintf("%s*%s", body, pmtkChecksum(body[1:]))
}

// WriteCommandWithResponse sends command and reads back whatever the
// receiver replies with inside timeout.
func (d *TOP708Device) WriteCommandWithResponse(command string, timeout time.Duration) (string, error) {
	if err := d.WriteCommand(command); err != nil {
		return "", err
	}
	if err := d.serialPort.SetReadTimeout(timeout); err != nil {
		return "", fmt.Errorf("top708: set read timeout: %w", err)
	}
	buffer := make([]byte, 1024)
	n, err := d.serialPort.Read(buffer)
	if err != nil {
		return "", fmt.Errorf("top708: read response: %w", err)
	}
	return string(buffer[:n]), nil
}

// ChangeBaudRate sends the TOP708's baud-rate change command, then closes
// and reopens the port at the new rate. portName is required because
// go.bug.st/serial has no live baud-rate change and no "current port
// name" accessor.
func (d *TOP708Device) ChangeBaudRate(portName string, baudRate int) error {
	if !d.IsConnected() {
		return fmt.Errorf("top708: not connected")
	}
	d.log.WithField("baud", baudRate).Info("changing baud rate")
	if err := d.WriteCommand(pmtkCommand(fmt.Sprintf("$PMTK251,%d", baudRate))); err != nil {
		d.log.WithError(err).Warn("baud rate command failed, proceeding with reconnect anyway")
	} else {
		time.Sleep(500 * time.Millisecond)
	}
	if err := d.Disconnect(); err != nil {
		return err
	}
	return d.Connect(portName, baudRate)
}

// GetAvailablePorts lists serial port device names visible to the OS.
func (d *TOP708Device) GetAvailablePorts() ([]string, error) {
	return d.serialPort.ListPorts()
}

// GetPortDetails lists serial ports with USB vendor/product info decoded
// to uint16 for easy comparison against known GNSS receiver VID/PIDs.
func (d *TOP708Device) GetPortDetails() ([]PortDetail, error) {
	details, err := d.serialPort.GetPortDetails()
	if err != nil {
		return nil, fmt.Errorf("top708: port details: %w", err)
	}
	result := make([]PortDetail, 0, len(details))
	for _, pd := range details {
		var vid, pid uint16
		if pd.IsUSB {
			vid, _ = parseHexToUint16(pd.VID)
			pid, _ = parseHexToUint16(pd.PID)
		}
		result = append(result, PortDetail{
			Name: pd.Name, IsUSB: pd.IsUSB, VID: vid, PID: pid, Product: pd.Product,
		})
	}
	return result, nil
}

// Monitor starts a background goroutine that reads the port, frames
// NMEA/UBX/RTCM units with Bridge, and invokes config.Handler (and
// populates db) for each completed unit, until Disconnect or StopMonitoring
// is called.
func (d *TOP708Device) Monitor(db *gnssdb.DB, config MonitorConfig) (*Bridge, error) {
	if !d.IsConnected() {
		return nil, fmt.Errorf("top708: not connected")
	}
	bridge := NewBridge(db, config.Handler)
	buffer := make([]byte, config.BufferSize)

	d.mutex.Lock()
	stop := d.stopChan
	d.mutex.Unlock()

	go func() {
		d.log.Info("monitor started")
		for {
			select {
			case <-stop:
				d.log.Info("monitor stopped")
				return
			default:
			}
			n, err := d.serialPort.Read(buffer)
			if err != nil {
				time.Sleep(config.PollInterval)
				continue
			}
			if n > 0 {
				bridge.Feed(buffer[:n])
			}
		}
	}()
	return bridge, nil
}

// StopMonitoring stops an in-progress Monitor run, if any, without
// closing the port.
func (d *TOP708Device) StopMonitoring() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopChan != nil {
		close(d.stopChan)
		d.stopChan = make(chan struct{})
	}
}

// ConfigureOutputMessages enables or disables NMEA sentence families via
// PMTK314. Interval mode (period > 0 messages per fix) is not exposed —
// only on/off, matching what higher layers in this tree actually need.
func (d *TOP708Device) ConfigureOutputMessages(messages map[string]bool) error {
	order := []string{"GLL", "RMC", "VTG", "GGA", "GSA", "GSV", "GRS", "GST"}
	values := make([]string, len(order))
	for i, name := range order {
		if messages[name] {
			values[i] = "1"
		} else {
			values[i] = "0"
		}
	}
	cmd := pmtkCommand("$PMTK314," + strings.Join(values, ",") + ",0,0,0,0,0,0,0,0,0,0,0")
	resp, err := d.WriteCommandWithResponse(cmd, time.Second)
	if err != nil {
		return fmt.Errorf("top708: configure output messages: %w", err)
	}
	if !strings.Contains(resp, "$PMTK001,314,3") {
		return fmt.Errorf("top708: unexpected response: %s", resp)
	}
	return nil
}

// ConfigureUpdateRate sets the fix update period via PMTK220, in the
// range [100, 10000] ms.
func (d *TOP708Device) ConfigureUpdateRate(rateMs int) error {
	if rateMs < 100 || rateMs > 10000 {
		return fmt.Errorf("top708: update rate %dms out of range [100,10000]", rateMs)
	}
	resp, err := d.WriteCommandWithResponse(pmtkCommand(fmt.Sprintf("$PMTK220,%d", rateMs)), time.Second)
	if err != nil {
		return fmt.Errorf("top708: configure update rate: %w", err)
	}
	if !strings.Contains(resp, "$PMTK001,220,3") {
		return fmt.Errorf("top708: unexpected response: %s", resp)
	}
	return nil
}

// PositioningMode selects the receiver's dynamic model via PMTK886.
type PositioningMode int

const (
	PositioningModeNormal     PositioningMode = 0
	PositioningModeStationary PositioningMode = 1
	PositioningModeWalking    PositioningMode = 2
	PositioningModeVehicle    PositioningMode = 3
	PositioningModeSea        PositioningMode = 4
	PositioningModeAirborne   PositioningMode = 5
)

// ConfigurePositioningMode sends PMTK886 to select a dynamic model tuned
// for the expected motion profile.
func (d *TOP708Device) ConfigurePositioningMode(mode PositioningMode) error {
	if mode < PositioningModeNormal || mode > PositioningModeAirborne {
		return fmt.Errorf("top708: positioning mode %d out of range", mode)
	}
	resp, err := d.WriteCommandWithResponse(pmtkCommand(fmt.Sprintf("$PMTK886,%d", mode)), time.Second)
	if err != nil {
		return fmt.Errorf("top708: configure positioning mode: %w", err)
	}
	if !strings.Contains(resp, "$PMTK001,886,3") {
		return fmt.Errorf("top708: unexpected response: %s", resp)
	}
	return nil
}

// SatelliteSystem is a bitmask of constellations to enable via PMTK353.
type SatelliteSystem int

const (
	SatelliteSystemGPS     SatelliteSystem = 1 << 0
	SatelliteSystemGLONASS SatelliteSystem = 1 << 1
	SatelliteSystemGalileo SatelliteSystem = 1 << 2
	SatelliteSystemBeiDou  SatelliteSystem = 1 << 3
	SatelliteSystemQZSS    SatelliteSystem = 1 << 4
	SatelliteSystemAll     SatelliteSystem = SatelliteSystemGPS | SatelliteSystemGLONASS |
		SatelliteSystemGalileo | SatelliteSystemBeiDou | SatelliteSystemQZSS
)

func bit(set SatelliteSystem, mask SatelliteSystem) string {
	if set&mask != 0 {
		return "1"
	}
	return "0"
}

// ConfigureSatelliteSystems enables or disables constellations via
// PMTK353.
func (d *TOP708Device) ConfigureSatelliteSystems(systems SatelliteSystem) error {
	cmd := pmtkCommand(fmt.Sprintf("$PMTK353,%s,%s,%s,%s,%s",
		bit(systems, SatelliteSystemGPS), bit(systems, SatelliteSystemGLONASS),
		bit(systems, SatelliteSystemGalileo), bit(systems, SatelliteSystemBeiDou),
		bit(systems, SatelliteSystemQZSS)))
	resp, err := d.WriteCommandWithResponse(cmd, time.Second)
	if err != nil {
		return fmt.Errorf("top708: configure satellite systems: %w", err)
	}
	if !strings.Contains(resp, "$PMTK001,353,3") {
		return fmt.Errorf("top708: unexpected response: %s", resp)
	}
	return nil
}
