package top708

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
)

// MockSerialPort is a mock implementation of the SerialPort interface.
type MockSerialPort struct {
	mock.Mock
	connected bool
	data      []byte
	written   []byte
}

func (p *MockSerialPort) Open(portName string, baudRate int) error {
	args := p.Called(portName, baudRate)
	p.connected = args.Error(0) == nil
	return args.Error(0)
}

func (p *MockSerialPort) Close() error {
	args := p.Called()
	p.connected = false
	return args.Error(0)
}

func (p *MockSerialPort) Read(buffer []byte) (int, error) {
	args := p.Called(buffer)
	if len(p.data) > 0 {
		copy(buffer, p.data)
	}
	return args.Int(0), args.Error(1)
}

func (p *MockSerialPort) Write(data []byte) (int, error) {
	args := p.Called(data)
	p.written = append(p.written, data...)
	return args.Int(0), args.Error(1)
}

func (p *MockSerialPort) SetReadTimeout(timeout time.Duration) error {
	args := p.Called(timeout)
	return args.Error(0)
}

func (p *MockSerialPort) ListPorts() ([]string, error) {
	args := p.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (p *MockSerialPort) GetPortDetails() ([]*enumerator.PortDetails, error) {
	args := p.Called()
	return args.Get(0).([]*enumerator.PortDetails), args.Error(1)
}

func TestNewTOP708Device(t *testing.T) {
	serialPort := new(MockSerialPort)
	device := NewTOP708Device(serialPort, nil)
	assert.NotNil(t, device)
	assert.Equal(t, serialPort, device.serialPort)
	assert.False(t, device.connected)
}

func TestTOP708DeviceConnect(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))
	assert.True(t, device.IsConnected())
	serialPort.AssertCalled(t, "Open", "COM1", 38400)
}

func TestTOP708DeviceConnectDefaultBaud(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", DefaultBaudRate).Return(nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 0))
	serialPort.AssertCalled(t, "Open", "COM1", DefaultBaudRate)
}

func TestTOP708DeviceConnectRetriesThenFails(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(errors.New("open error"))

	device := NewTOP708Device(serialPort, nil)
	device.SetRetryOptions(1, time.Millisecond)
	err := device.Connect("COM1", 38400)

	require.Error(t, err)
	assert.False(t, device.IsConnected())
	serialPort.AssertNumberOfCalls(t, "Open", 2)
}

func TestTOP708DeviceDisconnect(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Close").Return(nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))
	require.NoError(t, device.Disconnect())
	assert.False(t, device.IsConnected())
}

func TestTOP708DeviceReadRawNotConnected(t *testing.T) {
	device := NewTOP708Device(new(MockSerialPort), nil)
	_, err := device.ReadRaw(make([]byte, 16))
	assert.Error(t, err)
}

func TestTOP708DeviceReadRaw(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.data = []byte("test data")
	serialPort.On("Read", mock.Anything).Return(len(serialPort.data), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))

	buffer := make([]byte, 1024)
	n, err := device.ReadRaw(buffer)
	require.NoError(t, err)
	assert.Equal(t, "test data", string(buffer[:n]))
}

func TestTOP708DeviceWriteCommand(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Write", mock.Anything).Return(14, nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))
	require.NoError(t, device.WriteCommand("test command"))
	assert.Equal(t, []byte("test command\r\n"), serialPort.written)
}

func TestTOP708DeviceWriteCommandWithResponse(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Write", mock.Anything).Return(14, nil)
	serialPort.On("SetReadTimeout", mock.Anything).Return(nil)
	serialPort.data = []byte("$PMTK001,314,3*36\r\n")
	serialPort.On("Read", mock.Anything).Return(len(serialPort.data), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))

	resp, err := device.WriteCommandWithResponse("$PMTK314,0,1,0,1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0*28", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "$PMTK001,314,3*36\r\n", resp)
}

func TestTOP708DeviceConfigureOutputMessages(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Write", mock.Anything).Return(50, nil)
	serialPort.On("SetReadTimeout", mock.Anything).Return(nil)
	serialPort.data = []byte("$PMTK001,314,3*36\r\n")
	serialPort.On("Read", mock.Anything).Return(len(serialPort.data), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))

	err := device.ConfigureOutputMessages(map[string]bool{"GGA": true, "RMC": true, "GSA": false, "GSV": false})
	assert.NoError(t, err)
}

func TestTOP708DeviceConfigureUpdateRateRejectsOutOfRange(t *testing.T) {
	device := NewTOP708Device(new(MockSerialPort), nil)
	assert.Error(t, device.ConfigureUpdateRate(50))
	assert.Error(t, device.ConfigureUpdateRate(20000))
}

func TestTOP708DeviceConfigureUpdateRate(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Write", mock.Anything).Return(20, nil)
	serialPort.On("SetReadTimeout", mock.Anything).Return(nil)
	serialPort.data = []byte("$PMTK001,220,3*30\r\n")
	serialPort.On("Read", mock.Anything).Return(len(serialPort.data), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))
	assert.NoError(t, device.ConfigureUpdateRate(1000))
}

func TestTOP708DeviceConfigureSatelliteSystems(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)
	serialPort.On("Write", mock.Anything).Return(20, nil)
	serialPort.On("SetReadTimeout", mock.Anything).Return(nil)
	serialPort.data = []byte("$PMTK001,353,3*37\r\n")
	serialPort.On("Read", mock.Anything).Return(len(serialPort.data), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))
	assert.NoError(t, device.ConfigureSatelliteSystems(SatelliteSystemGPS|SatelliteSystemGLONASS))
}

type recordingHandler struct {
	nmea chan NMEASentence
}

func (h recordingHandler) HandleNMEA(s NMEASentence) {
	select {
	case h.nmea <- s:
	default:
	}
}
func (recordingHandler) HandleUBX(UBXMessage)   {}
func (recordingHandler) HandleRTCM(RTCMMessage) {}

func TestTOP708DeviceMonitorFeedsBridge(t *testing.T) {
	serialPort := new(MockSerialPort)
	serialPort.On("Open", "COM1", 38400).Return(nil)

	sentence := "$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	serialPort.data = []byte(sentence)
	serialPort.On("Read", mock.Anything).Return(len(sentence), nil)

	device := NewTOP708Device(serialPort, nil)
	require.NoError(t, device.Connect("COM1", 38400))

	db := gnssdb.New()
	handler := recordingHandler{nmea: make(chan NMEASentence, 1)}
	bridge, err := device.Monitor(db, MonitorConfig{
		BufferSize:   len(sentence),
		PollInterval: time.Millisecond,
		Handler:      handler,
	})
	require.NoError(t, err)
	require.NotNil(t, bridge)
	defer device.StopMonitoring()

	select {
	case s := <-handler.nmea:
		assert.Equal(t, "GP", s.Talker)
		assert.Equal(t, "GGA", s.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a framed NMEA sentence")
	}
}
