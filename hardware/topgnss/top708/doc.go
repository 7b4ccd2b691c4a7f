/*
Package top708 drives a TOPGNSS TOP708 GNSS receiver over a serial port
and feeds its mixed NMEA/UBX/RTCM output through the protocol-agnostic
core in pkg/gnssframe.

# Connecting

	serialPort := top708.NewGNSSSerialPort()
	device := top708.NewTOP708Device(serialPort, nil)
	if err := device.Connect("/dev/ttyUSB0", top708.DefaultBaudRate); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer device.Disconnect()

	if !device.VerifyConnection(5 * time.Second) {
		log.Fatalf("no NMEA traffic within timeout")
	}

# Monitoring

Monitor runs the three-format dispatcher over the port and folds every
completed frame into a gnssdb.DB, invoking a FrameHandler for each one:

	type logHandler struct{}

	func (logHandler) HandleNMEA(s top708.NMEASentence) {
		if !s.Dropped {
			log.Printf("nmea %s%s", s.Talker, s.Type)
		}
	}
	func (logHandler) HandleUBX(m top708.UBXMessage)   {}
	func (logHandler) HandleRTCM(m top708.RTCMMessage) {}

	db := gnssdb.New()
	bridge, err := device.Monitor(db, top708.DefaultMonitorConfig(logHandler{}))
	if err != nil {
		log.Fatalf("monitor: %v", err)
	}
	defer device.StopMonitoring()
	_ = bridge

# Receiver configuration

ConfigureOutputMessages, ConfigureUpdateRate, ConfigurePositioningMode,
and ConfigureSatelliteSystems send the TOP708's PMTK command family; none
of them touch the serial line's own framing (baud/parity/stop bits),
which remains the caller's responsibility per this tree's scope.
*/
package top708
