// Package config parses the single-letter CLI surface spec.md §6 defines
// for tools that embed the core, grounded on the teacher's stdlib `flag`
// usage (cmd/ntrip-server, cmd/top708reader) rather than a third-party CLI
// framework — the pack never reaches for one, so this core doesn't either.
package config

import (
	"flag"
	"fmt"
)

// Config holds every flag spec.md §6 names. Long-form flags are not
// supported; every flag is a single letter, case-sensitive.
type Config struct {
	Device       string // -D <device>
	BaudRate     int    // -b <bps>
	DataBits7    bool   // -7
	DataBits8    bool   // -8
	StopBits1    bool   // -1
	StopBits2    bool   // -2
	ParityEven   bool   // -e
	ParityOdd    bool   // -o
	ParityNone   bool   // -n
	ModeMaster   bool   // -m
	ModeListener bool   // -l
	Help         bool   // -h
	Strict       bool   // -s
	ClockTime    bool   // -c
	ServerAddr   string // -G host:port
	ClientAddr   string // -Y host:port
	StartCommand string // -U <command>
	StopCommand  string // -W <command>
	Timeout      int    // -t <seconds>
	CycleSeconds int    // -y <seconds>
	LogFile      string // -L <logfile>
	HostPrefix   string // -H <prefix>
	SolutionFile string // -S <file|->
	ExpandTags   bool   // -E
	ForegroundRun bool  // -F
	ReadOnly     bool   // -R
	PPSDiscipline bool  // -P
	KeepOpen     bool   // -K
	MultiInput   bool   // -M
	Verbose      bool   // -V
	DebugXfer    bool   // -X
	ShowUsage    bool   // -?
}

// ExitCode mirrors spec.md §6's exit code convention.
type ExitCode int

const (
	ExitSuccess     ExitCode = 0
	ExitArgumentErr ExitCode = 1
	ExitRuntimeErr  ExitCode = 2
)

// Parse parses args (excluding argv[0]) into a Config, following the
// single-letter, long-form-unsupported surface of spec.md §6.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gnssframed", flag.ContinueOnError)
	c := &Config{}

	fs.StringVar(&c.Device, "D", "", "input device path")
	fs.IntVar(&c.BaudRate, "b", 9600, "baud rate")
	fs.BoolVar(&c.DataBits7, "7", false, "7 data bits")
	fs.BoolVar(&c.DataBits8, "8", false, "8 data bits")
	fs.BoolVar(&c.StopBits1, "1", false, "1 stop bit")
	fs.BoolVar(&c.StopBits2, "2", false, "2 stop bits")
	fs.BoolVar(&c.ParityEven, "e", false, "even parity")
	fs.BoolVar(&c.ParityOdd, "o", false, "odd parity")
	fs.BoolVar(&c.ParityNone, "n", false, "no parity")
	fs.BoolVar(&c.ModeMaster, "m", false, "master mode")
	fs.BoolVar(&c.ModeListener, "l", false, "listener mode")
	fs.BoolVar(&c.Help, "h", false, "show help")
	fs.BoolVar(&c.Strict, "s", false, "strict checksum/CRC enforcement")
	fs.BoolVar(&c.ClockTime, "c", false, "stamp output with wall-clock time")
	fs.StringVar(&c.ServerAddr, "G", "", "UDP server host:port")
	fs.StringVar(&c.ClientAddr, "Y", "", "UDP client host:port")
	fs.StringVar(&c.StartCommand, "U", "", "command to send on start")
	fs.StringVar(&c.StopCommand, "W", "", "command to send on stop")
	fs.IntVar(&c.Timeout, "t", 0, "read timeout, seconds")
	fs.IntVar(&c.CycleSeconds, "y", 0, "cycle interval, seconds")
	fs.StringVar(&c.LogFile, "L", "", "log file path")
	fs.StringVar(&c.HostPrefix, "H", "", "log line host prefix")
	fs.StringVar(&c.SolutionFile, "S", "", "solution file path, or - for stdout")
	fs.BoolVar(&c.ExpandTags, "E", false, "expand strftime-style tags in paths")
	fs.BoolVar(&c.ForegroundRun, "F", false, "run in foreground")
	fs.BoolVar(&c.ReadOnly, "R", false, "read-only, never write to the device")
	fs.BoolVar(&c.PPSDiscipline, "P", false, "discipline the clock from 1PPS")
	fs.BoolVar(&c.KeepOpen, "K", false, "keep the device open across errors")
	fs.BoolVar(&c.MultiInput, "M", false, "accept multiple concurrent inputs")
	fs.BoolVar(&c.Verbose, "V", false, "verbose tracing")
	fs.BoolVar(&c.DebugXfer, "X", false, "dump raw transfer bytes")
	fs.BoolVar(&c.ShowUsage, "?", false, "show usage")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("argument error: %w", err)
	}
	return c, nil
}
