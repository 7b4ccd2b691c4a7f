// Command gnssframed is the worker-loop binary: it opens one input
// stream (a serial device), frames and routes whatever mix of NMEA/UBX/
// RTCM it carries into a database, optionally mirrors every frame out
// over a UDP datagram envelope, and exits cleanly on SIGTERM/SIGINT.
// Flag surface and exit codes follow spec.md §6; signal handling follows
// the teacher's cmd/ntrip-server/main.go.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/arlobridge/gnssframe/internal/config"
	"github.com/arlobridge/gnssframe/internal/onepps"
	"github.com/arlobridge/gnssframe/internal/worker"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnssdb"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/trace"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/transport"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(config.ExitArgumentErr)
	}
	if cfg.Help || cfg.ShowUsage {
		fmt.Println("usage: gnssframed -D <device> [-b <bps>] [-G host:port] [-Y host:port] [-V]")
		return int(config.ExitSuccess)
	}
	if cfg.Device == "" {
		fmt.Fprintln(os.Stderr, "gnssframed: -D <device> is required")
		return int(config.ExitArgumentErr)
	}

	log := newLogger(cfg)
	if cfg.DebugXfer {
		trace.SetLevel(3)
	} else if cfg.Verbose {
		trace.SetLevel(1)
	}

	src, err := transport.OpenSerial(cfg.Device, serialSettings(cfg))
	if err != nil {
		log.WithError(err).Error("open input device")
		return int(config.ExitRuntimeErr)
	}
	defer src.Close()

	if cfg.StartCommand != "" {
		if _, err := src.Write([]byte(cfg.StartCommand + "\r\n")); err != nil {
			log.WithError(err).Warn("send start command")
		}
	}
	if cfg.StopCommand != "" {
		defer func() {
			if _, err := src.Write([]byte(cfg.StopCommand + "\r\n")); err != nil {
				log.WithError(err).Warn("send stop command")
			}
		}()
	}

	forward, closeForward, err := buildForwarder(cfg, log)
	if err != nil {
		log.WithError(err).Error("set up datagram forwarding")
		return int(config.ExitRuntimeErr)
	}
	if closeForward != nil {
		defer closeForward()
	}

	db := gnssdb.New()
	var debug atomic.Bool
	debug.Store(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	installSignalHandlers(cancel, &debug, log)

	stats, err := worker.Loop(ctx, worker.Options{
		Source:  src,
		DB:      db,
		Onepps:  &onepps.Flag{},
		Debug:   &debug,
		Forward: forward,
		Log:     log,
	})
	if err != nil {
		log.WithError(err).Error("worker loop exited with error")
		return int(config.ExitRuntimeErr)
	}

	log.WithFields(logrus.Fields{
		"nmea":    stats.NMEAFrames,
		"ubx":     stats.UBXFrames,
		"rtcm":    stats.RTCMFrames,
		"resyncs": stats.Resyncs,
	}).Info("gnssframed: stopped")
	return int(config.ExitSuccess)
}

func newLogger(cfg *config.Config) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logger.SetOutput(f)
		} else {
			logger.WithError(err).Warn("could not open log file, logging to stderr")
		}
	}
	entry := logrus.NewEntry(logger)
	if cfg.HostPrefix != "" {
		entry = entry.WithField("host", cfg.HostPrefix)
	}
	return entry
}

// serialSettings folds the config package's per-flag baud/bits/parity
// fields into transport.OpenSerial's colon-delimited settings suffix.
func serialSettings(cfg *config.Config) string {
	bits := "8"
	if cfg.DataBits7 {
		bits = "7"
	}
	parity := "N"
	switch {
	case cfg.ParityEven:
		parity = "E"
	case cfg.ParityOdd:
		parity = "O"
	}
	stop := "1"
	if cfg.StopBits2 {
		stop = "2"
	}
	return strconv.Itoa(cfg.BaudRate) + ":" + bits + ":" + parity + ":" + stop
}

// buildForwarder wires -G/-Y into a transport.UDP socket and returns a
// worker.Options.Forward callback that mirrors every completed frame
// out over the datagram envelope (spec.md §4.8). At most one of -G/-Y
// is expected to be set; -G takes precedence if both are. A -G socket
// only learns a peer from a received datagram and nothing here reads
// from it, so its sends fail (logged at debug level); frames go out only
// with -Y.
func buildForwarder(cfg *config.Config, log *logrus.Entry) (func([]byte), func(), error) {
	switch {
	case cfg.ServerAddr != "":
		udp, err := transport.ListenUDP(cfg.ServerAddr)
		if err != nil {
			return nil, nil, err
		}
		return func(raw []byte) {
			if err := udp.Send(raw); err != nil {
				log.WithError(err).Debug("datagram send")
			}
		}, func() { udp.Close() }, nil

	case cfg.ClientAddr != "":
		udp, err := transport.DialUDP(cfg.ClientAddr)
		if err != nil {
			return nil, nil, err
		}
		return func(raw []byte) {
			if err := udp.Send(raw); err != nil {
				log.WithError(err).Debug("datagram send")
			}
		}, func() { udp.Close() }, nil

	default:
		return nil, nil, nil
	}
}

// installSignalHandlers mirrors the teacher's cmd/ntrip-server SIGINT/
// SIGTERM handling, adding SIGHUP to toggle debug tracing at runtime
// per spec.md §5 ("SIGHUP (reserved, toggles debug)").
func installSignalHandlers(cancel context.CancelFunc, debug *atomic.Bool, log *logrus.Entry) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				newVal := !debug.Load()
				debug.Store(newVal)
				log.WithField("debug", newVal).Info("toggled debug tracing")
				continue
			}
			log.WithField("signal", sig).Info("gnssframed: received shutdown signal")
			cancel()
			return
		}
	}()
}
