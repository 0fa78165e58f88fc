// Command rootctl is an interactive console for Root robots.
//
// It discovers robots over a serial bridge or a network bridge, opens an
// exclusive session and exposes the robot's actuators, queries and event
// stream as console commands.
//
// Usage:
//
//	rootctl [flags]
//
// Flags:
//
//	-config string     Configuration file path (default "rootctl.yaml")
//	-transport string  Transport: serial, bridge, sim
//	-sim               Shorthand for -transport sim
//	-log-level string  Log level: debug, info, warn, error
//	-log-file string   Capture protocol packets to a CBOR log file
//
// Examples:
//
//	# Talk to a robot on a USB serial bridge
//	rootctl -transport serial
//
//	# Use a simulated robot, capturing the packet exchange
//	rootctl -sim -log-file session.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entwanne/root-robot/internal/testharness/sim"
	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/log"
	"github.com/entwanne/root-robot/pkg/robot"
	"github.com/entwanne/root-robot/pkg/transport"
	"github.com/entwanne/root-robot/pkg/transport/bridge"
	"github.com/entwanne/root-robot/pkg/transport/serialport"
)

func main() {
	var (
		configPath    = flag.String("config", "rootctl.yaml", "Configuration file path")
		transportName = flag.String("transport", "", "Transport: serial, bridge, sim")
		simMode       = flag.Bool("sim", false, "Use a simulated robot")
		logLevel      = flag.String("log-level", "", "Log level: debug, info, warn, error")
		logFile       = flag.String("log-file", "", "Capture protocol packets to a CBOR log file")
	)
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := LoadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Flags win over file and environment.
	if *transportName != "" {
		cfg.Transport = *transportName
	}
	if *simMode {
		cfg.Transport = "sim"
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slogger := newSlog(cfg.LogLevel)

	protoLogger, closeLogger, err := newProtocolLogger(cfg, slogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLogger()

	t, err := newTransport(cfg, protoLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	session, err := NewSession(cfg, t, robot.Options{Logger: protoLogger})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	session.Run(ctx, cancel)
}

// newSlog builds the console logger at the configured level.
func newSlog(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newProtocolLogger builds the protocol event logger: debug output to the
// console, plus a CBOR capture file when configured.
func newProtocolLogger(cfg Config, slogger *slog.Logger) (log.Logger, func(), error) {
	console := log.NewSlogAdapter(slogger)
	if cfg.LogFile == "" {
		return console, func() {}, nil
	}

	file, err := log.NewFileLogger(cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	closer := func() {
		if err := file.Close(); err != nil {
			slogger.Warn("closing packet log", "error", err)
		}
	}
	return log.NewMultiLogger(console, file), closer, nil
}

// newTransport builds the discovery transport for the configured backend.
func newTransport(cfg Config, logger log.Logger) (robot.Transport, error) {
	conn := transport.Config{Logger: logger}

	switch cfg.Transport {
	case "serial":
		return &serialport.Transport{
			Prefix: cfg.SerialPrefix,
			Config: serialport.Config{BaudRate: cfg.BaudRate, Conn: conn},
		}, nil

	case "bridge":
		return &bridge.Transport{
			Config: bridge.Config{Conn: conn},
		}, nil

	case "sim":
		return simTransport{}, nil

	default:
		return nil, fmt.Errorf("unknown transport: %s", cfg.Transport)
	}
}

// simTransport exposes a single simulated robot to discovery.
type simTransport struct{}

func (simTransport) Discover(ctx context.Context, timeout time.Duration) ([]driver.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, &driver.DiscoveryError{Err: err}
	}
	return []driver.Device{sim.NewDevice("sim-0", "Simulated Root")}, nil
}
