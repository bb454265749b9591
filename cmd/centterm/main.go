// Package main is the entry point for the CenturionTerm emulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/velsom/centterm/internal/app"
	"github.com/velsom/centterm/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, configPath, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	application := app.New(app.Options{
		Config:     cfg,
		ConfigPath: configPath,
	})

	// SIGINT and SIGTERM enter the session as a synthetic interrupt
	// key so shutdown takes the ordinary input path.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		for range signals {
			application.Interrupt()
		}
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// cliFlags is the raw command-line surface. Boolean settings come in
// --flag / --no-flag pairs; only the ones actually given end up in the
// configuration overlay.
type cliFlags struct {
	configPath  string
	noConfig    bool
	showVersion bool

	normalCaseUpper, noNormalCaseUpper bool
	echo, noEcho                       bool
	keyboardLock, noKeyboardLock       bool
	autoScroll, noAutoScroll           bool

	port     string
	baud     int
	bits     int
	parity   string
	stopbits int

	rtscts, noRtscts       bool
	xonxoff, noXonxoff     bool
	initialRTS, noInitRTS  bool
	initialDTR, noInitDTR  bool
	exclusive, noExclusive bool

	logFile  string
	logLevel string
}

// loadConfig merges defaults, the config file and command-line flags,
// in that order, and validates the result. The returned path is the
// config file in effect, empty when --no-config was given.
func loadConfig() (config.Config, string, error) {
	var f cliFlags

	flag.StringVar(&f.configPath, "config", config.DefaultPath, "TOML config file")
	flag.BoolVar(&f.noConfig, "no-config", false, "disable config file")
	flag.BoolVar(&f.showVersion, "version", false, "show version and exit")

	flag.BoolVar(&f.normalCaseUpper, "normal-case-upper", false, "normal case is upper, shift for lower")
	flag.BoolVar(&f.noNormalCaseUpper, "no-normal-case-upper", false, "")
	flag.BoolVar(&f.echo, "echo", false, "local echo / half-duplex")
	flag.BoolVar(&f.noEcho, "no-echo", false, "")
	flag.BoolVar(&f.keyboardLock, "keyboard-lock-compatability", false, "keyboard lock ADDS Consul 580 compatability")
	flag.BoolVar(&f.noKeyboardLock, "no-keyboard-lock-compatability", false, "")
	flag.BoolVar(&f.autoScroll, "auto-scroll", false, "auto scroll")
	flag.BoolVar(&f.noAutoScroll, "no-auto-scroll", false, "")

	flag.StringVar(&f.port, "port", "", "serial device")
	flag.IntVar(&f.baud, "baud", 0, "baud rate")
	flag.IntVar(&f.bits, "bits", 0, "data bits (5, 6, 7 or 8)")
	flag.StringVar(&f.parity, "parity", "", "parity, one of N E O S M")
	flag.IntVar(&f.stopbits, "stopbits", 0, "stop bits (1 or 2)")

	flag.BoolVar(&f.rtscts, "rtscts-flowcontrol", false, "RTS/CTS flow control")
	flag.BoolVar(&f.noRtscts, "no-rtscts-flowcontrol", false, "")
	flag.BoolVar(&f.xonxoff, "xonxoff-flowcontrol", false, "software flow control")
	flag.BoolVar(&f.noXonxoff, "no-xonxoff-flowcontrol", false, "")
	flag.BoolVar(&f.initialRTS, "initial-rts", false, "set initial RTS line state")
	flag.BoolVar(&f.noInitRTS, "no-initial-rts", false, "")
	flag.BoolVar(&f.initialDTR, "initial-dtr", false, "set initial DTR line state")
	flag.BoolVar(&f.noInitDTR, "no-initial-dtr", false, "")
	flag.BoolVar(&f.exclusive, "exclusive", false, "locking for native ports")
	flag.BoolVar(&f.noExclusive, "no-exclusive", false, "")

	flag.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	flag.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "CenturionTerm - A warriors terminal emulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: centterm [options] [url]\n\n")
		fmt.Fprintf(os.Stderr, "Connect to a serial port configured in %s, or to a\n", config.DefaultPath)
		fmt.Fprintf(os.Stderr, "stream url such as tcp://host:port given as the positional argument.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if f.showVersion {
		fmt.Printf("centterm %s (%s)\n", version, commit)
		os.Exit(0)
	}

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	cfg := config.Default()

	configPath := ""
	if !f.noConfig {
		configPath = f.configPath
		// A path given explicitly must exist; the default may not.
		if err := config.Load(&cfg, configPath, set["config"]); err != nil {
			return cfg, "", err
		}
	}

	overlay(&f, set).Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, configPath, nil
}

// overlay translates the given flags into a config overlay. A --no-
// form wins over its positive twin when both appear.
func overlay(f *cliFlags, set map[string]bool) *config.Overlay {
	var o config.Overlay

	if url := flag.Arg(0); url != "" {
		o.URL = &url
	}

	boolFlag := func(dst **bool, posName string, posVal bool) {
		switch {
		case set["no-"+posName]:
			v := false
			*dst = &v
		case set[posName]:
			v := posVal
			*dst = &v
		}
	}

	boolFlag(&o.NormalCaseUpper, "normal-case-upper", f.normalCaseUpper)
	boolFlag(&o.Echo, "echo", f.echo)
	boolFlag(&o.KeyboardLockCompatability, "keyboard-lock-compatability", f.keyboardLock)
	boolFlag(&o.AutoScroll, "auto-scroll", f.autoScroll)
	boolFlag(&o.RTSCTSFlowControl, "rtscts-flowcontrol", f.rtscts)
	boolFlag(&o.XONXOFFFlowControl, "xonxoff-flowcontrol", f.xonxoff)
	boolFlag(&o.InitialRTS, "initial-rts", f.initialRTS)
	boolFlag(&o.InitialDTR, "initial-dtr", f.initialDTR)
	boolFlag(&o.Exclusive, "exclusive", f.exclusive)

	if set["port"] {
		o.Port = &f.port
	}
	if set["baud"] {
		o.Baud = &f.baud
	}
	if set["bits"] {
		o.Bits = &f.bits
	}
	if set["parity"] {
		o.Parity = &f.parity
	}
	if set["stopbits"] {
		o.StopBits = &f.stopbits
	}
	if set["log-file"] {
		o.LogFile = &f.logFile
	}
	if set["log-level"] {
		o.LogLevel = &f.logLevel
	}

	return &o
}
