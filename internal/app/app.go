// Package app wires the configuration, logger, link device, display
// and session into a runnable terminal emulator.
package app

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/velsom/centterm/internal/config"
	"github.com/velsom/centterm/internal/device"
	"github.com/velsom/centterm/internal/logging"
	"github.com/velsom/centterm/internal/screen"
	"github.com/velsom/centterm/internal/session"
)

// Options configures an Application. Backend and Device are injectable
// for tests; when nil, Run opens the real ones from the configuration.
type Options struct {
	Config config.Config

	// ConfigPath, when set, is watched during the session so edits can
	// be reported to the log.
	ConfigPath string

	Backend screen.Backend
	Device  device.Device
}

// Application owns the lifecycle of one emulator run: setup, session,
// teardown. Interrupt may be called from a signal handler at any time.
type Application struct {
	cfg        config.Config
	configPath string
	backend    screen.Backend
	dev        device.Device

	running atomic.Bool

	mu   sync.Mutex
	keys *screen.KeySource
	sess *session.Session
}

// New creates an application from the merged configuration.
func New(opts Options) *Application {
	return &Application{
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		backend:    opts.Backend,
		dev:        opts.Device,
	}
}

// Run performs setup, runs the session to completion and tears
// everything down. It returns nil on a user-requested exit, the link
// fault that ended the session, or a SetupError when the emulator
// never got to the session.
func (a *Application) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	log, logFile, err := a.setupLogging()
	if err != nil {
		return NewSetupError("logging", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	dev := a.dev
	if dev == nil {
		dev, err = device.Open(a.cfg.DeviceOptions())
		if err != nil {
			log.Error("link open failed: %v", err)
			return NewSetupError("link", err)
		}
	}
	defer dev.Close()

	if a.cfg.Serial.RTSCTSFlowControl || a.cfg.Serial.XONXOFFFlowControl {
		log.Warn("flow control requested but the serial backend cannot enforce it")
	}

	backend := a.backend
	if backend == nil {
		term, err := screen.NewTerminal()
		if err != nil {
			log.Error("display open failed: %v", err)
			return NewSetupError("display", err)
		}
		backend = term
	}
	if err := backend.Init(); err != nil {
		log.Error("display init failed: %v", err)
		return NewSetupError("display", err)
	}
	defer backend.Shutdown()

	scr := screen.New(backend, a.cfg.General.AutoScroll)
	scr.Flush()

	keys := screen.NewKeySource(backend)
	defer keys.Close()

	if a.configPath != "" {
		if w, err := config.WatchFile(a.configPath, log); err != nil {
			log.Warn("config watch unavailable: %v", err)
		} else {
			defer w.Close()
		}
	}

	sess := session.New(session.Options{
		Device:    dev,
		Display:   scr,
		Keys:      keys,
		Logger:    log,
		LocalEcho: a.cfg.General.Echo,
	})

	a.mu.Lock()
	a.keys = keys
	a.sess = sess
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.keys = nil
		a.sess = nil
		a.mu.Unlock()
	}()

	if err := sess.Start(); err != nil {
		return err
	}
	err = sess.Join()
	if err != nil {
		log.Error("session ended with fault: %v", err)
	} else {
		log.Info("session ended")
	}
	return err
}

// Interrupt injects a synthetic interrupt key, the path an OS signal
// takes into the session. Harmless when no session is running.
func (a *Application) Interrupt() {
	a.mu.Lock()
	keys := a.keys
	a.mu.Unlock()
	if keys != nil {
		keys.Interrupt()
	}
}

// setupLogging builds the session logger. With no log file configured
// logging is disabled entirely; the display owns the tty.
func (a *Application) setupLogging() (*logging.Logger, *os.File, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLogLevel(a.cfg.Logging.Level)

	if a.cfg.Logging.File == "" {
		log := logging.NewLogger(cfg)
		log.Disable()
		return log, nil, nil
	}

	f, err := os.OpenFile(a.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	cfg.Output = f

	log := logging.NewLogger(cfg).WithField("session", uuid.New().String())
	return log, f, nil
}
