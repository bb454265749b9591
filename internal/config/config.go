// Package config holds the emulator configuration: behavioral toggles,
// the serial link parameters, and logging. Values merge in precedence
// order defaults < config file < command-line flags, and the merged
// result is immutable for the life of a session.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/velsom/centterm/internal/device"
)

// DefaultPath is the config file looked for when --config is not given.
const DefaultPath = "centterm.toml"

// GeneralConfig holds terminal behavior settings.
type GeneralConfig struct {
	// NormalCaseUpper makes unshifted letters upper case, shift for
	// lower, like the original keyboard.
	NormalCaseUpper bool `toml:"normal_case_upper"`

	// Echo loops transmitted bytes back to the display (half-duplex).
	Echo bool `toml:"echo"`

	// KeyboardLockCompatability honors the ADDS Consul 580 keyboard
	// lock escape sequences.
	KeyboardLockCompatability bool `toml:"keyboard_lock_compatability"`

	// AutoScroll scrolls the screen up when output passes the bottom
	// row instead of wrapping to the top.
	AutoScroll bool `toml:"auto_scroll"`
}

// SerialConfig holds the serial link parameters. Ignored when a URL
// target is given.
type SerialConfig struct {
	Port     string `toml:"port"`
	Baud     int    `toml:"baud"`
	Bits     int    `toml:"bits"`
	Parity   string `toml:"parity"` // N, E, O, M or S
	StopBits int    `toml:"stopbits"`

	RTSCTSFlowControl  bool `toml:"rtscts_flowcontrol"`
	XONXOFFFlowControl bool `toml:"xonxoff_flowcontrol"`
	InitialDTR         bool `toml:"initial_dtr"`
	InitialRTS         bool `toml:"initial_rts"`
	Exclusive          bool `toml:"exclusive"`
}

// LoggingConfig holds the log sink settings. The display owns the tty,
// so logs go to a file; an empty File disables logging.
type LoggingConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Config is the full merged configuration.
type Config struct {
	// URL is a stream target such as "tcp://host:port". When set it
	// takes precedence over the serial section.
	URL string

	General GeneralConfig
	Serial  SerialConfig
	Logging LoggingConfig
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		General: GeneralConfig{
			AutoScroll: true,
		},
		Serial: SerialConfig{
			Port:      "/dev/ttyS0",
			Baud:      9600,
			Bits:      7,
			Parity:    "M",
			StopBits:  1,
			Exclusive: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ValidationError reports a rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the merged configuration. Serial parameters are only
// checked when no URL target is set.
func (c *Config) Validate() error {
	if c.URL != "" {
		return nil
	}

	if c.Serial.Port == "" {
		return &ValidationError{"serial.port", "serial port not set; use --port or serial.port in the config file"}
	}
	if c.Serial.Baud <= 0 {
		return &ValidationError{"serial.baud", "baud rate must be a positive integer"}
	}
	if c.Serial.Bits < 5 || c.Serial.Bits > 8 {
		return &ValidationError{"serial.bits", "data bits must be 5, 6, 7 or 8"}
	}
	if _, err := parseParity(c.Serial.Parity); err != nil {
		return &ValidationError{"serial.parity", err.Error()}
	}
	if c.Serial.StopBits != 1 && c.Serial.StopBits != 2 {
		return &ValidationError{"serial.stopbits", "stop bits must be 1 or 2"}
	}
	return nil
}

// DeviceOptions maps the configuration onto link open options. Call
// only after Validate.
func (c *Config) DeviceOptions() device.Options {
	parity, _ := parseParity(c.Serial.Parity)
	return device.Options{
		URL:         c.URL,
		Port:        c.Serial.Port,
		Baud:        c.Serial.Baud,
		DataBits:    c.Serial.Bits,
		Parity:      parity,
		StopBits:    c.Serial.StopBits,
		RTSCTSFlow:  c.Serial.RTSCTSFlowControl,
		XONXOFFFlow: c.Serial.XONXOFFFlowControl,
		InitialDTR:  c.Serial.InitialDTR,
		InitialRTS:  c.Serial.InitialRTS,
		Exclusive:   c.Serial.Exclusive,
	}
}

func parseParity(s string) (device.Parity, error) {
	switch s {
	case "N", "n":
		return device.ParityNone, nil
	case "E", "e":
		return device.ParityEven, nil
	case "O", "o":
		return device.ParityOdd, nil
	case "M", "m":
		return device.ParityMark, nil
	case "S", "s":
		return device.ParitySpace, nil
	default:
		return device.ParityNone, fmt.Errorf("parity must be one of N, E, O, M or S, got %q", s)
	}
}

// ParseError reports an unreadable or malformed config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the config file at path and applies it over cfg. A missing
// file is only an error when required is true; the default path may
// simply not exist.
func Load(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return &ParseError{Path: path, Err: err}
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return &ParseError{Path: path, Err: err}
	}

	file.apply(cfg)
	return nil
}

// fileConfig mirrors Config with optional fields so that only keys
// present in the file override earlier layers.
type fileConfig struct {
	URL     *string         `toml:"url"`
	General *generalOverlay `toml:"general"`
	Serial  *serialOverlay  `toml:"serial"`
	Logging *loggingOverlay `toml:"logging"`
}

func (f *fileConfig) apply(cfg *Config) {
	if f.URL != nil {
		cfg.URL = *f.URL
	}
	if f.General != nil {
		f.General.apply(&cfg.General)
	}
	if f.Serial != nil {
		f.Serial.apply(&cfg.Serial)
	}
	if f.Logging != nil {
		f.Logging.apply(&cfg.Logging)
	}
}

type generalOverlay struct {
	NormalCaseUpper           *bool `toml:"normal_case_upper"`
	Echo                      *bool `toml:"echo"`
	KeyboardLockCompatability *bool `toml:"keyboard_lock_compatability"`
	AutoScroll                *bool `toml:"auto_scroll"`
}

func (o *generalOverlay) apply(g *GeneralConfig) {
	setBool(&g.NormalCaseUpper, o.NormalCaseUpper)
	setBool(&g.Echo, o.Echo)
	setBool(&g.KeyboardLockCompatability, o.KeyboardLockCompatability)
	setBool(&g.AutoScroll, o.AutoScroll)
}

type serialOverlay struct {
	Port     *string `toml:"port"`
	Baud     *int    `toml:"baud"`
	Bits     *int    `toml:"bits"`
	Parity   *string `toml:"parity"`
	StopBits *int    `toml:"stopbits"`

	RTSCTSFlowControl  *bool `toml:"rtscts_flowcontrol"`
	XONXOFFFlowControl *bool `toml:"xonxoff_flowcontrol"`
	InitialDTR         *bool `toml:"initial_dtr"`
	InitialRTS         *bool `toml:"initial_rts"`
	Exclusive          *bool `toml:"exclusive"`
}

func (o *serialOverlay) apply(s *SerialConfig) {
	setString(&s.Port, o.Port)
	setInt(&s.Baud, o.Baud)
	setInt(&s.Bits, o.Bits)
	setString(&s.Parity, o.Parity)
	setInt(&s.StopBits, o.StopBits)
	setBool(&s.RTSCTSFlowControl, o.RTSCTSFlowControl)
	setBool(&s.XONXOFFFlowControl, o.XONXOFFFlowControl)
	setBool(&s.InitialDTR, o.InitialDTR)
	setBool(&s.InitialRTS, o.InitialRTS)
	setBool(&s.Exclusive, o.Exclusive)
}

type loggingOverlay struct {
	File  *string `toml:"file"`
	Level *string `toml:"level"`
}

func (o *loggingOverlay) apply(l *LoggingConfig) {
	setString(&l.File, o.File)
	setString(&l.Level, o.Level)
}

// Overlay carries command-line values. Only non-nil fields override the
// merged configuration, so unset flags leave file values alone.
type Overlay struct {
	URL *string

	NormalCaseUpper           *bool
	Echo                      *bool
	KeyboardLockCompatability *bool
	AutoScroll                *bool

	Port     *string
	Baud     *int
	Bits     *int
	Parity   *string
	StopBits *int

	RTSCTSFlowControl  *bool
	XONXOFFFlowControl *bool
	InitialDTR         *bool
	InitialRTS         *bool
	Exclusive          *bool

	LogFile  *string
	LogLevel *string
}

// Apply writes the overlay's set fields over cfg.
func (o *Overlay) Apply(cfg *Config) {
	if o.URL != nil {
		cfg.URL = *o.URL
	}

	setBool(&cfg.General.NormalCaseUpper, o.NormalCaseUpper)
	setBool(&cfg.General.Echo, o.Echo)
	setBool(&cfg.General.KeyboardLockCompatability, o.KeyboardLockCompatability)
	setBool(&cfg.General.AutoScroll, o.AutoScroll)

	setString(&cfg.Serial.Port, o.Port)
	setInt(&cfg.Serial.Baud, o.Baud)
	setInt(&cfg.Serial.Bits, o.Bits)
	setString(&cfg.Serial.Parity, o.Parity)
	setInt(&cfg.Serial.StopBits, o.StopBits)
	setBool(&cfg.Serial.RTSCTSFlowControl, o.RTSCTSFlowControl)
	setBool(&cfg.Serial.XONXOFFFlowControl, o.XONXOFFFlowControl)
	setBool(&cfg.Serial.InitialDTR, o.InitialDTR)
	setBool(&cfg.Serial.InitialRTS, o.InitialRTS)
	setBool(&cfg.Serial.Exclusive, o.Exclusive)

	setString(&cfg.Logging.File, o.LogFile)
	setString(&cfg.Logging.Level, o.LogLevel)
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
