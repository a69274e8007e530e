// Package config defines and loads the clock daemon's configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration: defaults from NewConfig,
// overlaid by the YAML config file and the command line flags in Flag.
type Config struct {
	Flag      FlagConfig      `yaml:"-"`
	DCF77     DCF77Config     `yaml:"dcf77"`
	RTC       RTCConfig       `yaml:"rtc"`
	Display   DisplayConfig   `yaml:"display"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Webserver WebserverConfig `yaml:"webserver"`
	Log       LogConfig       `yaml:"log"`
}

// FlagConfig defines the configured command line flags (parameters).
type FlagConfig struct {
	LogLevel   string `json:"LogLevel,omitempty" yaml:"LogLevel,omitempty"`
	ConfigFile string `json:"Config,omitempty" yaml:"Config,omitempty"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration.
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration.
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// LogConfig defines the struct of the debug configuration and configuration file.
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

// DCF77Config defines the struct of the receiver's GPIO line and
// decoding thresholds.
type DCF77Config struct {
	// Gpio is the BCM pin number the receiver's DATA line is wired to.
	Gpio int `yaml:"gpio"`
	// Pull selects the input's bias: "up", "down", or "none".
	Pull string `yaml:"pull"`
	// InvertLine flips the raw line level before classification, for
	// receiver modules whose DATA output is high while a pulse is
	// present (the default treats low as pulse present).
	InvertLine bool `yaml:"invertline"`
	// SampleRateHz is the classifier's fixed tick rate.
	SampleRateHz int `yaml:"sampleratehz"`

	// MinuteMarkMS, Bit0Min/MaxMS, Bit1Min/MaxMS override the
	// classifier's duration thresholds; zero means "use the default".
	MinuteMarkMS int `yaml:"minutemarkms"`
	Bit0MinMS    int `yaml:"bit0minms"`
	Bit0MaxMS    int `yaml:"bit0maxms"`
	Bit1MinMS    int `yaml:"bit1minms"`
	Bit1MaxMS    int `yaml:"bit1maxms"`

	// UseEdgeBinning enables the optional phase-locator redundancy path
	// (spec §4.3) in addition to the tick-polled sampler.
	UseEdgeBinning bool   `yaml:"useedgebinning"`
	GpioChip       string `yaml:"gpiochip"`
	HistogramBins  int    `yaml:"histogrambins"`
	MarginBins     int    `yaml:"marginbins"`
}

// RTCConfig defines the struct of the I²C real-time-clock chip.
type RTCConfig struct {
	Bus     string `yaml:"bus"`
	Addr    int    `yaml:"addr"`
	Disable bool   `yaml:"disable"`
}

// DisplayConfig defines the struct of the I²C seven-segment display.
type DisplayConfig struct {
	Bus        string `yaml:"bus"`
	Addr       int    `yaml:"addr"`
	Brightness int    `yaml:"brightness"`
	Disable    bool   `yaml:"disable"`
}

// NewConfig creates the default application configuration.
func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		DCF77: DCF77Config{
			Gpio:          17,
			Pull:          "none",
			SampleRateHz:  100,
			GpioChip:      "gpiochip0",
			HistogramBins: 500,
			MarginBins:    5,
		},
		RTC: RTCConfig{
			Addr: 0x68,
		},
		Display: DisplayConfig{
			Addr:       0x70,
			Brightness: 8,
		},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"status":  true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			Topic:      "/dcf77clockd/status",
		},
	}
}

// LoadConfig reads the config file and set the application configuration.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Log, err)
	}

	switch p := strings.ToLower(c.DCF77.Pull); p {
	case "up", "down", "none", "":
	default:
		return fmt.Errorf("unsupported dcf77 pull setting: %q", p)
	}

	if c.DCF77.SampleRateHz <= 0 {
		return fmt.Errorf("dcf77 sampleratehz must be positive, got %d", c.DCF77.SampleRateHz)
	}

	return nil
}

// readConfigFile read the configuration File and store the content to the config structure.
func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

// setDebugConfig translate the log parameter to values of the debug module and open the log file.
func (c *Config) setDebugConfig() (err error) {
	switch s := strings.ToLower(c.Log.FlagString); s {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Fatal | debug.Info | debug.Error | debug.Warning | debug.Debug
	case "warning", "standard":
		c.Log.Flag = debug.Fatal | debug.Info | debug.Error | debug.Warning
	case "error":
		c.Log.Flag = debug.Fatal | debug.Info | debug.Error
	case "info":
		c.Log.Flag = debug.Fatal | debug.Info
	case "fatal":
		c.Log.Flag = debug.Fatal
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

// ClassifierDurations converts the millisecond overrides into
// time.Duration, leaving zero values as "unset" so callers fall back
// to dcf77.DefaultClassifierConfig per-field.
func (c *DCF77Config) ClassifierDurations() (minuteMark, bit0Min, bit0Max, bit1Min, bit1Max time.Duration) {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return ms(c.MinuteMarkMS), ms(c.Bit0MinMS), ms(c.Bit0MaxMS), ms(c.Bit1MinMS), ms(c.Bit1MaxMS)
}
