package app

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ceigel/dcf77/pkg/app/config"
	"github.com/ceigel/dcf77/pkg/dcf77"
	"github.com/ceigel/dcf77/pkg/display"
	"github.com/ceigel/dcf77/pkg/edgesource"
	"github.com/ceigel/dcf77/pkg/mqtt"
	"github.com/ceigel/dcf77/pkg/rtc"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// App is the main application struct and where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config contain the application configuration.
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	//  url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker.
	mqtt *mqtt.Handler

	// gpio is the handler to the rpi gpio memory.
	gpio edgesource.GPIO

	// sampler polls the DCF77 line and feeds classifier.
	sampler    *edgesource.Sampler
	watcher    *edgesource.Watcher
	classifier *dcf77.PulseClassifier
	disc       *dcf77.Disciplinarian

	rtc    dcf77.RTC
	rtcBus i2c.BusCloser

	// disp is the seven-segment display; nil if Display.Disable is set.
	disp    *display.Display
	dispBus i2c.BusCloser

	// status contains the last published synchronization status.
	status struct {
		sync.Mutex
		data Status
	}

	// restart signals application restart.
	restart chan struct{}
	// shutdown signals application shutdown.
	shutdown chan struct{}
}

// Status is the JSON-serializable snapshot published on /status and to
// MQTT.
type Status struct {
	Synchronized bool      `json:"synchronized"`
	LastError    string    `json:"lastError,omitempty"`
	RTCTime      string    `json:"rtcTime,omitempty"`
	Updated      time.Time `json:"updated"`
}

// New parses the Web server URL and initializes the main app structure.
func New(cfg *config.Config) (*App, error) {
	u, err := url.Parse(cfg.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("error parsing url %q: %s", cfg.Webserver.URL, err.Error())
		return &App{}, err
	}

	app := App{
		config:    cfg,
		urlParsed: u,
		web:       fiber.New(),
		mqtt:      mqtt.New(),
		restart:   make(chan struct{}),
		shutdown:  make(chan struct{}),
	}

	return &app, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.sampler.Run()
	if app.watcher != nil {
		go app.watcher.Run()
	}
	go app.service()

	return nil
}

// init initializes the used modules of the application:
//   - periph.io host drivers
//   - the RTC and display I²C devices
//   - the DCF77 GPIO sampler and pulse classifier
//   - mqtt
func (app *App) init() (err error) {
	if _, err = host.Init(); err != nil {
		debug.ErrorLog.Printf("can't init periph.io host drivers: %v", err)
		return err
	}

	if err = app.initRTC(); err != nil {
		return err
	}

	if app.gpio, err = edgesource.OpenGPIO(); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	rate := dcf77.NewTickRate(app.config.DCF77.SampleRateHz)
	app.classifier = dcf77.NewPulseClassifier(rate, classifierConfig(app.config.DCF77))
	app.disc = dcf77.NewDisciplinarian(app.rtc)

	app.sampler, err = edgesource.NewSampler(app.gpio, edgesource.Config{
		Pin:        app.config.DCF77.Gpio,
		SampleHz:   app.config.DCF77.SampleRateHz,
		Pull:       app.config.DCF77.Pull,
		InvertLine: app.config.DCF77.InvertLine,
	}, app.classifier)
	if err != nil {
		debug.ErrorLog.Printf("can't open dcf77 pin: %v", err)
		return err
	}

	if app.disp, app.dispBus, err = openDisplay(app.config.Display); err != nil {
		debug.ErrorLog.Printf("can't open display: %v", err)
		return err
	}

	if app.config.DCF77.UseEdgeBinning {
		locator := dcf77.NewPhaseLocator(app.config.DCF77.HistogramBins, app.config.DCF77.MarginBins,
			uint32(app.config.DCF77.SampleRateHz))
		app.watcher, err = edgesource.NewWatcher(app.config.DCF77.GpioChip, app.config.DCF77.Gpio, locator, rate)
		if err != nil {
			debug.ErrorLog.Printf("can't open phase-locator watcher: %v", err)
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker: %v", err)
		return err
	}

	// initDefaultRoutes should be called last: it may access things
	// initialized above.
	app.initDefaultRoutes()

	return nil
}

// initRTC opens the configured I²C bus and wires either the DS3231
// hardware driver or, when disabled, a free-running software fallback.
func (app *App) initRTC() error {
	if app.config.RTC.Disable {
		app.rtc = rtc.NewSoftware(time.Local)
		return nil
	}

	bus, err := i2creg.Open(app.config.RTC.Bus)
	if err != nil {
		return fmt.Errorf("can't open rtc i2c bus: %w", err)
	}
	app.rtcBus = bus
	app.rtc = rtc.New(bus, uint16(app.config.RTC.Addr))
	return nil
}

// openDisplay opens the seven-segment display's I²C bus. It is
// separate from the RTC bus because the two devices often live on
// different buses on the target hardware.
func openDisplay(cfg config.DisplayConfig) (*display.Display, i2c.BusCloser, error) {
	if cfg.Disable {
		return nil, nil, nil
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("can't open display i2c bus: %w", err)
	}
	d, err := display.New(bus, uint16(cfg.Addr), byte(cfg.Brightness))
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return d, bus, nil
}

func classifierConfig(cfg config.DCF77Config) dcf77.ClassifierConfig {
	c := dcf77.DefaultClassifierConfig()
	minuteMark, bit0Min, bit0Max, bit1Min, bit1Max := cfg.ClassifierDurations()
	if minuteMark > 0 {
		c.MinuteMark = minuteMark
	}
	if bit0Min > 0 {
		c.Bit0Min = bit0Min
	}
	if bit0Max > 0 {
		c.Bit0Max = bit0Max
	}
	if bit1Min > 0 {
		c.Bit1Min = bit1Min
	}
	if bit1Max > 0 {
		c.Bit1Max = bit1Max
	}
	return c
}

// Restart returns the read only restart channel.
//  Nothing in this repository sends on or closes it; cmd/dcf77clockd
//  shuts down on OS signals instead.
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
//  Nothing in this repository sends on or closes it; cmd/dcf77clockd
//  shuts down on OS signals instead.
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close all handler used by app:
//  * mqtt
//  * gpio
func (app *App) Close() error {
	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}
	if app.watcher != nil {
		_ = app.watcher.Stop()
	}
	if app.sampler != nil {
		app.sampler.Stop()
	}
	if app.gpio != nil {
		_ = app.gpio.Close()
	}
	if app.dispBus != nil {
		_ = app.dispBus.Close()
	}
	if app.rtcBus != nil {
		_ = app.rtcBus.Close()
	}
	return nil
}
