package app

import (
	"encoding/json"
	"time"

	"github.com/ceigel/dcf77/pkg/dcf77"
	"github.com/ceigel/dcf77/pkg/mqtt"
	"github.com/womat/debug"
)

// refreshIdxHz is the seven-segment display's refresh rate. idx cycles
// 0..3 at this rate; 0 and 1 show the time, 2 the date, 3 the year
// (spec §6, mirroring the original firmware's show_rtc_time index).
const refreshIdxHz = 4

// service is the application's main pipeline: it drains completed
// telegrams into the decoder and disciplinarian, and refreshes the
// display from whatever the RTC now holds.
func (app *App) service() {
	ticker := time.NewTicker(time.Second / refreshIdxHz)
	defer ticker.Stop()

	var idx uint

	for {
		select {
		case <-app.shutdown:
			return
		case tg := <-app.classifier.Telegrams:
			app.handleTelegram(tg)
		case <-ticker.C:
			app.refreshDisplay(idx)
			app.updateStatus(idx == 0)
			idx = (idx + 1) % 4
		}
	}
}

// handleTelegram decodes one completed frame and hands the result to
// the disciplinarian, which writes the RTC only on success (spec §4.5).
func (app *App) handleTelegram(tg dcf77.Telegram) {
	dt, err := dcf77.Decode(tg)
	app.disc.Handle(dt, err)
}

// refreshDisplay shows an error glyph until the RTC has ever been
// synchronized, then cycles through time/date/year the way the
// original firmware's show_rtc_time does.
func (app *App) refreshDisplay(idx uint) {
	if app.disp == nil {
		return
	}

	if !app.disc.Synchronized() {
		if err := app.disp.ShowError(0); err != nil {
			debug.ErrorLog.Printf("display: %v", err)
		}
		return
	}

	second, err := app.rtc.Second()
	if err != nil {
		debug.ErrorLog.Printf("rtc: reading seconds: %v", err)
		return
	}

	switch idx {
	case 0, 1:
		hour, herr := app.rtc.Hour()
		minute, merr := app.rtc.Minute()
		if herr != nil || merr != nil {
			debug.ErrorLog.Printf("rtc: reading time: hour=%v minute=%v", herr, merr)
			return
		}
		err = app.disp.ShowTime(hour, minute, second, 0)
	case 2:
		month, merr := app.rtc.Month()
		day, derr := app.rtc.Day()
		if merr != nil || derr != nil {
			debug.ErrorLog.Printf("rtc: reading date: month=%v day=%v", merr, derr)
			return
		}
		err = app.disp.ShowDate(month, day)
	default:
		year, yerr := app.rtc.Year()
		if yerr != nil {
			debug.ErrorLog.Printf("rtc: reading year: %v", yerr)
			return
		}
		err = app.disp.ShowYear(year)
	}
	if err != nil {
		debug.ErrorLog.Printf("display: %v", err)
	}
}

// updateStatus refreshes the cached /status snapshot every tick, and
// additionally publishes it to MQTT once per second (publish == true)
// to avoid flooding the broker at the display's refresh rate.
func (app *App) updateStatus(publish bool) {
	st := Status{
		Synchronized: app.disc.Synchronized(),
		Updated:      time.Now(),
	}
	if err := app.disc.LastError(); err != nil {
		st.LastError = err.Error()
	}
	if y, err := app.rtc.Year(); err == nil {
		mo, _ := app.rtc.Month()
		d, _ := app.rtc.Day()
		h, _ := app.rtc.Hour()
		mi, _ := app.rtc.Minute()
		s, _ := app.rtc.Second()
		st.RTCTime = time.Date(y, time.Month(mo), d, h, mi, s, 0, time.Local).Format(time.RFC3339)
	}

	app.status.Lock()
	app.status.data = st
	app.status.Unlock()

	if !publish || app.config.MQTT.Topic == "" {
		return
	}
	payload, err := json.Marshal(st)
	if err != nil {
		debug.ErrorLog.Printf("marshaling status for mqtt: %v", err)
		return
	}
	app.mqtt.C <- mqtt.Message{Topic: app.config.MQTT.Topic, Payload: payload, Qos: 0, Retained: true}
}
