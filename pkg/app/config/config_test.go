package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()

	if c.DCF77.Gpio != 17 {
		t.Errorf("DCF77.Gpio = %d, want 17", c.DCF77.Gpio)
	}
	if c.DCF77.SampleRateHz != 100 {
		t.Errorf("DCF77.SampleRateHz = %d, want 100", c.DCF77.SampleRateHz)
	}
	if c.DCF77.Pull != "none" {
		t.Errorf("DCF77.Pull = %q, want %q", c.DCF77.Pull, "none")
	}
	if c.RTC.Addr != 0x68 {
		t.Errorf("RTC.Addr = %#x, want %#x", c.RTC.Addr, 0x68)
	}
	if c.Display.Addr != 0x70 {
		t.Errorf("Display.Addr = %#x, want %#x", c.Display.Addr, 0x70)
	}
	if !c.Webserver.Webservices["status"] {
		t.Error("Webserver.Webservices[\"status\"] should default to true")
	}
	if c.MQTT.Topic != "/dcf77clockd/status" {
		t.Errorf("MQTT.Topic = %q, want /dcf77clockd/status", c.MQTT.Topic)
	}
}

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadConfigAcceptsValidPull(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeTempConfig(t, "dcf77:\n  pull: up\n")

	if err := c.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.DCF77.Pull != "up" {
		t.Errorf("DCF77.Pull = %q, want up", c.DCF77.Pull)
	}
}

func TestLoadConfigRejectsInvalidPull(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeTempConfig(t, "dcf77:\n  pull: sideways\n")

	if err := c.LoadConfig(); err == nil {
		t.Fatal("expected error for invalid pull setting, got nil")
	}
}

func TestLoadConfigRejectsNonPositiveSampleRate(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeTempConfig(t, "dcf77:\n  sampleratehz: 0\n")

	if err := c.LoadConfig(); err == nil {
		t.Fatal("expected error for non-positive sampleratehz, got nil")
	}
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "does-not-exist.yaml")

	if err := c.LoadConfig(); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestClassifierDurationsConvertsMillisecondsLeavingZerosUnset(t *testing.T) {
	cfg := DCF77Config{
		MinuteMarkMS: 1500,
		Bit0MinMS:    70,
		Bit0MaxMS:    130,
	}
	minuteMark, bit0Min, bit0Max, bit1Min, bit1Max := cfg.ClassifierDurations()

	if minuteMark != 1500*time.Millisecond {
		t.Errorf("minuteMark = %v, want 1500ms", minuteMark)
	}
	if bit0Min != 70*time.Millisecond || bit0Max != 130*time.Millisecond {
		t.Errorf("bit0Min/Max = %v/%v, want 70ms/130ms", bit0Min, bit0Max)
	}
	if bit1Min != 0 || bit1Max != 0 {
		t.Errorf("unset bit1Min/Max = %v/%v, want 0/0", bit1Min, bit1Max)
	}
}
