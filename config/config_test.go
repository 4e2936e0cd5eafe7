package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://localhost:1883
  client_id: medibox-test
  qos: 1
scheduler:
  poll_seconds: 15
  schedule_file: /tmp/schedules.json
dispenser:
  ack_timeout_seconds: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("broker = %s", cfg.MQTT.Broker)
	}
	if cfg.MQTT.ClientID != "medibox-test" {
		t.Errorf("client_id = %s", cfg.MQTT.ClientID)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("qos = %d", cfg.MQTT.QoS)
	}
	if cfg.Scheduler.PollSeconds != 15 {
		t.Errorf("poll_seconds = %d", cfg.Scheduler.PollSeconds)
	}
	if cfg.Scheduler.ScheduleFile != "/tmp/schedules.json" {
		t.Errorf("schedule_file = %s", cfg.Scheduler.ScheduleFile)
	}
	if cfg.Dispenser.AckTimeoutSeconds != 30 {
		t.Errorf("ack_timeout_seconds = %d", cfg.Dispenser.AckTimeoutSeconds)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"mqtt":{"broker":"tcp://localhost:1883"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("broker = %s", cfg.MQTT.Broker)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "mqtt:\n  broker: tcp://localhost:1883\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MQTT.CommandTopic != "dispenser/command" {
		t.Errorf("command_topic = %s", cfg.MQTT.CommandTopic)
	}
	if cfg.MQTT.StatusTopic != "dispenser/status" {
		t.Errorf("status_topic = %s", cfg.MQTT.StatusTopic)
	}
	if cfg.MQTT.Reconnect.InitialSeconds != 1 || cfg.MQTT.Reconnect.MaxSeconds != 32 {
		t.Errorf("reconnect = %+v", cfg.MQTT.Reconnect)
	}
	if cfg.Scheduler.PollSeconds != 30 {
		t.Errorf("poll_seconds = %d", cfg.Scheduler.PollSeconds)
	}
	if cfg.Scheduler.MaxSlots != 3 {
		t.Errorf("max_slots = %d", cfg.Scheduler.MaxSlots)
	}
	if cfg.Dispenser.AckTimeoutSeconds != 60 {
		t.Errorf("ack_timeout_seconds = %d", cfg.Dispenser.AckTimeoutSeconds)
	}
	if cfg.Dispenser.TickMS != 100 || cfg.Dispenser.BlinkMS != 500 || cfg.Dispenser.PulseMS != 380 {
		t.Errorf("dispenser timings = %+v", cfg.Dispenser)
	}
	if cfg.Metrics.PrometheusPort != "2112" {
		t.Errorf("prometheus_port = %s", cfg.Metrics.PrometheusPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "mqtt:\n  broker: tcp://localhost:1883\n")
	t.Setenv("MEDIBOX_MQTT__BROKER", "tcp://override:1883")
	t.Setenv("MEDIBOX_SCHEDULER__POLL_SECONDS", "10")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://override:1883" {
		t.Errorf("broker = %s, env override not applied", cfg.MQTT.Broker)
	}
	if cfg.Scheduler.PollSeconds != 10 {
		t.Errorf("poll_seconds = %d, env override not applied", cfg.Scheduler.PollSeconds)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"poll too high", "scheduler:\n  poll_seconds: 120\n"},
		{"negative slots", "scheduler:\n  max_slots: -1\n"},
		{"tick too high", "dispenser:\n  tick_ms: 5000\n"},
		{"reconnect inverted", "mqtt:\n  reconnect:\n    initial_seconds: 10\n    max_seconds: 2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tc.content)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "broker = 'x'\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
