// Package config loads the process-level configuration file and holds
// the hot-swappable configuration snapshot consumed by the core
// subsystems.
package config

import (
	"github.com/BurntSushi/toml"
)

// Config is the process configuration, read once at startup from a
// TOML file.
type Config struct {
	Logger LogConf   // Logger - log sink configuration.
	MQTT   MQTTConf  // MQTT - telemetry republish client configuration.
	SACN   SACNConf  // SACN - sACN transmitter configuration.
	Sensor SensorConf // Sensor - UDP sensor listener configuration.
	Sync   SyncConf  // Sync - cloud config-sync poller configuration.
	Device DeviceConf // Device - device identity and timezone.
}

// LogConf configures the logger.
type LogConf struct {
	Level string `toml:"log-level"` // Level - logging severity.
}

// MQTTConf configures the telemetry republish client.
type MQTTConf struct {
	ClientID string `toml:"clientID"` // ClientID - MQTT client identity.
	Host     string `toml:"server"`   // Host - MQTT broker address.
	Port     string `toml:"port"`     // Port - MQTT broker port.
	User     string `toml:"user"`     // User - broker login.
	Password string `toml:"password"` // Password - broker password.
	Qos      byte   `toml:"qos"`      // Qos - publish quality of service.
}

// SACNConf configures the sACN transmitter.
type SACNConf struct {
	BindCIDR   string `toml:"bind-cidr"`   // BindCIDR - LAN CIDR used to pick the bind address.
	SourceName string `toml:"source-name"` // SourceName - read but unused; the transmitter always sends "Attitude sACN Client".
	Universes  int    `toml:"universes"`   // Universes - highest universe number in use.
}

// SensorConf configures the UDP sensor listener.
type SensorConf struct {
	Port int `toml:"port"` // Port - UDP listen port (default 6455).
}

// SyncConf configures the cloud config-sync poller.
type SyncConf struct {
	Endpoint     string `toml:"endpoint"`      // Endpoint - HTTPS config-fetch URL.
	WebsocketURL string `toml:"websocket-url"` // WebsocketURL - optional telemetry push socket.
}

// DeviceConf configures device identity.
type DeviceConf struct {
	Timezone string `toml:"timezone"` // Timezone - IANA tz name, falls back to America/Chicago.
	LEDPort  string `toml:"led-port"` // LEDPort - serial device path for the panel LED, empty disables it.
}

// NewConfig reads the process configuration at path, applying
// zero-value defaults for anything the file omits.
func NewConfig(path string) (*Config, error) {
	cfg := Config{
		Logger: LogConf{Level: "info"},
		Sensor: SensorConf{Port: 6455},
		Device: DeviceConf{Timezone: "America/Chicago"},
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}
