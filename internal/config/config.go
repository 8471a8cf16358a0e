// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dublimator.xyz/paned/internal/log"
)

// Config is the top-level static daemon configuration, read once at startup.
type Config struct {
	API          APIConfig         `mapstructure:"api"`
	Telegram     TelegramConfig    `mapstructure:"telegram"`
	Detector     DetectorConfig    `mapstructure:"detector"`
	Capture      CaptureConfig     `mapstructure:"capture"`
	Sysmon       SysmonConfig      `mapstructure:"sysmon"`
	Metrics      MetricsConfig     `mapstructure:"metrics"`
	Log          *log.LoggerConfig `mapstructure:"log"`
	DataFile     string            `mapstructure:"data_file"`     // incident event log
	SettingsFile string            `mapstructure:"settings_file"` // runtime alert settings
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelegramConfig contains bot credentials.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// DetectorConfig contains DoS detector settings. Thresholds are packet counts
// per reset window; a strictly greater count opens an incident.
type DetectorConfig struct {
	ThresholdSYN     int           `mapstructure:"threshold_syn"`
	ThresholdHTTP    int           `mapstructure:"threshold_http"`
	ThresholdUDP     int           `mapstructure:"threshold_udp"`
	AttackExpiryTime time.Duration `mapstructure:"attack_expiry_time"`
	Interface        string        `mapstructure:"interface"`
	Whitelist        []string      `mapstructure:"whitelist"`

	// Parsed whitelist networks, populated by ValidateAndApplyDefaults.
	WhitelistNets []netip.Prefix `mapstructure:"-"`
}

// CaptureConfig contains packet capture handle settings.
type CaptureConfig struct {
	Type       string `mapstructure:"type"`        // afpacket | pcap
	SnapLen    int    `mapstructure:"snap_len"`    // capture length in bytes
	BufferSize int    `mapstructure:"buffer_size"` // ring buffer size in bytes
	Timeout    int    `mapstructure:"timeout"`     // poll timeout in milliseconds
	Filter     string `mapstructure:"filter"`      // optional BPF filter
	FanoutID   uint16 `mapstructure:"fanout_id"`
}

// SysmonConfig contains the metrics poller settings.
type SysmonConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Docker   bool          `mapstructure:"docker"`
	DiskPath string        `mapstructure:"disk_path"` // empty = auto (/host when present, else /)
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads, validates and defaults the configuration at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v.SetEnvPrefix("PANED")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 3001)

	v.SetDefault("detector.threshold_syn", 100)
	v.SetDefault("detector.threshold_http", 200)
	v.SetDefault("detector.threshold_udp", 400)
	v.SetDefault("detector.attack_expiry_time", "10s")

	v.SetDefault("capture.type", "afpacket")
	v.SetDefault("capture.snap_len", 65536)
	v.SetDefault("capture.buffer_size", 32*1024*1024)
	v.SetDefault("capture.timeout", 1000)

	v.SetDefault("sysmon.interval", "10s")
	v.SetDefault("sysmon.docker", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", "127.0.0.1:9187")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("data_file", "data.json")
	v.SetDefault("settings_file", "settings.json")
}

// ValidateAndApplyDefaults checks the configuration and fills derived fields.
// Any error here is fatal at startup; the daemon never revalidates at runtime.
func (c *Config) ValidateAndApplyDefaults() error {
	if c.Detector.ThresholdSYN < 0 || c.Detector.ThresholdHTTP < 0 || c.Detector.ThresholdUDP < 0 {
		return fmt.Errorf("thresholds must not be negative (syn=%d http=%d udp=%d)",
			c.Detector.ThresholdSYN, c.Detector.ThresholdHTTP, c.Detector.ThresholdUDP)
	}
	if c.Detector.AttackExpiryTime <= 0 {
		return fmt.Errorf("attack_expiry_time must be positive, got %s", c.Detector.AttackExpiryTime)
	}
	if c.Detector.Interface == "" {
		return fmt.Errorf("detector.interface is required")
	}

	nets, err := ParseWhitelist(c.Detector.Whitelist)
	if err != nil {
		return err
	}
	c.Detector.WhitelistNets = nets

	switch c.Capture.Type {
	case "afpacket", "pcap":
	default:
		return fmt.Errorf("unsupported capture type: %q", c.Capture.Type)
	}
	if c.Capture.SnapLen <= 0 {
		return fmt.Errorf("capture.snap_len must be positive, got %d", c.Capture.SnapLen)
	}

	if c.Sysmon.Interval <= 0 {
		c.Sysmon.Interval = 10 * time.Second
	}
	if c.Log == nil {
		c.Log = log.DefaultConfig()
	}
	return nil
}

// ParseWhitelist parses whitelist entries into IPv4 networks. A bare address
// is treated as a /32.
func ParseWhitelist(entries []string) ([]netip.Prefix, error) {
	nets := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		s := strings.TrimSpace(e)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			s += "/32"
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("invalid whitelist entry %q: %w", e, err)
		}
		if !p.Addr().Is4() {
			return nil, fmt.Errorf("whitelist entry %q is not IPv4", e)
		}
		nets = append(nets, p.Masked())
	}
	return nets, nil
}
