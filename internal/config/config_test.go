package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
detector:
  interface: eth0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Detector.ThresholdSYN)
	assert.Equal(t, 200, cfg.Detector.ThresholdHTTP)
	assert.Equal(t, 400, cfg.Detector.ThresholdUDP)
	assert.Equal(t, 10*time.Second, cfg.Detector.AttackExpiryTime)
	assert.Equal(t, "afpacket", cfg.Capture.Type)
	assert.Equal(t, 65536, cfg.Capture.SnapLen)
	assert.Equal(t, "127.0.0.1:3001", cfg.API.Addr())
	assert.Equal(t, 10*time.Second, cfg.Sysmon.Interval)
	assert.Equal(t, "data.json", cfg.DataFile)
	require.NotNil(t, cfg.Log)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  host: 0.0.0.0
  port: 8080
detector:
  interface: ens3
  threshold_syn: 50
  threshold_http: 75
  threshold_udp: 90
  attack_expiry_time: 30s
  whitelist:
    - 8.8.8.8
    - 173.245.48.0/20
capture:
  type: pcap
  filter: "tcp or udp"
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ens3", cfg.Detector.Interface)
	assert.Equal(t, 50, cfg.Detector.ThresholdSYN)
	assert.Equal(t, 30*time.Second, cfg.Detector.AttackExpiryTime)
	assert.Equal(t, "pcap", cfg.Capture.Type)
	assert.Equal(t, "tcp or udp", cfg.Capture.Filter)
	assert.Equal(t, "debug", cfg.Log.Level)

	// A bare address is widened to a /32 network.
	require.Len(t, cfg.Detector.WhitelistNets, 2)
	assert.Equal(t, "8.8.8.8/32", cfg.Detector.WhitelistNets[0].String())
	assert.Equal(t, "173.245.48.0/20", cfg.Detector.WhitelistNets[1].String())
}

func TestLoadRejectsNegativeThreshold(t *testing.T) {
	path := writeConfig(t, `
detector:
  interface: eth0
  threshold_syn: -1
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds must not be negative")
}

func TestLoadRejectsBadWhitelistEntry(t *testing.T) {
	path := writeConfig(t, `
detector:
  interface: eth0
  whitelist:
    - not-a-network
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid whitelist entry")
}

func TestLoadRejectsIPv6Whitelist(t *testing.T) {
	path := writeConfig(t, `
detector:
  interface: eth0
  whitelist:
    - 2001:db8::/32
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not IPv4")
}

func TestLoadRequiresInterface(t *testing.T) {
	path := writeConfig(t, `
detector:
  threshold_syn: 10
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface is required")
}

func TestLoadRejectsUnknownCaptureType(t *testing.T) {
	path := writeConfig(t, `
detector:
  interface: eth0
capture:
  type: xdp
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported capture type")
}

func TestParseWhitelistSkipsBlankEntries(t *testing.T) {
	nets, err := ParseWhitelist([]string{"", "  ", "10.0.0.0/8"})
	require.NoError(t, err)
	require.Len(t, nets, 1)
	assert.Equal(t, "10.0.0.0/8", nets[0].String())
}

// The example config shipped with the repo must stay loadable.
func TestExampleConfigParses(t *testing.T) {
	data, err := os.ReadFile("../../config.yml")
	if err != nil {
		t.Skip("example config.yml not found")
	}
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	require.Contains(t, raw, "detector")

	cfg, err := Load("../../config.yml")
	require.NoError(t, err)
	assert.Equal(t, "eth0", cfg.Detector.Interface)
}
