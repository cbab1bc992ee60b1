// Package config handles rfe configuration loading: instance
// identity, the apps to start (with rate overrides), the connectors
// to create, and the initial DS/TO telemetry-set roster.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcweaver997/rfe/internal/msg"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order. An explicit
// path (from -config) is checked first. Then: ./config.yaml,
// ~/.config/rfe/config.yaml, /config/config.yaml, /etc/rfe/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rfe", "config.yaml"))
	}

	paths = append(paths, "/config/config.yaml") // Container convention
	paths = append(paths, "/etc/rfe/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must
// exist. Otherwise, searches DefaultSearchPaths and returns the first
// that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds a complete instance configuration.
type Config struct {
	Instance   string            `yaml:"instance"`
	LogLevel   string            `yaml:"log_level"`
	Apps       []AppConfig       `yaml:"apps"`
	Connectors []ConnectorConfig `yaml:"connectors"`
	DS         DSConfig          `yaml:"ds"`
	TO         TOConfig          `yaml:"to"`
	HS         HSConfig          `yaml:"hs"`
}

// AppConfig names one app to register and the rate it runs at. Rate is
// a string among "1hz","5hz","10hz","20hz","50hz","100hz"; empty means
// the app's own default.
type AppConfig struct {
	Type string `yaml:"type"` // example, ds, to, hs
	Rate string `yaml:"rate"`
}

// ConnectorConfig describes one connector to create. Params is
// kind-specific: mem needs nothing, udp needs "local" and "remote",
// tcp needs "address", serial
// needs "port" and "baud", mqtt needs "broker"/"client_id"/topics,
// websocket needs "url", encrypting wraps another connector and needs
// "inner" (an index into this same list) and "key" (hex-encoded).
// Downlink reserves the connector for the TO app instead of
// registering it on the scheduler bus; at most one connector may be
// marked downlink, and a connector wrapped by an encrypting decorator
// cannot be (mark the decorator instead).
type ConnectorConfig struct {
	Kind     string            `yaml:"kind"`
	Params   map[string]string `yaml:"params"`
	Downlink bool              `yaml:"downlink"`
}

// DSConfig seeds the DS app.
type DSConfig struct {
	StartEnabled bool             `yaml:"start_enabled"`
	CatalogPath  string           `yaml:"catalog_path"`
	TlmSets      []DsTlmSetConfig `yaml:"tlm_sets"`
}

// DsTlmSetConfig is one DS telemetry set as loaded from YAML.
type DsTlmSetConfig struct {
	ID      uint16             `yaml:"id"`
	Enabled bool               `yaml:"enabled"`
	Path    string             `yaml:"path"`
	Items   []TlmSetItemConfig `yaml:"items"`
}

// TOConfig seeds the TO app.
type TOConfig struct {
	TlmSets []ToTlmSetConfig `yaml:"tlm_sets"`
}

// ToTlmSetConfig is one TO telemetry set as loaded from YAML.
type ToTlmSetConfig struct {
	ID      uint16             `yaml:"id"`
	Enabled bool               `yaml:"enabled"`
	Items   []TlmSetItemConfig `yaml:"items"`
}

// TlmSetItemConfig is one decimation filter entry as loaded from YAML.
// Instance and Kind are the named constants (e.g. "all", "hs_hk").
type TlmSetItemConfig struct {
	Instance   string `yaml:"instance"`
	Kind       string `yaml:"kind"`
	Decimation uint16 `yaml:"decimation"`
}

// HSConfig seeds the HS app.
type HSConfig struct {
	CPUChecks       bool  `yaml:"cpu_checks"`
	MemChecks       bool  `yaml:"mem_checks"`
	FsChecks        bool  `yaml:"fs_checks"`
	TempChecks      bool  `yaml:"temp_checks"`
	WatchdogEnable  bool  `yaml:"watchdog_enable"`
	WatchdogTimeout int32 `yaml:"watchdog_timeout"`
}

// Load reads configuration from a YAML file, expands environment
// variables, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Instance == "" {
		c.Instance = "example"
	}
	if c.DS.CatalogPath == "" {
		c.DS.CatalogPath = "ds_catalog.sqlite"
	}
	if c.HS.WatchdogTimeout == 0 {
		c.HS.WatchdogTimeout = 30
	}
}

// Validate checks that the configuration is internally consistent. It
// runs after applyDefaults.
func (c *Config) Validate() error {
	switch c.Instance {
	case "example", "ds", "to", "hs", "ground":
	default:
		return fmt.Errorf("unknown instance %q", c.Instance)
	}

	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(c.Apps))
	for _, a := range c.Apps {
		switch a.Type {
		case "example", "ds", "to", "hs":
		default:
			return fmt.Errorf("unknown app type %q", a.Type)
		}
		if seen[a.Type] {
			return fmt.Errorf("app %q configured more than once", a.Type)
		}
		seen[a.Type] = true
		if a.Rate != "" {
			if _, err := parseRate(a.Rate); err != nil {
				return err
			}
		}
	}

	downlinks := 0
	for _, cc := range c.Connectors {
		switch cc.Kind {
		case "mem", "udp", "tcp", "serial", "mqtt", "websocket", "encrypting":
		default:
			return fmt.Errorf("unknown connector kind %q", cc.Kind)
		}
		if cc.Downlink {
			downlinks++
		}
	}
	if downlinks > 1 {
		return fmt.Errorf("%d connectors marked downlink, at most one allowed", downlinks)
	}

	return nil
}

// parseRate converts a config rate string into the numeric Hz value
// the rfe package's Rate type is keyed on (see internal/rfe.Rate).
func parseRate(s string) (uint8, error) {
	switch s {
	case "1hz":
		return 1, nil
	case "5hz":
		return 5, nil
	case "10hz":
		return 10, nil
	case "20hz":
		return 20, nil
	case "50hz":
		return 50, nil
	case "100hz":
		return 100, nil
	default:
		return 0, fmt.Errorf("unknown rate %q (valid: 1hz, 5hz, 10hz, 20hz, 50hz, 100hz)", s)
	}
}

// ParseRate is the exported form of parseRate, for callers outside this
// package (the cmd/rfe wiring) that need to translate a configured app
// rate into an rfe.Rate value without importing parsing internals twice.
func ParseRate(s string) (uint8, error) {
	return parseRate(s)
}

// BuildItem resolves a TlmSetItemConfig into a msg.TlmSetItem.
func (ic TlmSetItemConfig) BuildItem() (msg.TlmSetItem, error) {
	inst, ok := msg.ParseInstance(ic.Instance)
	if !ok {
		return msg.TlmSetItem{}, fmt.Errorf("unknown instance %q in tlm set item", ic.Instance)
	}
	kind, ok := msg.ParseKind(ic.Kind)
	if !ok {
		return msg.TlmSetItem{}, fmt.Errorf("unknown kind %q in tlm set item", ic.Kind)
	}
	return msg.TlmSetItem{
		Target:     msg.TargetMsg{Instance: inst, Kind: kind},
		Decimation: ic.Decimation,
	}, nil
}

func buildItems(items []TlmSetItemConfig) ([]msg.TlmSetItem, error) {
	out := make([]msg.TlmSetItem, 0, len(items))
	for _, ic := range items {
		item, err := ic.BuildItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// BuildDsTlmSets resolves the configured DS telemetry sets into the
// map shape the ds app expects.
func (c *Config) BuildDsTlmSets() (map[msg.TlmSetId]msg.DsTlmSet, error) {
	out := make(map[msg.TlmSetId]msg.DsTlmSet, len(c.DS.TlmSets))
	for _, sc := range c.DS.TlmSets {
		items, err := buildItems(sc.Items)
		if err != nil {
			return nil, fmt.Errorf("ds tlm set %d: %w", sc.ID, err)
		}
		id := msg.TlmSetId(sc.ID)
		out[id] = msg.DsTlmSet{ID: id, Enabled: sc.Enabled, Path: sc.Path, Items: items}
	}
	return out, nil
}

// BuildToTlmSets resolves the configured TO telemetry sets into the
// map shape the to app expects.
func (c *Config) BuildToTlmSets() (map[msg.TlmSetId]msg.ToTlmSet, error) {
	out := make(map[msg.TlmSetId]msg.ToTlmSet, len(c.TO.TlmSets))
	for _, sc := range c.TO.TlmSets {
		items, err := buildItems(sc.Items)
		if err != nil {
			return nil, fmt.Errorf("to tlm set %d: %w", sc.ID, err)
		}
		id := msg.TlmSetId(sc.ID)
		out[id] = msg.ToTlmSet{ID: id, Enabled: sc.Enabled, Items: items}
	}
	return out, nil
}
