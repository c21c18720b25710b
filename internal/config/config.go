package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the taws binaries.
type Config struct {
	// AircraftStateChannel is the port carrying input messages to the alerter.
	AircraftStateChannel string `yaml:"aircraft_state_channel"`
	// AlertChannel is the port carrying alert states from the alerter.
	AlertChannel string `yaml:"alert_channel"`
	// MonitorValidity is the validity window of the monitor receivers.
	MonitorValidity time.Duration `yaml:"monitor_validity"`
	// AlerterValidity is the validity window of the alerter receiver.
	AlerterValidity time.Duration `yaml:"alerter_validity"`
	// HarnessValidity is the validity window of the harness receiver and
	// bounds its wait for an alert state.
	HarnessValidity time.Duration `yaml:"harness_validity"`
	// SlotDuration paces the scheduler between two slots.
	SlotDuration time.Duration `yaml:"slot_duration"`
	// FramePeriod is the simulated time between two synthetic frames.
	FramePeriod time.Duration `yaml:"frame_period"`
	// FramesPerScenario is the batch size of every scenario.
	FramesPerScenario int `yaml:"frames_per_scenario"`
	// Seed seeds the frame generator; zero picks a time based seed.
	Seed uint64 `yaml:"seed"`
	// MonitorSpec is the monitor specification file; empty uses the embedded one.
	MonitorSpec string `yaml:"monitor_spec,omitempty"`
	// Features lists feature files, directories or globs; empty uses the embedded ones.
	Features []string `yaml:"features,omitempty"`
	// TriggerAddress is the listen address of the trigger feed; empty disables it.
	TriggerAddress string `yaml:"trigger_addr,omitempty"`
	// MetricsAddress is the listen address of /metrics; empty disables it.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// ReportFile is the path of the JSON scenario report; empty disables it.
	ReportFile string `yaml:"report_file,omitempty"`
	// Timeout is the duration for RPC calls of the checker.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "taws-settings.yaml"

	// DefaultAircraftStateChannel is the default upstream port name.
	DefaultAircraftStateChannel = "aircraft_state"
	// DefaultAlertChannel is the default downstream port name.
	DefaultAlertChannel = "taws::alerts"

	// DefaultMonitorValidity is the default validity window of the monitor.
	DefaultMonitorValidity = 10 * time.Second
	// DefaultAlerterValidity is the default validity window of the alerter.
	DefaultAlerterValidity = 10 * time.Second
	// DefaultHarnessValidity is the default validity window of the harness.
	DefaultHarnessValidity = time.Second

	// DefaultSlotDuration is the default scheduler slot length.
	DefaultSlotDuration = time.Millisecond
	// DefaultFramePeriod is the default simulated time between frames.
	DefaultFramePeriod = 100 * time.Millisecond
	// DefaultFramesPerScenario is the default batch size.
	DefaultFramesPerScenario = 100

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSameChannel is returned when both ports share a name.
	errSameChannel = errors.New("aircraft state and alert channels must differ")
	// errNonPositive is returned for windows and counts that must be positive.
	errNonPositive = errors.New("value must be positive")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields Default.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	applyDefaults(settings)

	if settings.AircraftStateChannel == settings.AlertChannel {
		return fmt.Errorf("%w: %q", errSameChannel, settings.AlertChannel)
	}

	windows := []struct {
		name  string
		value time.Duration
	}{
		{"monitor_validity", settings.MonitorValidity},
		{"alerter_validity", settings.AlerterValidity},
		{"harness_validity", settings.HarnessValidity},
		{"frame_period", settings.FramePeriod},
	}

	for _, w := range windows {
		if w.value < 0 {
			return fmt.Errorf("%s: %w, got %s", w.name, errNonPositive, w.value)
		}
	}

	if settings.SlotDuration < 0 {
		return fmt.Errorf("slot_duration: %w, got %s", errNonPositive, settings.SlotDuration)
	}

	if settings.FramesPerScenario < 0 {
		return fmt.Errorf("frames_per_scenario: %w, got %d", errNonPositive, settings.FramesPerScenario)
	}

	for name, addr := range map[string]string{
		"trigger_addr": settings.TriggerAddress,
		"metrics_addr": settings.MetricsAddress,
	} {
		if addr == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}

// applyDefaults sets every zero field to its default.
func applyDefaults(settings *Config) {
	if settings.AircraftStateChannel == "" {
		settings.AircraftStateChannel = DefaultAircraftStateChannel
	}

	if settings.AlertChannel == "" {
		settings.AlertChannel = DefaultAlertChannel
	}

	if settings.MonitorValidity == 0 {
		settings.MonitorValidity = DefaultMonitorValidity
	}

	if settings.AlerterValidity == 0 {
		settings.AlerterValidity = DefaultAlerterValidity
	}

	if settings.HarnessValidity == 0 {
		settings.HarnessValidity = DefaultHarnessValidity
	}

	if settings.SlotDuration == 0 {
		settings.SlotDuration = DefaultSlotDuration
	}

	if settings.FramePeriod == 0 {
		settings.FramePeriod = DefaultFramePeriod
	}

	if settings.FramesPerScenario == 0 {
		settings.FramesPerScenario = DefaultFramesPerScenario
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
}
