// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"haptic/internal/haptic"
	applog "haptic/internal/log"
	"haptic/internal/source"
	"haptic/internal/store"
	"haptic/pkg/bitint"
)

var log = applog.With("config")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel   string          `yaml:"log_level"`  // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis   AnalysisConfig  `yaml:"analysis"`   // Bass analysis settings.
	Capture    CaptureConfig   `yaml:"capture"`    // Live input settings.
	Processing haptic.Options  `yaml:"processing"` // Default options for tagged files and playback.
	Store      StoreConfig     `yaml:"store"`      // Persistence backend.
	Server     ServerConfig    `yaml:"server"`     // HTTP API settings.
	Transport  TransportConfig `yaml:"transport"`  // Playback transports.
}

// AnalysisConfig holds settings for turning audio into a bass-energy series.
type AnalysisConfig struct {
	SampleInterval time.Duration `yaml:"sample_interval"` // Distance between samples.
	Window         time.Duration `yaml:"window"`          // Analysis length; 0 analyses the whole input.
	FFTSize        int           `yaml:"fft_size"`        // Samples per FFT.
	FFTWindow      string        `yaml:"fft_window"`      // Name of the window function (e.g., "Hann", "Hamming").
	MinDecibels    float64       `yaml:"min_decibels"`    // Magnitude mapped to byte 0.
	MaxDecibels    float64       `yaml:"max_decibels"`    // Magnitude mapped to byte 255.
}

// CaptureConfig holds settings for live capture from an input device.
type CaptureConfig struct {
	InputDevice   int     `yaml:"input_device"`   // PortAudio device index (-1 for default).
	SampleRate    float64 `yaml:"sample_rate"`    // Sample rate in Hz.
	Channels      int     `yaml:"channels"`       // Input channels; the first is analysed.
	LowLatency    bool    `yaml:"low_latency"`    // Request low latency settings from PortAudio.
	GateThreshold float64 `yaml:"gate_threshold"` // Noise gate, fraction of full scale (0 disables).
}

// StoreConfig selects and configures persistence.
type StoreConfig struct {
	Driver     string        `yaml:"driver"`     // "memory" or "mongo".
	MongoURI   string        `yaml:"mongo_uri"`  // Connection string for the mongo driver.
	Database   string        `yaml:"database"`   // Mongo database name.
	Collection string        `yaml:"collection"` // Mongo collection name.
	Timeout    time.Duration `yaml:"timeout"`    // Connect and ping timeout.
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`             // Listen address.
	MaxUploadBytes int64         `yaml:"max_upload_bytes"` // Largest accepted video upload.
	RequestTimeout time.Duration `yaml:"request_timeout"`  // Per-request deadline for store work.
}

// TransportConfig holds settings for sending playback events over the network.
type TransportConfig struct {
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send playback events over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port (e.g., "127.0.0.1:9090").
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			SampleInterval: DefaultSampleInterval,
			Window:         DefaultWindow,
			FFTSize:        DefaultFFTSize,
			FFTWindow:      DefaultFFTWindow,
			MinDecibels:    DefaultMinDecibels,
			MaxDecibels:    DefaultMaxDecibels,
		},
		Capture: CaptureConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			Channels:      DefaultChannels,
			LowLatency:    DefaultLowLatency,
			GateThreshold: DefaultGateThreshold,
		},
		Processing: haptic.DefaultOptions(),
		Store: StoreConfig{
			Driver:     DefaultStoreDriver,
			Database:   DefaultMongoDatabase,
			Collection: DefaultMongoCollection,
			Timeout:    DefaultStoreTimeout,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
			RequestTimeout: DefaultRequestTimeout,
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debugf("Loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func findConfig() string {
	candidates := []string{"config.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "haptic", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level '%s' is not a known level", c.LogLevel)
	}

	a := c.Analysis
	if a.SampleInterval < MinInterval {
		return fmt.Errorf("analysis.sample_interval must be at least %s, got %s", MinInterval, a.SampleInterval)
	}
	if a.Window < 0 {
		return fmt.Errorf("analysis.window must not be negative, got %s", a.Window)
	}
	if a.FFTSize < MinFFTSize || a.FFTSize > MaxFFTSize {
		return fmt.Errorf("analysis.fft_size must be in [%d, %d], got %d", MinFFTSize, MaxFFTSize, a.FFTSize)
	}
	if _, err := source.ParseWindowFunc(a.FFTWindow); err != nil {
		return fmt.Errorf("analysis.fft_window: %w", err)
	}
	if a.MinDecibels >= a.MaxDecibels {
		return fmt.Errorf("analysis.min_decibels (%.1f) must be below max_decibels (%.1f)", a.MinDecibels, a.MaxDecibels)
	}

	cp := c.Capture
	if cp.InputDevice < MinDeviceID {
		return fmt.Errorf("capture.input_device must be >= %d, got %d", MinDeviceID, cp.InputDevice)
	}
	if cp.SampleRate < MinSampleRate || cp.SampleRate > MaxSampleRate {
		return fmt.Errorf("capture.sample_rate must be in [%d, %d], got %.0f", MinSampleRate, MaxSampleRate, cp.SampleRate)
	}
	if cp.Channels < 1 || cp.Channels > MaxInputChannel {
		return fmt.Errorf("capture.channels must be in [1, %d], got %d", MaxInputChannel, cp.Channels)
	}
	if cp.GateThreshold < 0 || cp.GateThreshold > 1 {
		return fmt.Errorf("capture.gate_threshold must be in [0, 1], got %f", cp.GateThreshold)
	}

	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("processing: %w", err)
	}

	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri must be set when the mongo driver is selected")
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			return fmt.Errorf("store.database and store.collection must be set when the mongo driver is selected")
		}
	default:
		return fmt.Errorf("store.driver '%s' must be 'memory' or 'mongo'", c.Store.Driver)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
	}
	return nil
}

// applyEnvOverrides lets deployments change individual settings without a
// config file. Unparseable values are ignored with a warning.
func (cfg *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Debugf("Overriding log_level from env: %s", val)
	}

	// ENV_STORE_{...}
	if val, ok := os.LookupEnv("ENV_STORE_DRIVER"); ok {
		cfg.Store.Driver = val
		log.Debugf("Overriding store.driver from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_STORE_MONGO_URI"); ok {
		cfg.Store.MongoURI = val
		log.Debugf("Overriding store.mongo_uri from env")
	}

	// ENV_SERVER_ADDR
	if val, ok := os.LookupEnv("ENV_SERVER_ADDR"); ok {
		cfg.Server.Addr = val
		log.Debugf("Overriding server.addr from env: %s", val)
	}

	// ENV_ANALYSIS_SAMPLE_INTERVAL
	if val, ok := os.LookupEnv("ENV_ANALYSIS_SAMPLE_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Analysis.SampleInterval = dur
			log.Debugf("Overriding analysis.sample_interval from env: %s", dur)
		} else {
			log.Warnf("Ignoring ENV_ANALYSIS_SAMPLE_INTERVAL=%q: %v", val, err)
		}
	}

	// ENV_UDP_{...}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			log.Debugf("Overriding transport.udp_enabled from env: %v", bVal)
		} else {
			log.Warnf("Ignoring ENV_UDP_ENABLED=%q: %v", val, err)
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		log.Debugf("Overriding transport.udp_target_address from env: %s", val)
	}
}

// Spectrum returns the source settings for the analysis section.
func (c *Config) Spectrum() source.SpectrumConfig {
	w, _ := source.ParseWindowFunc(c.Analysis.FFTWindow)
	return source.SpectrumConfig{
		Interval: c.Analysis.SampleInterval,
		FFTSize:  c.Analysis.FFTSize,
		Window:   w,
		Scaler: source.ByteScaler{
			MinDecibels: c.Analysis.MinDecibels,
			MaxDecibels: c.Analysis.MaxDecibels,
		},
	}
}

// Live returns the capture settings, rounding the FFT size up to a power of
// two as PortAudio capture requires.
func (c *Config) Live() source.LiveConfig {
	spec := c.Spectrum()
	spec.FFTSize = bitint.NextPowerOfTwo(spec.FFTSize)
	return source.LiveConfig{
		DeviceID:      c.Capture.InputDevice,
		SampleRate:    c.Capture.SampleRate,
		Channels:      c.Capture.Channels,
		LowLatency:    c.Capture.LowLatency,
		Spectrum:      spec,
		GateThreshold: c.Capture.GateThreshold,
	}
}

// Mongo returns the settings for the mongo store.
func (c *Config) Mongo() store.MongoConfig {
	return store.MongoConfig{
		URI:        c.Store.MongoURI,
		Database:   c.Store.Database,
		Collection: c.Store.Collection,
		Timeout:    c.Store.Timeout,
	}
}
