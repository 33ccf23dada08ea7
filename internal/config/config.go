// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults and limits for the haptic engine configuration.
const (
	// Analysis defaults, matching a browser analyser polled every 100ms for 5s.
	DefaultSampleInterval = 100 * time.Millisecond
	DefaultWindow         = 5 * time.Second
	DefaultFFTSize        = 2048
	DefaultFFTWindow      = "Hann"
	DefaultMinDecibels    = -100.0
	DefaultMaxDecibels    = -30.0

	// Capture defaults.
	DefaultDeviceID      = MinDeviceID // System default device
	DefaultSampleRate    = 44100       // CD-quality audio
	DefaultChannels      = 1           // Mono audio
	DefaultLowLatency    = false       // Standard latency mode
	DefaultGateThreshold = 0.001       // ~0.1% of full scale

	// Store defaults.
	DefaultStoreDriver     = "memory"
	DefaultMongoDatabase   = "haptic"
	DefaultMongoCollection = "haptic_store"
	DefaultStoreTimeout    = 10 * time.Second

	// Server defaults.
	DefaultServerAddr     = ":8080"
	DefaultMaxUploadBytes = 512 << 20
	DefaultRequestTimeout = 30 * time.Second

	// Transport defaults.
	DefaultUDPTargetAddress = "127.0.0.1:9090"

	// Hardware and processing limits.
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MinFFTSize      = 32
	MaxFFTSize      = 32768
	MinInterval     = 10 * time.Millisecond
	MaxInputChannel = 32
)
