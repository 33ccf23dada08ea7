// SPDX-License-Identifier: MIT
package source

// DefaultDeviceID selects the system default input device.
const DefaultDeviceID = -1

// LiveConfig configures real-time capture.
type LiveConfig struct {
	DeviceID   int     // Input device, DefaultDeviceID for the system default.
	SampleRate float64 // Capture rate in Hz.
	Channels   int     // Input channels; only the first is analysed.
	LowLatency bool    // Prefer the device's low input latency.
	Spectrum   SpectrumConfig

	GateThreshold float64 // Noise gate as a fraction of full scale; 0 disables it.
	RecordPath    string  // When set, the raw input is also written to this WAV file.
}
