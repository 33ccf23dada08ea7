// SPDX-License-Identifier: MIT
package transport

import (
	"haptic/internal/haptic"
	applog "haptic/internal/log"
)

var log = applog.With("transport")

// LoggingTransport implements the Transport interface by logging each event.
// It is the fallback sink when no device is attached.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debugf("Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received event.
func (lt *LoggingTransport) Send(data any) error {
	switch ev := data.(type) {
	case haptic.Event:
		log.Infof("%-9s t=%6dms intensity=%.2f duration=%dms", ev.Kind, ev.TimestampMs, ev.Intensity, ev.DurationMs)
	default:
		log.Infof("%T: %+v", data, data)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
