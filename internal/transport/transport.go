// SPDX-License-Identifier: MIT
// Package transport delivers playback events to haptic consumers.
package transport

import (
	"errors"
	"fmt"
)

// Transport defines a generic interface for sending playback events.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Multi fans every Send out to several transports. A failing transport does
// not stop delivery to the others; the errors are joined.
type Multi []Transport

// Send forwards data to every transport.
func (m Multi) Send(data any) error {
	var errs []error
	for i, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, fmt.Errorf("transport %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
