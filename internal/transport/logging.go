// SPDX-License-Identifier: MIT
package transport

import (
	applog "spectra/internal/log"
)

// LoggingTransport implements Transport by logging payload summaries at
// debug verbosity. Useful when bringing up the pipeline without a renderer.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received payload.
func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("Transport: %v", data)
	return nil
}

// Close implements Transport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
