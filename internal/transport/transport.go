// SPDX-License-Identifier: MIT
// Package transport publishes generated render paths to external renderer
// collaborators. Transports never block the analysis loop: a slow or absent
// consumer drops frames, it does not stall the pipeline.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations must be safe for concurrent use. Send may deliver
// asynchronously, so callers pass a snapshot they will not mutate afterwards.
type Transport interface {
	Send(data any) error
	Close() error
}
