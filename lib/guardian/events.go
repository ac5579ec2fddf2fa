// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import (
	"log/slog"
	"time"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// EventType identifies a registry state transition.
type EventType string

const (
	// EventAddedGuardian: a record was inserted with StatusRequested.
	// Weight carries the new guardian's weight.
	EventAddedGuardian EventType = "added-guardian"

	// EventGuardianStatusUpdated: a record's status changed. Status
	// carries the new status.
	EventGuardianStatusUpdated EventType = "guardian-status-updated"

	// EventRemovedGuardian: a record was deleted. Weight carries the
	// removed guardian's weight.
	EventRemovedGuardian EventType = "removed-guardian"

	// EventChangedThreshold: ChangeThreshold overwrote the account's
	// threshold. Threshold carries the new value; Guardian is zero.
	// The threshold commit at the end of setup does not emit this.
	EventChangedThreshold EventType = "changed-threshold"
)

// Event is one registry state transition. Events are the durable audit
// trail: together with the aggregate counters they are the only
// externally observable trace of mutations. An event is emitted only
// after its mutation has fully applied.
type Event struct {
	Type      EventType    `json:"type"`
	Account   addr.Address `json:"account"`
	Guardian  addr.Address `json:"guardian,omitempty"`
	Weight    uint64       `json:"weight,omitempty"`
	Status    Status       `json:"status,omitempty"`
	Threshold uint64       `json:"threshold,omitempty"`
	Time      time.Time    `json:"time"`
}

// Sink receives registry events. Emit is called synchronously with the
// emitting account's operations serialized, so a sink observes each
// account's events in mutation order. Emit must not call back into the
// registry for the same account.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) { f(event) }

// LogSink writes events to a slog logger at Info level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs the event with its type as the message and the populated
// fields as attributes.
func (s *LogSink) Emit(event Event) {
	attrs := []any{
		slog.String("account", event.Account.String()),
	}
	if !event.Guardian.IsZero() {
		attrs = append(attrs, slog.String("guardian", event.Guardian.String()))
	}
	switch event.Type {
	case EventAddedGuardian, EventRemovedGuardian:
		attrs = append(attrs, slog.Uint64("weight", event.Weight))
	case EventGuardianStatusUpdated:
		attrs = append(attrs, slog.String("status", event.Status.String()))
	case EventChangedThreshold:
		attrs = append(attrs, slog.Uint64("threshold", event.Threshold))
	}
	s.logger.Info(string(event.Type), attrs...)
}

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

// Emit delivers the event to each sink.
func (m MultiSink) Emit(event Event) {
	for _, sink := range m {
		sink.Emit(event)
	}
}
