// Package sink forwards security events to an external logging collaborator
// (SIEM pipeline, log aggregator). The in-proof event list is the durable
// record; forwarding is best-effort signal fan-out.
package sink

import (
	"context"
	"log/slog"

	"proofguard/internal/proof"
)

// Sink receives a copy of every security event this core records.
type Sink interface {
	Publish(ctx context.Context, event proof.SecurityEvent) error
}

// SlogSink writes events to the structured log at warning level.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Publish(_ context.Context, event proof.SecurityEvent) error {
	s.logger.Warn("security event",
		"event_type", event.EventType,
		"proof_id", event.ProofID.String(),
		"user_id", event.UserID.String(),
		"timestamp", event.Timestamp,
		"details", event.Details,
	)
	return nil
}
