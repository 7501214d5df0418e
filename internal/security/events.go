package security

import (
	"context"
	"time"

	"proofguard/internal/proof"
	"proofguard/pkg/requestcontext"
)

// LogEvent appends a security event to the proof's append-only event list
// and forwards a copy to the external sink. The embedded list is never
// pruned by this core; retention and rotation are external concerns. Sink
// failures are logged and do not block the append.
func (s *Service) LogEvent(ctx context.Context, eventType string, p *proof.Proof, details map[string]string) {
	if device := requestcontext.Device(ctx); device != "" {
		if details == nil {
			details = make(map[string]string)
		}
		details["device"] = device
	}

	event := proof.SecurityEvent{
		EventType: eventType,
		ProofID:   p.ID,
		UserID:    requestcontext.Principal(ctx).UserID,
		Timestamp: requestcontext.Now(ctx),
		Details:   details,
	}
	p.Metadata.Events = append(p.Metadata.Events, event)

	if err := s.sink.Publish(ctx, event); err != nil {
		s.logger.Error("security event sink publish failed",
			"event_type", eventType,
			"proof_id", p.ID.String(),
			"error", err,
		)
	}
}

// ViolationsSince filters the proof's security events to those recorded
// within the given number of days before the request time.
func (s *Service) ViolationsSince(ctx context.Context, p *proof.Proof, withinDays int) []proof.SecurityEvent {
	cutoff := requestcontext.Now(ctx).Add(-time.Duration(withinDays) * 24 * time.Hour)

	var out []proof.SecurityEvent
	for _, e := range p.Metadata.Events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
