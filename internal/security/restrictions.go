package security

import (
	"context"
	"fmt"
	"slices"
	"time"

	"proofguard/internal/proof"
	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/requestcontext"
)

// Decision is the outcome of a restriction evaluation. Every configured
// restriction is checked so the caller gets the complete violation list,
// not just the first failure.
type Decision struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations"`
}

// ApplyRestrictions merges the supplied restrictions into the proof's
// existing set, stamping who applied them and when. Malformed restriction
// config is rejected without mutation.
func (s *Service) ApplyRestrictions(ctx context.Context, p *proof.Proof, in proof.AccessRestrictions) bool {
	if tw := in.TimeRestrictions; tw != nil {
		if tw.StartHour < 0 || tw.StartHour > 23 || tw.EndHour < 1 || tw.EndHour > 24 || tw.StartHour >= tw.EndHour {
			return false
		}
	}
	if in.ViewLimit != nil && *in.ViewLimit < 1 {
		return false
	}

	if p.Metadata.Restrictions == nil {
		p.Metadata.Restrictions = &proof.AccessRestrictions{}
	}
	p.Metadata.Restrictions.Merge(in, requestcontext.Principal(ctx).UserID, requestcontext.Now(ctx))
	return true
}

// CheckRestrictions evaluates each restriction present against the request
// context (client IP, request time, requesting user). The error return is
// reserved for collaborator failures (view-count lookup); policy denials
// come back inside the Decision.
func (s *Service) CheckRestrictions(ctx context.Context, p *proof.Proof) (Decision, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RestrictionCheckLatency.Observe(time.Since(start).Seconds())
		}
	}()

	r := p.Metadata.Restrictions
	if r == nil {
		return Decision{Allowed: true, Violations: []string{}}, nil
	}

	violations := []string{}

	if len(r.IPWhitelist) > 0 {
		ip := requestcontext.ClientIP(ctx)
		if !slices.Contains(r.IPWhitelist, ip) {
			violations = append(violations, fmt.Sprintf("IP address %s not in whitelist", ip))
		}
	}

	if tw := r.TimeRestrictions; tw != nil {
		hour := requestcontext.Now(ctx).Hour()
		if !tw.Contains(hour) {
			violations = append(violations,
				fmt.Sprintf("access at hour %d outside allowed hours %d-%d", hour, tw.StartHour, tw.EndHour))
		}
	}

	if r.ViewLimit != nil {
		userID := requestcontext.Principal(ctx).UserID
		count, err := s.views.CountViews(ctx, p.ID, userID)
		if err != nil {
			return Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "view count lookup failed")
		}
		if count >= *r.ViewLimit {
			violations = append(violations, fmt.Sprintf("View limit (%d) exceeded", *r.ViewLimit))
		}
	}

	if len(violations) > 0 {
		s.metrics.ObserveAccessDecision("denied_restriction")
	}
	return Decision{Allowed: len(violations) == 0, Violations: violations}, nil
}
