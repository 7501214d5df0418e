package httptransport

import (
	"net/http"
	"strconv"

	"proofguard/internal/proof"
	"proofguard/internal/security"
	"proofguard/pkg/requestcontext"
)

// handleCheckAccess runs the clearance and restriction gates for the
// requesting principal. A denied viewer receives a generic "access
// restricted" message: denial reasons are recorded for operators, not
// leaked to the denied party.
func (h *Handler) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}
	ctx := r.Context()
	principal := requestcontext.Principal(ctx)

	if !h.security.CanAccess(ctx, principal, p) {
		h.security.LogEvent(ctx, "access_denied", p, map[string]string{"gate": "clearance"})
		if !h.saveProof(w, r, p) {
			return
		}
		writeError(w, http.StatusForbidden, "access restricted")
		return
	}

	decision, err := h.security.CheckRestrictions(ctx, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !decision.Allowed {
		h.security.LogEvent(ctx, "restriction_violation", p, map[string]string{
			"gate":       "restrictions",
			"violations": strconv.Itoa(len(decision.Violations)),
		})
		if !h.saveProof(w, r, p) {
			return
		}
		writeError(w, http.StatusForbidden, "access restricted")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"allowed": true})
}

func (h *Handler) handleSetSecurityLevel(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		Level  string `json:"level"`
		Reason string `json:"reason,omitempty"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if !h.security.SetLevel(r.Context(), p, body.Level, body.Reason) {
		writeError(w, http.StatusBadRequest, "unknown security level")
		return
	}
	h.security.LogEvent(r.Context(), "classification_changed", p, map[string]string{"level": body.Level})
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"level": body.Level})
}

func (h *Handler) handleApplyRestrictions(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body proof.AccessRestrictions
	if !decodeBody(w, r, &body) {
		return
	}

	if !h.security.ApplyRestrictions(r.Context(), p, body) {
		writeError(w, http.StatusBadRequest, "malformed restriction config")
		return
	}
	h.security.LogEvent(r.Context(), "restrictions_applied", p, nil)
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, p.Metadata.Restrictions)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}
	findings := h.security.Scan(p)
	if findings == nil {
		findings = []security.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (h *Handler) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	withinDays := 30
	if v := r.URL.Query().Get("within_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "within_days must be a positive integer")
			return
		}
		withinDays = n
	}

	events := h.security.ViolationsSince(r.Context(), p, withinDays)
	if events == nil {
		events = []proof.SecurityEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleIssueAccessToken(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		TTLHours int `json:"ttl_hours"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.TTLHours <= 0 {
		body.TTLHours = 1
	}

	userID := requestcontext.Principal(r.Context()).UserID
	token, err := h.security.IssueAccessToken(r.Context(), p, userID, body.TTLHours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.security.LogEvent(r.Context(), "access_token_issued", p, nil)
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *Handler) handleValidateAccessToken(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	userID := requestcontext.Principal(r.Context()).UserID
	valid, err := h.security.ValidateAccessToken(r.Context(), body.Token, p, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *Handler) handleRevokeAccessToken(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	userID := requestcontext.Principal(r.Context()).UserID
	if err := h.security.RevokeAccessToken(r.Context(), p, userID); err != nil {
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	h.security.LogEvent(r.Context(), "access_token_revoked", p, nil)
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}
