package httptransport

import (
	"net/http"
	"strconv"

	"proofguard/internal/consent"
	"proofguard/pkg/domain"
	"proofguard/pkg/requestcontext"
)

type customerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (p customerPayload) toCustomerData() consent.CustomerData {
	return consent.CustomerData{Name: p.Name, Email: p.Email, Phone: p.Phone}
}

func (h *Handler) handleConsentStatus(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, h.consent.StatusOf(r.Context(), p))
}

func (h *Handler) handleGenerateConsentToken(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body customerPayload
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Name == "" || body.Email == "" {
		writeError(w, http.StatusBadRequest, "customer name and email are required")
		return
	}

	token, err := h.consent.GenerateToken(r.Context(), p, body.toCustomerData())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *Handler) handleSendConsentRequest(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		Token    string          `json:"token"`
		Customer customerPayload `json:"customer"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if !h.consent.SendRequest(r.Context(), p, body.Token, body.Customer.toCustomerData()) {
		writeError(w, http.StatusBadGateway, "consent request could not be sent")
		return
	}
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *Handler) handleGrantConsent(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		Token   string            `json:"token"`
		Details map[string]string `json:"details,omitempty"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if !h.consent.Grant(r.Context(), p, body.Token, body.Details) {
		writeError(w, http.StatusForbidden, "invalid consent token")
		return
	}
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": p.Status.String()})
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if !h.consent.Revoke(r.Context(), p, body.Reason) {
		writeError(w, http.StatusConflict, "no consent record to revoke")
		return
	}
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": p.Status.String()})
}

func (h *Handler) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	if !h.consent.Anonymize(r.Context(), p) {
		writeError(w, http.StatusConflict, "no consent record to anonymize")
		return
	}
	if !h.saveProof(w, r, p) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"anonymized": true})
}

func (h *Handler) handleWithdrawalLink(w http.ResponseWriter, r *http.Request) {
	p := h.loadProof(w, r)
	if p == nil {
		return
	}

	link := h.consent.WithdrawalLink(p)
	if link == "" {
		writeError(w, http.StatusConflict, "consent is not granted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (h *Handler) handleBulkConsentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProofIDs []string `json:"proof_ids"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ids := make([]domain.ProofID, 0, len(body.ProofIDs))
	for _, raw := range body.ProofIDs {
		id, err := domain.ParseProofID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid proof id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	statuses, err := h.consent.BulkStatus(r.Context(), requestcontext.Principal(r.Context()).CompanyID, ids)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make(map[string]consent.Status, len(statuses))
	for id, st := range statuses {
		out[id.String()] = st
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleExpiringConsents(w http.ResponseWriter, r *http.Request) {
	withinDays := 30
	if v := r.URL.Query().Get("within_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "within_days must be a positive integer")
			return
		}
		withinDays = n
	}

	expiring, err := h.consent.Expiring(r.Context(), requestcontext.Principal(r.Context()).CompanyID, withinDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expiring)
}
