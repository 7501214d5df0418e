// Package httptransport is the thin HTTP layer. Handlers load the proof,
// delegate to the consent and security services, and persist the result;
// business logic stays in the services.
package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proofguard/internal/consent"
	"proofguard/internal/platform/middleware"
	"proofguard/internal/proof"
	"proofguard/internal/security"
	"proofguard/pkg/domain"
	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/requestcontext"
	"proofguard/pkg/sentinel"
)

// Handler wires the consent and security services to HTTP routes.
type Handler struct {
	store    proof.Store
	consent  *consent.Service
	security *security.Service
	logger   *slog.Logger
}

func NewHandler(store proof.Store, consentSvc *consent.Service, securitySvc *security.Service, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		consent:  consentSvc,
		security: securitySvc,
		logger:   logger,
	}
}

// NewRouter wires all endpoints behind the request-context and principal
// middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestContext)
	r.Use(middleware.Logger(h.logger))

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePrincipal(h.logger))

		r.Route("/proofs/{proofID}", func(r chi.Router) {
			r.Route("/consent", func(r chi.Router) {
				r.Get("/", h.handleConsentStatus)
				r.Post("/token", h.handleGenerateConsentToken)
				r.Post("/request", h.handleSendConsentRequest)
				r.Post("/grant", h.handleGrantConsent)
				r.Post("/revoke", h.handleRevokeConsent)
				r.Post("/anonymize", h.handleAnonymize)
				r.Get("/withdrawal-link", h.handleWithdrawalLink)
			})

			r.Get("/access", h.handleCheckAccess)
			r.Put("/security-level", h.handleSetSecurityLevel)
			r.Post("/restrictions", h.handleApplyRestrictions)
			r.Get("/scan", h.handleScan)
			r.Get("/security-events", h.handleSecurityEvents)

			r.Post("/access-token", h.handleIssueAccessToken)
			r.Post("/access-token/validate", h.handleValidateAccessToken)
			r.Delete("/access-token", h.handleRevokeAccessToken)
		})

		r.Post("/consents/bulk-status", h.handleBulkConsentStatus)
		r.Get("/consents/expiring", h.handleExpiringConsents)
	})

	return r
}

// loadProof resolves the path proof and enforces tenant scope. Proofs of
// other companies surface as not found so their existence is not leaked.
func (h *Handler) loadProof(w http.ResponseWriter, r *http.Request) *proof.Proof {
	id, err := domain.ParseProofID(chi.URLParam(r, "proofID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proof id")
		return nil
	}

	p, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, sentinel.ErrNotFound) {
		writeError(w, http.StatusNotFound, "proof not found")
		return nil
	}
	if err != nil {
		h.logger.Error("proof lookup failed", "proof_id", id.String(), "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return nil
	}

	if p.CompanyID != requestcontext.Principal(r.Context()).CompanyID {
		writeError(w, http.StatusNotFound, "proof not found")
		return nil
	}
	return p
}

// saveProof persists a mutated proof, translating store failures.
func (h *Handler) saveProof(w http.ResponseWriter, r *http.Request, p *proof.Proof) bool {
	if err := h.store.Save(r.Context(), p); err != nil {
		h.logger.Error("proof save failed", "proof_id", p.ID.String(), "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError translates collaborator failures without leaking detail.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
