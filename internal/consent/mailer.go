package consent

import (
	"context"
	"log/slog"

	"proofguard/pkg/domain"
)

// ConsentRequest is the hand-off payload for the external mail collaborator.
// This core never sends mail itself; it only records that delivery was
// attempted.
type ConsentRequest struct {
	To           string
	CustomerName string
	ProofTitle   string
	ConsentType  domain.ConsentType
	Token        string
}

// Mailer delegates consent-request delivery to the surrounding application.
type Mailer interface {
	SendConsentRequest(ctx context.Context, req ConsentRequest) error
}

// LogMailer records the hand-off in the structured log. Used in development
// and as the default wiring until a real mail collaborator is attached.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConsentRequest(_ context.Context, req ConsentRequest) error {
	m.logger.Info("consent request hand-off",
		"to", req.To,
		"consent_type", req.ConsentType.String(),
		"proof_title", req.ProofTitle,
	)
	return nil
}
