package proof

import (
	"context"

	"proofguard/pkg/domain"
)

// Store abstracts proof persistence. Interface-driven so domain logic stays
// testable and in-memory, Postgres, or external persistence can be swapped
// without rewiring business code.
//
// Callers are expected to wrap mutating call sequences (load, mutate, save)
// in a transaction or compare-and-swap against the persisted row; this core
// performs no in-process locking of its own.
type Store interface {
	Save(ctx context.Context, p *Proof) error
	FindByID(ctx context.Context, id domain.ProofID) (*Proof, error)
	FindByIDs(ctx context.Context, ids []domain.ProofID) ([]*Proof, error)
	// ListWithGrantedConsent returns the company's proofs whose consent
	// record is in the granted state, for retention sweeps. Results never
	// cross the company boundary.
	ListWithGrantedConsent(ctx context.Context, companyID domain.CompanyID) ([]*Proof, error)
}

// ViewCounter reads per-user view counts from the external ProofView
// collaborator. The guard only consumes counts; the view schema is owned
// elsewhere.
type ViewCounter interface {
	CountViews(ctx context.Context, proofID domain.ProofID, userID domain.UserID) (int, error)
}
