package proof

import (
	"context"
	"encoding/json"
	"sync"

	"proofguard/pkg/domain"
	"proofguard/pkg/sentinel"
)

// InMemoryStore keeps proofs in a map. Suitable for tests and single-node
// development; production uses the Postgres store.
type InMemoryStore struct {
	mu     sync.RWMutex
	proofs map[domain.ProofID]*Proof
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{proofs: make(map[domain.ProofID]*Proof)}
}

func (s *InMemoryStore) Save(_ context.Context, p *Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[p.ID] = cloneProof(p)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ProofID) (*Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proofs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProof(p), nil
}

func (s *InMemoryStore) FindByIDs(_ context.Context, ids []domain.ProofID) ([]*Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Proof, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.proofs[id]; ok {
			out = append(out, cloneProof(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListWithGrantedConsent(_ context.Context, companyID domain.CompanyID) ([]*Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Proof
	for _, p := range s.proofs {
		if p.CompanyID != companyID {
			continue
		}
		if c := p.Metadata.Consent; c != nil && c.Status == domain.ConsentGranted {
			out = append(out, cloneProof(p))
		}
	}
	return out, nil
}

// cloneProof deep-copies via the JSON codec so callers can mutate returned
// proofs without aliasing stored state.
func cloneProof(p *Proof) *Proof {
	b, err := json.Marshal(p)
	if err != nil {
		cp := *p
		return &cp
	}
	var out Proof
	if err := json.Unmarshal(b, &out); err != nil {
		cp := *p
		return &cp
	}
	return &out
}

// InMemoryViewCounter records and counts proof views per user.
type InMemoryViewCounter struct {
	mu    sync.RWMutex
	views map[viewKey]int
}

type viewKey struct {
	proofID domain.ProofID
	userID  domain.UserID
}

func NewInMemoryViewCounter() *InMemoryViewCounter {
	return &InMemoryViewCounter{views: make(map[viewKey]int)}
}

// RecordView registers one view of a proof by a user.
func (c *InMemoryViewCounter) RecordView(proofID domain.ProofID, userID domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[viewKey{proofID, userID}]++
}

func (c *InMemoryViewCounter) CountViews(_ context.Context, proofID domain.ProofID, userID domain.UserID) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.views[viewKey{proofID, userID}], nil
}
