package proof

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofguard/pkg/domain"
	"proofguard/pkg/sentinel"
)

func storedProof() *Proof {
	return &Proof{
		ID:        domain.ProofID(uuid.New()),
		CompanyID: domain.CompanyID(uuid.New()),
		Type:      domain.ProofTypeTestimonial,
		Status:    domain.ProofStatusDraft,
		Title:     "Acme rollout",
		Metadata:  Metadata{SchemaVersion: SchemaVersion},
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		store := NewInMemoryStore()
		p := storedProof()
		require.NoError(t, store.Save(ctx, p))

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, p.Title, got.Title)
	})

	t.Run("missing proof is not found", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.FindByID(ctx, domain.ProofID(uuid.New()))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("returned proofs do not alias stored state", func(t *testing.T) {
		store := NewInMemoryStore()
		p := storedProof()
		require.NoError(t, store.Save(ctx, p))

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		got.Title = "mutated"
		got.Metadata.Consent = &ConsentRecord{Status: domain.ConsentPending}

		again, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme rollout", again.Title)
		assert.Nil(t, again.Metadata.Consent)
	})

	t.Run("find by ids skips unknown ids", func(t *testing.T) {
		store := NewInMemoryStore()
		a, b := storedProof(), storedProof()
		require.NoError(t, store.Save(ctx, a))
		require.NoError(t, store.Save(ctx, b))

		got, err := store.FindByIDs(ctx, []domain.ProofID{a.ID, domain.ProofID(uuid.New()), b.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("list with granted consent filters by consent status and company", func(t *testing.T) {
		store := NewInMemoryStore()
		company := domain.CompanyID(uuid.New())

		granted := storedProof()
		granted.CompanyID = company
		granted.Metadata.Consent = &ConsentRecord{Status: domain.ConsentGranted}
		require.NoError(t, store.Save(ctx, granted))

		pending := storedProof()
		pending.CompanyID = company
		pending.Metadata.Consent = &ConsentRecord{Status: domain.ConsentPending}
		require.NoError(t, store.Save(ctx, pending))

		foreignGranted := storedProof()
		foreignGranted.Metadata.Consent = &ConsentRecord{Status: domain.ConsentGranted}
		require.NoError(t, store.Save(ctx, foreignGranted))

		require.NoError(t, store.Save(ctx, storedProof()))

		got, err := store.ListWithGrantedConsent(ctx, company)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, granted.ID, got[0].ID)
	})
}

func TestInMemoryViewCounter(t *testing.T) {
	ctx := context.Background()
	counter := NewInMemoryViewCounter()

	proofID := domain.ProofID(uuid.New())
	userID := domain.UserID(uuid.New())
	otherUser := domain.UserID(uuid.New())

	count, err := counter.CountViews(ctx, proofID, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	counter.RecordView(proofID, userID)
	counter.RecordView(proofID, userID)
	counter.RecordView(proofID, otherUser)

	count, err = counter.CountViews(ctx, proofID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = counter.CountViews(ctx, proofID, otherUser)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
