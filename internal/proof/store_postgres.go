package proof

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"proofguard/pkg/domain"
	"proofguard/pkg/sentinel"
)

// Schema creates the tables the Postgres store depends on. Applied by the
// deployment's migration tooling; integration tests execute it directly.
const Schema = `
CREATE TABLE IF NOT EXISTS proofs (
    id          UUID PRIMARY KEY,
    company_id  UUID NOT NULL,
    type        TEXT NOT NULL,
    status      TEXT NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    metadata    JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_proofs_consent_status
    ON proofs ((metadata->'consent'->>'status'));

CREATE TABLE IF NOT EXISTS proof_views (
    proof_id    UUID NOT NULL,
    viewer_type TEXT NOT NULL DEFAULT 'user',
    viewer_id   UUID NOT NULL,
    viewed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_proof_views_proof_viewer
    ON proof_views (proof_id, viewer_id);
`

// PostgresStore persists proofs with the metadata document in a JSONB
// column, matching how the previous system embedded the document in the row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *Proof) error {
	doc, err := p.Metadata.MarshalDocument()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proofs (id, company_id, type, status, title, description, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		p.ID.String(), p.CompanyID.String(), p.Type.String(), p.Status.String(),
		p.Title, p.Description, doc, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save proof: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ProofID) (*Proof, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, type, status, title, description, metadata, created_at, updated_at
		FROM proofs WHERE id = $1`, id.String())
	p, err := scanProof(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []domain.ProofID) ([]*Proof, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, type, status, title, description, metadata, created_at, updated_at
		FROM proofs WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find proofs: %w", err)
	}
	defer rows.Close()
	return collectProofs(rows)
}

func (s *PostgresStore) ListWithGrantedConsent(ctx context.Context, companyID domain.CompanyID) ([]*Proof, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, type, status, title, description, metadata, created_at, updated_at
		FROM proofs WHERE company_id = $1 AND metadata->'consent'->>'status' = 'granted'`,
		companyID.String())
	if err != nil {
		return nil, fmt.Errorf("list granted consents: %w", err)
	}
	defer rows.Close()
	return collectProofs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProof(r rowScanner) (*Proof, error) {
	var (
		p                  Proof
		idStr, companyStr  string
		typeStr, statusStr string
		doc                []byte
	)
	if err := r.Scan(&idStr, &companyStr, &typeStr, &statusStr, &p.Title, &p.Description, &doc, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := domain.ParseProofID(idStr)
	if err != nil {
		return nil, fmt.Errorf("stored proof id: %w", err)
	}
	companyID, err := domain.ParseCompanyID(companyStr)
	if err != nil {
		return nil, fmt.Errorf("stored company id: %w", err)
	}
	meta, err := UnmarshalDocument(doc)
	if err != nil {
		return nil, err
	}

	p.ID = id
	p.CompanyID = companyID
	p.Type = domain.ProofType(typeStr)
	p.Status = domain.ProofStatus(statusStr)
	p.Metadata = meta
	return &p, nil
}

func collectProofs(rows *sql.Rows) ([]*Proof, error) {
	var out []*Proof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PostgresViewCounter counts prior views against the proof_views table
// owned by the surrounding application.
type PostgresViewCounter struct {
	db *sql.DB
}

func NewPostgresViewCounter(db *sql.DB) *PostgresViewCounter {
	return &PostgresViewCounter{db: db}
}

func (c *PostgresViewCounter) CountViews(ctx context.Context, proofID domain.ProofID, userID domain.UserID) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM proof_views WHERE proof_id = $1 AND viewer_id = $2`,
		proofID.String(), userID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return n, nil
}

// RecordView appends a view row; used by the display path after access is
// granted.
func (c *PostgresViewCounter) RecordView(ctx context.Context, proofID domain.ProofID, userID domain.UserID, at time.Time) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO proof_views (proof_id, viewer_type, viewer_id, viewed_at)
		VALUES ($1, 'user', $2, $3)`, proofID.String(), userID.String(), at)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
