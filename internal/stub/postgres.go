package stub

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mzansipay/wallet/internal/request"
)

// PostgresStore persists records in Postgres for deployments where the stub
// is shared between developers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS payment_requests (
			id               TEXT PRIMARY KEY,
			total_amount     NUMERIC NOT NULL,
			description      TEXT NOT NULL,
			merchant_id      TEXT NOT NULL,
			created_by       TEXT NOT NULL,
			split_type       TEXT NOT NULL,
			max_participants INT NOT NULL DEFAULT 0,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			expiry_date      TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS contributions (
			id         SERIAL PRIMARY KEY,
			request_id TEXT NOT NULL REFERENCES payment_requests(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL,
			amount     NUMERIC NOT NULL,
			status     TEXT NOT NULL,
			notes      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_requests_created_by ON payment_requests(created_by);
		CREATE INDEX IF NOT EXISTS idx_contributions_request ON contributions(request_id);
		CREATE INDEX IF NOT EXISTS idx_contributions_user ON contributions(user_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Save upserts the request row and rewrites its contribution rows in one
// transaction, so a replayed save leaves identical state.
func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payment_requests (id, total_amount, description, merchant_id, created_by, split_type, max_participants, status, created_at, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`
	if _, err := tx.ExecContext(ctx, query,
		rec.ID,
		rec.TotalAmount,
		rec.Description,
		rec.MerchantID,
		rec.CreatedBy,
		rec.SplitType,
		rec.MaxParticipants,
		rec.Status,
		rec.CreatedAt,
		rec.ExpiryDate,
	); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contributions WHERE request_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear contributions: %w", err)
	}
	for _, c := range rec.Contributions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (request_id, user_id, amount, status, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.ID, c.UserID, c.Amount, c.Status, c.Notes, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save contribution: %w", err)
		}
	}

	return tx.Commit()
}

// Get retrieves a request and its contributions by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	query := `
		SELECT id, total_amount, description, merchant_id, created_by, split_type, max_participants, status, created_at, expiry_date
		FROM payment_requests
		WHERE id = $1
	`
	rec := &Record{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.TotalAmount,
		&rec.Description,
		&rec.MerchantID,
		&rec.CreatedBy,
		&rec.SplitType,
		&rec.MaxParticipants,
		&rec.Status,
		&rec.CreatedAt,
		&rec.ExpiryDate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if rec.Contributions, err = s.contributions(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) contributions(ctx context.Context, requestID string) ([]request.Contribution, error) {
	query := `
		SELECT user_id, amount, status, notes, created_at
		FROM contributions
		WHERE request_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var out []request.Contribution
	for rows.Next() {
		var c request.Contribution
		if err := rows.Scan(&c.UserID, &c.Amount, &c.Status, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByCreator(ctx context.Context, userID string) ([]*Record, error) {
	query := `
		SELECT id FROM payment_requests
		WHERE created_by = $1
		ORDER BY created_at DESC
	`
	return s.listByIDQuery(ctx, query, userID)
}

func (s *PostgresStore) ListByContributor(ctx context.Context, userID string) ([]*Record, error) {
	query := `
		SELECT DISTINCT r.id FROM payment_requests r
		JOIN contributions c ON c.request_id = r.id
		WHERE c.user_id = $1
	`
	return s.listByIDQuery(ctx, query, userID)
}

func (s *PostgresStore) listByIDQuery(ctx context.Context, query, userID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
