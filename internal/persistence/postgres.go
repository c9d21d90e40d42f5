package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avbelov/mini-ledger/backend/internal/common/constants"
)

// PgStore persists the ledger snapshot in Postgres. Each Save replaces the
// full account set inside one transaction, mirroring the whole-snapshot
// semantics of the JSON file store.
type PgStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgStore(ctx context.Context, pool *pgxpool.Pool) (*PgStore, error) {
	s := &PgStore{
		pool: pool,
		now:  time.Now,
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PgStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_accounts (
			username     TEXT PRIMARY KEY,
			password     TEXT NOT NULL,
			email        TEXT NOT NULL,
			balance      BIGINT NOT NULL CHECK (balance >= 0),
			transactions JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at   TIMESTAMPTZ NOT NULL,
			position     INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ledger_state (
			id             INT PRIMARY KEY CHECK (id = 1),
			logged_in_user TEXT NOT NULL DEFAULT '',
			saved_at       TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", wrapPgError(err))
	}
	return nil
}

func (s *PgStore) Load(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	snap := Snapshot{
		Meta: Meta{Storage: "postgres", Version: SnapshotVersion},
	}

	rows, err := s.pool.Query(ctx, `
		SELECT username, password, email, balance, transactions, created_at
		FROM ledger_accounts
		ORDER BY position ASC
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load accounts: %w", wrapPgError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var pa PersistAccount
		var rawTxs []byte
		if err := rows.Scan(&pa.Username, &pa.Password, &pa.Email, &pa.Balance, &rawTxs, &pa.CreatedAt); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan account: %w", err)
		}
		if err := json.Unmarshal(rawTxs, &pa.Transactions); err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode transactions for %s: %w", pa.Username, err)
		}
		snap.Accounts = append(snap.Accounts, pa)
	}
	if rows.Err() != nil {
		return Snapshot{}, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	err = s.pool.QueryRow(ctx, `SELECT logged_in_user FROM ledger_state WHERE id = 1`).Scan(&snap.LoggedInUser)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("failed to load ledger state: %w", wrapPgError(err))
	}

	return snap, nil
}

func (s *PgStore) Save(ctx context.Context, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", wrapPgError(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_accounts`); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", wrapPgError(err))
	}

	for i, pa := range snap.Accounts {
		rawTxs, err := json.Marshal(pa.Transactions)
		if err != nil {
			return fmt.Errorf("failed to encode transactions for %s: %w", pa.Username, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_accounts (username, password, email, balance, transactions, created_at, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, pa.Username, pa.Password, pa.Email, pa.Balance, rawTxs, pa.CreatedAt, i)
		if err != nil {
			return fmt.Errorf("failed to insert account %s: %w", pa.Username, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_state (id, logged_in_user, saved_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET logged_in_user = $1, saved_at = $2
	`, snap.LoggedInUser, s.now())
	if err != nil {
		return fmt.Errorf("failed to save ledger state: %w", wrapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot tx: %w", wrapPgError(err))
	}
	return nil
}

func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
	return err
}
