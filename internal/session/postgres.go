package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/finbot/internal/catalog"
)

const (
	selectSessionSQL = `SELECT locale, currency FROM sessions WHERE conversation_id = $1`
	upsertLocaleSQL  = `INSERT INTO sessions (conversation_id, locale) VALUES ($1, $2)
ON CONFLICT (conversation_id) DO UPDATE SET locale = EXCLUDED.locale, updated_at = now()`
	upsertCurrencySQL = `INSERT INTO sessions (conversation_id, currency) VALUES ($1, $2)
ON CONFLICT (conversation_id) DO UPDATE SET currency = EXCLUDED.currency, updated_at = now()`
)

// PostgresStore persists sessions in the sessions table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection pool. Migrations must be applied.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get loads a session; a missing row yields the zero session.
func (p *PostgresStore) Get(ctx context.Context, conversationID int64) (Session, error) {
	var s Session
	err := p.db.GetContext(ctx, &s, selectSessionSQL, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: postgres get: %w", err)
	}
	return s, nil
}

// SetLocale upserts the locale column only.
func (p *PostgresStore) SetLocale(ctx context.Context, conversationID int64, loc catalog.Locale) error {
	if _, err := p.db.ExecContext(ctx, upsertLocaleSQL, conversationID, string(loc)); err != nil {
		return fmt.Errorf("session: postgres set locale: %w", err)
	}
	return nil
}

// SetCurrency upserts the currency column only.
func (p *PostgresStore) SetCurrency(ctx context.Context, conversationID int64, cur Currency) error {
	if _, err := p.db.ExecContext(ctx, upsertCurrencySQL, conversationID, string(cur)); err != nil {
		return fmt.Errorf("session: postgres set currency: %w", err)
	}
	return nil
}
