package sqlite

import (
	"context"
	"database/sql"

	"github.com/oakmontlabs/gatehouse/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // apply before starting a tx

func (t *txStore) Principals() store.Principals         { return &principalsRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles                   { return &rolesRepo{q: t.tx} }
func (t *txStore) Sections() store.Sections             { return &sectionsRepo{q: t.tx} }
func (t *txStore) Permissions() store.Permissions       { return &permissionsRepo{q: t.tx} }
func (t *txStore) Grants() store.Grants                 { return &grantsRepo{q: t.tx} }
func (t *txStore) Tokens() store.Tokens                 { return &tokensRepo{q: t.tx} }
func (t *txStore) DeviceSessions() store.DeviceSessions { return &deviceSessionsRepo{q: t.tx} }
