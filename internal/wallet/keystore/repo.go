package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

// row is a sealed secret record as persisted in the secrets table.
type row struct {
	Service string
	Account string
	Value   []byte
	Nonce   []byte
	Policy  Accessibility
}

// repository is the raw persistence layer under the secure store. Unlike the
// exported Store it returns errors; the Store converts them into fail-closed
// results.
type repository struct {
	db dbx.DBTX
}

func newRepository(db dbx.DBTX) *repository {
	return &repository{db: db}
}

func (r *repository) get(ctx context.Context, service string) (*row, error) {
	rec := &row{Service: service}
	err := r.db.QueryRowContext(ctx,
		`SELECT account, value, nonce, policy FROM secrets WHERE service = ?`, service,
	).Scan(&rec.Account, &rec.Value, &rec.Nonce, &rec.Policy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secret[%s]: %w", service, err)
	}
	return rec, nil
}

func (r *repository) set(ctx context.Context, rec *row) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO secrets (service, account, value, nonce, policy) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			account = excluded.account,
			value   = excluded.value,
			nonce   = excluded.nonce,
			policy  = excluded.policy
	`, rec.Service, rec.Account, rec.Value, rec.Nonce, rec.Policy)
	if err != nil {
		return fmt.Errorf("failed to set secret[%s]: %w", rec.Service, err)
	}
	return nil
}

func (r *repository) delete(ctx context.Context, service string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE service = ?`, service)
	if err != nil {
		return fmt.Errorf("failed to delete secret[%s]: %w", service, err)
	}
	return nil
}
