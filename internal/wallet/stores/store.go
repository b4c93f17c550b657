// Package stores defines the domain-store contract consumed by the session
// layer and the sqlite-backed stores for each data domain: documents,
// folders, notifications, favorites, and tags.
//
// The session layer fans out to every store on login/logout. The fan-out is
// best effort: each store fails independently, failures are logged, and no
// store failure aborts its siblings or the session transition.
package stores

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
)

// DataStore is implemented by each independent data domain.
type DataStore interface {
	// Name identifies the store in logs.
	Name() string

	// LoadData populates the store's working set for the given user.
	LoadData(ctx context.Context, userID string) error

	// SaveData persists the store's working set for the given user.
	SaveData(ctx context.Context, userID string) error

	// Reset drops the in-memory working set.
	Reset()
}

// Registry coordinates the fan-out across the registered domain stores.
type Registry struct {
	stores []DataStore
	log    logging.Logger
}

func NewRegistry(log logging.Logger, stores ...DataStore) *Registry {
	return &Registry{stores: stores, log: log.With("component", "stores")}
}

// LoadAll loads every store's data concurrently. Individual failures are
// logged and do not affect the other stores.
func (r *Registry) LoadAll(ctx context.Context, userID string) {
	var g errgroup.Group
	for _, s := range r.stores {
		g.Go(func() error {
			if err := s.LoadData(ctx, userID); err != nil {
				r.log.Warn(ctx, "store load failed", "store", s.Name(), "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// SaveAll saves every store's data concurrently, best effort.
func (r *Registry) SaveAll(ctx context.Context, userID string) {
	var g errgroup.Group
	for _, s := range r.stores {
		g.Go(func() error {
			if err := s.SaveData(ctx, userID); err != nil {
				r.log.Warn(ctx, "store save failed", "store", s.Name(), "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ResetAll drops every store's working set.
func (r *Registry) ResetAll() {
	for _, s := range r.stores {
		s.Reset()
	}
}
