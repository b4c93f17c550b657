package stores

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

// FavoriteStore keeps the set of document IDs the user has starred.
type FavoriteStore struct {
	db *sql.DB

	mu  sync.Mutex
	ids map[string]struct{}
}

func NewFavoriteStore(db *sql.DB) *FavoriteStore {
	return &FavoriteStore{db: db, ids: make(map[string]struct{})}
}

func (s *FavoriteStore) Name() string { return "favorites" }

func (s *FavoriteStore) LoadData(ctx context.Context, userID string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT document_id FROM favorites WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return nil
}

func (s *FavoriteStore) SaveData(ctx context.Context, userID string) error {
	ids := s.DocumentIDs()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, id := range ids {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO favorites (user_id, document_id) VALUES (?, ?)", userID, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *FavoriteStore) Reset() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
}

// DocumentIDs returns the starred document IDs in sorted order.
func (s *FavoriteStore) DocumentIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FavoriteStore) IsFavorite(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[documentID]
	return ok
}

// Toggle flips the favorite state of a document and reports the new state.
func (s *FavoriteStore) Toggle(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[documentID]; ok {
		delete(s.ids, documentID)
		return false
	}
	s.ids[documentID] = struct{}{}
	return true
}
