package stores

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

type Tag struct {
	ID    string
	Name  string
	Color string
}

type TagStore struct {
	db *sql.DB

	mu   sync.Mutex
	tags []Tag
}

func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) Name() string { return "tags" }

func (s *TagStore) LoadData(ctx context.Context, userID string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color FROM tags WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.mu.Lock()
	s.tags = tags
	s.mu.Unlock()
	return nil
}

func (s *TagStore) SaveData(ctx context.Context, userID string) error {
	s.mu.Lock()
	tags := make([]Tag, len(s.tags))
	copy(tags, s.tags)
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, t := range tags {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO tags (id, user_id, name, color) VALUES (?, ?, ?, ?)",
				t.ID, userID, t.Name, t.Color)
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

func (s *TagStore) Reset() {
	s.mu.Lock()
	s.tags = nil
	s.mu.Unlock()
}

func (s *TagStore) Tags() []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]Tag, len(s.tags))
	copy(tags, s.tags)
	return tags
}

func (s *TagStore) Put(t Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tags {
		if s.tags[i].ID == t.ID {
			s.tags[i] = t
			return
		}
	}
	s.tags = append(s.tags, t)
}
