package stores

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

// Document is the metadata entry kept per wallet document. The document
// contents themselves live outside this subsystem.
type Document struct {
	ID        string
	Title     string
	UpdatedAt int64
}

// DocumentStore keeps the signed-in user's document index in memory and
// persists it to sqlite on save.
type DocumentStore struct {
	db *sql.DB

	mu   sync.Mutex
	docs []Document
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Name() string { return "documents" }

func (s *DocumentStore) LoadData(ctx context.Context, userID string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, updated_at FROM documents WHERE user_id = ? ORDER BY updated_at DESC", userID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.UpdatedAt); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
	return nil
}

func (s *DocumentStore) SaveData(ctx context.Context, userID string) error {
	s.mu.Lock()
	docs := make([]Document, len(s.docs))
	copy(docs, s.docs)
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, d := range docs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO documents (id, user_id, title, updated_at) VALUES (?, ?, ?, ?)",
				d.ID, userID, d.Title, d.UpdatedAt)
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

func (s *DocumentStore) Reset() {
	s.mu.Lock()
	s.docs = nil
	s.mu.Unlock()
}

// Documents returns a copy of the loaded document index.
func (s *DocumentStore) Documents() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]Document, len(s.docs))
	copy(docs, s.docs)
	return docs
}

// Put adds or replaces a document entry in the working set.
func (s *DocumentStore) Put(d Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == d.ID {
			s.docs[i] = d
			return
		}
	}
	s.docs = append(s.docs, d)
}
