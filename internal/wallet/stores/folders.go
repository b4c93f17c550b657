package stores

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

type Folder struct {
	ID   string
	Name string
}

// FolderStore keeps the user's folder tree in memory.
type FolderStore struct {
	db *sql.DB

	mu      sync.Mutex
	folders []Folder
}

func NewFolderStore(db *sql.DB) *FolderStore {
	return &FolderStore{db: db}
}

func (s *FolderStore) Name() string { return "folders" }

func (s *FolderStore) LoadData(ctx context.Context, userID string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM folders WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.mu.Lock()
	s.folders = folders
	s.mu.Unlock()
	return nil
}

func (s *FolderStore) SaveData(ctx context.Context, userID string) error {
	s.mu.Lock()
	folders := make([]Folder, len(s.folders))
	copy(folders, s.folders)
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM folders WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, f := range folders {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO folders (id, user_id, name) VALUES (?, ?, ?)",
				f.ID, userID, f.Name)
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

func (s *FolderStore) Reset() {
	s.mu.Lock()
	s.folders = nil
	s.mu.Unlock()
}

func (s *FolderStore) Folders() []Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	folders := make([]Folder, len(s.folders))
	copy(folders, s.folders)
	return folders
}

func (s *FolderStore) Put(f Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.folders {
		if s.folders[i].ID == f.ID {
			s.folders[i] = f
			return
		}
	}
	s.folders = append(s.folders, f)
}
