package stores

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/dbx"
)

// Notification is a scheduled expiry reminder for a document.
type Notification struct {
	ID          string
	Message     string
	ScheduledAt int64
}

type NotificationStore struct {
	db *sql.DB

	mu    sync.Mutex
	notes []Notification
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Name() string { return "notifications" }

func (s *NotificationStore) LoadData(ctx context.Context, userID string) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, message, scheduled_at FROM notifications WHERE user_id = ? ORDER BY scheduled_at", userID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var notes []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.ScheduledAt); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
	return nil
}

func (s *NotificationStore) SaveData(ctx context.Context, userID string) error {
	s.mu.Lock()
	notes := make([]Notification, len(s.notes))
	copy(notes, s.notes)
	s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE user_id = ?", userID); err != nil {
			return err
		}
		for _, n := range notes {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO notifications (id, user_id, message, scheduled_at) VALUES (?, ?, ?, ?)",
				n.ID, userID, n.Message, n.ScheduledAt)
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

func (s *NotificationStore) Reset() {
	s.mu.Lock()
	s.notes = nil
	s.mu.Unlock()
}

func (s *NotificationStore) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]Notification, len(s.notes))
	copy(notes, s.notes)
	return notes
}

func (s *NotificationStore) Put(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == n.ID {
			s.notes[i] = n
			return
		}
	}
	s.notes = append(s.notes, n)
}
