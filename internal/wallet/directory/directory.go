// Package directory implements a local credential directory used for
// email/password sign-in during development and testing. Accounts live in the
// wallet database with bcrypt password hashes.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/models"
)

// RegisterData carries the fields needed to create a directory account.
type RegisterData struct {
	Email    string
	Password string
	Name     string
}

// Directory authenticates and registers local accounts.
type Directory struct {
	db  *sql.DB
	log logging.Logger
}

func New(db *sql.DB, log logging.Logger) *Directory {
	return &Directory{db: db, log: log.With("component", "directory")}
}

// Authenticate checks an email/password pair against the directory. An
// unknown email and a wrong password both return ErrInvalidCredentials so the
// caller cannot distinguish them.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	var u models.User
	var hash string
	err := d.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash FROM directory_users WHERE email = ?", email,
	).Scan(&u.ID, &u.Email, &u.Name, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		d.log.Warn(ctx, "password mismatch", "email", email)
		return nil, common.ErrInvalidCredentials
	}
	return &u, nil
}

// Register creates a new directory account and returns its user.
func (d *Directory) Register(ctx context.Context, data RegisterData) (*models.User, error) {
	email := normalizeEmail(data.Email)
	if email == "" || data.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &models.User{ID: uuid.NewString(), Email: email, Name: data.Name}
	_, err = d.db.ExecContext(ctx,
		"INSERT INTO directory_users (id, email, name, password_hash) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.Name, string(hash))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	d.log.Info(ctx, "account registered", "email", email)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
