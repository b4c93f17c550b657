// Package models defines the identity, token, and session types shared by
// the wallet's authentication components.
package models

// User is the identity established by a successful authentication. It is
// immutable for the lifetime of the session that holds it.
//
// Name may be empty; some identity providers omit it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}
