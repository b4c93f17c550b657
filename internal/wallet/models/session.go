package models

// Method identifies an authentication path.
type Method string

const (
	MethodBiometric Method = "biometric"
	MethodPIN       Method = "pin"
	MethodGoogle    Method = "google"
)

// Session is a snapshot of the reactive session state. The zero value is the
// unauthenticated state a process starts in.
type Session struct {
	User            *User
	Authenticated   bool
	Loading         bool
	PreferredMethod Method
}
