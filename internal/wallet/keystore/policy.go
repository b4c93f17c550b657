package keystore

import "context"

// Accessibility controls the device conditions under which a stored secret
// may be read back.
type Accessibility int

const (
	// AccessibleWhenUnlocked allows reads whenever the device is unlocked.
	// Used for the PIN record and the cached profile.
	AccessibleWhenUnlocked Accessibility = iota

	// AccessibleWithAuthentication additionally requires user presence
	// (biometric or device passcode) at read time. Used for the primary
	// token pair.
	AccessibleWithAuthentication
)

func (a Accessibility) String() string {
	switch a {
	case AccessibleWhenUnlocked:
		return "when-unlocked"
	case AccessibleWithAuthentication:
		return "with-authentication"
	default:
		return "unknown"
	}
}

// DeviceState reports the device conditions accessibility policies gate on.
// On platforms without a lock-screen bridge, AlwaysUnlocked stands in.
type DeviceState interface {
	// Unlocked reports whether the device screen lock is currently open.
	Unlocked(ctx context.Context) bool

	// UserPresent reports whether user presence has been proven recently
	// (biometric or passcode confirmation).
	UserPresent(ctx context.Context) bool
}

// AlwaysUnlocked is a DeviceState for environments without a platform lock
// screen, such as the development CLI. Every read is permitted.
type AlwaysUnlocked struct{}

func (AlwaysUnlocked) Unlocked(context.Context) bool    { return true }
func (AlwaysUnlocked) UserPresent(context.Context) bool { return true }
