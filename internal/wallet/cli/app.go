package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/directory"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/session"
)

// App wires the session store to an interactive terminal surface.
type App struct {
	sessions *session.Store
	reader   *bufio.Reader
	log      logging.Logger
}

func NewApp(sessions *session.Store, log logging.Logger) *App {
	return &App{
		sessions: sessions,
		reader:   bufio.NewReader(os.Stdin),
		log:      log.With("component", "cli"),
	}
}

// Run restores any previous session and enters the REPL.
func (a *App) Run(ctx context.Context) {
	a.sessions.CheckAuthStatus(ctx)
	runREPL(ctx, a, a.statusLine, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().Authenticated
}

func (a *App) statusLine() string {
	sess := a.sessions.Current()
	if !sess.Authenticated {
		return "signed out"
	}
	name := sess.User.Name
	if name == "" {
		name = sess.User.Email
	}
	return name
}

// Status prints the current session snapshot.
func (a *App) Status(_ context.Context) error {
	sess := a.sessions.Current()
	if !sess.Authenticated {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn(fmt.Sprintf("Signed in as %s <%s> (method: %s)",
		sess.User.Name, sess.User.Email, sess.PreferredMethod))
	return nil
}

// Login runs the preferred-method flow. A PIN is collected up front when one
// is enrolled so the biometric path can fall back to it.
func (a *App) Login(ctx context.Context) error {
	var pin string
	if a.sessions.PINSet(ctx) {
		raw, err := GetSecret("Enter PIN", os.Stdout)
		if err != nil {
			return err
		}
		pin = string(raw)
		common.WipeByteArray(raw)
	}

	if a.sessions.Login(ctx, pin) {
		printlnFn("Signed in.")
	} else {
		printlnFn("Sign-in failed.")
	}
	return nil
}

// EmailLogin authenticates against the local credential directory.
func (a *App) EmailLogin(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	pw, err := GetSecret("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.sessions.LoginWithEmailPassword(ctx, email, string(pw)); err != nil {
		printlnFn("Sign-in failed:", err.Error())
		return err
	}
	printlnFn("Signed in.")
	return nil
}

// Register creates a directory account and signs it in.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", os.Stdout)
	if err != nil {
		return err
	}
	pw, err := GetSecret("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	data := directory.RegisterData{Email: email, Password: string(pw), Name: name}
	if err := a.sessions.RegisterUser(ctx, data); err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}
	printlnFn("Registered and signed in.")
	return nil
}

// SetupPIN enrolls a local PIN, with a confirmation read.
func (a *App) SetupPIN(ctx context.Context) error {
	pin, err := GetSecret("New PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)
	confirm, err := GetSecret("Repeat PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pin) != string(confirm) {
		printlnFn("PINs do not match.")
		return nil
	}
	if len(pin) < 4 {
		printlnFn("PIN must be at least 4 digits.")
		return nil
	}

	if a.sessions.SetupPIN(ctx, string(pin)) {
		printlnFn("PIN set.")
	} else {
		printlnFn("Could not set PIN.")
	}
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	printlnFn("Signed out.")
	return nil
}
