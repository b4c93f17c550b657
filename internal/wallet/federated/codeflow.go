package federated

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
)

// CodeFlow obtains an authorization code from the provider. It is the only
// part of the sign-in that involves the user's browser, so it is abstracted
// for testing.
type CodeFlow interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (code string, err error)
}

// LoopbackFlow runs the authorization-code flow for a native client: it
// listens on a loopback address, sends the user's browser to the provider's
// consent page, and captures the code from the redirect. The random state
// parameter is checked on the way back.
type LoopbackFlow struct {
	// Addr is the loopback listen address; it must match the host/port of
	// the registered redirect URL.
	Addr string

	// OpenURL launches the user's browser at the consent page. When nil
	// the URL is only logged, for copy/paste.
	OpenURL func(url string) error

	Log logging.Logger
}

type authResult struct {
	code string
	err  error
}

// Authorize blocks until the provider redirects back with a code, the
// context is cancelled, or the listener fails.
func (f *LoopbackFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", err
	}

	ln, err := net.Listen("tcp", f.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to open loopback listener: %w", err)
	}

	results := make(chan authResult, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- authResult{err: errors.New("authorization state mismatch")}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			results <- authResult{err: errors.New("authorization response without code")}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this window.")
		results <- authResult{code: code}
	})}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- authResult{err: err}
		}
	}()
	defer srv.Close()

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if f.OpenURL != nil {
		if err := f.OpenURL(url); err != nil {
			f.Log.Warn(ctx, "failed to open browser", "err", err)
		}
	} else {
		f.Log.Info(ctx, "open the consent page to continue", "url", url)
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
