package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/buildinfo"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/common"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/cryptox"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/filex"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/logging"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/auth"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/biometric"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/cli"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/config"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/directory"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/federated"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/keystore"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/pin"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/session"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/storage"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/stores"
	"github.com/D-Gaspa/doc-wallet-sub001/internal/wallet/token"
)

// sealSalt is the KDF salt label for the store sealing key. The entropy
// lives in the per-install secret file, not here.
const sealSalt = "doc-wallet.store.v1"

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dataDir, err := filex.EnsureSubdDir("data")
	if err != nil {
		log.Fatalf("data dir: %v", err)
	}

	sealKey, err := loadSealKey(filepath.Join(dataDir, "wallet.key"))
	if err != nil {
		log.Fatalf("seal key: %v", err)
	}

	db, err := storage.Open(ctx, filepath.Join(dataDir, cfg.DatabasePath))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	secrets := keystore.New(db, sealKey, keystore.AlwaysUnlocked{}, logger)
	tokens := token.NewService(secrets, logger)

	pinAuth := pin.NewAuthenticator(secrets, pin.Argon2Hasher{}, logger)
	bioAuth := biometric.NewAuthenticator(biometric.NopDevice{}, logger)

	fedAuth := federated.NewAuthenticator(federated.Config{
		Issuer:       cfg.Provider.Issuer,
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		AuthURL:      cfg.Provider.AuthURL,
		TokenURL:     cfg.Provider.TokenURL,
		RevokeURL:    cfg.Provider.RevokeURL,
		UserInfoURL:  cfg.Provider.UserInfoURL,
		RedirectURL:  "http://" + cfg.RedirectAddr + "/callback",
	}, &federated.LoopbackFlow{
		Addr: cfg.RedirectAddr,
		Log:  logger,
	}, tokens, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
	fedAuth.PreloadConfig(ctx)

	orch := auth.NewOrchestrator(pinAuth, bioAuth, fedAuth, tokens, logger)

	registry := stores.NewRegistry(logger,
		stores.NewDocumentStore(db),
		stores.NewFolderStore(db),
		stores.NewNotificationStore(db),
		stores.NewFavoriteStore(db),
		stores.NewTagStore(db),
	)

	dir := directory.New(db, logger)
	sessions := session.NewStore(orch, fedAuth, tokens, dir, registry, logger)

	cli.NewApp(sessions, logger).Run(ctx)
}

// loadSealKey derives the store sealing key from a per-install random
// secret, creating the secret file on first run.
func loadSealKey(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		hexSecret, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, err
		}
		secret = []byte(hexSecret)
		if err := os.WriteFile(path, secret, 0o600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return cryptox.DeriveStoreKey(secret, []byte(sealSalt)), nil
}
