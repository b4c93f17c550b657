package config

import (
	"flag"
	"os"

	"github.com/D-Gaspa/doc-wallet-sub001/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the wallet database file
//	-r string   loopback address for the sign-in redirect listener
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the wallet database file")
	fs.StringVar(&cfg.RedirectAddr, "r", cfg.RedirectAddr, "loopback address for the sign-in redirect listener")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
