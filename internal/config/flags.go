package config

import (
	"flag"
	"os"
	"time"

	"github.com/spknetwork/oratr-vault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the vault database file (default from Config)
//	-t int      session ttl in seconds, 0 disables expiry
//	-e string   expiry policy: inactivity or continuous
//	-p string   public key address prefix
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-e", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the vault database file")
	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Seconds()), "session ttl (in seconds, 0 disables expiry)")
	fs.StringVar(&cfg.ExpiryPolicy, "e", cfg.ExpiryPolicy, "session expiry policy (inactivity|continuous)")
	fs.StringVar(&cfg.AddressPrefix, "p", cfg.AddressPrefix, "public key address prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTTL = time.Duration(*sessionTTL) * time.Second
}
