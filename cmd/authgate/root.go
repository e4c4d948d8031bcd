package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=1.2.3 -X main.buildTime=$(date -u +%FT%TZ)"
var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "HTTP Basic and Digest authentication gate",
	Long: `authgate protects a static document root or an upstream server with
HTTP Basic and Digest authentication (RFC 2617, MD5).

Credentials come from an identity authority: an inline user map, an
Apache htdigest or htpasswd file, or a SQLite database.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
