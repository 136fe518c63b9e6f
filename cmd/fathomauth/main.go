// Package main implements the fathom-auth command line client.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// version is set at build time
	version = "0.3.0"
	// buildEnv selects the authorization server environment at build time
	// (-ldflags "-X main.buildEnv=release")
	buildEnv = "debug"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fathom-auth",
		Short: "Fathom ERP sign-in client",
		Long: `fathom-auth manages the Fathom ERP session on this machine.

It signs in through the browser using the OAuth2 authorization code flow
with PKCE, keeps the session in the OS keyring, and signs out again.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().String("config", "", "Path to an auth config file (YAML)")
	cmd.PersistentFlags().String("env", buildEnv, "Authorization server environment (debug|release)")
	cmd.PersistentFlags().String("storage", "keyring", "Session storage backend (keyring|file|memory)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newWhoamiCmd())

	return cmd
}
