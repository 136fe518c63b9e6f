package main

import (
	"errors"

	"github.com/fathomerp/fathom-auth/pkg/auth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of Fathom ERP",
		RunE:  runLogout,
	}
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	mgr, err := auth.NewSessionManager(cfg, store)
	if err != nil {
		return err
	}

	if err := mgr.Logout(cmd.Context()); err != nil {
		if errors.Is(err, auth.ErrLogoutFailed) {
			// Session stays intact so a retry can still present the token.
			pterm.Warning.Println("Could not confirm sign-out with the server. You are still signed in; please try again.")
			return err
		}
		return err
	}

	pterm.Success.Println("Signed out.")
	return nil
}
