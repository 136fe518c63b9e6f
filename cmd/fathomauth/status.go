package main

import (
	"errors"

	"github.com/fathomerp/fathom-auth/pkg/auth"
	"github.com/fathomerp/fathom-auth/pkg/auth/storage"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		RunE:  runStatus,
	}

	cmd.Flags().Bool("show-config", false, "Print the effective auth configuration")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show-config"); show {
		dump, err := cfg.Dump()
		if err != nil {
			return err
		}
		pterm.DefaultBox.WithTitle("auth configuration").Println(dump)
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	mgr, err := auth.NewSessionManager(cfg, store)
	if err != nil {
		return err
	}

	state := mgr.State()
	if !state.Authenticated() {
		pterm.Info.Println("Not signed in.")
		return nil
	}

	pterm.Success.Printfln("Signed in (token %s).", auth.MaskToken(state.Token.Token))
	if !state.Token.ExpiresAt.IsZero() {
		if state.Token.IsExpired() {
			pterm.Warning.Printfln("The session expired at %s; sign in again.", state.Token.ExpiresAt.Format("2006-01-02 15:04:05"))
		} else {
			pterm.Info.Printfln("Session expires at %s.", state.Token.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE:  runWhoami,
	}
}

func runWhoami(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	token, err := store.Load(cmd.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			pterm.Info.Println("Not signed in.")
			return nil
		}
		return err
	}

	if token.IDToken == "" {
		pterm.Info.Println("Signed in, but the session carries no identity token.")
		return nil
	}

	ident, err := auth.ParseIdentity(token.IDToken)
	if err != nil {
		return err
	}

	rows := pterm.TableData{
		{"Subject", ident.Subject},
		{"Username", ident.Username},
		{"Email", ident.Email},
	}
	for _, role := range ident.Roles {
		rows = append(rows, []string{"Role", role})
	}

	return pterm.DefaultTable.WithData(rows).Render()
}
