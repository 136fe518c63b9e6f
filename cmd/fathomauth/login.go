package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fathomerp/fathom-auth/pkg/auth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// loginTimeout bounds how long the command waits for the browser redirect.
const loginTimeout = 5 * time.Minute

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Fathom ERP through the browser",
		RunE:  runLogin,
	}

	cmd.Flags().Int("redirect-port", 9998, "Local port for the OAuth redirect listener")
	cmd.Flags().Bool("no-browser", false, "Print the authorization URL instead of opening a browser")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("redirect-port")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")

	// The CLI receives the redirect on a loopback listener instead of the
	// mobile client's custom scheme.
	cfg.RedirectURI = fmt.Sprintf("http://127.0.0.1:%d/callback", port)

	var opts []auth.Option
	if noBrowser {
		opts = append(opts, auth.WithLauncher(&printLauncher{}))
	}

	mgr, err := auth.NewSessionManager(cfg, store, opts...)
	if err != nil {
		return err
	}

	callbacks := make(chan string, 1)
	shutdown, err := startCallbackListener(port, callbacks)
	if err != nil {
		return fmt.Errorf("failed to start redirect listener: %w", err)
	}
	defer shutdown()

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	if err := mgr.Login(ctx); err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " Waiting for authorization in the browser..."
	spin.Start()

	var callbackURI string
	select {
	case callbackURI = <-callbacks:
		spin.Stop()
	case <-ctx.Done():
		spin.Stop()
		mgr.CancelLogin()
		pterm.Error.Println("Timed out waiting for authorization. Please try signing in again.")
		return ctx.Err()
	}

	token, err := mgr.HandleRedirectURI(ctx, callbackURI)
	if err != nil {
		reportLoginError(err)
		return err
	}

	name := "you are signed in"
	if token.IDToken != "" {
		if ident, err := auth.ParseIdentity(token.IDToken); err == nil && ident.Username != "" {
			name = "signed in as " + ident.Username
		}
	}
	pterm.Success.Printfln("Welcome to Fathom ERP, %s.", name)
	return nil
}

// reportLoginError maps the error taxonomy onto user-facing messages.
// Security and contract violations get a generic retry message; transport
// problems get a connectivity-oriented one.
func reportLoginError(err error) {
	var transportErr *auth.TransportError
	var exchangeErr *auth.ExchangeError
	var malformedErr *auth.MalformedResponseError
	var authzErr *auth.AuthorizationError

	switch {
	case errors.As(err, &transportErr):
		pterm.Error.Println("Could not reach the sign-in server. Check your connection and try again.")
	case errors.As(err, &exchangeErr):
		pterm.Error.Printfln("The sign-in server rejected the request (status %d). Please try signing in again.", exchangeErr.StatusCode)
	case errors.As(err, &authzErr):
		pterm.Error.Println("Sign-in was cancelled or denied. Please try signing in again.")
	case errors.Is(err, auth.ErrStateMismatch), errors.As(err, &malformedErr):
		pterm.Error.Println("Sign-in could not be completed. Please try signing in again.")
	default:
		pterm.Error.Printfln("Sign-in failed: %v", err)
	}
}

// printLauncher prints the authorization URL instead of opening a browser.
type printLauncher struct{}

func (p *printLauncher) Open(url string) error {
	pterm.Info.Printfln("Visit this URL to sign in:\n\n%s", url)
	return nil
}

// startCallbackListener serves the OAuth redirect on the loopback interface
// and forwards the full callback URI to the channel.
func startCallbackListener(port int, callbacks chan<- string) (func(), error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body><h1>Sign-in complete</h1><p>You can close this window and return to the terminal.</p></body></html>")
		select {
		case callbacks <- r.URL.String():
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()

	return func() { _ = server.Close() }, nil
}
