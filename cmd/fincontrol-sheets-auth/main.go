// Command fincontrol-sheets-auth runs the OAuth consent flow for the Sheets
// ledger and stores the resulting user token in GOOGLE_OAUTH_TOKEN_FILE.
// GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE must hold the OAuth
// client, and http://localhost:<OAUTH_REDIRECT_PORT>/callback must be one
// of its authorized redirect URIs.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"fincontrol/internal/cli"
	"fincontrol/internal/config"
	"fincontrol/internal/ledger/sheets"
	"fincontrol/internal/log"
)

const authTimeout = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	clientJSON, err := readClient(cfg)
	if err != nil {
		logger.Error("Missing OAuth client", log.FieldError, err)
		os.Exit(1)
	}
	oauthCfg, err := sheets.OAuthConfig(clientJSON)
	if err != nil {
		logger.Error("Invalid OAuth client", log.FieldError, err)
		os.Exit(1)
	}

	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	oauthCfg.RedirectURL = "http://localhost:" + port + "/callback"

	tokenFile := cfg.GoogleOAuthTokenFile
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	tok, err := authorize(ctx, oauthCfg, ":"+port)
	if err != nil {
		logger.Error("Authorization failed", log.FieldError, err)
		os.Exit(1)
	}
	if err := sheets.SaveToken(tokenFile, tok); err != nil {
		logger.Error("Failed to save token", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Saved OAuth token", "path", tokenFile)
}

func readClient(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.GoogleCredentialsJSON != "":
		return []byte(cfg.GoogleCredentialsJSON), nil
	case cfg.GoogleCredentialsFile != "":
		return os.ReadFile(cfg.GoogleCredentialsFile)
	default:
		return nil, errors.New("set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE to the OAuth client")
	}
}

// authorize prints the consent URL and exchanges the code delivered to the
// local callback.
func authorize(ctx context.Context, cfg *oauth2.Config, addr string) (*oauth2.Token, error) {
	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("consent denied: %s", q.Get("error")))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
