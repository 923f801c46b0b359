package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"

	"drivemerge/internal/config"
	"drivemerge/internal/models"
)

// authorizedHTTPClient builds an OAuth HTTP client from the cached user
// token. Missing or unreadable tokens surface as ErrNotAuthenticated;
// the login command mints one.
func authorizedHTTPClient(ctx context.Context, cfg *config.DriveConfig) (*http.Client, error) {
	oauthCfg, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: no cached token, run `drivemerge login` first", models.ErrNotAuthenticated)
	}

	client := oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, token))
	client.Timeout = cfg.Timeout
	return client, nil
}

// Authorize runs the paste-code OAuth flow and caches the token.
// promptCode shows the consent URL and returns the code the user pasted.
func Authorize(ctx context.Context, cfg *config.DriveConfig, promptCode func(authURL string) (string, error)) error {
	oauthCfg, err := oauthConfig(cfg)
	if err != nil {
		return err
	}

	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := promptCode(authURL)
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	return saveToken(cfg.TokenFile, token)
}

func oauthConfig(cfg *config.DriveConfig) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", cfg.CredentialsFile, err)
	}

	oauthCfg, err := google.ConfigFromJSON(data, drivev3.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	return oauthCfg, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
