// Package auth supplies authenticated HTTP clients for the Google APIs.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/youtube/v3"
)

// NewClient builds an HTTP client that attaches and refreshes the stored
// OAuth token. The token must have been authorized out of band; this is a
// headless pipeline and never opens a consent flow.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	secrets, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	cfg, err := google.ConfigFromJSON(secrets,
		youtube.YoutubeUploadScope,
		drive.DriveFileScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	token, err := TokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	return cfg.Client(ctx, token), nil
}

// TokenFromFile loads a stored OAuth token.
func TokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &token, nil
}

// SaveToken persists a refreshed token for the next run.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
