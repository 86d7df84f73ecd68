package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
)

// AuthState is the claimed access URL, saved so a setup token is only
// claimed once.
type AuthState struct {
	ClaimedAt time.Time `json:"claimed_at"`
	AccessURL string    `json:"access_url"`
	TokenHint string    `json:"token_hint"`
}

// loadOrClaim returns the saved access URL or claims token and saves the
// result to stateFile.
func loadOrClaim(ctx context.Context, httpClient *http.Client, token, stateFile string, logger *slog.Logger) (*AuthState, error) {
	if auth, err := loadAuthState(stateFile); err == nil && auth.AccessURL != "" {
		logger.Info("Using saved SimpleFIN access URL",
			"claimed_at", auth.ClaimedAt.Format(time.DateOnly),
			"state_file", stateFile)
		return auth, nil
	}

	if token == "" {
		return nil, fmt.Errorf("%w: simplefin.token is required to claim access", common.ErrMissingConfig)
	}

	logger.Info("Claiming SimpleFIN setup token")
	accessURL, err := claimToken(ctx, httpClient, token)
	if err != nil {
		return nil, err
	}

	auth := &AuthState{
		AccessURL: accessURL,
		ClaimedAt: time.Now(),
		TokenHint: tokenHint(token),
	}
	if err := saveAuthState(stateFile, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth state: %w", err)
	}
	return auth, nil
}

// claimToken exchanges a base64 setup token for an access URL.
func claimToken(ctx context.Context, httpClient *http.Client, token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		if decoded, err = base64.StdEncoding.DecodeString(token); err != nil {
			return "", fmt.Errorf("%w: SimpleFIN token is not base64: %v", common.ErrInvalidConfig, err)
		}
	}

	claimURL := string(decoded)
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("%w: SimpleFIN token does not hold a URL", common.ErrInvalidConfig)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to claim access URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SimpleFIN claim failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", errors.New("SimpleFIN returned an invalid access URL")
	}
	return accessURL, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func loadAuthState(path string) (*AuthState, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}

	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func saveAuthState(path string, auth *AuthState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// tokenHint keeps enough of the token to recognize it later.
func tokenHint(token string) string {
	if len(token) > 16 {
		return token[:8] + "..." + token[len(token)-8:]
	}
	return "short_token"
}
