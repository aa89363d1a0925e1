package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

const credentialsFile = "credentials.json"

// TokenEntry is one stored Intangles user token. A token only authenticates
// against the API it was issued by, so entries are scoped to a base URL as
// well as an account.
type TokenEntry struct {
	BaseURL   string    `json:"base_url"`
	AccountID string    `json:"acc_id"`
	Token     string    `json:"token"`
	SavedAt   time.Time `json:"saved_at"`
}

// Credentials is the token store kept next to settings.json.
type Credentials struct {
	Tokens []TokenEntry `json:"tokens"`
}

var credMu sync.Mutex

// CredentialsPathFor places the token store in the same directory as the
// settings file at configPath.
func CredentialsPathFor(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), credentialsFile)
}

func scopeOf(api APIConfig) (baseURL, accountID string) {
	baseURL = strings.TrimRight(strings.TrimSpace(api.BaseURL), "/")
	if baseURL == "" {
		baseURL = intangles.DefaultBaseURL
	}
	return baseURL, strings.TrimSpace(api.AccountID)
}

func (e TokenEntry) matches(baseURL, accountID string) bool {
	return e.BaseURL == baseURL && e.AccountID == accountID
}

// Token returns the stored token for the API and account in api, or "".
func (c Credentials) Token(api APIConfig) string {
	baseURL, accountID := scopeOf(api)
	e, _ := lo.Find(c.Tokens, func(e TokenEntry) bool { return e.matches(baseURL, accountID) })
	return e.Token
}

func LoadCredentialsFrom(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading credentials: %w", err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	return creds, nil
}

// SaveTokenTo stores token for the scope of api, replacing any earlier token
// for the same base URL and account. A corrupt store is an error rather than
// being overwritten.
func SaveTokenTo(path string, api APIConfig, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	baseURL, accountID := scopeOf(api)

	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		return err
	}
	creds.Tokens = append(
		lo.Reject(creds.Tokens, func(e TokenEntry, _ int) bool { return e.matches(baseURL, accountID) }),
		TokenEntry{BaseURL: baseURL, AccountID: accountID, Token: token, SavedAt: time.Now().UTC()},
	)
	return writeCredentials(path, creds)
}

// DeleteTokenFrom removes the token for the scope of api and reports whether
// one was stored.
func DeleteTokenFrom(path string, api APIConfig) (bool, error) {
	baseURL, accountID := scopeOf(api)

	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		return false, err
	}
	kept := lo.Reject(creds.Tokens, func(e TokenEntry, _ int) bool { return e.matches(baseURL, accountID) })
	if len(kept) == len(creds.Tokens) {
		return false, nil
	}
	creds.Tokens = kept
	return true, writeCredentials(path, creds)
}

// writeCredentials replaces the store through a temp file so a crash never
// leaves a half-written token file behind.
func writeCredentials(path string, creds Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing credentials: %w", err)
	}
	return nil
}
