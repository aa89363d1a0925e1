package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func fleetAPI(baseURL, accountID string) APIConfig {
	return APIConfig{BaseURL: baseURL, AccountID: accountID}
}

func TestCredentialsPathFor(t *testing.T) {
	got := CredentialsPathFor(filepath.Join("/etc", "co2meter", "settings.json"))
	if want := filepath.Join("/etc", "co2meter", "credentials.json"); got != want {
		t.Errorf("CredentialsPathFor() = %q, want %q", got, want)
	}
}

func TestSaveTokenTo_ScopedByBaseURLAndAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	prod := fleetAPI("https://apis.intangles.com", "962759605811675136")
	staging := fleetAPI("https://staging.intangles.example", "962759605811675136")
	depot := fleetAPI("https://apis.intangles.com", "811675136962759605")

	saves := []struct {
		api   APIConfig
		token string
	}{
		{prod, "tok-prod"},
		{staging, "tok-staging"},
		{depot, "tok-depot"},
	}
	for _, s := range saves {
		if err := SaveTokenTo(path, s.api, s.token); err != nil {
			t.Fatalf("SaveTokenTo(%s, %s) error: %v", s.api.BaseURL, s.api.AccountID, err)
		}
	}

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		t.Fatalf("LoadCredentialsFrom() error: %v", err)
	}
	if len(creds.Tokens) != 3 {
		t.Fatalf("entries = %d, want 3", len(creds.Tokens))
	}
	tests := []struct {
		api  APIConfig
		want string
	}{
		{prod, "tok-prod"},
		{staging, "tok-staging"},
		{depot, "tok-depot"},
		{fleetAPI("https://apis.intangles.com/", "962759605811675136"), "tok-prod"},
		{fleetAPI("", "962759605811675136"), "tok-prod"},
		{fleetAPI("https://apis.intangles.com", "unknown"), ""},
	}
	for _, tt := range tests {
		if got := creds.Token(tt.api); got != tt.want {
			t.Errorf("Token(%q, %q) = %q, want %q", tt.api.BaseURL, tt.api.AccountID, got, tt.want)
		}
	}
}

func TestSaveTokenTo_ReplacesSameScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	api := fleetAPI("https://apis.intangles.com", "acc")

	if err := SaveTokenTo(path, api, "tok-old"); err != nil {
		t.Fatal(err)
	}
	if err := SaveTokenTo(path, fleetAPI("https://apis.intangles.com/", " acc "), " tok-new\n"); err != nil {
		t.Fatal(err)
	}

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(creds.Tokens) != 1 {
		t.Fatalf("entries = %d, want 1", len(creds.Tokens))
	}
	if e := creds.Tokens[0]; e.Token != "tok-new" || e.SavedAt.IsZero() {
		t.Errorf("entry = %+v", e)
	}
}

func TestSaveTokenTo_RejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := SaveTokenTo(path, fleetAPI("", "acc"), "   "); err == nil {
		t.Fatal("expected an error for a blank token")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("blank token must not create the store (stat err = %v)", err)
	}
}

func TestSaveTokenTo_KeepsCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SaveTokenTo(path, fleetAPI("", "acc"), "tok"); err == nil {
		t.Fatal("expected an error for a corrupt store")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Errorf("corrupt store was overwritten: %q", data)
	}
}

func TestDeleteTokenFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	prod := fleetAPI("https://apis.intangles.com", "acc")
	staging := fleetAPI("https://staging.intangles.example", "acc")

	for _, api := range []APIConfig{prod, staging} {
		if err := SaveTokenTo(path, api, "tok"); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := DeleteTokenFrom(path, prod)
	if err != nil || !removed {
		t.Fatalf("DeleteTokenFrom() = %v, %v; want true, nil", removed, err)
	}
	removed, err = DeleteTokenFrom(path, prod)
	if err != nil || removed {
		t.Fatalf("second DeleteTokenFrom() = %v, %v; want false, nil", removed, err)
	}

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if creds.Token(prod) != "" || creds.Token(staging) != "tok" {
		t.Errorf("tokens after delete = %+v", creds.Tokens)
	}
}

func TestLoadCredentialsFrom_MissingFile(t *testing.T) {
	creds, err := LoadCredentialsFrom(filepath.Join(t.TempDir(), "nope", "credentials.json"))
	if err != nil {
		t.Fatalf("LoadCredentialsFrom() error: %v", err)
	}
	if len(creds.Tokens) != 0 {
		t.Errorf("tokens = %+v, want none", creds.Tokens)
	}
}

func TestCredentialsFileLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "credentials.json")
	if err := SaveTokenTo(path, fleetAPI("", "acc"), "tok-secret"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"base_url": "https://apis.intangles.com"`, `"acc_id": "acc"`, `"saved_at"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("store missing %s:\n%s", want, data)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in %s: %v", dir, entries)
	}

	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}
