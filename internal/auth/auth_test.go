package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetAPIKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"
	t.Setenv("GEMINI_API_KEY", testKey)

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	// Temporary home directory without a credentials file.
	t.Setenv("HOME", t.TempDir())

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error when no API key source available")
	}
}

func TestGetAPIKeyFromFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	credDir := filepath.Join(tmpHome, credentialDir)
	if err := os.MkdirAll(credDir, 0700); err != nil {
		t.Fatal(err)
	}
	credPath := filepath.Join(credDir, credentialFile)
	if err := os.WriteFile(credPath, []byte("file-key-67890\n"), 0600); err != nil {
		t.Fatal(err)
	}

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "file-key-67890" {
		t.Errorf("expected trimmed file key, got %q", key)
	}
}

func TestGetAPIKeyRejectsInsecureFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	credDir := filepath.Join(tmpHome, credentialDir)
	if err := os.MkdirAll(credDir, 0700); err != nil {
		t.Fatal(err)
	}
	credPath := filepath.Join(credDir, credentialFile)
	if err := os.WriteFile(credPath, []byte("leaky-key"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error for group/world-readable credentials file")
	}
}

func TestGetCredentialPath(t *testing.T) {
	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".draftbox", "credentials")

	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}
