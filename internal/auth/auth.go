package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".draftbox"
	credentialFile = "credentials"
)

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable
//  2. Plain-text file at ~/.draftbox/credentials (must be owner-only)
//
// A missing key outside mock mode is a startup-time fatal condition for the
// server, never a per-request error.
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromFile()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from credentials file")
		return key, nil
	}

	log.Error().Err(err).Msg("Failed to retrieve API key")
	return "", fmt.Errorf("API key not found. Set GEMINI_API_KEY or write it to ~/%s/%s (or set MOCK=1)", credentialDir, credentialFile)
}

// getFromFile reads the API key from the credentials file.
func getFromFile() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(credPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("credentials file not found at %s", credPath)
	}
	if err != nil {
		return "", err
	}

	// Credentials must not be group/world readable.
	if mode := fi.Mode().Perm(); mode&0077 != 0 {
		return "", fmt.Errorf("credentials file %s has insecure permissions %04o (should be 0600)", credPath, mode)
	}

	data, err := os.ReadFile(credPath)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, credentialFile), nil
}
