package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	apierrors "github.com/mcosta/helpchat/internal/errors"
)

// DefaultBaseURL is the assistant API endpoint used when nothing else is
// configured.
const DefaultBaseURL = "https://api.helpchat.dev/v1"

// Environment variables checked before the credentials file.
const (
	EnvAPIKey  = "HELPCHAT_API_KEY"
	EnvBaseURL = "HELPCHAT_BASE_URL"
)

// Credentials holds the injected API configuration for the upstream
// producer. Never process-wide mutable state: the client receives a copy
// at construction.
type Credentials struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
}

// Validate checks that the credentials are usable.
func (c *Credentials) Validate() error {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return apierrors.ErrNoAPIKey
	}
	return nil
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credentials.json"), nil
}

// LoadCredentials resolves credentials in precedence order: environment
// variables (a .env file in the working directory is honored), then the
// credentials file.
func LoadCredentials() (*Credentials, error) {
	// Best effort; absent .env files are the normal case.
	_ = godotenv.Load()

	creds := &Credentials{
		APIKey:  os.Getenv(EnvAPIKey),
		BaseURL: os.Getenv(EnvBaseURL),
	}

	if creds.APIKey == "" {
		fileCreds, err := readCredentialsFile()
		if err != nil {
			return nil, err
		}
		creds.APIKey = fileCreds.APIKey
		if creds.BaseURL == "" {
			creds.BaseURL = fileCreds.BaseURL
		}
	}

	if creds.BaseURL == "" {
		creds.BaseURL = DefaultBaseURL
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

func readCredentialsFile() (*Credentials, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no API key found. Set %s or run:\n  helpchat login <api-key>", EnvAPIKey)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}
	return &creds, nil
}

// SaveCredentials writes the credentials file with restrictive permissions.
func SaveCredentials(creds *Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	path := filepath.Join(configDir, "credentials.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}
