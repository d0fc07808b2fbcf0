// Package config resolves the local user's identity and data locations.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/sadopc/focusflow/internal/sanitize"
)

type Config struct {
	UserID      string
	DisplayName string
	Email       string
	DataDir     string
}

// Load reads .env (if present) and the environment. A missing user id is
// generated once and kept in the data directory so the same device keeps
// the same identity across restarts.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := os.Getenv("FOCUSFLOW_DATA_DIR")
	if dataDir == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(cfg, "focusflow")
	}

	c := &Config{
		UserID:      os.Getenv("FOCUSFLOW_USER_ID"),
		DisplayName: sanitize.Username(os.Getenv("FOCUSFLOW_DISPLAY_NAME")),
		Email:       os.Getenv("FOCUSFLOW_EMAIL"),
		DataDir:     dataDir,
	}

	if c.UserID == "" {
		id, err := loadOrCreateIdentity(filepath.Join(dataDir, "identity.json"))
		if err != nil {
			return nil, err
		}
		c.UserID = id
	}
	if c.DisplayName == "" {
		c.DisplayName = c.UserID[:min(8, len(c.UserID))]
	}
	return c, nil
}

// DBPath is the session database location inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "focusflow.db")
}

// RunFilePath is the single-slot run state location inside the data
// directory.
func (c *Config) RunFilePath() string {
	return filepath.Join(c.DataDir, "runstate.json")
}

type identity struct {
	UserID string `json:"userId"`
}

func loadOrCreateIdentity(path string) (string, error) {
	if payload, err := os.ReadFile(path); err == nil {
		var id identity
		if json.Unmarshal(payload, &id) == nil && id.UserID != "" {
			return id.UserID, nil
		}
	}

	id := identity{UserID: uuid.NewString()}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	payload, _ := json.MarshalIndent(id, "", "  ")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", err
	}
	return id.UserID, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
