package config

import (
	"path/filepath"
	"testing"
)

func TestLoadGeneratesStableIdentity(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOCUSFLOW_DATA_DIR", dir)
	t.Setenv("FOCUSFLOW_USER_ID", "")
	t.Setenv("FOCUSFLOW_DISPLAY_NAME", "")

	c1, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c1.UserID == "" {
		t.Fatal("expected a generated user id")
	}
	if c1.DisplayName == "" {
		t.Fatal("expected a fallback display name")
	}

	c2, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c2.UserID != c1.UserID {
		t.Fatalf("identity not stable: %s vs %s", c1.UserID, c2.UserID)
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("FOCUSFLOW_DATA_DIR", t.TempDir())
	t.Setenv("FOCUSFLOW_USER_ID", "u-42")
	t.Setenv("FOCUSFLOW_DISPLAY_NAME", "Jane Doe")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != "u-42" || c.DisplayName != "Jane Doe" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if filepath.Base(c.DataDir) == "" {
		t.Fatal("empty data dir")
	}
}

func TestDataPathsFollowDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOCUSFLOW_DATA_DIR", dir)
	t.Setenv("FOCUSFLOW_USER_ID", "u-42")
	t.Setenv("FOCUSFLOW_DISPLAY_NAME", "Jane Doe")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.DBPath(), filepath.Join(dir, "focusflow.db"); got != want {
		t.Fatalf("DBPath = %s, want %s", got, want)
	}
	if got, want := c.RunFilePath(), filepath.Join(dir, "runstate.json"); got != want {
		t.Fatalf("RunFilePath = %s, want %s", got, want)
	}
}
