package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
target: http://upstream.example:9000
clearCache: true
db: cache.db
`
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := getConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if config.Target != "http://upstream.example:9000" {
		t.Fatalf("Target is %q", config.Target)
	}
	if !config.ClearCache {
		t.Fatal("ClearCache not set")
	}
	if config.DB != "cache.db" {
		t.Fatalf("DB is %q", config.DB)
	}
	// defaults survive for fields the file does not set
	if config.Port != 3000 {
		t.Fatalf("Port is %d", config.Port)
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := getConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
