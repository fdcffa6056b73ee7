package common

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const configYAML = `listen: ":9090"
panels_dir: /etc/nanogrid/panels
snap_engine: memory
influx:
  url: http://localhost:8086
  token: file-token
  org: dchouse
  bucket: dchouse
cache:
  size: 64
  ttl: 30
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nanogrid.yaml")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, configYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Listen != ":9090" {
		t.Errorf("unexpected listen %q", config.Listen)
	}
	if config.SnapEngine != "memory" {
		t.Errorf("unexpected engine %q", config.SnapEngine)
	}
	if config.Influx.Token != "file-token" {
		t.Errorf("unexpected token %q", config.Influx.Token)
	}
	if config.Cache.Size != 64 || config.Cache.TTLSeconds != 30 {
		t.Errorf("unexpected cache config %+v", config.Cache)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Listen != ":8080" {
		t.Errorf("unexpected default listen %q", config.Listen)
	}
	if config.SnapEngine != "file" {
		t.Errorf("unexpected default engine %q", config.SnapEngine)
	}
	// Defaults carry no influx credentials, so validation must fail.
	if err := config.Validate(); err == nil {
		t.Error("expected Validate to fail without influx credentials")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	os.Setenv("INFLUX_TOKEN", "env-token")
	os.Setenv("NANOGRID_TOKEN", "dash-token")
	defer os.Unsetenv("INFLUX_TOKEN")
	defer os.Unsetenv("NANOGRID_TOKEN")

	config, err := LoadConfig(writeConfig(t, configYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Influx.Token != "env-token" {
		t.Errorf("expected env override, got %q", config.Influx.Token)
	}
	if config.Token != "dash-token" {
		t.Errorf("expected env override, got %q", config.Token)
	}
}
