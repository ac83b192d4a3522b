package medium

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigRoundTripsThroughYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.yaml")

	cfg := &Config{
		Name: "roundtrip",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01", X: 1, Y: 2},
			{Name: "b", Mac: "02:00:00:00:00:02", X: 3, Y: 4},
		},
		Interference: true,
	}
	if err := cfg.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Name != cfg.Name || len(got.Stations) != len(cfg.Stations) {
		t.Fatalf("expected round-tripped config to match, got %+v", got)
	}
	if !got.Interference {
		t.Fatalf("expected Interference to round-trip as true")
	}
}

func TestConfigRoundTripsThroughJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.json")

	cfg := &Config{
		Name:     "roundtrip-json",
		Stations: []StationConfig{{Name: "a", Mac: "02:00:00:00:00:01"}},
	}
	if err := cfg.WriteToFile(path); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Name != cfg.Name {
		t.Fatalf("expected round-tripped name %q, got %q", cfg.Name, got.Name)
	}
}

func TestLoadConfigRejectsUnrecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.ini")
	if err := os.WriteFile(path, []byte("name=foo"), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	_, err := LoadConfig(path)
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected a *ConfigError for an unrecognized extension, got %v (%T)", err, err)
	}
}
