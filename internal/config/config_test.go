package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("instance: ds\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: ds\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "config.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "config.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: ds\nds:\n  catalog_path: ${RFE_TEST_CATALOG}\n"), 0600)
	os.Setenv("RFE_TEST_CATALOG", "/tmp/cat.sqlite")
	defer os.Unsetenv("RFE_TEST_CATALOG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DS.CatalogPath != "/tmp/cat.sqlite" {
		t.Errorf("catalog_path = %q, want %q", cfg.DS.CatalogPath, "/tmp/cat.sqlite")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: hs\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DS.CatalogPath == "" {
		t.Error("expected a default catalog_path")
	}
	if cfg.HS.WatchdogTimeout != 30 {
		t.Errorf("watchdog_timeout default = %d, want 30", cfg.HS.WatchdogTimeout)
	}
}

func TestLoad_UnknownInstanceRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: bogus\n"), 0600)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown instance")
	}
}

func TestLoad_UnknownAppRateRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: ds\napps:\n  - type: ds\n    rate: 7hz\n"), 0600)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown rate")
	}
}

func TestLoad_DuplicateAppRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("instance: ds\napps:\n  - type: ds\n  - type: ds\n"), 0600)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for duplicate app entries")
	}
}

func TestBuildDsTlmSets(t *testing.T) {
	cfg := &Config{
		DS: DSConfig{
			TlmSets: []DsTlmSetConfig{
				{
					ID:      7,
					Enabled: true,
					Path:    "log/x",
					Items: []TlmSetItemConfig{
						{Instance: "all", Kind: "hs_hk", Decimation: 2},
					},
				},
			},
		},
	}

	sets, err := cfg.BuildDsTlmSets()
	if err != nil {
		t.Fatalf("BuildDsTlmSets error: %v", err)
	}
	set, ok := sets[7]
	if !ok {
		t.Fatal("expected set 7 to be present")
	}
	if set.Path != "log/x" || len(set.Items) != 1 {
		t.Fatalf("unexpected set: %+v", set)
	}
	if set.Items[0].Decimation != 2 {
		t.Errorf("decimation = %d, want 2", set.Items[0].Decimation)
	}
}

func TestBuildDsTlmSetsUnknownKind(t *testing.T) {
	cfg := &Config{
		DS: DSConfig{
			TlmSets: []DsTlmSetConfig{
				{ID: 1, Items: []TlmSetItemConfig{{Instance: "all", Kind: "bogus"}}},
			},
		},
	}
	if _, err := cfg.BuildDsTlmSets(); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}
