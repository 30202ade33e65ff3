package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
[package]
name = "geometry"
version = "1.2.0"

[build]
emit = "json"
jobs = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Package.Name != "geometry" || cfg.Package.Version != "1.2.0" {
		t.Errorf("package = %+v", cfg.Package)
	}
	if cfg.Build.Emit != EmitJSON || cfg.Build.Jobs != 3 {
		t.Errorf("build = %+v", cfg.Build)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
[package]
name = "geometry"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Build.Emit != EmitIR {
		t.Errorf("default emit = %q, want %q", cfg.Build.Emit, EmitIR)
	}
	if cfg.Build.Jobs <= 0 {
		t.Errorf("default jobs = %d, want > 0", cfg.Build.Jobs)
	}
}

func TestLoadConfigInvalidEmit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
[build]
emit = "wasm"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid emit format")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := Default(filepath.Join(dir, "My Project"))
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after Save: %v", err)
	}
	if loaded.Package.Name != "my-project" {
		t.Errorf("sanitized name = %q, want my-project", loaded.Package.Name)
	}
	if loaded.Build.Emit != cfg.Build.Emit {
		t.Errorf("emit changed across round trip: %q != %q", loaded.Build.Emit, cfg.Build.Emit)
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("[package]\nname = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found := FindConfigFile(nested)
	if found == "" {
		t.Fatal("config file not found from nested directory")
	}
	if filepath.Dir(found) != root {
		t.Errorf("found %q, want file in %q", found, root)
	}
}

func TestFindConfigFileMissing(t *testing.T) {
	if found := FindConfigFile(t.TempDir()); found != "" {
		// TempDir 祖先目录中存在 lumen.toml 时才可能非空
		t.Logf("unexpected config at %q", found)
	}
}
