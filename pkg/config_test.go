package hashlaser

import (
	"path/filepath"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	config := DefaultConfig()

	all := config.GetAllConfig()
	if all.Hash.Default != "sha256" {
		t.Errorf("Expected default hash algorithm 'sha256', got '%s'", all.Hash.Default)
	}
	if all.Output.Format != FormatHuman {
		t.Errorf("Expected default format '%s', got '%s'", FormatHuman, all.Output.Format)
	}
	if all.Symlink.Mode != SymlinkModeNone {
		t.Errorf("Expected default symlink mode '%s', got '%s'", SymlinkModeNone, all.Symlink.Mode)
	}
	if all.Performance.HashWorkers != 0 {
		t.Errorf("Expected default hash workers 0, got %d", all.Performance.HashWorkers)
	}
	if all.Delete.Keep != KeepFirst {
		t.Errorf("Expected default keep policy '%s', got '%s'", KeepFirst, all.Delete.Keep)
	}
	if config.Path() != "" {
		t.Errorf("Default config should have no path, got '%s'", config.Path())
	}

	opts, err := config.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions failed: %v", err)
	}
	if opts.HashBuffer != DefaultChunkSize {
		t.Errorf("Expected hash buffer %d, got %d", DefaultChunkSize, opts.HashBuffer)
	}
}

func TestConfigOverrides(t *testing.T) {
	config := DefaultConfig()

	err := config.ApplyOverrides([]string{
		"default:sha1",
		"format:json",
		"level:2",
		"debug:scan,hash",
		"mode:contained",
		"hash_workers:4",
		"hash_buffer:64KiB",
		"keep:lexical",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	all := config.GetAllConfig()
	if all.Hash.Default != "sha1" {
		t.Errorf("Expected hash algorithm 'sha1' after override, got '%s'", all.Hash.Default)
	}
	if all.Output.Format != "json" {
		t.Errorf("Expected output format 'json' after override, got '%s'", all.Output.Format)
	}
	if all.Verbose.Level != 2 {
		t.Errorf("Expected verbose level 2 after override, got %d", all.Verbose.Level)
	}
	if all.Verbose.Debug != "scan,hash" {
		t.Errorf("Expected debug flags 'scan,hash' after override, got '%s'", all.Verbose.Debug)
	}
	if all.Symlink.Mode != SymlinkModeContained {
		t.Errorf("Expected symlink mode 'contained' after override, got '%s'", all.Symlink.Mode)
	}
	if all.Delete.Keep != KeepLexical {
		t.Errorf("Expected keep policy 'lexical' after override, got '%s'", all.Delete.Keep)
	}

	opts, err := config.ScanOptions()
	if err != nil {
		t.Fatalf("ScanOptions failed: %v", err)
	}
	if opts.HashWorkers != 4 || opts.HashBuffer != 64*1024 || opts.HashAlgorithm != "sha1" {
		t.Errorf("Unexpected scan options: %+v", opts)
	}
}

func TestConfigInvalidOverrides(t *testing.T) {
	tests := []struct {
		name     string
		override string
	}{
		{"missing colon", "format"},
		{"unknown key", "colour:red"},
		{"bad algorithm", "default:md5"},
		{"bad format", "format:xml"},
		{"bad level", "level:9"},
		{"non-numeric level", "level:abc"},
		{"non-numeric workers", "hash_workers:x"},
		{"bad mode", "mode:sometimes"},
		{"too many workers", "hash_workers:1000"},
		{"bad buffer", "hash_buffer:lots"},
		{"bad keep", "keep:newest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if err := config.ApplyOverrides([]string{tt.override}); err == nil {
				t.Errorf("Expected error for override '%s'", tt.override)
			}
		})
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hashlaser.ini")

	config := DefaultConfig()
	if err := config.ApplyOverrides([]string{"default:sha512", "hash_workers:2"}); err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}
	if err := config.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Path() != configPath {
		t.Errorf("Expected path '%s', got '%s'", configPath, loaded.Path())
	}
	if loaded.GetHashConfig().Default != "sha512" {
		t.Errorf("Expected sha512, got '%s'", loaded.GetHashConfig().Default)
	}
	if loaded.GetPerformanceConfig().HashWorkers != 2 {
		t.Errorf("Expected 2 workers, got %d", loaded.GetPerformanceConfig().HashWorkers)
	}
}

func TestLoadConfig_PartialFileUsesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "partial.ini")
	writeTestFile(t, configPath, "[symlink]\nmode = all\n")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GetSymlinkConfig().Mode != SymlinkModeAll {
		t.Errorf("Expected mode 'all', got '%s'", config.GetSymlinkConfig().Mode)
	}
	if config.GetHashConfig().Default != DefaultHashAlgorithm {
		t.Errorf("Missing keys should default, got '%s'", config.GetHashConfig().Default)
	}
	if config.GetDeleteConfig().Keep != KeepFirst {
		t.Errorf("Missing keys should default, got '%s'", config.GetDeleteConfig().Keep)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(tempDir, "missing.ini")); err == nil {
		t.Error("Expected error for missing config file")
	}

	invalid := filepath.Join(tempDir, "invalid.ini")
	writeTestFile(t, invalid, "[output]\nformat = xml\n")
	if _, err := LoadConfig(invalid); err == nil {
		t.Error("Expected validation error for unsupported format")
	}

	badWorkers := filepath.Join(tempDir, "workers.ini")
	writeTestFile(t, badWorkers, "[performance]\nhash_workers = four\n")
	if _, err := LoadConfig(badWorkers); err == nil {
		t.Error("Expected validation error for non-numeric hash_workers")
	}
}
