package hashlaser

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the hashlaser configuration file.
// Nothing is read unless a path is given explicitly; DefaultConfig supplies
// the built-in values otherwise.
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // Default output format: human, json, fdupes
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// SymlinkConfig represents symlink handling configuration
type SymlinkConfig struct {
	Mode string // Default symlink mode: none, contained, all
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (0 = one per CPU)
	HashBuffer  string // Read chunk size for hashing (default: "1024")
}

// DeleteConfig represents duplicate deletion configuration
type DeleteConfig struct {
	Keep string // Which copy survives: first, lexical
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Symlink     *SymlinkConfig
	Performance *PerformanceConfig
	Delete      *DeleteConfig
}

// DefaultConfig returns an in-memory configuration holding the built-in defaults
func DefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	if err := cfg.setDefaults(); err != nil {
		// Only fails on duplicate section names, which setDefaults never creates
		panic(fmt.Sprintf("failed to build default config: %v", err))
	}
	return cfg
}

// LoadConfig loads configuration from an INI file. Keys missing from the file
// fall back to the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := &Config{
		configPath: configPath,
		ini:        iniFile,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		key     string
		value   string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"output", "format", FormatHuman},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"symlink", "mode", SymlinkModeNone},
		{"performance", "hash_workers", "0"},
		{"performance", "hash_buffer", fmt.Sprintf("%d", DefaultChunkSize)},
		{"delete", "keep", KeepFirst},
	}

	for _, d := range defaults {
		section, err := c.ini.GetSection(d.section)
		if err != nil {
			section, err = c.ini.NewSection(d.section)
			if err != nil {
				return fmt.Errorf("failed to create %s section: %w", d.section, err)
			}
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: DefaultHashAlgorithm,
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: FormatHuman,
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetSymlinkConfig returns the symlink configuration
func (c *Config) GetSymlinkConfig() *SymlinkConfig {
	symlinkConfig := &SymlinkConfig{
		Mode: SymlinkModeNone,
	}

	if c.ini.HasSection("symlink") {
		section := c.ini.Section("symlink")
		if section.HasKey("mode") {
			symlinkConfig.Mode = section.Key("mode").String()
		}
	}

	return symlinkConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: 0,
		HashBuffer:  fmt.Sprintf("%d", DefaultChunkSize),
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetDeleteConfig returns the delete configuration
func (c *Config) GetDeleteConfig() *DeleteConfig {
	deleteConfig := &DeleteConfig{
		Keep: KeepFirst,
	}

	if c.ini.HasSection("delete") {
		section := c.ini.Section("delete")
		if section.HasKey("keep") {
			deleteConfig.Keep = section.Key("keep").String()
		}
	}

	return deleteConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Symlink:     c.GetSymlinkConfig(),
		Performance: c.GetPerformanceConfig(),
		Delete:      c.GetDeleteConfig(),
	}
}

// ScanOptions converts the configuration into scanner options
func (c *Config) ScanOptions() (ScanOptions, error) {
	perf := c.GetPerformanceConfig()
	buffer, err := ParseSize(perf.HashBuffer)
	if err != nil {
		return ScanOptions{}, fmt.Errorf("invalid performance.hash_buffer: %w", err)
	}
	if buffer == 0 || buffer > 1<<30 {
		return ScanOptions{}, fmt.Errorf("performance.hash_buffer must be between 1 byte and 1GiB, got %d", buffer)
	}

	return ScanOptions{
		HashAlgorithm: c.GetHashConfig().Default,
		HashWorkers:   perf.HashWorkers,
		HashBuffer:    int(buffer),
		SymlinkMode:   c.GetSymlinkConfig().Mode,
	}, nil
}

// Path returns the file the configuration was loaded from, or "" for defaults
func (c *Config) Path() string {
	return c.configPath
}

// SaveTo writes the configuration to path
func (c *Config) SaveTo(path string) error {
	if err := c.ini.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "default:sha256", "format:json", "level:2", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "default":
			c.ini.Section("filehash").Key("default").SetValue(value)
		case "format":
			c.ini.Section("output").Key("format").SetValue(value)
		case "level":
			c.ini.Section("verbose").Key("level").SetValue(value)
		case "debug":
			c.ini.Section("verbose").Key("debug").SetValue(value)
		case "mode":
			c.ini.Section("symlink").Key("mode").SetValue(value)
		case "hash_workers":
			c.ini.Section("performance").Key("hash_workers").SetValue(value)
		case "hash_buffer":
			c.ini.Section("performance").Key("hash_buffer").SetValue(value)
		case "keep":
			c.ini.Section("delete").Key("keep").SetValue(value)
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: default, format, level, debug, mode, hash_workers, hash_buffer, keep)", key)
		}
	}

	return c.Validate()
}

// Validate checks every configured value
func (c *Config) Validate() error {
	if err := c.validateIntKey("verbose", "level"); err != nil {
		return err
	}
	if err := c.validateIntKey("performance", "hash_workers"); err != nil {
		return err
	}

	all := c.GetAllConfig()

	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	if err := ValidateSymlinkMode(all.Symlink.Mode); err != nil {
		return err
	}
	if all.Performance.HashWorkers != 0 {
		if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
			return err
		}
	}
	if _, err := ParseSize(all.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash buffer: %w", err)
	}
	return ValidateKeepPolicy(all.Delete.Keep)
}

// validateIntKey fails when a present key does not hold an integer; the
// getters fall back to defaults for such values
func (c *Config) validateIntKey(section, key string) error {
	if !c.ini.HasSection(section) || !c.ini.Section(section).HasKey(key) {
		return nil
	}
	if _, err := c.ini.Section(section).Key(key).Int(); err != nil {
		return fmt.Errorf("invalid %s.%s: %w", section, key, err)
	}
	return nil
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	switch strings.ToLower(algorithm) {
	case "sha1", "sha256", "sha512":
		return nil
	default:
		return fmt.Errorf("unsupported hash algorithm: %s (supported: sha1, sha256, sha512)", algorithm)
	}
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatJSON, FormatFdupes:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, fdupes)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateSymlinkMode validates that a symlink mode is supported
func ValidateSymlinkMode(mode string) error {
	switch strings.ToLower(mode) {
	case SymlinkModeAll, SymlinkModeContained, SymlinkModeNone:
		return nil
	default:
		return fmt.Errorf("unsupported symlink mode: %s (supported: all, contained, none)", mode)
	}
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > 256 {
		return fmt.Errorf("hash workers should not exceed 256, got: %d", workers)
	}
	return nil
}

// ValidateKeepPolicy validates that a keep policy is supported
func ValidateKeepPolicy(keep string) error {
	switch keep {
	case KeepFirst, KeepLexical:
		return nil
	default:
		return fmt.Errorf("unsupported keep policy: %s (supported: first, lexical)", keep)
	}
}
