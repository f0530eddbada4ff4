package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
)

const (
	defaultListen         = "127.0.0.1:8080"
	defaultSequence       = "gregorian"
	defaultMaxOccurrences = 5000
	defaultLogLevel       = "info"
	defaultCacheDir       = "var/ics-cache"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// YearRangeConfig bounds the YR values accepted anywhere in the program.
type YearRangeConfig struct {
	Min int `yaml:"min" json:"min" env:"CHRONOSEQ_YEAR_MIN"`
	Max int `yaml:"max" json:"max" env:"CHRONOSEQ_YEAR_MAX"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen" env:"CHRONOSEQ_LISTEN"`

	// YearRange limits YR elements. Defaults to 1..9999.
	YearRange YearRangeConfig `yaml:"year_range" json:"year_range"`

	// DefaultSequence is used when a command or request does not name one.
	// Supported values: "gregorian" (default), "iso".
	DefaultSequence string `yaml:"default_sequence" json:"default_sequence" env:"CHRONOSEQ_SEQUENCE"`

	// MaxOccurrences caps every enumeration so an open-ended query over a
	// wide bound stays bounded.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences" env:"CHRONOSEQ_MAX_OCCURRENCES"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level" env:"CHRONOSEQ_LOG_LEVEL"`

	// CacheDir holds cached bodies of remote calendars read by "import".
	CacheDir string `yaml:"cache_dir" json:"cache_dir" env:"CHRONOSEQ_CACHE_DIR"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen: defaultListen,
		YearRange: YearRangeConfig{
			Min: chrono.DefaultYearRange.Min,
			Max: chrono.DefaultYearRange.Max,
		},
		DefaultSequence: defaultSequence,
		MaxOccurrences:  defaultMaxOccurrences,
		LogLevel:        defaultLogLevel,
		CacheDir:        defaultCacheDir,
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	// Each bound defaults on its own, so "min: 1900" keeps the default max.
	if c.YearRange.Min == 0 {
		c.YearRange.Min = chrono.DefaultYearRange.Min
	}
	if c.YearRange.Max == 0 {
		c.YearRange.Max = chrono.DefaultYearRange.Max
	}
	if c.YearRange.Min > c.YearRange.Max {
		appLog.Error("config: inverted year_range, using default",
			errors.New("min > max"), "min", c.YearRange.Min, "max", c.YearRange.Max)
		c.YearRange = YearRangeConfig{Min: chrono.DefaultYearRange.Min, Max: chrono.DefaultYearRange.Max}
	}

	if seq, err := calendar.ParseSequence(c.DefaultSequence); err == nil {
		c.DefaultSequence = seq.String()
	} else {
		// Unknown or empty value; fall back to gregorian.
		c.DefaultSequence = defaultSequence
	}

	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}

	if l, ok := appLog.ParseLevel(c.LogLevel); ok {
		c.LogLevel = strings.ToLower(string(l))
	} else {
		c.LogLevel = defaultLogLevel
	}

	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}

	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Rules returns the element validation rules implied by YearRange.
func (c *Config) Rules() (chrono.Rules, error) {
	return chrono.NewRules(chrono.YearRange{Min: c.YearRange.Min, Max: c.YearRange.Max})
}

// Sequence returns DefaultSequence as a calendar.Sequence.
func (c *Config) Sequence() calendar.Sequence {
	seq, err := calendar.ParseSequence(c.DefaultSequence)
	if err != nil {
		return calendar.Gregorian
	}
	return seq
}

// Level returns LogLevel as a log level.
func (c *Config) Level() appLog.Level {
	l, _ := appLog.ParseLevel(c.LogLevel)
	return l
}

// Load loads configuration from the given YAML path on the OS filesystem.
// See LoadFs.
func Load(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - In both cases CHRONOSEQ_* environment variables override file
//     values, then defaults are normalized.
func LoadFs(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := afero.ReadFile(fsys, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: create default config file.
		appLog.Info("config: writing default", "path", path)
		if err := SaveFs(fsys, path, cfg); err != nil {
			// Even if save fails, return cfg with error so caller can decide.
			return cfg, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// FromEnv returns the defaults overlaid with CHRONOSEQ_* environment
// variables, for runs without a config file.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the given configuration to the specified path on the OS
// filesystem. See SaveFs.
func Save(path string, cfg *Config) error {
	return SaveFs(afero.NewOsFs(), path, cfg)
}

// SaveFs writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func SaveFs(fsys afero.Fs, path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := afero.TempFile(fsys, dir, ".chronoseq-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer fsys.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fsys.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return fsys.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
