// ABOUTME: Layered configuration for the admin: defaults, .env file, JOINLAB_ env, then flags.
// ABOUTME: Resolves the backend API base URL and the database location.

package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "JOINLAB"

// Keys
const (
	KeyPort           = "port"
	KeyBackend        = "backend"
	KeyAPIBase        = "api_base"
	KeyDB             = "db"
	KeyNotifyDuration = "notify_duration"
	KeySessionTTL     = "session_ttl"
	KeyPageSize       = "page_size"
	KeyOpenAIKey      = "openai_api_key"
	KeyOpenAIModel    = "openai_model"
)

// Config is the resolved configuration.
type Config struct {
	Port           int
	Backend        string
	APIBase        string
	DB             string
	NotifyDuration time.Duration
	SessionTTL     time.Duration
	PageSize       int
	OpenAIKey      string
	OpenAIModel    string
}

// New returns a viper instance with defaults set and the environment bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault(KeyPort, 9100)
	v.SetDefault(KeyBackend, "http://localhost:8080")
	v.SetDefault(KeyAPIBase, "/api")
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyNotifyDuration, 3*time.Second)
	v.SetDefault(KeySessionTTL, 12*time.Hour)
	v.SetDefault(KeyPageSize, 10)
	v.SetDefault(KeyOpenAIKey, "")
	v.SetDefault(KeyOpenAIModel, "gpt-5-mini")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The seeder also honors the conventional variable name.
	_ = v.BindEnv(KeyOpenAIKey, EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	return v
}

// LoadDotEnv loads path into the process environment. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// BindFlags binds each flag in fs whose name matches a key, so a flag set
// on the command line overrides env and defaults.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func isKey(k string) bool {
	switch k {
	case KeyPort, KeyBackend, KeyAPIBase, KeyDB, KeyNotifyDuration, KeySessionTTL, KeyPageSize, KeyOpenAIKey, KeyOpenAIModel:
		return true
	}
	return false
}

// Load reads v into a Config. An empty db falls back to DefaultDBPath.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		Port:           v.GetInt(KeyPort),
		Backend:        strings.TrimSpace(v.GetString(KeyBackend)),
		APIBase:        strings.TrimSpace(v.GetString(KeyAPIBase)),
		DB:             v.GetString(KeyDB),
		NotifyDuration: v.GetDuration(KeyNotifyDuration),
		SessionTTL:     v.GetDuration(KeySessionTTL),
		PageSize:       v.GetInt(KeyPageSize),
		OpenAIKey:      v.GetString(KeyOpenAIKey),
		OpenAIModel:    v.GetString(KeyOpenAIModel),
	}

	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.NotifyDuration <= 0 {
		return nil, fmt.Errorf("config: notify_duration must be positive")
	}
	if c.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: session_ttl must be positive")
	}
	if c.DB == "" {
		c.DB = DefaultDBPath()
	}
	db, err := ValidateDBPath(c.DB)
	if err != nil {
		return nil, err
	}
	c.DB = db
	if _, err := c.APIURL(); err != nil {
		return nil, err
	}
	return c, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// APIURL returns the absolute backend base. An absolute APIBase is used as
// is; a relative one is resolved against Backend.
func (c *Config) APIURL() (string, error) {
	return ResolveAPIBase(c.Backend, c.APIBase)
}

// ResolveAPIBase joins a relative base such as "/api" onto origin.
func ResolveAPIBase(origin, base string) (string, error) {
	if base == "" {
		base = "/api"
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("config: api_base %q: %w", base, err)
	}
	if b.IsAbs() {
		if b.Host == "" {
			return "", fmt.Errorf("config: api_base %q has no host", base)
		}
		return strings.TrimRight(b.String(), "/"), nil
	}

	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return "", fmt.Errorf("config: backend %q must be an absolute URL", origin)
	}
	if !strings.HasPrefix(b.Path, "/") {
		b.Path = "/" + b.Path
	}
	return strings.TrimRight(o.ResolveReference(b).String(), "/"), nil
}

// ValidateDBPath validates and cleans a database path. ":memory:" is
// accepted as is.
func ValidateDBPath(path string) (string, error) {
	if strings.TrimSpace(path) == ":memory:" {
		return ":memory:", nil
	}
	cleanPath := filepath.Clean(strings.TrimSpace(path))

	// Reject empty and root-like paths
	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}

	// Windows: reject bare drive letters (e.g., "C:", "D:")
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range []string{".git", ".svn", "node_modules", ".env", "credentials", "secret"} {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("database path cannot contain '%s' directory", pattern)
		}
	}

	return cleanPath, nil
}

// DefaultDBPath returns ./joinlab.db when it already exists, otherwise
// joinlab/joinlab.db under the platform data directory.
func DefaultDBPath() string {
	cwdPath := "./joinlab.db"
	if _, err := os.Stat(cwdPath); err == nil {
		return cwdPath
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil || homeDir == "" || homeDir == "/" {
			log.Printf("Warning: Could not determine valid home directory (%q): %v, using %s", homeDir, err, cwdPath)
			return cwdPath
		}

		// Windows: %LOCALAPPDATA% or ~/AppData/Local
		// Unix/Linux/macOS: ~/.local/share
		if runtime.GOOS == "windows" {
			dataHome = os.Getenv("LOCALAPPDATA")
			if dataHome == "" {
				dataHome = filepath.Join(homeDir, "AppData", "Local")
			}
		} else {
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(dataHome, "joinlab")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Printf("Warning: Could not create data directory %s: %v, using %s", dataDir, err, cwdPath)
		return cwdPath
	}
	return filepath.Join(dataDir, "joinlab.db")
}
