package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvPrefix is prepended to every environment key (RELAYDASH_BASE_URL, ...)
	EnvPrefix = "RELAYDASH"

	DefaultBaseURL        = "http://localhost:5001"
	DefaultMessageTimeout = 5 * time.Second
)

// Configuration keys shared by viper, flags and environment variables
const (
	KeyBaseURL        = "base_url"
	KeySession        = "session"
	KeyLogFile        = "log_file"
	KeyDebug          = "debug"
	KeyMessageTimeout = "message_timeout"
	KeyHTTPTimeout    = "http_timeout"
	KeyTimezone       = "timezone"
	KeyHistory        = "history"
)

var (
	// ConfigDir is the global configuration directory (~/.relaydash)
	ConfigDir string

	// LogFile is the default diagnostic log file
	LogFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string

	// DatabasePath is the SQLite database holding the activity history
	DatabasePath string

	// configBaseNames are probed in order inside ConfigDir
	configBaseNames = []string{"config.yaml", "config.yml", "config.json", "config.jsonc"}
)

// Settings is the resolved dashboard configuration
type Settings struct {
	BaseURL        string
	Session        string
	LogFile        string
	Debug          bool
	MessageTimeout time.Duration
	HTTPTimeout    time.Duration
	Location       *time.Location
	History        bool
}

// Initialize sets up the configuration directory
// It creates ~/.relaydash/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	return InitializeAt(filepath.Join(homeDir, ".relaydash"))
}

// InitializeAt sets the global paths under dir and creates it
func InitializeAt(dir string) error {
	ConfigDir = dir
	LogFile = filepath.Join(ConfigDir, "relaydash.log")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	DatabasePath = filepath.Join(ConfigDir, "relaydash.db")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}
	return nil
}

// NewLoader returns a viper instance with defaults and environment binding
func NewLoader() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeySession, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyMessageTimeout, DefaultMessageTimeout)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyHistory, true)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds each known key to the flag of the same name (dashes for underscores)
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{KeyBaseURL, KeySession, KeyLogFile, KeyDebug, KeyMessageTimeout, KeyHTTPTimeout, KeyTimezone, KeyHistory} {
		flagName := strings.ReplaceAll(key, "_", "-")
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// ReadFile merges a config file into v. YAML and JSON go straight to viper;
// JSONC is normalised to JSON first.
func ReadFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	case ".jsonc":
		v.SetConfigType("json")
		data = jsonc.ToJSON(data)
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// FindConfigFile returns the first config file present in ConfigDir, or ""
func FindConfigFile() string {
	if ConfigDir == "" {
		return ""
	}
	for _, name := range configBaseNames {
		path := filepath.Join(ConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Resolve reads the final settings out of v
func Resolve(v *viper.Viper) (*Settings, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyBaseURL)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%s must start with http:// or https://, got %q", KeyBaseURL, baseURL)
	}

	location := time.Local
	if tz := strings.TrimSpace(v.GetString(KeyTimezone)); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", KeyTimezone, tz, err)
		}
		location = loaded
	}

	logFile := strings.TrimSpace(v.GetString(KeyLogFile))
	if logFile == "" {
		logFile = LogFile
	}

	messageTimeout := v.GetDuration(KeyMessageTimeout)
	if messageTimeout < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyMessageTimeout)
	}
	httpTimeout := v.GetDuration(KeyHTTPTimeout)
	if httpTimeout < 0 {
		return nil, fmt.Errorf("%s must not be negative", KeyHTTPTimeout)
	}

	return &Settings{
		BaseURL:        baseURL,
		Session:        strings.TrimSpace(v.GetString(KeySession)),
		LogFile:        logFile,
		Debug:          v.GetBool(KeyDebug),
		MessageTimeout: messageTimeout,
		HTTPTimeout:    httpTimeout,
		Location:       location,
		History:        v.GetBool(KeyHistory),
	}, nil
}

// Load resolves settings from defaults, the config file (explicit path or the
// first one found in ConfigDir), the environment and bound flags
func Load(configPath string, flags *pflag.FlagSet) (*Settings, error) {
	v := NewLoader()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		if err := ReadFile(v, configPath); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return Resolve(v)
}
