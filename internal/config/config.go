package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
	UI     UIConfig     `mapstructure:"ui"`
}

// APIConfig holds settings for the external Cosmere API
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Dedupe   bool          `mapstructure:"dedupe"`
	PageSize int           `mapstructure:"page_size"`
}

// SearchConfig holds type-ahead settings
type SearchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MinChars    int           `mapstructure:"min_chars"`
	Suggestions int           `mapstructure:"suggestions"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UIConfig holds terminal UI preferences
type UIConfig struct {
	Mouse    bool `mapstructure:"mouse"`
	Markdown bool `mapstructure:"markdown"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if dir := os.Getenv("COSMERE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cosmere")
}

// GetDBPath returns the local storage database path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "cosmere.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5240/api/v1")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.dedupe", true)
	v.SetDefault("api.page_size", 20)
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("search.min_chars", 2)
	v.SetDefault("search.suggestions", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(GetConfigDir(), "cosmere.log"))
	v.SetDefault("ui.mouse", true)
	v.SetDefault("ui.markdown", true)
}

// Init initializes the configuration
func Init(cfgFile string) error {
	viper.Reset()
	SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix("COSMERE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		c, err := Decode(viper.GetViper())
		if err != nil {
			c = &Config{}
		}
		cfg = c
	}
	return cfg
}

// Decode unmarshals v into a Config and normalizes it.
func Decode(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.PageSize <= 0 {
		c.API.PageSize = 20
	}
	if c.Search.MinChars <= 0 {
		c.Search.MinChars = 2
	}
	c.Log.File = expandPath(c.Log.File)
	return c, nil
}

// Set sets a configuration value
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

// Keys lists every known configuration key in sorted order
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
