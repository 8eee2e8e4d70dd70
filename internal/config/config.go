package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cnodash/internal/dataset"
	"github.com/KaramelBytes/cnodash/internal/utils"
)

// Global configuration structure.
type Global struct {
	AreasPath    string `mapstructure:"areas_path" yaml:"areas_path"`
	RegistryPath string `mapstructure:"registry_path" yaml:"registry_path"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`

	// Dashboard server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	CacheSize  int    `mapstructure:"cache_size" yaml:"cache_size"`
	Watch      bool   `mapstructure:"watch" yaml:"watch"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

const dirName = ".cnodash"

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"areas_path", "registry_path", "encoding", "delimiter",
	"listen_addr", "cache_size", "watch", "log_level", "log_format",
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cnodash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
// A .env file in the working directory feeds the environment when present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CNODASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("areas_path", "cno_areas.csv")
	v.SetDefault("registry_path", "cno.csv")
	v.SetDefault("encoding", "latin1")
	v.SetDefault("delimiter", ",")
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("cache_size", 16)
	v.SetDefault("watch", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate reports the first setting that cannot drive a pass.
func (c *Global) Validate() error {
	if strings.TrimSpace(c.AreasPath) == "" {
		return errors.New("areas_path is required")
	}
	if strings.TrimSpace(c.RegistryPath) == "" {
		return errors.New("registry_path is required")
	}
	if _, err := dataset.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// DelimiterRune decodes the delimiter setting. "tab" and `\t` name a tab.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r, nil
}

// ReadOptions converts the settings into loader options.
func (c *Global) ReadOptions() (dataset.ReadOptions, error) {
	d, err := c.DelimiterRune()
	if err != nil {
		return dataset.ReadOptions{}, err
	}
	return dataset.ReadOptions{Encoding: c.Encoding, Delimiter: d}, nil
}
