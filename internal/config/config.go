package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	LogMode       bool   `mapstructure:"log_mode"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"`
	MaxIdleConns  int    `mapstructure:"max_idle_conns"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

type AppConfig struct {
	BootstrapAdmins []string `mapstructure:"bootstrap_admins"`
	Categories      []string `mapstructure:"categories"`
	DefaultLimit    int      `mapstructure:"default_limit"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Upload   UploadConfig   `mapstructure:"upload"`
	App      AppConfig      `mapstructure:"app"`
}

// defaultCategories is used when the config file does not define its own
// spending category list.
var defaultCategories = []string{
	"Food, Dining & Entertainment",
	"Auto, Commute & Travel",
	"Shopping",
	"Bills & Subscriptions",
	"Family & Pets",
	"Other Expenses",
	"Health & Personal Care",
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory. The returned Config is built once at startup and passed by
// reference into each component.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. PTM_SERVER_PORT=9000
	v.SetEnvPrefix("PTM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(c.App.Categories) == 0 {
		c.App.Categories = defaultCategories
	}
	if c.App.DefaultLimit <= 0 {
		c.App.DefaultLimit = 50
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 12
	}
	if c.Upload.MaxSizeMB <= 0 {
		c.Upload.MaxSizeMB = 16
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 8
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 4
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = 5000
	}

	return &c, nil
}
