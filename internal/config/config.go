package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSourceURL is the CSV export of the community-maintained Interslavic dictionary sheet.
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/1N79e_yVHDo-d026HljueuKJlAAdeELAiPzdFzdBuKbY/export?format=csv&gid=1987833874"

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

type Config struct {
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Output     OutputConfig     `mapstructure:"output"`
	Search     SearchConfig     `mapstructure:"search"`
}

type DictionaryConfig struct {
	SourceURL string        `mapstructure:"source_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend" validate:"oneof=file sqlite mysql"`
	Directory string `mapstructure:"directory" validate:"required_unless=Backend mysql,notfile"`
	// MaxAge of zero means the cache never expires.
	MaxAge   time.Duration  `mapstructure:"max_age" validate:"gte=0"`
	Database DatabaseConfig `mapstructure:"database" validate:"-"`
}

// DatabaseConfig is only used by the mysql backend.
type DatabaseConfig struct {
	Host            string            `mapstructure:"host" validate:"required"`
	Port            int               `mapstructure:"port" validate:"gt=0,lte=65535"`
	Username        string            `mapstructure:"username" validate:"required"`
	Password        string            `mapstructure:"password"`
	Database        string            `mapstructure:"database" validate:"required"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=human json yaml"`
	Color  bool   `mapstructure:"color"`
}

type SearchConfig struct {
	FoldDiacritics bool `mapstructure:"fold_diacritics"`
}

// DefaultCacheDirectory returns the interslavic directory under the user cache directory.
func DefaultCacheDirectory() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "interslavic")
	}
	return filepath.Join(dir, "interslavic")
}

func Load(configFile string) (*Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("configuration file %s could not be read: %w", configFile, err)
		}
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/isvdict")
	}

	v.SetDefault("dictionary.source_url", DefaultSourceURL)
	v.SetDefault("dictionary.timeout", 30*time.Second)
	v.SetDefault("dictionary.user_agent", "isvdict")
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.directory", DefaultCacheDirectory())
	v.SetDefault("cache.max_age", 7*24*time.Hour)
	v.SetDefault("cache.database.port", 3306)
	v.SetDefault("output.format", "human")
	v.SetDefault("output.color", true)
	v.SetDefault("search.fold_diacritics", false)

	if err := v.BindEnv("dictionary.source_url", "ISVDICT_SOURCE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind ISVDICT_SOURCE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("cache.directory", "ISVDICT_CACHE_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind ISVDICT_CACHE_DIR environment variable: %w", err)
	}
	if err := v.BindEnv("cache.database.password", "ISVDICT_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind ISVDICT_DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return &cfg, nil
}
