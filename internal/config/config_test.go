package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Dictionary: DictionaryConfig{
			SourceURL: DefaultSourceURL,
			Timeout:   30 * time.Second,
			UserAgent: "isvdict",
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			Directory: DefaultCacheDirectory(),
			MaxAge:    168 * time.Hour,
			Database: DatabaseConfig{
				Port: 3306,
			},
		},
		Output: OutputConfig{
			Format: "human",
			Color:  true,
		},
	}
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"ISVDICT_SOURCE_URL", "ISVDICT_CACHE_DIR", "ISVDICT_DB_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name: "valid config file with custom values",
			configContent: `dictionary:
  source_url: https://example.com/export?format=csv
  timeout: 5s
  user_agent: custom-agent
cache:
  backend: sqlite
  directory: custom/cache
  max_age: 12h
output:
  format: json
  color: false
search:
  fold_diacritics: true
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Dictionary = DictionaryConfig{
					SourceURL: "https://example.com/export?format=csv",
					Timeout:   5 * time.Second,
					UserAgent: "custom-agent",
				}
				cfg.Cache.Backend = BackendSQLite
				cfg.Cache.Directory = "custom/cache"
				cfg.Cache.MaxAge = 12 * time.Hour
				cfg.Output = OutputConfig{Format: "json", Color: false}
				cfg.Search.FoldDiacritics = true
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `dictionary:
  source_url: https://example.com
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown keys use defaults",
			configContent: `wrong_key:
  some_value: test
`,
			want: defaultConfig,
		},
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "mysql settings",
			configContent: `cache:
  backend: mysql
  database:
    host: db.example.com
    port: 3307
    username: isv
    database: dictionary
    tls: true
    params:
      charset: utf8mb4
    max_open_conns: 4
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Cache.Backend = BackendMySQL
				cfg.Cache.Database = DatabaseConfig{
					Host:         "db.example.com",
					Port:         3307,
					Username:     "isv",
					Database:     "dictionary",
					TLS:          true,
					Params:       map[string]string{"charset": "utf8mb4"},
					MaxOpenConns: 4,
				}
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `cache:
  directory: explicit/cache
  max_age: 0s
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Cache.Directory = "explicit/cache"
				cfg.Cache.MaxAge = 0
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					configPath = filepath.Join(tempDir, "config.yaml")
					err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}

				originalDir, err := os.Getwd()
				require.NoError(t, err)
				defer func() {
					err := os.Chdir(originalDir)
					require.NoError(t, err)
				}()

				err = os.Chdir(tempDir)
				require.NoError(t, err)
				configPath = ""
			}

			got, err := Load(configPath)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	got, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`dictionary:
  source_url: https://example.com/from-file
cache:
  directory: from-file
`), 0644))

	t.Setenv("ISVDICT_SOURCE_URL", "https://example.com/from-env")
	t.Setenv("ISVDICT_CACHE_DIR", filepath.Join(tempDir, "env-cache"))
	t.Setenv("ISVDICT_DB_PASSWORD", "secret")

	got, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/from-env", got.Dictionary.SourceURL)
	assert.Equal(t, filepath.Join(tempDir, "env-cache"), got.Cache.Directory)
	assert.Equal(t, "secret", got.Cache.Database.Password)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".env"), []byte("ISVDICT_DB_PASSWORD=from-dotenv\n"), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Chdir(originalDir))
	}()
	require.NoError(t, os.Chdir(tempDir))
	// godotenv does not override variables that are already set.
	require.NoError(t, os.Unsetenv("ISVDICT_DB_PASSWORD"))
	t.Cleanup(func() {
		_ = os.Unsetenv("ISVDICT_DB_PASSWORD")
	})

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", got.Cache.Database.Password)
}
