package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"simpletasks/pkg/keymaps"
)

// EnvPrefix prefixes every environment override, e.g. SIMPLETASKS_BACKEND or
// SIMPLETASKS_REMOTE_URL.
const EnvPrefix = "SIMPLETASKS"

// RemoteConfig selects and configures the remote record service
type RemoteConfig struct {
	Driver               string        `mapstructure:"driver" json:"driver"`
	URL                  string        `mapstructure:"url" json:"url"`
	ProjectID            string        `mapstructure:"project_id" json:"project_id"`
	PublicKey            string        `mapstructure:"public_key" json:"public_key"`
	PostgresDSN          string        `mapstructure:"postgres_dsn" json:"postgres_dsn"`
	TasksCollection      string        `mapstructure:"tasks_collection" json:"tasks_collection"`
	CategoriesCollection string        `mapstructure:"categories_collection" json:"categories_collection"`
	Timeout              time.Duration `mapstructure:"timeout" json:"-"`
}

// Config holds the application configuration
type Config struct {
	Backend    string            `mapstructure:"backend" json:"backend"`
	Storage    string            `mapstructure:"storage" json:"storage"`
	Database   string            `mapstructure:"database" json:"database"`
	DataFile   string            `mapstructure:"data_file" json:"data_file"`
	KeyMap     map[string]string `mapstructure:"keymap" json:"keymap"`
	StylesFile string            `mapstructure:"styles_file" json:"styles_file"`
	LogFile    string            `mapstructure:"log_file" json:"log_file"`
	Remote     RemoteConfig      `mapstructure:"remote" json:"remote"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `json:"border_color"`
	AccentColor string `json:"accent_color"`

	// Text colors
	NormalTextColor   string `json:"normal_text_color"`
	SelectedTextColor string `json:"selected_text_color"`
	SelectedBgColor   string `json:"selected_bg_color"`
	ErrorColor        string `json:"error_color"`
	MutedColor        string `json:"muted_color"`
	DoneColor         string `json:"done_color"`
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		MutedColor:        "245",
		DoneColor:         "2",
	}
}

// Dir returns the directory holding config, styles and the default database.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "simpletasks"), nil
}

func defaults(dir string) Config {
	return Config{
		Backend:    "local",
		Storage:    "sqlite",
		Database:   filepath.Join(dir, "tasks.db"),
		DataFile:   filepath.Join(dir, "tasks.json"),
		KeyMap:     keymaps.GetDefaultKeyMappings(),
		StylesFile: filepath.Join(dir, "styles.json"),
		Remote: RemoteConfig{
			Driver:               "http",
			TasksCollection:      "tasks",
			CategoriesCollection: "categories",
			Timeout:              15 * time.Second,
		},
	}
}

// Load reads the configuration. A .env file in the working directory is
// applied to the environment first, then the JSON config file (created with
// defaults when missing), then SIMPLETASKS_* environment overrides.
func Load(configPath string) (Config, Styles, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, Styles{}, fmt.Errorf("error loading .env: %w", err)
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, Styles{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(dir, "config.json")
	}
	config := defaults(dir)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		if !isNotExist(err) {
			return config, Styles{}, fmt.Errorf("error reading config: %w", err)
		}
		// If the file doesn't exist, create it with default values
		if err := writeJSON(configPath, config); err != nil {
			return config, Styles{}, err
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, Styles{}, fmt.Errorf("error decoding config: %w", err)
	}
	config.Database = expandHome(config.Database)
	config.DataFile = expandHome(config.DataFile)
	config.StylesFile = expandHome(config.StylesFile)
	config.LogFile = expandHome(config.LogFile)

	if err := config.Validate(); err != nil {
		return config, Styles{}, err
	}

	// Now load the styles file
	styles, err := loadStyles(config.StylesFile)
	if err != nil {
		return config, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return config, styles, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// config file does not mention.
func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("backend", c.Backend)
	v.SetDefault("storage", c.Storage)
	v.SetDefault("database", c.Database)
	v.SetDefault("data_file", c.DataFile)
	v.SetDefault("keymap", c.KeyMap)
	v.SetDefault("styles_file", c.StylesFile)
	v.SetDefault("log_file", c.LogFile)
	v.SetDefault("remote.driver", c.Remote.Driver)
	v.SetDefault("remote.url", c.Remote.URL)
	v.SetDefault("remote.project_id", c.Remote.ProjectID)
	v.SetDefault("remote.public_key", c.Remote.PublicKey)
	v.SetDefault("remote.postgres_dsn", c.Remote.PostgresDSN)
	v.SetDefault("remote.tasks_collection", c.Remote.TasksCollection)
	v.SetDefault("remote.categories_collection", c.Remote.CategoriesCollection)
	v.SetDefault("remote.timeout", c.Remote.Timeout.String())
}

// Validate rejects unknown backend, storage and driver names.
func (c Config) Validate() error {
	switch c.Backend {
	case "local":
		switch c.Storage {
		case "sqlite", "file", "memory":
		default:
			return fmt.Errorf("unknown storage %q (want sqlite, file or memory)", c.Storage)
		}
	case "remote":
		switch c.Remote.Driver {
		case "http":
			if c.Remote.URL == "" {
				return errors.New("remote.url is required for the http driver")
			}
		case "postgres":
			if c.Remote.PostgresDSN == "" {
				return errors.New("remote.postgres_dsn is required for the postgres driver")
			}
		case "memory":
		default:
			return fmt.Errorf("unknown remote driver %q (want http, postgres or memory)", c.Remote.Driver)
		}
	default:
		return fmt.Errorf("unknown backend %q (want local or remote)", c.Backend)
	}
	return nil
}

// StoragePath returns the path for the configured local storage kind.
func (c Config) StoragePath() string {
	if c.Storage == "file" {
		return c.DataFile
	}
	return c.Database
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadStyles loads the application styles from the specified path
func loadStyles(stylesPath string) (Styles, error) {
	defaultStyles := DefaultStyles()

	stylesData, err := os.ReadFile(stylesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultStyles, writeJSON(stylesPath, defaultStyles)
		}
		return defaultStyles, err
	}

	// Missing keys keep their default color
	loadedStyles := defaultStyles
	if err := json.Unmarshal(stylesData, &loadedStyles); err != nil {
		return defaultStyles, err
	}

	return loadedStyles, nil
}
