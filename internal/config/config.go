package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	ServerURL string `json:"server_url" env:"FOCUSGUARD_SERVER_URL" validate:"required,url"`
	DataDir   string `json:"data_dir" env:"FOCUSGUARD_DATA_DIR" validate:"required"`
	LogLevel  string `json:"log_level" env:"FOCUSGUARD_LOG_LEVEL"`
	Sync      struct {
		PollIntervalSecs int `json:"poll_interval_secs" validate:"min=1"`
		DebounceTicks    int `json:"debounce_ticks" validate:"min=1"`
		MinSessionSecs   int `json:"min_session_secs" validate:"min=0"`
	} `json:"sync"`
	Policy struct {
		FreeCapSecs int `json:"free_cap_secs" validate:"min=60"`
	} `json:"policy"`
	History struct {
		MaxEntries     int `json:"max_entries" validate:"min=1"`
		RetentionHours int `json:"retention_hours" validate:"min=1"`
	} `json:"history"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
	Telegram struct {
		Token  string `json:"token" env:"FOCUSGUARD_TELEGRAM_TOKEN"`
		ChatID int64  `json:"chat_id" env:"FOCUSGUARD_TELEGRAM_CHAT_ID"`
	} `json:"telegram"`
}

var validate = validator.New()

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	cfg := &Config{
		ServerURL: "http://localhost:5000",
		DataDir:   filepath.Join(os.Getenv("HOME"), ".focusguard"),
		LogLevel:  "info",
	}
	cfg.Sync.PollIntervalSecs = 2
	cfg.Sync.DebounceTicks = 5
	cfg.Sync.MinSessionSecs = 60
	cfg.Policy.FreeCapSecs = 3600
	cfg.History.MaxEntries = 50
	cfg.History.RetentionHours = 24
	cfg.HTTP.Listen = "127.0.0.1:7319"
	return cfg
}

// Load reads the config file at path, writing defaults first if it does not
// exist, then applies environment variable overrides (highest precedence)
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the config atomically (temp file then rename).
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ListValues returns the config as a flat dot-separated key map, masking
// secrets when mask is true.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, err
	}
	flat := Flatten(nested)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue loads the config file and returns the value at the given
// dot-separated key.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue loads the config file, sets the value at the given dot-separated
// key, and saves the result. The value is parsed as JSON where possible so
// numbers and booleans round-trip with their proper types.
func SetValue(path, key, value string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return err
	}
	if _, ok := flat[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	flat[key] = parsed

	nested := Unflatten(flat)
	data, err := json.Marshal(nested)
	if err != nil {
		return err
	}
	updated := Defaults()
	if err := json.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("apply config value: %w", err)
	}
	if err := validate.Struct(updated); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return Save(path, updated)
}
