package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"RetailPOS/app/security"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Auth     AuthConfig     `json:"auth"`
	Checkout CheckoutConfig `json:"checkout"`
	Sheets   SheetsConfig   `json:"sheets"`
	Logging  LoggingConfig  `json:"logging"`
	Business BusinessConfig `json:"business"`
}

// DatabaseConfig selects and configures the storage behind the persistence port
type DatabaseConfig struct {
	Driver   string `json:"driver"` // "sqlite", "postgres" or "memory"
	Path     string `json:"path"`   // sqlite file, relative paths resolve under the data dir
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// ServerConfig holds HTTP and discovery settings
type ServerConfig struct {
	Port         string `json:"port"`
	AnnounceMDNS bool   `json:"announce_mdns"`
}

// AuthConfig holds API token settings
type AuthConfig struct {
	JWTSecret  string `json:"jwt_secret"`
	TokenHours int    `json:"token_hours"`
}

// CheckoutConfig holds the sale finalization policies
type CheckoutConfig struct {
	StrictStock   bool `json:"strict_stock"`   // Reject sales that would drive stock negative
	AccrueLoyalty bool `json:"accrue_loyalty"` // Credit points and purchases to the customer on sale
}

// SheetsConfig holds Google Sheets report sync settings
type SheetsConfig struct {
	Enabled         bool   `json:"enabled"`
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetName       string `json:"sheet_name"`
	Credentials     string `json:"credentials"` // Service account JSON
	SyncMode        string `json:"sync_mode"`   // "interval" or "daily"
	SyncTime        string `json:"sync_time"`   // HH:MM, daily mode only
	IntervalMinutes int    `json:"interval_minutes"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level    string `json:"level"`
	Dir      string `json:"dir"`
	KeepDays int    `json:"keep_days"`
}

// BusinessConfig seeds the settings singleton on first run
type BusinessConfig struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	dir, err := security.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Default returns the configuration used when no config file exists
func Default() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "retail.db",
			Host:     "localhost",
			Port:     5432,
			Database: "retail_pos",
			Username: "postgres",
			SSLMode:  "disable",
		},
		Server: ServerConfig{
			Port:         "8080",
			AnnounceMDNS: false,
		},
		Auth: AuthConfig{
			TokenHours: 12,
		},
		Sheets: SheetsConfig{
			SheetName:       "Reports",
			SyncMode:        "interval",
			SyncTime:        "23:00",
			IntervalMinutes: 60,
		},
		Logging: LoggingConfig{
			Level:    "info",
			KeepDays: 30,
		},
		Business: BusinessConfig{
			Name:     "Pork Shop Premium",
			Currency: "฿",
		},
	}
}

// LoadConfig reads config.json over the defaults and opens its sealed secrets
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	vault, err := security.DefaultVault()
	if err != nil {
		return nil, err
	}
	if err := cfg.openSecrets(vault); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to config.json with its secrets sealed
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	vault, err := security.DefaultVault()
	if err != nil {
		return err
	}
	sealed := *cfg
	if err := sealed.sealSecrets(vault); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&sealed, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// ConfigExists reports whether config.json has been written
func ConfigExists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}
	switch _, err := os.Stat(configPath); {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// LoadOrCreate loads config.json, writing the defaults first when it does
// not exist yet. Environment overrides are applied to the result but never
// written back.
func LoadOrCreate() (*AppConfig, error) {
	exists, err := ConfigExists()
	if err != nil {
		return nil, err
	}

	var cfg *AppConfig
	if exists {
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	} else {
		cfg = Default()
		if err := SaveConfig(cfg); err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overrides config values from environment variables
func ApplyEnv(cfg *AppConfig) {
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Database, "DB_NAME")
	setString(&cfg.Database.Username, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")

	setString(&cfg.Server.Port, "HTTP_PORT")
	setBool(&cfg.Server.AnnounceMDNS, "ANNOUNCE_MDNS")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setInt(&cfg.Auth.TokenHours, "JWT_TOKEN_HOURS")

	setBool(&cfg.Checkout.StrictStock, "STRICT_STOCK")
	setBool(&cfg.Checkout.AccrueLoyalty, "ACCRUE_LOYALTY")

	setBool(&cfg.Sheets.Enabled, "SHEETS_ENABLED")
	setString(&cfg.Sheets.SpreadsheetID, "SHEETS_SPREADSHEET_ID")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Dir, "LOG_DIR")
}

// ResolvePath returns p unchanged when absolute, otherwise joined to the data dir
func ResolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := security.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// secrets lists the fields stored sealed in config.json
func (cfg *AppConfig) secrets() map[string]*string {
	return map[string]*string{
		"database password":  &cfg.Database.Password,
		"jwt secret":         &cfg.Auth.JWTSecret,
		"sheets credentials": &cfg.Sheets.Credentials,
	}
}

func (cfg *AppConfig) sealSecrets(v *security.Vault) error {
	for name, field := range cfg.secrets() {
		sealed, err := v.Seal(*field)
		if err != nil {
			return fmt.Errorf("could not seal %s: %w", name, err)
		}
		*field = sealed
	}
	return nil
}

// openSecrets decrypts sealed fields. Plain values are kept as they are.
func (cfg *AppConfig) openSecrets(v *security.Vault) error {
	for name, field := range cfg.secrets() {
		plain, err := v.OpenOrPlain(*field)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", name, err)
		}
		*field = plain
	}
	return nil
}
