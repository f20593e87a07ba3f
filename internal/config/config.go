package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

const (
	BackendWorkbook = "workbook"
	BackendPostgres = "postgres"

	defaultVATRate = 12.0
)

type HTTPConfig struct {
	Host string
	Port int
}

type SheetsConfig struct {
	Backend      string
	WorkbookPath string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type QuotesConfig struct {
	Currency       string
	VATRate        float64
	CompanyName    string
	CompanyTagline string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Sheets      SheetsConfig
	DB          DBConfig
	Auth        AuthConfig
	Quotes      QuotesConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	// Zero is a valid VAT rate, so the default only applies when the
	// variable is absent entirely.
	vatRate := defaultVATRate
	if raw := v.GetString("QUOTES_VAT_RATE"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid QUOTES_VAT_RATE: %v", err)
		}
		vatRate = parsed
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Sheets: SheetsConfig{
			Backend:      v.GetString("SHEETS_BACKEND"),
			WorkbookPath: v.GetString("SHEETS_WORKBOOK_PATH"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Quotes: QuotesConfig{
			Currency:       v.GetString("QUOTES_CURRENCY"),
			VATRate:        vatRate,
			CompanyName:    v.GetString("QUOTES_COMPANY_NAME"),
			CompanyTagline: v.GetString("QUOTES_COMPANY_TAGLINE"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment. The CLI runs against a local workbook with it.
func Default() *Config {
	cfg := &Config{Quotes: QuotesConfig{VATRate: defaultVATRate}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Sheets.Backend == "" {
		cfg.Sheets.Backend = BackendWorkbook
	}
	if cfg.Sheets.WorkbookPath == "" {
		cfg.Sheets.WorkbookPath = "quotations.xlsx"
	}
	if cfg.Quotes.Currency == "" {
		cfg.Quotes.Currency = "PHP"
	}
	if cfg.Quotes.CompanyName == "" {
		cfg.Quotes.CompanyName = "aNTS Technologies, Inc."
	}
	if cfg.Quotes.CompanyTagline == "" {
		cfg.Quotes.CompanyTagline = "Solutions for a Small Planet"
	}
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Sheets.Backend {
	case BackendWorkbook:
	case BackendPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required when SHEETS_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("SHEETS_BACKEND must be %q or %q", BackendWorkbook, BackendPostgres)
	}
	if cfg.Quotes.VATRate < 0 {
		return fmt.Errorf("QUOTES_VAT_RATE must not be negative")
	}
	return nil
}
