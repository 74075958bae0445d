package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	APITitle       = "SDO Documents API"
	APIDescription = "API for accessing Solar Dynamics Observatory research documents extracted from the NASA ADS database."
	APIVersion     = "1.0.0"

	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	APIHost string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort int    `envconfig:"API_PORT" default:"8000"`
	Debug   bool   `envconfig:"DEBUG" default:"false"`

	// "postgres" oder "sqlite"
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"sdo"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"database/sdo_papers_2010_2024.db"`

	// Link-Gateway und Abstract-Seiten von NASA ADS
	ADSGatewayBase string `envconfig:"ADS_GATEWAY_BASE" default:"https://ui.adsabs.harvard.edu/link_gateway"`
	ADSAbsBase     string `envconfig:"ADS_ABS_BASE" default:"https://ui.adsabs.harvard.edu/abs"`
	ADSAPIBase     string `envconfig:"ADS_API_BASE" default:"https://api.adsabs.harvard.edu/v1"`
	ADSAPIKey      string `envconfig:"NASA_ADS_API_KEY"`

	PDFFetchTimeout time.Duration `envconfig:"PDF_FETCH_TIMEOUT" default:"30s"`
	PDFMaxBytes     int64         `envconfig:"PDF_MAX_BYTES" default:"104857600"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Addr gibt die Listen-Adresse des HTTP-Servers zurück.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", c.DBDriver)
	}
	return &c, nil
}
