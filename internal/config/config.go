package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Organization sources.
const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
	SourceFile     = "file"
)

// Geocoding providers.
const (
	GeocoderNominatim = "nominatim"
	GeocoderORS       = "ors"
)

type Config struct {
	Port         uint          `envconfig:"PORT" default:"8080"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"LOG_FORMAT" default:"json"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// Organization store
	OrgSource       string `envconfig:"ORG_SOURCE" default:"sqlite"`
	DBPath          string `envconfig:"DB_PATH" default:"data/app.db"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	MongoURI        string `envconfig:"MONGODB_URI"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"leftoverlink"`
	SeedPath        string `envconfig:"SEED_PATH" default:"data/seeds/organizations.yaml"`
	RefreshSchedule string `envconfig:"REFRESH_SCHEDULE" default:"@every 15m"`

	// Reload notifications; disabled when RedisURL is empty.
	RedisURL      string `envconfig:"REDIS_URL"`
	ReloadChannel string `envconfig:"RELOAD_CHANNEL" default:"organizations:reload"`

	// Geocoding
	Geocoder          string        `envconfig:"GEOCODER" default:"nominatim"`
	NominatimURL      string        `envconfig:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string        `envconfig:"GEOCODER_USER_AGENT" default:"donation-matching-service"`
	ORSAPIKey         string        `envconfig:"ORS_API_KEY"`
	GeocodeTimeout    time.Duration `envconfig:"GEOCODE_TIMEOUT" default:"10s"`

	TopN int `envconfig:"TOP_N" default:"5"`
}

// Load reads an optional .env file and then the process environment.
func Load(logger logrus.FieldLogger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	c := new(Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks that the selected source and geocoder are fully configured.
func (c *Config) Validate() error {
	c.OrgSource = strings.ToLower(strings.TrimSpace(c.OrgSource))
	c.Geocoder = strings.ToLower(strings.TrimSpace(c.Geocoder))

	switch c.OrgSource {
	case SourceSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("set DB_PATH")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("set DATABASE_URL")
		}
	case SourceMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return errors.New("set MONGODB_URI")
		}
	case SourceFile:
		if strings.TrimSpace(c.SeedPath) == "" {
			return errors.New("set SEED_PATH")
		}
	default:
		return fmt.Errorf("unknown ORG_SOURCE %q", c.OrgSource)
	}

	switch c.Geocoder {
	case GeocoderNominatim:
	case GeocoderORS:
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return errors.New("set ORS_API_KEY")
		}
	default:
		return fmt.Errorf("unknown GEOCODER %q", c.Geocoder)
	}

	if c.GeocodeTimeout <= 0 {
		return errors.New("GEOCODE_TIMEOUT must be positive")
	}

	if c.TopN < 1 {
		return errors.New("TOP_N must be at least 1")
	}

	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(c.LogFormat) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger, nil
}
