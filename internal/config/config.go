package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Dataset sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds the configuration settings for the restaurant finder.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the public web server.
// - HealthPort: The port of the monitoring server (/healthz, /metrics).
// - Provider: Geocoding provider settings.
// - Geocode: Timeout and retry settings for lookups.
// - Workers: The number of concurrent workers geocoding restaurant addresses.
// - Dataset: Where restaurants come from and how their coordinates are sourced.
// - DistanceMethod: geodesic or haversine.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env            string         `yaml:"env"`
	Port           int            `yaml:"port"`
	HealthPort     int            `yaml:"health_port"`
	Provider       ProviderConfig `yaml:"provider"`
	Geocode        GeocodeConfig  `yaml:"geocode"`
	Workers        int            `yaml:"workers"`
	Dataset        DatasetConfig  `yaml:"dataset"`
	DistanceMethod string         `yaml:"distance_method"`
	Database       PostgresConfig `yaml:"postgres"`
}

// ProviderConfig selects and configures the geocoding provider.
type ProviderConfig struct {
	Type      string `yaml:"type"`       // Type is nominatim or google.
	APIKey    string `yaml:"api_key"`    // APIKey is required by Google.
	BaseURL   string `yaml:"base_url"`   // BaseURL overrides the Nominatim search endpoint.
	UserAgent string `yaml:"user_agent"` // UserAgent identifies the service to Nominatim.
	RateLimit int    `yaml:"rate_limit"` // RateLimit is the number of requests per second.
}

// GeocodeConfig controls lookup timeouts and retries.
type GeocodeConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// DatasetConfig describes the restaurant dataset.
type DatasetConfig struct {
	Source           string `yaml:"source"`            // Source is file or postgres.
	Path             string `yaml:"path"`              // Path of the JSON file for the file source.
	CoordinatePolicy string `yaml:"coordinate_policy"` // CoordinatePolicy is address or dataset.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"db_name"`
}

// MustLoad reads the configuration from the environment, after loading a .env
// file when one is present. It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	env := newEnv()

	return &Config{
		Env:        env.GetString("env"),
		Port:       mustInt(env, "port", "failed to parse port for web server from configuration"),
		HealthPort: mustInt(env, "health_port", "failed to parse port for monitoring server from configuration"),
		Provider: ProviderConfig{
			Type:      env.GetString("provider_type"),
			APIKey:    env.GetString("provider_key"),
			BaseURL:   env.GetString("provider_url"),
			UserAgent: env.GetString("user_agent"),
			RateLimit: mustInt(env, "rate_limit", "failed to parse rate limit from configuration, must be an integer"),
		},
		Geocode: GeocodeConfig{
			Timeout:    mustDuration(env, "geocode_timeout", "failed to parse geocode timeout from configuration"),
			Attempts:   mustInt(env, "geocode_attempts", "failed to parse geocode attempts from configuration"),
			RetryDelay: mustDuration(env, "retry_delay", "failed to parse retry delay from configuration"),
		},
		Workers: mustInt(env, "workers", "failed to parse workers from configuration, must be an integer types"),
		Dataset: DatasetConfig{
			Source:           env.GetString("dataset_source"),
			Path:             env.GetString("dataset_path"),
			CoordinatePolicy: env.GetString("coordinate_policy"),
		},
		DistanceMethod: env.GetString("distance_method"),
		Database: PostgresConfig{
			Host:     env.GetString("db.host"),
			Port:     env.GetString("db.port"),
			User:     env.GetString("db.user"),
			Password: env.GetString("db.password"),
			Name:     env.GetString("db.name"),
		},
	}
}

// newEnv maps HESTIA_* variables and the shared DB_* ones onto viper keys.
func newEnv() *viper.Viper {
	env := viper.New()
	env.SetEnvPrefix("hestia")
	env.AutomaticEnv()

	env.SetDefault("env", "production")
	env.SetDefault("port", "5000")
	env.SetDefault("health_port", "8080")
	env.SetDefault("provider_type", "nominatim")
	env.SetDefault("rate_limit", "1")
	env.SetDefault("geocode_timeout", "10s")
	env.SetDefault("geocode_attempts", "3")
	env.SetDefault("retry_delay", "0s")
	env.SetDefault("workers", "1")
	env.SetDefault("dataset_source", SourceFile)
	env.SetDefault("dataset_path", "restaurants.json")
	env.SetDefault("coordinate_policy", "address")
	env.SetDefault("distance_method", "geodesic")
	env.SetDefault("db.port", "5432")

	_ = env.BindEnv("db.host", "DB_HOST")
	_ = env.BindEnv("db.port", "DB_PORT")
	_ = env.BindEnv("db.user", "DB_USERNAME")
	_ = env.BindEnv("db.password", "DB_PASSWORD")
	_ = env.BindEnv("db.name", "DB_NAME")

	return env
}

func mustInt(env *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(env.GetString(key))
	if err != nil {
		panic(msg)
	}

	return value
}

func mustDuration(env *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(env.GetString(key))
	if err != nil {
		panic(msg)
	}

	return value
}
