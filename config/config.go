package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the server and CLI need. Values come from an
// optional YAML file first and are then overridden by the environment.
type Config struct {
	Port            string        `yaml:"port"`
	DatabaseURL     string        `yaml:"database_url"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	DefaultDeviceID string        `yaml:"default_device_id"`
	LogLevel        string        `yaml:"log_level"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`

	ML      MLConfig      `yaml:"ml"`
	Weather WeatherConfig `yaml:"weather"`
	Disease DiseaseConfig `yaml:"disease"`
	Devices DevicesConfig `yaml:"devices"`
}

type MLConfig struct {
	BaseURL string `yaml:"base_url"`
}

type WeatherConfig struct {
	Mode      string  `yaml:"mode"` // static or api
	APIKey    string  `yaml:"api_key"`
	APIURL    string  `yaml:"api_url"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type DiseaseConfig struct {
	URL string `yaml:"url"`
}

type DevicesConfig struct {
	StaleAfter    time.Duration `yaml:"stale_after"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Port:            "8080",
		DatabaseURL:     "cropwise.db",
		TokenTTL:        24 * time.Hour,
		AllowOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		DefaultDeviceID: "Device_0001",
		LogLevel:        "info",
		HTTPTimeout:     15 * time.Second,
		ML: MLConfig{
			BaseURL: "http://127.0.0.1:5000",
		},
		Weather: WeatherConfig{
			Mode:   "static",
			APIURL: "http://api.weatherapi.com/v1/current.json",
		},
		Disease: DiseaseConfig{
			URL: "http://localhost:5000/api/analyze",
		},
		Devices: DevicesConfig{
			StaleAfter:    24 * time.Hour,
			SweepSchedule: "@every 10m",
		},
	}
}

// Load reads .env (if any), the YAML file at path (if non-empty and present)
// and finally the process environment.
func Load(path string) (*Config, error) {
	// Load environment variables
	godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.Weather.Mode == "api" && cfg.Weather.APIKey == "" {
		return nil, errors.New("weather mode is api but WEATHER_API_KEY is not set")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.DefaultDeviceID, "DEFAULT_DEVICE_ID")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.ML.BaseURL, "ML_BASE_URL")
	setString(&c.Disease.URL, "DISEASE_API_URL")
	setString(&c.Weather.APIURL, "WEATHER_API_URL")
	if key := os.Getenv("WEATHER_API_KEY"); key != "" {
		c.Weather.APIKey = key
		c.Weather.Mode = "api"
	}
	setString(&c.Weather.Mode, "WEATHER_MODE")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.AllowOrigins = strings.Split(origins, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
