// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port        string      `mapstructure:"PORT" yaml:"port"`
	Version     string      `mapstructure:"VERSION" yaml:"version"`
}

// ExternalServices holds API keys for external providers. Any of these may be
// empty: the corresponding tool degrades to a descriptive message instead of
// calling the provider.
type ExternalServices struct {
	GoogleMapsKey   string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	OpenAQKey       string `mapstructure:"OPENAQ_API_KEY"`
	OpenAIKey       string `mapstructure:"OPENAI_API_KEY"`
	AmadeusKey      string `mapstructure:"AMADEUS_API_KEY"`
	AmadeusSecret   string `mapstructure:"AMADEUS_API_SECRET"`
	NominatimAgent  string `mapstructure:"NOMINATIM_USER_AGENT"`
	GenerationModel string `mapstructure:"GENERATION_MODEL"`
}

// AirQualityConfig holds the TLS behavior flags for the air-quality path and
// the strategy selection escape hatch. The flags form an ordered policy
// ladder evaluated once per fetch; see internal/httpclient.
type AirQualityConfig struct {
	ForceJSON            bool   `mapstructure:"FORCE_JSON" yaml:"force_json"`
	AllowInsecure        bool   `mapstructure:"ALLOW_INSECURE" yaml:"allow_insecure"`
	AutoAcceptUnverified bool   `mapstructure:"AUTO_ACCEPT_UNVERIFIED" yaml:"auto_accept_unverified"`
	CaptureChain         bool   `mapstructure:"CAPTURE_CHAIN" yaml:"capture_chain"`
	ChainFile            string `mapstructure:"CHAIN_FILE" yaml:"chain_file"`
}

// PricingConfig holds stay parameters for real-time hotel pricing lookups.
type PricingConfig struct {
	CheckinOffsetDays int `mapstructure:"CHECKIN_OFFSET_DAYS" yaml:"checkin_offset_days"`
	StayNights        int `mapstructure:"STAY_NIGHTS" yaml:"stay_nights"`
}

// EmissionsConfig locates the static emission-factor table.
type EmissionsConfig struct {
	FactorsPath string `mapstructure:"FACTORS_PATH" yaml:"factors_path"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server           ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	ExternalServices ExternalServices `mapstructure:"EXTERNAL_SERVICES" yaml:"external_services"`
	AirQuality       AirQualityConfig `mapstructure:"AIR_QUALITY" yaml:"air_quality"`
	Pricing          PricingConfig    `mapstructure:"PRICING" yaml:"pricing"`
	Emissions        EmissionsConfig  `mapstructure:"EMISSIONS" yaml:"emissions"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, unmarshals into the Config struct, and validates it.
// Missing provider keys are logged but never fatal: the affected tools
// degrade to descriptive strings at call time.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.VERSION", "0.1.0")
	v.SetDefault("EXTERNAL_SERVICES.NOMINATIM_USER_AGENT", "ecovoyage-backend/0.1")
	v.SetDefault("EXTERNAL_SERVICES.GENERATION_MODEL", "gpt-4o-mini")
	v.SetDefault("AIR_QUALITY.CHAIN_FILE", "openmeteo_cert.pem")
	v.SetDefault("PRICING.CHECKIN_OFFSET_DAYS", 7)
	v.SetDefault("PRICING.STAY_NIGHTS", 1)
	v.SetDefault("EMISSIONS.FACTORS_PATH", "data/emission_factors.csv")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.VERSION", "VERSION"},
		// External services
		{"EXTERNAL_SERVICES.GOOGLE_MAPS_API_KEY", "GOOGLE_MAPS_API_KEY"},
		{"EXTERNAL_SERVICES.OPENAQ_API_KEY", "OPENAQ_API_KEY"},
		{"EXTERNAL_SERVICES.OPENAI_API_KEY", "OPENAI_API_KEY"},
		{"EXTERNAL_SERVICES.AMADEUS_API_KEY", "AMADEUS_API_KEY"},
		{"EXTERNAL_SERVICES.AMADEUS_API_SECRET", "AMADEUS_API_SECRET"},
		{"EXTERNAL_SERVICES.NOMINATIM_USER_AGENT", "NOMINATIM_USER_AGENT"},
		{"EXTERNAL_SERVICES.GENERATION_MODEL", "GENERATION_MODEL"},
		// Air quality TLS policy flags (kept compatible with the original
		// OPENMETEO_* environment surface)
		{"AIR_QUALITY.FORCE_JSON", "OPENMETEO_FORCE_JSON"},
		{"AIR_QUALITY.ALLOW_INSECURE", "OPENMETEO_ALLOW_INSECURE"},
		{"AIR_QUALITY.AUTO_ACCEPT_UNVERIFIED", "OPENMETEO_AUTO_ACCEPT_UNVERIFIED"},
		{"AIR_QUALITY.CAPTURE_CHAIN", "OPENMETEO_CAPTURE_CHAIN"},
		{"AIR_QUALITY.CHAIN_FILE", "OPENMETEO_CHAIN_FILE"},
		// Pricing config
		{"PRICING.CHECKIN_OFFSET_DAYS", "AMADEUS_CHECKIN_OFFSET_DAYS"},
		{"PRICING.STAY_NIGHTS", "AMADEUS_STAY_NIGHTS"},
		// Emissions config
		{"EMISSIONS.FACTORS_PATH", "EMISSION_FACTORS_PATH"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"maps_key", logger.MaskAPIKey(cfg.ExternalServices.GoogleMapsKey),
		"openaq_key", logger.MaskAPIKey(cfg.ExternalServices.OpenAQKey),
		"amadeus_key", logger.MaskAPIKey(cfg.ExternalServices.AmadeusKey),
		"force_json", cfg.AirQuality.ForceJSON,
		"checkin_offset_days", cfg.Pricing.CheckinOffsetDays,
		"stay_nights", cfg.Pricing.StayNights,
	)

	return &cfg, nil
}

// validateConfig checks structural configuration values. Provider keys are
// deliberately not required here.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Pricing.CheckinOffsetDays < 0 {
		return fmt.Errorf("check-in offset days must not be negative")
	}
	if cfg.Pricing.StayNights < 1 {
		log.Warnw("Stay nights below 1, clamping", "stay_nights", cfg.Pricing.StayNights)
		cfg.Pricing.StayNights = 1
	}
	if cfg.Emissions.FactorsPath == "" {
		return fmt.Errorf("emission factors path is required")
	}

	if cfg.ExternalServices.GoogleMapsKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY not set: route resolution will report it as unconfigured")
	}
	if cfg.ExternalServices.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY not set: itineraries will use the canned template")
	}
	if cfg.ExternalServices.AmadeusKey == "" || cfg.ExternalServices.AmadeusSecret == "" {
		log.Warn("Amadeus credentials not set: hotel pricing and flight search fall back to heuristics")
	}

	return nil
}
