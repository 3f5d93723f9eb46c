package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
		MetricsPort string        `mapstructure:"metricsPort"`
	} `mapstructure:"server"`
	GenAI struct {
		Model     string `mapstructure:"model"`
		APIKeyEnv string `mapstructure:"apiKeyEnv"`
	} `mapstructure:"genai"`
	Preferences struct {
		CookieSecret   string        `mapstructure:"cookieSecret"`
		MaxCookieBytes int           `mapstructure:"maxCookieBytes"`
		CookieMaxAge   time.Duration `mapstructure:"cookieMaxAge"`
		MaxImageBytes  int64         `mapstructure:"maxImageBytes"`
		SecureCookies  bool          `mapstructure:"secureCookies"`
	} `mapstructure:"preferences"`
	Session struct {
		TTL     time.Duration `mapstructure:"ttl"`
		Cleanup time.Duration `mapstructure:"cleanup"`
	} `mapstructure:"session"`
	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rateLimit"`
	Cors struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
	} `mapstructure:"observability"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// BIKEWEATHER_PREFERENCES_COOKIESECRET overrides preferences.cookieSecret, and so on.
	v.SetEnvPrefix("BIKEWEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func (c Config) validate() error {
	if c.Server.HTTPPort == "" {
		return fmt.Errorf("config: server.HTTPPort is required")
	}
	if c.GenAI.Model == "" {
		return fmt.Errorf("config: genai.model is required")
	}
	if len(c.Preferences.CookieSecret) < 16 {
		return fmt.Errorf("config: preferences.cookieSecret must be at least 16 bytes")
	}
	if c.Preferences.MaxCookieBytes <= 0 {
		return fmt.Errorf("config: preferences.maxCookieBytes must be positive")
	}
	return nil
}
