package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	ListenPort        int
	ModelDir          string
	DataPath          string
	DefaultThreshold  float64
	BatchLimit        int
	AmountSoftCeiling float64
	AlertWebhookURL   string
	AlertTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

type ConfigFile struct {
	Server struct {
		Port            int    `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Model struct {
		Dir              string  `yaml:"dir"`
		DefaultThreshold float64 `yaml:"defaultThreshold"`
	} `yaml:"model"`

	Scoring struct {
		BatchLimit        int     `yaml:"batchLimit"`
		AmountSoftCeiling float64 `yaml:"amountSoftCeiling"`
	} `yaml:"scoring"`

	Alerts struct {
		WebhookURL string `yaml:"webhookURL"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"alerts"`

	System struct {
		DataPath string `yaml:"dataPath"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(config.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}

	alertTimeout, err := time.ParseDuration(config.Alerts.Timeout)
	if err != nil {
		alertTimeout = 5 * time.Second
	}

	settings := Settings{
		ListenPort:        getIntFromEnvOrConfig("PORT", config.Server.Port),
		ModelDir:          getEnvOrDefault("MODEL_DIR", config.Model.Dir),
		DataPath:          getEnvOrDefault("DATA_PATH", config.System.DataPath),
		DefaultThreshold:  getFloatFromEnvOrConfig("DEFAULT_THRESHOLD", config.Model.DefaultThreshold),
		BatchLimit:        getIntFromEnvOrConfig("BATCH_LIMIT", config.Scoring.BatchLimit),
		AmountSoftCeiling: getFloatFromEnvOrConfig("AMOUNT_SOFT_CEILING", config.Scoring.AmountSoftCeiling),
		AlertWebhookURL:   getEnvOrDefault("ALERT_WEBHOOK_URL", config.Alerts.WebhookURL),
		AlertTimeout:      alertTimeout,
		ShutdownTimeout:   shutdownTimeout,
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenPort:        getIntOrDefault("PORT", 8080),
		ModelDir:          getEnvOrDefault("MODEL_DIR", "model"),
		DataPath:          os.Getenv("DATA_PATH"), // optional
		DefaultThreshold:  getFloatOrDefault("DEFAULT_THRESHOLD", 0.5),
		BatchLimit:        getIntOrDefault("BATCH_LIMIT", 100),
		AmountSoftCeiling: getFloatOrDefault("AMOUNT_SOFT_CEILING", 100_000),
		AlertWebhookURL:   os.Getenv("ALERT_WEBHOOK_URL"), // optional
		AlertTimeout:      getDurationOrDefault("ALERT_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   getDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.ListenPort == 0 {
		s.ListenPort = 8080
	}
	if s.ModelDir == "" {
		s.ModelDir = "model"
	}
	if s.DefaultThreshold == 0 {
		s.DefaultThreshold = 0.5
	}
	if s.BatchLimit == 0 {
		s.BatchLimit = 100
	}
	if s.AmountSoftCeiling == 0 {
		s.AmountSoftCeiling = 100_000
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values
func validateSettings(s *Settings) error {
	if s.ListenPort < 1 || s.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1 and 65535, got %d", s.ListenPort)
	}
	if s.ModelDir == "" {
		return fmt.Errorf("model directory cannot be empty")
	}
	if s.DefaultThreshold < 0 || s.DefaultThreshold > 1 {
		return fmt.Errorf("default threshold must be between 0 and 1, got %f", s.DefaultThreshold)
	}
	if s.BatchLimit < 1 || s.BatchLimit > 1000 {
		return fmt.Errorf("batch limit must be between 1 and 1000, got %d", s.BatchLimit)
	}
	if s.AmountSoftCeiling <= 0 {
		return fmt.Errorf("amount soft ceiling must be positive, got %f", s.AmountSoftCeiling)
	}
	if s.AlertTimeout < time.Second || s.AlertTimeout > time.Minute {
		return fmt.Errorf("alert timeout must be between 1s and 1m, got %v", s.AlertTimeout)
	}
	if s.ShutdownTimeout < time.Second || s.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown timeout must be between 1s and 5m, got %v", s.ShutdownTimeout)
	}
	return nil
}
