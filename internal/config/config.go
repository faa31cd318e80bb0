package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Path string
}

type AlertsConfig struct {
	SweepInterval time.Duration
}

type SlackConfig struct {
	BotToken string
	Channel  string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Alerts      AlertsConfig
	Slack       SlackConfig
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

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Path: v.GetString("DB_PATH"),
		},
		Alerts: AlertsConfig{
			SweepInterval: v.GetDuration("DELAY_SWEEP_INTERVAL"),
		},
		Slack: SlackConfig{
			BotToken: v.GetString("SLACK_BOT_TOKEN"),
			Channel:  v.GetString("SLACK_ALERTS_CHANNEL"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = "depot-checkins.db"
	}
	if cfg.Alerts.SweepInterval == 0 {
		cfg.Alerts.SweepInterval = time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Alerts.SweepInterval < time.Second {
		return fmt.Errorf("DELAY_SWEEP_INTERVAL must be at least 1s")
	}
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel == "" {
		return fmt.Errorf("SLACK_ALERTS_CHANNEL is required when SLACK_BOT_TOKEN is set")
	}
	return nil
}
