package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	App struct {
		Port    int    `mapstructure:"port"`
		AgentID string `mapstructure:"agent_id"`
	} `mapstructure:"app"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	MQTT struct {
		Broker   string `mapstructure:"broker"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"mqtt"`
	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`
	MDNS struct {
		Enabled   bool   `mapstructure:"enabled"`
		LocalName string `mapstructure:"local_name"`
	} `mapstructure:"mdns"`
	RemoteAccess struct {
		Enabled        bool   `mapstructure:"enabled"`
		PublicWS       string `mapstructure:"public_ws"`
		RetryDelaySecs int    `mapstructure:"retry_delay_secs"`
	} `mapstructure:"remote_access"`
	Assist struct {
		URL    string `mapstructure:"url"`
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"assist"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig reads configuration from config.yaml, .env, and env vars.
func LoadConfig() (*Config, error) {
	// best effort, env vars may come from the environment directly
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("watthome")

	viper.SetDefault("app.port", 5069)
	viper.SetDefault("app.agent_id", "watthome-backend")
	viper.SetDefault("mqtt.client_id", "watthome-backend")
	viper.SetDefault("mdns.local_name", "watthome.local")
	viper.SetDefault("remote_access.retry_delay_secs", 2)
	viper.SetDefault("assist.model", "gpt-4o-mini")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
