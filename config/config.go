// Package config loads the application configuration via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/smartbuspass/backend/logging/logger"
)

// Config represents the configuration implementation.
type Config struct {
	AppName string
	RunMode string
	Host    string
	Port    int
	Logger  *logger.Config
	Data    *Data
	Session *Session
	Verify  *Verify
	Email   *Email
}

// Load reads configuration from the given file, falling back to the
// working directory and environment variables (prefix BUSPASS_).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("buspass")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/smartbuspass")
		v.AddConfigPath("$HOME/.smartbuspass")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		AppName: v.GetString("app_name"),
		RunMode: v.GetString("run_mode"),
		Host:    v.GetString("server.host"),
		Port:    v.GetInt("server.port"),
		Logger:  getLoggerConfig(v),
		Data:    getDataConfig(v),
		Session: getSessionConfig(v),
		Verify:  getVerifyConfig(v),
		Email:   getEmailConfig(v),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "smartbuspass")
	v.SetDefault("run_mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("logger.level", 4)
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("data.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("data.mongodb.database", "smartbuspass")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.sweep_interval", "24h")
	v.SetDefault("verify.pass_validity_days", 365)
	v.SetDefault("verify.pass_expiry_interval", "24h")
}

func getLoggerConfig(v *viper.Viper) *logger.Config {
	return &logger.Config{
		Level:      v.GetInt("logger.level"),
		Format:     v.GetString("logger.format"),
		Output:     v.GetString("logger.output"),
		OutputFile: v.GetString("logger.output_file"),
	}
}
