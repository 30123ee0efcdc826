package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"txkv/internal/backend"
)

type TxKVConfig struct {
	// Server Configuration
	Host           string `mapstructure:"host" default:"0.0.0.0" description:"the command server host address"`
	Port           string `mapstructure:"port" default:"7653" description:"the command server port"`
	MetricsAddress string `mapstructure:"metricsAddress" default:"" description:"address of the /metrics endpoint, empty disables it"`
	LogLevel       string `mapstructure:"logLevel" default:"info" description:"Log Level"`

	// Storage Configuration
	Backend   string        `mapstructure:"backend" default:"memory" description:"memory, bolt, leveldb, badger or redis"`
	DataDir   string        `mapstructure:"dataDir" default:"./data" description:"directory of the disk backends"`
	OpTimeout time.Duration `mapstructure:"opTimeout" default:"2s" description:"timeout of a single redis round trip"`

	RedisAddress  string `mapstructure:"redisAddress" default:"localhost:6379" description:"redis host:port"`
	RedisPassword string `mapstructure:"redisPassword" default:"" description:"redis password"`
	RedisDB       int    `mapstructure:"redisDB" default:"0" description:"redis database index"`
	RedisPrefix   string `mapstructure:"redisPrefix" default:"txkv:" description:"prefix of every redis key"`
}

const (
	configPath = "./"
	envPrefix  = "TXKV"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "7653")
	v.SetDefault("metricsAddress", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("backend", string(backend.KindMemory))
	v.SetDefault("dataDir", "./data")
	v.SetDefault("opTimeout", 2*time.Second)
	v.SetDefault("redisAddress", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("redisPrefix", "txkv:")
}

// LoadConfig reads config.json from the working directory, or the file at
// path when one is given, on top of the defaults. TXKV_* environment
// variables override both. A missing default config file is not an error.
func LoadConfig(path string) (*TxKVConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			slog.Error("Failed to read config", "error", err)
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &TxKVConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		slog.Error("Failed to parse config", "error", err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// BackendOptions translates the storage section for backend.Open.
func (c *TxKVConfig) BackendOptions() backend.Options {
	return backend.Options{
		Kind:    backend.Kind(strings.ToLower(c.Backend)),
		DataDir: c.DataDir,
		Redis: backend.RedisOptions{
			Address:   c.RedisAddress,
			Password:  c.RedisPassword,
			DB:        c.RedisDB,
			Prefix:    c.RedisPrefix,
			OpTimeout: c.OpTimeout,
		},
	}
}

func (c *TxKVConfig) Address() string {
	return c.Host + ":" + c.Port
}
