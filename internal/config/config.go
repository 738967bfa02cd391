package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. COLFILE_CODEC_COMPRESSION_LEVEL.
const EnvPrefix = "COLFILE"

type Config struct {
	Codec struct {
		MaxNestingDepth  int `mapstructure:"max_nesting_depth" validate:"gte=1,lte=1024"`
		CompressionLevel int `mapstructure:"compression_level" validate:"gte=0,lte=9"`
	} `mapstructure:"codec"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`

	Server struct {
		Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
		MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gte=1"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	} `mapstructure:"server"`

	S3 struct {
		Region     string `mapstructure:"region" validate:"required"`
		Endpoint   string `mapstructure:"endpoint" validate:"omitempty,url"`
		MaxRetries int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	} `mapstructure:"s3"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("codec.max_nesting_depth", 32)
	v.SetDefault("codec.compression_level", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 64<<20)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_retries", 3)
}

// Load reads an optional YAML file at path, then applies COLFILE_*
// environment overrides and validates the result. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
