package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8086" validate:"min=1000,max=65535"`

	// Connection-attempt rate limiting, per source address.
	RateLimitWindowSeconds uint `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60" validate:"min=1"`
	RateLimitMaxAttempts   uint `env:"RATE_LIMIT_MAX_ATTEMPTS"   envDefault:"3"  validate:"min=1"`

	WsReadLimitBytes int64 `env:"WS_READ_LIMIT_BYTES" envDefault:"1048576" validate:"min=512"`

	ExecInterpreter    string `env:"EXEC_INTERPRETER"     envDefault:"python3"`
	ExecTimeoutSeconds uint   `env:"EXEC_TIMEOUT_SECONDS" envDefault:"10" validate:"min=1,max=120"`
	ExecTempDir        string `env:"EXEC_TEMP_DIR"        envDefault:""`
	ExecFileSuffix     string `env:"EXEC_FILE_SUFFIX"     envDefault:".py"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
