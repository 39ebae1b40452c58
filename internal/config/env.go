package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BUNNY"

// Env holds settings taken from the environment (or a local .env file).
type Env struct {
	ConfigPath  string        `envconfig:"CONFIG_PATH"`
	Profile     string        `envconfig:"PROFILE" default:"default"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"console"`
	ScratchDir  string        `envconfig:"SCRATCH_DIR"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`
}

// LoadEnv loads .env from the working directory if present and then
// processes BUNNY_* variables.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("loading .env: %w", err)
	}
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("processing environment: %w", err)
	}
	if env.ConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return Env{}, err
		}
		env.ConfigPath = p
	}
	return env, nil
}
