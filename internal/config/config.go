// Package config loads client settings from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ServerURL   string        `env:"ARCANUM_WS_URL" envDefault:"ws://localhost:8000/ws"`
	PlayerName  string        `env:"ARCANUM_PLAYER_NAME"`
	GameType    string        `env:"ARCANUM_GAME_TYPE" envDefault:"stations"`
	GameMode    string        `env:"ARCANUM_GAME_MODE" envDefault:"pvp"`
	RedialDelay time.Duration `env:"ARCANUM_REDIAL_DELAY" envDefault:"3s"`
	LogLevel    string        `env:"ARCANUM_LOG_LEVEL" envDefault:"info"`
	LogJSON     bool          `env:"ARCANUM_LOG_JSON" envDefault:"false"`

	// ListenAddr is only read by the devserver.
	ListenAddr string `env:"ARCANUM_LISTEN_ADDR" envDefault:":8000"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Logger builds a zap logger honoring LogLevel and LogJSON.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if !c.LogJSON {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
