package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverOracle   = "oracle"
)

type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Photo    PhotoConfig    `envPrefix:"PHOTO_"`
	Fee      FeeConfig      `envPrefix:"FEE_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"gym-ledger"`
	Env  string `env:"-"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"`
	Path            string        `env:"PATH" envDefault:"gym.db"` // sqlite only
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME"` // postgres database / oracle service
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"1"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"10m"`
	SlowThreshold   time.Duration `env:"SLOW_THRESHOLD" envDefault:"200ms"`
	IsAutoMigrate   bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	IsReset         bool          `env:"RESET" envDefault:"false"` // true: 테이블 재생성 (production 차단)
}

type PhotoConfig struct {
	Dir      string `env:"DIR" envDefault:"photos"`
	MaxBytes int64  `env:"MAX_BYTES" envDefault:"2097152"`
}

type FeeConfig struct {
	TreadmillSurcharge float64 `env:"TREADMILL_SURCHARGE" envDefault:"400"`
}

func Load(appEnv string) (*Config, error) {
	if err := loadEnvFile(appEnv); err != nil {
		return nil, fmt.Errorf("환경 변수 로드 실패: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.App.Env = appEnv

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("환경 변수 검증 실패 : %w", err)
	}

	return cfg, nil
}

func loadEnvFile(appEnv string) error {
	envFile := fmt.Sprintf(".env.%s", appEnv)

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Warn("환경 변수 파일을 찾을 수 없습니다. 시스템 환경 변수를 사용합니다.",
			"file", envFile)
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("환경 변수 파일 로드 오류: %s: %w", envFile, err)
	}

	absPath, _ := filepath.Abs(envFile)
	slog.Info("환경 변수 파일 로드", "file", absPath)
	return nil
}

func (c *Config) Validate() error {
	var errors []string

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errors = append(errors, "SQLite 파일 경로가 필요합니다")
		}
	case DriverPostgres, DriverOracle:
		if c.Database.Host == "" {
			errors = append(errors, "데이터베이스 Host가 필요합니다")
		}
		if c.Database.Name == "" {
			errors = append(errors, "데이터베이스 Name이 필요합니다")
		}
		if c.Database.User == "" {
			errors = append(errors, "데이터베이스 User가 필요합니다")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			errors = append(errors, "유효하지 않은 포트 번호")
		}
	default:
		errors = append(errors, fmt.Sprintf("지원하지 않는 데이터베이스 드라이버: %q", c.Database.Driver))
	}

	if c.Database.IsReset && c.IsProduction() {
		errors = append(errors, "PRODUCTION 환경에서는 DB_RESET=true를 사용할 수 없습니다")
	}

	if c.Photo.Dir == "" {
		errors = append(errors, "사진 저장 경로가 필요합니다")
	}
	if c.Photo.MaxBytes <= 0 {
		errors = append(errors, "사진 최대 크기는 0보다 커야 합니다")
	}

	if c.Fee.TreadmillSurcharge < 0 {
		errors = append(errors, "트레드밀 추가 요금은 음수일 수 없습니다")
	}

	if len(errors) > 0 {
		return fmt.Errorf("유효성 검사 오류: %s", strings.Join(errors, ", "))
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "local" || c.App.Env == "dev"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}
