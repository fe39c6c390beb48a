package testutil

import (
	"time"

	"github.com/kchsoft/gym-ledger/internal/config"
)

// NewTestConfig creates a test configuration
// This removes the need for environment variables during testing
func NewTestConfig(photoDir string) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "gym-ledger-test",
			Env:  "test",
		},
		Database: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			Path:            "file::memory:",
			MaxIdleConns:    1,
			MaxOpenConns:    1,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			SlowThreshold:   200 * time.Millisecond,
			IsAutoMigrate:   true,
		},
		Photo: config.PhotoConfig{
			Dir:      photoDir,
			MaxBytes: 2 << 20,
		},
		Fee: config.FeeConfig{
			TreadmillSurcharge: 400,
		},
	}
}
