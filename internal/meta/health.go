package meta

import (
	"context"
	"log/slog"
	"time"

	"github.com/kchsoft/gym-ledger/internal/config"
)

// Pinger is satisfied by *database.DB
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type ServiceInfo struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Driver      string `json:"driver"`
}

type DatabaseStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Service  ServiceInfo    `json:"service"`
	Database DatabaseStatus `json:"database"`
}

// Healthy reports whether every check passed
func (h *HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Checker reports store health (app name, environment, database)
type Checker struct {
	cfg *config.Config
	db  Pinger
}

func NewChecker(cfg *config.Config, db Pinger) *Checker {
	return &Checker{
		cfg: cfg,
		db:  db,
	}
}

// Check pings the database with a 5 second budget
func (c *Checker) Check(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status: "healthy",
		Service: ServiceInfo{
			Name:        c.cfg.App.Name,
			Environment: c.cfg.App.Env,
			Driver:      c.cfg.Database.Driver,
		},
	}

	start := time.Now()
	if err := c.db.HealthCheck(ctx); err != nil {
		slog.Error("Health check 실패", "error", err)
		status.Status = "unhealthy"
		status.Database = DatabaseStatus{Status: "down", Error: err.Error()}
		return status
	}

	status.Database = DatabaseStatus{Status: "up", LatencyMs: time.Since(start).Milliseconds()}
	return status
}
