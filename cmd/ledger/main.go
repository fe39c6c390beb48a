package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kchsoft/gym-ledger/internal/bootstrap"
	"github.com/kchsoft/gym-ledger/internal/config"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	"github.com/kchsoft/gym-ledger/internal/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Parse command line flags
	env, args := parseFlags()

	// Initialize logger
	logger.Setup(env)
	slog.Debug("ledger 초기화 시작", "env", env)

	// Run application
	if err := run(env, args); err != nil {
		if !reported(err) {
			slog.Error("ledger 실행 실패", "error", err)
		}
		printError(err)
		os.Exit(1)
	}
}

// parseFlags parses command line arguments
func parseFlags() (string, []string) {
	env := flag.String("env", "local", "Environment (local|dev|production)")
	flag.Usage = usage
	flag.Parse()
	return *env, flag.Args()
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: ledger [-env local] <command> [flags]

commands:
  member add|update|deactivate|show|list
  pay          record a payment for a member
  history      payment history of a member
  report       payment or expired-members report for a month
  months       billing months available for reports
  overview     active members with their last payment
  reconcile    recompute total fees
  health       database health

`)
	flag.PrintDefaults()
}

// run contains the main application logic
func run(env string, args []string) error {
	if len(args) == 0 {
		usage()
		return usageError("command is required")
	}

	// Cancel in-flight work on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("데이터베이스 연결 실패: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("데이터베이스 종료 실패", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	ledger := bootstrap.New(cfg, db, registry)
	if err := ledger.Start(ctx); err != nil {
		return err
	}
	defer logMetrics(registry)

	return invoke(ctx, ledger, args)
}

// logMetrics writes the counters touched by this invocation at debug level
func logMetrics(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		slog.Warn("metric 수집 실패", "error", err)
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if value := metric.GetCounter().GetValue(); value > 0 {
				slog.Debug("metric", "name", family.GetName(), "labels", metric.GetLabel(), "value", value)
			}
		}
	}
}
