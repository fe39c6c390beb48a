package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kchsoft/gym-ledger/internal/config"
	"github.com/kchsoft/gym-ledger/internal/member"
	"github.com/kchsoft/gym-ledger/internal/meta"
	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/payment"
	"github.com/kchsoft/gym-ledger/internal/report"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	"github.com/kchsoft/gym-ledger/internal/shared/metrics"
	"github.com/kchsoft/gym-ledger/internal/shared/photo"
	"github.com/prometheus/client_golang/prometheus"
)

// Ledger is the embedded library surface handed to callers (CLI, UI)
type Ledger struct {
	Members  *member.MemberService
	Payments *payment.PaymentService
	Reports  *report.ReportService
	Health   *meta.Checker
	Metrics  *metrics.Metrics
}

// New wires repositories and services using dependency injection
func New(cfg *config.Config, db *database.DB, reg prometheus.Registerer) *Ledger {
	// repository
	memberRepository := member.NewMemberRepository()
	paymentRepository := payment.NewPaymentRepository()
	reportRepository := report.NewReportRepository()

	// shared services
	ledgerMetrics := metrics.New(reg)
	photoStore := photo.NewStore(cfg.Photo)
	feePolicy := model.FeePolicy{TreadmillSurcharge: cfg.Fee.TreadmillSurcharge}

	// service
	return &Ledger{
		Members:  member.NewMemberService(db.DB, memberRepository, photoStore, feePolicy, ledgerMetrics),
		Payments: payment.NewPaymentService(db.DB, paymentRepository, memberRepository, ledgerMetrics),
		Reports:  report.NewReportService(db.DB, reportRepository),
		Health:   meta.NewChecker(cfg, db),
		Metrics:  ledgerMetrics,
	}
}

// Start runs the one-time startup maintenance: total_fee reconciliation
func (l *Ledger) Start(ctx context.Context) error {
	changed, err := l.Members.ReconcileFees(ctx)
	if err != nil {
		return fmt.Errorf("요금 재계산 실패: %w", err)
	}

	slog.Info("Ledger 초기화 완료", "reconciled", changed)
	return nil
}
