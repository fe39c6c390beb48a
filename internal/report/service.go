package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/logger"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// monthWindow is how many months before and after now AvailableMonths offers
const monthWindow = 12

// ReportService answers read-only queries. Each call reads one snapshot.
type ReportService struct {
	db               *gorm.DB
	reportRepository *ReportRepository
}

func NewReportService(db *gorm.DB, reportRepository *ReportRepository) *ReportService {
	return &ReportService{
		db:               db,
		reportRepository: reportRepository,
	}
}

func (s *ReportService) Generate(ctx context.Context, request *ReportRequest) (*Report, error) {
	if err := validateRequest(request); err != nil {
		logger.FromContext(ctx).Warn("리포트 요청 검증 실패", "kind", request.Kind, "month", request.Month, "error", err)
		return nil, err
	}

	if request.Kind == KindExpiredMembers {
		return s.ExpiredReport(ctx, request.Month)
	}
	return s.PaymentReport(ctx, request)
}

func validateRequest(request *ReportRequest) error {
	if !slices.Contains(Kinds, request.Kind) {
		return sharedError.NewFieldError(ErrInvalidReport, "kind", fmt.Sprintf("unknown report kind %q", request.Kind))
	}
	if err := validator.Struct(request); err != nil {
		return err
	}
	if request.Kind == KindSportCategory && request.Sport != "" && request.Sport != AllSports &&
		!slices.Contains(model.SportCategories, model.SportCategory(request.Sport)) {
		return sharedError.NewFieldError(ErrInvalidReport, "sport", fmt.Sprintf("unknown sport category %q", request.Sport))
	}
	return nil
}

// PaymentReport lists the payments of the billing month filtered by kind
func (s *ReportService) PaymentReport(ctx context.Context, request *ReportRequest) (*Report, error) {
	filter := paymentFilter{Month: request.Month}
	switch request.Kind {
	case KindPlan30Day:
		filter.MembershipType = model.Plan30Day
	case KindPlan15Day:
		filter.MembershipType = model.Plan15Day
	case KindSportCategory:
		if request.Sport != "" && request.Sport != AllSports {
			filter.SportCategory = model.SportCategory(request.Sport)
		}
	}

	var records []paymentRecord
	err := database.WithReadTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		records, err = s.reportRepository.FindPayments(ctx, tx, filter)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Error("결제 리포트 조회 실패", "kind", request.Kind, "month", request.Month, "error", err)
		return nil, fmt.Errorf("payment report kind=%s month=%s: %w", request.Kind, request.Month, err)
	}

	report := &Report{
		Kind:     request.Kind,
		Month:    request.Month,
		Sport:    request.Sport,
		Payments: make([]PaymentRow, 0, len(records)),
	}

	members := make(map[string]struct{})
	for _, rec := range records {
		report.TotalRevenue += rec.Amount
		members[rec.UserID] = struct{}{}
		report.Payments = append(report.Payments, PaymentRow{
			PaymentID:      rec.ID,
			UserID:         rec.UserID,
			Name:           rec.Name,
			CNIC:           rec.CNIC,
			Contact:        rec.Contact,
			SportCategory:  string(rec.SportCategory),
			MembershipType: string(rec.MembershipType),
			Amount:         rec.Amount,
			PaymentDate:    model.FormatDate(rec.PaymentDate),
			Period:         rec.Period.Label(),
			HasTreadmill:   rec.HasTreadmill,
		})
	}
	report.UniqueMembers = len(members)
	report.Summary = paymentSummary(report.TotalRevenue, len(report.Payments), report.UniqueMembers)
	return report, nil
}

// ExpiredReport lists active members whose expiry_date is before the first day after month
func (s *ReportService) ExpiredReport(ctx context.Context, month string) (*Report, error) {
	cutoff, err := model.FirstDayAfterMonth(month)
	if err != nil {
		return nil, sharedError.NewFieldError(ErrValidation, "month", "월 형식이 올바르지 않습니다. (YYYY-MM)")
	}

	var members []model.Member
	var last map[string]datatypes.Date
	err = database.WithReadTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		members, err = s.reportRepository.FindExpired(ctx, tx, cutoff)
		if err != nil {
			return fmt.Errorf("find expired members: %w", err)
		}
		last, err = s.reportRepository.FindLastPayments(ctx, tx, userIDs(members))
		if err != nil {
			return fmt.Errorf("find last payments: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("만료 회원 리포트 조회 실패", "month", month, "error", err)
		return nil, fmt.Errorf("expired report month=%s: %w", month, err)
	}

	report := &Report{
		Kind:    KindExpiredMembers,
		Month:   month,
		Expired: make([]ExpiredRow, 0, len(members)),
	}
	for _, m := range members {
		report.Expired = append(report.Expired, ExpiredRow{
			UserID:         m.UserID,
			Name:           m.Name,
			CNIC:           m.CNIC,
			Contact:        m.Contact,
			SportCategory:  string(m.SportCategory),
			MembershipType: string(m.MembershipType),
			ExpiryDate:     model.FormatDate(m.ExpiryDate),
			LastPayment:    formatLastPayment(last, m.UserID),
		})
	}
	report.Summary = expiredSummary(len(report.Expired))
	return report, nil
}

// AvailableMonths merges the billing months already paid with the months around now, ascending
func (s *ReportService) AvailableMonths(ctx context.Context, now time.Time) ([]string, error) {
	var paid []string
	err := database.WithReadTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		paid, err = s.reportRepository.FindPaymentMonths(ctx, tx)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Error("결제 월 목록 조회 실패", "error", err)
		return nil, fmt.Errorf("available months: %w", err)
	}

	y, m, _ := now.UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	months := slices.Clone(paid)
	for i := -monthWindow; i <= monthWindow; i++ {
		months = append(months, first.AddDate(0, i, 0).Format(model.MonthLayout))
	}
	slices.Sort(months)
	return slices.Compact(months), nil
}

// Overview lists every active member with its last payment date
func (s *ReportService) Overview(ctx context.Context) ([]OverviewRow, error) {
	var members []model.Member
	var last map[string]datatypes.Date
	err := database.WithReadTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		members, err = s.reportRepository.FindActiveMembers(ctx, tx)
		if err != nil {
			return fmt.Errorf("find active members: %w", err)
		}
		last, err = s.reportRepository.FindLastPayments(ctx, tx, userIDs(members))
		if err != nil {
			return fmt.Errorf("find last payments: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("회원 현황 조회 실패", "error", err)
		return nil, err
	}

	rows := make([]OverviewRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, OverviewRow{
			UserID:         m.UserID,
			Name:           m.Name,
			CNIC:           m.CNIC,
			Contact:        m.Contact,
			SportCategory:  string(m.SportCategory),
			MembershipType: string(m.MembershipType),
			HasTreadmill:   m.HasTreadmill,
			TotalFee:       m.TotalFee,
			ExpiryDate:     model.FormatDate(m.ExpiryDate),
			LastPayment:    formatLastPayment(last, m.UserID),
		})
	}
	return rows, nil
}

func userIDs(members []model.Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func formatLastPayment(last map[string]datatypes.Date, userID string) string {
	date, ok := last[userID]
	if !ok {
		return neverPaid
	}
	return model.FormatDate(date)
}
