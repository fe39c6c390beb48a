package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kchsoft/gym-ledger/internal/member"
	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/logger"
	"github.com/kchsoft/gym-ledger/internal/shared/metrics"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
	"gorm.io/gorm"
)

type PaymentService struct {
	db                *gorm.DB
	paymentRepository *PaymentRepository
	memberRepository  *member.MemberRepository
	metrics           *metrics.Metrics
	now               func() time.Time
}

type Option func(*PaymentService)

// WithClock overrides the source of payment_date
func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) {
		s.now = now
	}
}

func NewPaymentService(db *gorm.DB, paymentRepository *PaymentRepository, memberRepository *member.MemberRepository, m *metrics.Metrics, opts ...Option) *PaymentService {
	s := &PaymentService{
		db:                db,
		paymentRepository: paymentRepository,
		memberRepository:  memberRepository,
		metrics:           m,
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment appends a ledger entry for the selected member.
// The whole sequence runs in one transaction; the unique index on
// (user_id, month, period_key) is the final guard against duplicates.
func (s *PaymentService) RecordPayment(ctx context.Context, request *RecordPaymentRequest) (*PaymentResponse, error) {
	log := logger.FromContext(ctx).With("user_id", request.UserID, "month", request.Month)

	if request.UserID == "" {
		s.metrics.PaymentRejected("no_active_member")
		return nil, fmt.Errorf("record payment: %w", ErrNoActiveMember)
	}

	if err := validator.Struct(request); err != nil {
		s.metrics.PaymentRejected("validation")
		log.Warn("결제 검증 실패", "error", err)
		return nil, err
	}

	membershipType := model.MembershipType(request.MembershipType)
	var payment *model.Payment

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		current, err := s.memberRepository.FindActiveByID(ctx, tx, request.UserID)
		if err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("활성 회원을 찾을 수 없습니다 user_id=%s: %w", request.UserID, ErrNoActiveMember)
			}
			return fmt.Errorf("find member user_id=%s: %w", request.UserID, err)
		}

		if request.Amount != current.TotalFee {
			return sharedError.NewFieldError(ErrAmountMismatch, "amount",
				fmt.Sprintf("expected %.2f, got %.2f", current.TotalFee, request.Amount))
		}

		// 플랜 변경은 이번 결제부터 적용
		if membershipType != current.MembershipType {
			if err := s.memberRepository.UpdateMembershipType(ctx, tx, current.UserID, membershipType, s.now()); err != nil {
				return fmt.Errorf("update membership_type user_id=%s: %w", current.UserID, err)
			}
			log.Info("회원 플랜 변경", "from", current.MembershipType, "to", membershipType)
		}

		var existing []string
		if membershipType == model.Plan15Day {
			existing, err = s.paymentRepository.FindPeriodKeys(ctx, tx, current.UserID, request.Month)
			if err != nil {
				return fmt.Errorf("find periods user_id=%s month=%s: %w", current.UserID, request.Month, err)
			}
		}

		period, err := allocatePeriod(membershipType, existing)
		if err != nil {
			return fmt.Errorf("user_id=%s month=%s: %w", current.UserID, request.Month, err)
		}

		payment = model.NewPayment(current.UserID, request.Amount, model.Today(s.now()), request.Month, period)
		if err := s.paymentRepository.Create(ctx, tx, payment); err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("user_id=%s month=%s period=%s: %w", current.UserID, request.Month, period.Label(), ErrDuplicatePayment)
			}
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		s.reject(log, err)
		return nil, err
	}

	s.metrics.PaymentRecorded(string(membershipType), payment.PeriodKey, payment.Amount)
	log.Info("결제 등록 완료", "amount", payment.Amount, "period", payment.Period.Label())
	return toPaymentResponse(payment), nil
}

// reject logs a failed RecordPayment and counts ledger-rule rejections
func (s *PaymentService) reject(log *slog.Logger, err error) {
	reasons := []struct {
		target error
		reason string
	}{
		{ErrNoActiveMember, "no_active_member"},
		{ErrAmountMismatch, "amount_mismatch"},
		{ErrPeriodExhausted, "period_exhausted"},
		{ErrDuplicatePayment, "duplicate"},
	}
	for _, r := range reasons {
		if errors.Is(err, r.target) {
			s.metrics.PaymentRejected(r.reason)
			log.Warn("결제 거부", "reason", r.reason, "error", err)
			return
		}
	}
	log.Error("결제 등록 실패", "error", err)
}

// PaymentHistory lists every payment of userID, newest first. Deactivated members keep their history.
func (s *PaymentService) PaymentHistory(ctx context.Context, userID string) ([]PaymentResponse, error) {
	if userID == "" {
		return nil, sharedError.NewFieldError(ErrValidation, "user_id", "필수 항목을 입력해 주세요.")
	}

	payments, err := s.paymentRepository.FindByUserID(ctx, s.db, userID)
	if err != nil {
		logger.FromContext(ctx).Error("결제 내역 조회 실패", "user_id", userID, "error", err)
		return nil, fmt.Errorf("payment history user_id=%s: %w", userID, err)
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *toPaymentResponse(&payments[i]))
	}
	return responses, nil
}
