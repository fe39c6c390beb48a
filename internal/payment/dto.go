package payment

import (
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
)

// RecordPaymentRequest credits UserID for Month. UserID is the member the caller
// has selected; an empty value means no member is selected.
type RecordPaymentRequest struct {
	UserID         string  `json:"user_id"`
	Amount         float64 `json:"amount" validate:"gt=0"`
	Month          string  `json:"month" validate:"required,billing_month"`
	MembershipType string  `json:"membership_type" validate:"required,oneof=15-day 30-day"`
}

type PaymentResponse struct {
	ID          uint64    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	PaymentDate string    `json:"payment_date"`
	Month       string    `json:"month"`
	Period      *string   `json:"period"` // null for 30-day plans
	PeriodLabel string    `json:"period_label"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPaymentResponse(p *model.Payment) *PaymentResponse {
	var period *string
	if p.Period != nil {
		value := string(*p.Period)
		period = &value
	}
	return &PaymentResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		PaymentDate: model.FormatDate(p.PaymentDate),
		Month:       p.Month,
		Period:      period,
		PeriodLabel: p.Period.Label(),
		UpdatedAt:   p.UpdatedAt,
	}
}
