package model

import (
	"gorm.io/datatypes"
)

type Period string

const (
	PeriodFirstHalf  Period = "first_half"
	PeriodSecondHalf Period = "second_half"

	// fullMonthKey fills period_key for 30-day payments whose period is NULL.
	fullMonthKey = "full_month"
)

// Label renders a possibly-NULL period for display.
func (p *Period) Label() string {
	if p == nil {
		return "Full Month"
	}
	return string(*p)
}

// Payment is an append-only ledger entry crediting a member for a billing month.
// Period is NULL for 30-day plans. PeriodKey mirrors Period with NULL replaced by
// "full_month" so the (user_id, month, period) uniqueness is enforced by the
// index even for NULL periods.
type Payment struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      string         `gorm:"column:user_id;type:varchar(32);not null;uniqueIndex:idx_payments_user_month_period,priority:1"`
	Amount      float64        `gorm:"column:amount;not null"`
	PaymentDate datatypes.Date `gorm:"column:payment_date;not null"`
	Month       string         `gorm:"column:month;type:varchar(7);not null;uniqueIndex:idx_payments_user_month_period,priority:2;index:idx_payments_month"`
	Period      *Period        `gorm:"column:period;type:varchar(16)"`
	PeriodKey   string         `gorm:"column:period_key;type:varchar(16);not null;uniqueIndex:idx_payments_user_month_period,priority:3"`

	Member *Member `gorm:"foreignKey:UserID;references:UserID"`

	BaseEntity
}

// TableName specifies the table name for Payment
func (*Payment) TableName() string {
	return "payments"
}

// NewPayment creates a ledger entry with PeriodKey derived from period.
func NewPayment(userID string, amount float64, paymentDate datatypes.Date, month string, period *Period) *Payment {
	key := fullMonthKey
	if period != nil {
		key = string(*period)
	}
	return &Payment{
		UserID:      userID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Month:       month,
		Period:      period,
		PeriodKey:   key,
	}
}
