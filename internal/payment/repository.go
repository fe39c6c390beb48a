package payment

import (
	"context"

	"github.com/kchsoft/gym-ledger/internal/model"
	"gorm.io/gorm"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (p *PaymentRepository) Create(ctx context.Context, db *gorm.DB, payment *model.Payment) error {
	return db.WithContext(ctx).Omit("Member").Create(payment).Error
}

// FindPeriodKeys returns the period_key of every payment userID has for month
func (p *PaymentRepository) FindPeriodKeys(ctx context.Context, db *gorm.DB, userID, month string) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("user_id = ? AND month = ?", userID, month).
		Pluck("period_key", &keys).Error
	return keys, err
}

// FindByUserID returns the history of userID, newest first
func (p *PaymentRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("payment_date DESC").
		Order("id DESC").
		Find(&payments).Error
	return payments, err
}
