package report

import (
	"context"
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
	"github.com/kchsoft/gym-ledger/internal/shared/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// paymentRecord is the scan target of the payment/member join
type paymentRecord struct {
	ID             uint64               `gorm:"column:id"`
	UserID         string               `gorm:"column:user_id"`
	Name           string               `gorm:"column:name"`
	CNIC           string               `gorm:"column:cnic"`
	Contact        string               `gorm:"column:contact"`
	SportCategory  model.SportCategory  `gorm:"column:sport_category"`
	MembershipType model.MembershipType `gorm:"column:membership_type"`
	Amount         float64              `gorm:"column:amount"`
	PaymentDate    datatypes.Date       `gorm:"column:payment_date"`
	Period         *model.Period        `gorm:"column:period"`
	HasTreadmill   bool                 `gorm:"column:has_treadmill"`
}

// paymentFilter narrows the join; zero values do not filter
type paymentFilter struct {
	Month          string
	MembershipType model.MembershipType
	SportCategory  model.SportCategory
}

type lastPayment struct {
	UserID      string                 `gorm:"column:user_id"`
	PaymentDate database.AggregateTime `gorm:"column:payment_date"`
}

type ReportRepository struct{}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// FindPayments joins payments of the filter month with their member, one row per payment
func (r *ReportRepository) FindPayments(ctx context.Context, db *gorm.DB, filter paymentFilter) ([]paymentRecord, error) {
	query := db.WithContext(ctx).
		Table("payments AS p").
		Select("p.id, p.user_id, m.name, m.cnic, m.contact, m.sport_category, m.membership_type, " +
			"p.amount, p.payment_date, p.period, m.has_treadmill").
		Joins("JOIN members AS m ON m.user_id = p.user_id").
		Where("p.month = ?", filter.Month)

	if filter.MembershipType != "" {
		query = query.Where("m.membership_type = ?", filter.MembershipType)
	}
	if filter.SportCategory != "" {
		query = query.Where("m.sport_category = ?", filter.SportCategory)
	}

	var records []paymentRecord
	err := query.Order("p.payment_date").Order("p.id").Scan(&records).Error
	return records, err
}

// FindExpired returns active members whose expiry_date is strictly before cutoff
func (r *ReportRepository) FindExpired(ctx context.Context, db *gorm.DB, cutoff datatypes.Date) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).
		Where("is_active = ? AND expiry_date < ?", true, cutoff).
		Order("expiry_date").
		Order("user_id").
		Find(&members).Error
	return members, err
}

func (r *ReportRepository) FindActiveMembers(ctx context.Context, db *gorm.DB) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id").
		Find(&members).Error
	return members, err
}

// FindLastPayments maps each of userIDs to its most recent payment_date; members without payments are absent
func (r *ReportRepository) FindLastPayments(ctx context.Context, db *gorm.DB, userIDs []string) (map[string]datatypes.Date, error) {
	last := make(map[string]datatypes.Date, len(userIDs))
	if len(userIDs) == 0 {
		return last, nil
	}

	var records []lastPayment
	err := db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("user_id, MAX(payment_date) AS payment_date").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		last[rec.UserID] = datatypes.Date(time.Time(rec.PaymentDate))
	}
	return last, nil
}

func (r *ReportRepository) FindPaymentMonths(ctx context.Context, db *gorm.DB) ([]string, error) {
	var months []string
	err := db.WithContext(ctx).
		Model(&model.Payment{}).
		Distinct("month").
		Order("month").
		Pluck("month", &months).Error
	return months, err
}
