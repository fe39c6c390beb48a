package member

import (
	"context"
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
	"gorm.io/gorm"
)

type MemberRepository struct{}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

// ExistsByUserID checks every row, active or not: user_id is never reused
func (m *MemberRepository) ExistsByUserID(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ExistsByCNIC checks every row except excludeUserID (empty excludes nothing)
func (m *MemberRepository) ExistsByCNIC(ctx context.Context, db *gorm.DB, cnic, excludeUserID string) (bool, error) {
	query := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("cnic = ?", cnic)
	if excludeUserID != "" {
		query = query.Where("user_id <> ?", excludeUserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (m *MemberRepository) CountPayments(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (m *MemberRepository) Create(ctx context.Context, db *gorm.DB, member *model.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (m *MemberRepository) FindByID(ctx context.Context, db *gorm.DB, userID string) (*model.Member, error) {
	var member model.Member
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (m *MemberRepository) FindActiveByID(ctx context.Context, db *gorm.DB, userID string) (*model.Member, error) {
	var member model.Member
	err := db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (m *MemberRepository) FindActiveByCNIC(ctx context.Context, db *gorm.DB, cnic string) (*model.Member, error) {
	var member model.Member
	err := db.WithContext(ctx).
		Where("cnic = ? AND is_active = ?", cnic, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// SearchActive matches term against user_id or cnic
func (m *MemberRepository) SearchActive(ctx context.Context, db *gorm.DB, term string) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).
		Where("(user_id = ? OR cnic = ?) AND is_active = ?", term, term, true).
		Order("user_id").
		Find(&members).Error
	return members, err
}

func (m *MemberRepository) ListActive(ctx context.Context, db *gorm.DB) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id").
		Find(&members).Error
	return members, err
}

// FindAll includes soft-deleted members
func (m *MemberRepository) FindAll(ctx context.Context, db *gorm.DB) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).Order("user_id").Find(&members).Error
	return members, err
}

// UpdateActive rewrites the active row keyed originalUserID; values may change user_id itself
func (m *MemberRepository) UpdateActive(ctx context.Context, db *gorm.DB, originalUserID string, values map[string]any) (int64, error) {
	result := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ? AND is_active = ?", originalUserID, true).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (m *MemberRepository) UpdateMembershipType(ctx context.Context, db *gorm.DB, userID string, membershipType model.MembershipType, now time.Time) error {
	return db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{
			"membership_type": membershipType,
			"updated_at":      now,
		}).Error
}

func (m *MemberRepository) UpdateTotalFee(ctx context.Context, db *gorm.DB, userID string, totalFee float64, now time.Time) error {
	return db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_fee":  totalFee,
			"updated_at": now,
		}).Error
}

// Deactivate soft-deletes the member and clears its photo reference
func (m *MemberRepository) Deactivate(ctx context.Context, db *gorm.DB, userID string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{
			"is_active":  false,
			"photo_ref":  nil,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
