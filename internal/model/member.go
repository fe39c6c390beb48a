package model

import (
	"gorm.io/datatypes"
)

type SportCategory string

const (
	SportGym        SportCategory = "Gym"
	SportBasketball SportCategory = "Basketball"
	SportLongTennis SportCategory = "Long Tennis"
	SportSquash     SportCategory = "Squash"
)

// SportCategories lists every category in display order.
var SportCategories = []SportCategory{SportGym, SportBasketball, SportLongTennis, SportSquash}

type MembershipType string

const (
	Plan15Day MembershipType = "15-day"
	Plan30Day MembershipType = "30-day"
)

// DefaultTreadmillSurcharge is added to the base fee of members with the treadmill add-on.
const DefaultTreadmillSurcharge = 400

// FeePolicy derives a member's total fee.
type FeePolicy struct {
	TreadmillSurcharge float64
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{TreadmillSurcharge: DefaultTreadmillSurcharge}
}

func (p FeePolicy) TotalFee(baseFee float64, hasTreadmill bool) float64 {
	if hasTreadmill {
		return baseFee + p.TreadmillSurcharge
	}
	return baseFee
}

// Member represents a paying member of the facility.
// is_active=false is a soft delete: the row and its payments are kept for history.
type Member struct {
	// Primary key - numeric string chosen by staff
	UserID string `gorm:"column:user_id;type:varchar(32);primaryKey"`

	// Identity
	Name        string  `gorm:"column:name;type:varchar(100);not null"`
	Contact     string  `gorm:"column:contact;type:varchar(15);not null"`
	CNIC        string  `gorm:"column:cnic;type:varchar(13);not null;uniqueIndex:idx_members_cnic"` // unique regardless of is_active
	Location    *string `gorm:"column:location;type:varchar(255)"`
	Designation *string `gorm:"column:designation;type:varchar(255)"`

	// Membership
	JoinDate       datatypes.Date `gorm:"column:join_date;not null"`
	ExpiryDate     datatypes.Date `gorm:"column:expiry_date;not null;index:idx_members_expiry"`
	SportCategory  SportCategory  `gorm:"column:sport_category;type:varchar(32);not null"`
	MembershipType MembershipType `gorm:"column:membership_type;type:varchar(8);not null"`

	// Fees - TotalFee is always FeePolicy.TotalFee(BaseFee, HasTreadmill)
	HasTreadmill bool    `gorm:"column:has_treadmill;not null"`
	BaseFee      float64 `gorm:"column:base_fee;not null"`
	TotalFee     float64 `gorm:"column:total_fee;not null"`

	IsActive bool    `gorm:"column:is_active;not null;index:idx_members_active"`
	PhotoRef *string `gorm:"column:photo_ref;type:varchar(255)"`

	BaseEntity
}

// TableName specifies the table name for Member
func (*Member) TableName() string {
	return "members"
}

// ApplyFee recomputes TotalFee and reports whether it changed.
func (m *Member) ApplyFee(policy FeePolicy) bool {
	expected := policy.TotalFee(m.BaseFee, m.HasTreadmill)
	if m.TotalFee == expected {
		return false
	}
	m.TotalFee = expected
	return true
}
