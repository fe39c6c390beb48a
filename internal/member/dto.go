package member

import (
	"time"

	"github.com/kchsoft/gym-ledger/internal/model"
)

// MemberFields are the staff-entered values shared by create and update
type MemberFields struct {
	UserID         string  `json:"user_id" validate:"required,digits,max=32"`
	Name           string  `json:"name" validate:"required,max=100"`
	Contact        string  `json:"contact" validate:"required,contact"`
	CNIC           string  `json:"cnic" validate:"required,cnic"`
	Location       string  `json:"location" validate:"max=255"`
	Designation    string  `json:"designation" validate:"max=255"`
	JoinDate       string  `json:"join_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate     string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	SportCategory  string  `json:"sport_category" validate:"required,oneof=Gym Basketball 'Long Tennis' Squash"`
	MembershipType string  `json:"membership_type" validate:"required,oneof=15-day 30-day"`
	HasTreadmill   bool    `json:"has_treadmill"`
	BaseFee        float64 `json:"base_fee" validate:"gt=0"`
}

// PhotoUpload is the encoded image as received from the caller
type PhotoUpload struct {
	Data []byte
}

type CreateMemberRequest struct {
	MemberFields
	Photo *PhotoUpload `json:"-" validate:"-"`
}

// UpdateMemberRequest targets the active member currently keyed OriginalUserID.
// UserID in MemberFields is the new value and may differ.
type UpdateMemberRequest struct {
	OriginalUserID string `json:"original_user_id" validate:"required"`
	MemberFields
	Photo *PhotoUpload `json:"-" validate:"-"`
}

type MemberResponse struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Contact        string    `json:"contact"`
	CNIC           string    `json:"cnic"`
	Location       string    `json:"location,omitempty"`
	Designation    string    `json:"designation,omitempty"`
	JoinDate       string    `json:"join_date"`
	ExpiryDate     string    `json:"expiry_date"`
	SportCategory  string    `json:"sport_category"`
	MembershipType string    `json:"membership_type"`
	HasTreadmill   bool      `json:"has_treadmill"`
	BaseFee        float64   `json:"base_fee"`
	TotalFee       float64   `json:"total_fee"`
	IsActive       bool      `json:"is_active"`
	PhotoRef       string    `json:"photo_ref,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *PhotoUpload) present() bool {
	return p != nil && len(p.Data) > 0
}

func toMemberResponse(m *model.Member) *MemberResponse {
	return &MemberResponse{
		UserID:         m.UserID,
		Name:           m.Name,
		Contact:        m.Contact,
		CNIC:           m.CNIC,
		Location:       deref(m.Location),
		Designation:    deref(m.Designation),
		JoinDate:       model.FormatDate(m.JoinDate),
		ExpiryDate:     model.FormatDate(m.ExpiryDate),
		SportCategory:  string(m.SportCategory),
		MembershipType: string(m.MembershipType),
		HasTreadmill:   m.HasTreadmill,
		BaseFee:        m.BaseFee,
		TotalFee:       m.TotalFee,
		IsActive:       m.IsActive,
		PhotoRef:       deref(m.PhotoRef),
		UpdatedAt:      m.UpdatedAt,
	}
}

func toMemberResponses(members []model.Member) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, *toMemberResponse(&members[i]))
	}
	return responses
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional stores empty free text as NULL
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
