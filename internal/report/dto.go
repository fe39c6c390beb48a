package report

import (
	"fmt"
)

// Kind selects the rows of a report
type Kind string

const (
	KindAll            Kind = "All"
	KindPlan30Day      Kind = "30-Day Plan"
	KindPlan15Day      Kind = "15-Day Plan"
	KindSportCategory  Kind = "Sport Category"
	KindExpiredMembers Kind = "Expired Members"

	// AllSports disables the sport filter of KindSportCategory
	AllSports = "All"

	neverPaid = "Never"
)

// Kinds lists every report kind in display order
var Kinds = []Kind{KindAll, KindPlan30Day, KindPlan15Day, KindSportCategory, KindExpiredMembers}

type ReportRequest struct {
	Kind  Kind   `json:"kind"`
	Month string `json:"month" validate:"required,billing_month"`
	Sport string `json:"sport"` // KindSportCategory only
}

// PaymentRow is one payment of the billing month joined with its member
type PaymentRow struct {
	PaymentID      uint64  `json:"payment_id"`
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	CNIC           string  `json:"cnic"`
	Contact        string  `json:"contact"`
	SportCategory  string  `json:"sport_category"`
	MembershipType string  `json:"membership_type"`
	Amount         float64 `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	Period         string  `json:"period"` // "Full Month" for 30-day payments
	HasTreadmill   bool    `json:"has_treadmill"`
}

// ExpiredRow is an active member whose expiry falls before the end of the billing month
type ExpiredRow struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	CNIC           string `json:"cnic"`
	Contact        string `json:"contact"`
	SportCategory  string `json:"sport_category"`
	MembershipType string `json:"membership_type"`
	ExpiryDate     string `json:"expiry_date"`
	LastPayment    string `json:"last_payment"` // "Never" when no payment exists
}

// Report is the row set plus summary handed to export collaborators
type Report struct {
	Kind          Kind         `json:"kind"`
	Month         string       `json:"month"`
	Sport         string       `json:"sport,omitempty"`
	Payments      []PaymentRow `json:"payments,omitempty"`
	Expired       []ExpiredRow `json:"expired,omitempty"`
	TotalRevenue  float64      `json:"total_revenue"`
	UniqueMembers int          `json:"unique_members"`
	Summary       string       `json:"summary"`
}

// Len is the number of rows regardless of kind
func (r *Report) Len() int {
	if r.Kind == KindExpiredMembers {
		return len(r.Expired)
	}
	return len(r.Payments)
}

// OverviewRow summarizes an active member for the member list
type OverviewRow struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	CNIC           string  `json:"cnic"`
	Contact        string  `json:"contact"`
	SportCategory  string  `json:"sport_category"`
	MembershipType string  `json:"membership_type"`
	HasTreadmill   bool    `json:"has_treadmill"`
	TotalFee       float64 `json:"total_fee"`
	ExpiryDate     string  `json:"expiry_date"`
	LastPayment    string  `json:"last_payment"`
}

func paymentSummary(totalRevenue float64, payments, uniqueMembers int) string {
	return fmt.Sprintf("Total Revenue: Rs %.2f, Payments: %d, Unique Members: %d", totalRevenue, payments, uniqueMembers)
}

func expiredSummary(count int) string {
	return fmt.Sprintf("Expired Members: %d", count)
}
