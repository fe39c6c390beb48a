package payment

import (
	"github.com/kchsoft/gym-ledger/internal/model"
)

// allocatePeriod picks the billing period of the next payment.
// 30-day plans have no period. 15-day plans fill first_half then second_half,
// in that order regardless of the calendar date.
func allocatePeriod(membershipType model.MembershipType, existingKeys []string) (*model.Period, error) {
	if membershipType == model.Plan30Day {
		return nil, nil
	}

	taken := make(map[model.Period]bool, len(existingKeys))
	for _, key := range existingKeys {
		taken[model.Period(key)] = true
	}

	var period model.Period
	switch {
	case !taken[model.PeriodFirstHalf] && !taken[model.PeriodSecondHalf]:
		period = model.PeriodFirstHalf
	case !taken[model.PeriodSecondHalf]:
		period = model.PeriodSecondHalf
	default:
		return nil, ErrPeriodExhausted
	}
	return &period, nil
}
