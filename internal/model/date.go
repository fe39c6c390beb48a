package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseDate parses YYYY-MM-DD as a UTC calendar date
func ParseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// Today truncates now to its UTC calendar date
func Today(now time.Time) datatypes.Date {
	y, m, d := now.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// FirstDayAfterMonth returns the first day of the month following month (YYYY-MM)
func FirstDayAfterMonth(month string) (datatypes.Date, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t.AddDate(0, 1, 0)), nil
}
