package appointment

import (
	"strings"
	"time"
)

const (
	FirstSlotHour = 8
	LastSlotHour  = 16
)

// Input layouts accept one- or two-digit month, day, hour and minute.
// Accepted values are re-formatted with DateLayout and TimeLayout.
const (
	dateInputLayout = "2006-1-2"
	timeInputLayout = "15:4"
)

// Validate checks a raw request against the booking rules. Checks run in a
// fixed order and the first failure is returned as a *ValidationError.
func Validate(req Request) (Candidate, error) {
	c := Candidate{
		PatientName: strings.TrimSpace(req.PatientName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Physician:   strings.TrimSpace(req.Physician),
	}
	dateStr := strings.TrimSpace(req.Date)
	timeStr := strings.TrimSpace(req.Time)

	if c.PatientName == "" || dateStr == "" || timeStr == "" || c.Physician == "" {
		return Candidate{}, &ValidationError{Kind: KindMissingFields}
	}

	date, err := time.Parse(dateInputLayout, dateStr)
	if err != nil {
		return Candidate{}, &ValidationError{Kind: KindInvalidDate}
	}
	if !IsBusinessDay(date) {
		return Candidate{}, &ValidationError{Kind: KindNonBusinessDay}
	}

	tod, err := time.Parse(timeInputLayout, timeStr)
	if err != nil {
		return Candidate{}, &ValidationError{Kind: KindInvalidTime}
	}
	if !IsSlot(tod.Hour(), tod.Minute()) {
		return Candidate{}, &ValidationError{Kind: KindInvalidSlot}
	}

	c.Date = date
	c.Time = tod.Format(TimeLayout)
	return c, nil
}

func IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsSlot reports whether hour:minute is one of the bookable starts,
// 08:00 through 16:00 on the hour.
func IsSlot(hour, minute int) bool {
	return minute == 0 && hour >= FirstSlotHour && hour <= LastSlotHour
}

// Slots lists the bookable start times in order.
func Slots() []string {
	out := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		out = append(out, time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format(TimeLayout))
	}
	return out
}
