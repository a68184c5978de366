package appointment

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Request is a raw booking submission, exactly as typed at the front desk.
type Request struct {
	PatientName string
	Email       string
	Phone       string
	Date        string
	Time        string
	Physician   string
}

// Candidate is a request that passed validation and may be persisted.
type Candidate struct {
	PatientName string
	Email       string
	Phone       string
	Date        time.Time // midnight UTC
	Time        string    // HH:MM, zero padded
	Physician   string
}

type Appointment struct {
	ID          int64     `json:"id"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Physician   string    `json:"physician"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a Appointment) DateString() string {
	return a.Date.Format(DateLayout)
}

// Less reports whether a is listed before b: date, then physician (byte-wise),
// then time, then id.
func Less(a, b Appointment) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Physician != b.Physician {
		return a.Physician < b.Physician
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.ID < b.ID
}
