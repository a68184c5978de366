package appointment

import (
	"errors"
	"fmt"
)

type ValidationKind string

const (
	KindMissingFields  ValidationKind = "missing_fields"
	KindInvalidDate    ValidationKind = "invalid_date"
	KindNonBusinessDay ValidationKind = "non_business_day"
	KindInvalidTime    ValidationKind = "invalid_time"
	KindInvalidSlot    ValidationKind = "invalid_slot"
)

// ValidationError is a user-correctable rejection of a booking request.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingFields:
		return "patient name, date, time and physician are required"
	case KindInvalidDate:
		return "date must be formatted as YYYY-MM-DD"
	case KindNonBusinessDay:
		return "appointments can only be booked Monday to Friday"
	case KindInvalidTime:
		return "time must be formatted as HH:MM"
	case KindInvalidSlot:
		return "appointments start on the hour between 08:00 and 16:00"
	}
	return "invalid appointment request: " + string(e.Kind)
}

var (
	// ErrConflict means the physician already has an appointment on that date.
	ErrConflict = errors.New("physician already booked on that date")
)

// StorageError wraps any failure of the backing store other than a conflict.
// It is never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeInternal = "internal_error"
)

// Outcome maps the result of Service.Book to its external code.
func Outcome(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return string(verr.Kind)
	}
	if errors.Is(err, ErrConflict) {
		return OutcomeConflict
	}
	return OutcomeInternal
}
