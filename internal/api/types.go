package api

import (
	"time"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type CreateAppointmentRequest struct {
	PatientName string `json:"patient_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Physician   string `json:"physician"`
}

func (r CreateAppointmentRequest) toDomain() appointment.Request {
	return appointment.Request{
		PatientName: r.PatientName,
		Email:       r.Email,
		Phone:       r.Phone,
		Date:        r.Date,
		Time:        r.Time,
		Physician:   r.Physician,
	}
}

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Physician   string    `json:"physician"`
	CreatedAt   time.Time `json:"created_at"`
}

func newAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientName: a.PatientName,
		Email:       a.Email,
		Phone:       a.Phone,
		Date:        a.DateString(),
		Time:        a.Time,
		Physician:   a.Physician,
		CreatedAt:   a.CreatedAt,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
