package api

import (
	"net/http"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

const flashCookie = "flash"

var flashMessages = map[string]string{
	appointment.OutcomeCreated:             "Appointment booked successfully.",
	string(appointment.KindMissingFields):  "Fill in all required fields (name, date, time and physician).",
	string(appointment.KindInvalidDate):    "Invalid date.",
	string(appointment.KindNonBusinessDay): "Appointments can only be booked Monday to Friday.",
	string(appointment.KindInvalidTime):    "Invalid time.",
	string(appointment.KindInvalidSlot):    "Allowed times: on the hour, from 08:00 to 16:00.",
	appointment.OutcomeConflict:            "This physician already has an appointment on that date.",
}

type flash struct {
	Code    string
	Message string
}

func (f flash) Success() bool { return f.Code == appointment.OutcomeCreated }

func setFlash(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    code,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads the pending message, if any, and clears the cookie. Unknown
// codes are dropped.
func popFlash(w http.ResponseWriter, r *http.Request) (flash, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return flash{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	msg, ok := flashMessages[c.Value]
	if !ok {
		return flash{}, false
	}
	return flash{Code: c.Value, Message: msg}, true
}
