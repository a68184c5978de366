package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

func createAppointmentHandler(svc AppointmentService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Book(r.Context(), req.toDomain())
		if err != nil {
			handleBookError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, newAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(svc AppointmentService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			logger.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("list appointments failed")
			writeError(w, http.StatusInternalServerError, appointment.OutcomeInternal, "could not load appointments")
			return
		}

		resp := make([]AppointmentResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, newAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleBookError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, string(verr.Kind), verr.Error())
	case errors.Is(err, appointment.ErrConflict):
		writeError(w, http.StatusConflict, appointment.OutcomeConflict, err.Error())
	default:
		logger.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("create appointment failed")
		writeError(w, http.StatusInternalServerError, appointment.OutcomeInternal, "could not save appointment")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
