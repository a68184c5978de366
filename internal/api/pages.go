package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type bookPage struct {
	Flash      *flash
	Physicians []string
	Slots      []string
}

type listPage struct {
	Appointments []AppointmentResponse
}

type pages struct {
	svc        AppointmentService
	physicians []string
	log        zerolog.Logger
}

func (p *pages) bookForm(w http.ResponseWriter, r *http.Request) {
	data := bookPage{
		Physicians: p.physicians,
		Slots:      appointment.Slots(),
	}
	if f, ok := popFlash(w, r); ok {
		data.Flash = &f
	}
	p.render(w, r, "book.html", data)
}

func (p *pages) bookSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	req := appointment.Request{
		PatientName: r.PostForm.Get("patient_name"),
		Email:       r.PostForm.Get("email"),
		Phone:       r.PostForm.Get("phone"),
		Date:        r.PostForm.Get("date"),
		Time:        r.PostForm.Get("time"),
		Physician:   r.PostForm.Get("physician"),
	}

	_, err := p.svc.Book(r.Context(), req)
	var verr *appointment.ValidationError
	if err != nil && !errors.As(err, &verr) && !errors.Is(err, appointment.ErrConflict) {
		p.log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("create appointment failed")
		http.Error(w, "could not save the appointment", http.StatusInternalServerError)
		return
	}

	setFlash(w, appointment.Outcome(err))
	http.Redirect(w, r, "/book", http.StatusSeeOther)
}

func (p *pages) list(w http.ResponseWriter, r *http.Request) {
	list, err := p.svc.List(r.Context())
	if err != nil {
		p.log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("list appointments failed")
		http.Error(w, "could not load appointments", http.StatusInternalServerError)
		return
	}

	data := listPage{Appointments: make([]AppointmentResponse, 0, len(list))}
	for _, a := range list {
		data.Appointments = append(data.Appointments, newAppointmentResponse(a))
	}
	p.render(w, r, "list.html", data)
}

func (p *pages) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		p.log.Error().Err(err).Str("template", name).Str("request_id", GetRequestID(r.Context())).Msg("render failed")
	}
}
