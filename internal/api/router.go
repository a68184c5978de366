package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type AppointmentService interface {
	Book(ctx context.Context, req appointment.Request) (*appointment.Appointment, error)
	List(ctx context.Context) ([]appointment.Appointment, error)
}

type RouterConfig struct {
	Service      AppointmentService
	PostgresPing PingFunc
	RedisPing    PingFunc
	Physicians   []string
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.PostgresPing, cfg.RedisPing, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Front desk pages
	p := &pages{svc: cfg.Service, physicians: cfg.Physicians, log: cfg.Logger}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/book", http.StatusSeeOther)
	})
	r.Get("/book", p.bookForm)
	r.Post("/book", p.bookSubmit)
	r.Get("/list", p.list)

	// JSON endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Service, cfg.Logger))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service, cfg.Logger))

	return r
}
