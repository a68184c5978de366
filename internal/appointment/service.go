package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	EventAppointmentCreated  = "appointment_created"
	EventAppointmentRejected = "appointment_rejected"
)

type Service struct {
	store Store
	cache ListCache
	log   zerolog.Logger
}

// NewService wires the booking flow. cache may be nil.
func NewService(store Store, cache ListCache, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		cache: cache,
		log:   logger.With().Str("component", "appointment").Logger(),
	}
}

// Book validates the request and, if it passes, persists it. The returned
// error is a *ValidationError, ErrConflict or a storage failure; nothing is
// written unless validation succeeds.
func (s *Service) Book(ctx context.Context, req Request) (*Appointment, error) {
	candidate, err := Validate(req)
	if err != nil {
		s.log.Info().
			Str("event", EventAppointmentRejected).
			Str("reason", Outcome(err)).
			Msg("booking rejected")
		return nil, err
	}

	appt, err := s.store.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.log.Info().
				Str("event", EventAppointmentRejected).
				Str("reason", OutcomeConflict).
				Str("date", candidate.Date.Format(DateLayout)).
				Str("physician", candidate.Physician).
				Msg("booking rejected")
			return nil, err
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate appointment listing cache")
		}
	}

	s.log.Info().
		Str("event", EventAppointmentCreated).
		Int64("appointment_id", appt.ID).
		Str("date", appt.DateString()).
		Str("time", appt.Time).
		Str("physician", appt.Physician).
		Msg("appointment booked")

	return appt, nil
}

// List returns all appointments in listing order, served from the cache when a
// listing for the current generation is available.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	if s.cache == nil {
		return s.listFromStore(ctx)
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("listing cache unavailable")
		return s.listFromStore(ctx)
	}

	cached, ok, err := s.cache.Get(ctx, gen)
	if err != nil {
		s.log.Warn().Err(err).Int64("generation", gen).Msg("listing cache read failed")
	}
	if ok {
		return cached, nil
	}

	list, err := s.listFromStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, gen, list); err != nil {
		s.log.Warn().Err(err).Int64("generation", gen).Msg("listing cache write failed")
	}
	return list, nil
}

func (s *Service) listFromStore(ctx context.Context) ([]Appointment, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return list, nil
}
