// Package apptest provides in-process doubles for the appointment package,
// for use in tests that cannot reach Postgres or Redis.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type key struct {
	date      string
	physician string
}

// Store is an appointment.Store that enforces the (date, physician) constraint
// under a mutex, mirroring the table constraint.
type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   []appointment.Appointment
	taken  map[key]struct{}

	// Err, when set, is returned from every call as a storage failure.
	Err error

	creates int
	lists   int
}

func NewStore() *Store {
	return &Store{taken: make(map[key]struct{})}
}

func (s *Store) Create(_ context.Context, c appointment.Candidate) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creates++
	if s.Err != nil {
		return nil, &appointment.StorageError{Op: "insert appointment", Err: s.Err}
	}

	k := key{date: c.Date.Format(appointment.DateLayout), physician: c.Physician}
	if _, ok := s.taken[k]; ok {
		return nil, appointment.ErrConflict
	}

	s.nextID++
	a := appointment.Appointment{
		ID:          s.nextID,
		PatientName: c.PatientName,
		Email:       c.Email,
		Phone:       c.Phone,
		Date:        c.Date,
		Time:        c.Time,
		Physician:   c.Physician,
		CreatedAt:   time.Now().UTC(),
	}
	s.taken[k] = struct{}{}
	s.rows = append(s.rows, a)
	return &a, nil
}

func (s *Store) List(_ context.Context) ([]appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists++
	if s.Err != nil {
		return nil, &appointment.StorageError{Op: "list appointments", Err: s.Err}
	}

	out := make([]appointment.Appointment, len(s.rows))
	copy(out, s.rows)
	sort.Slice(out, func(i, j int) bool { return appointment.Less(out[i], out[j]) })
	return out, nil
}

// Len is the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Calls returns how many times Create and List were invoked.
func (s *Store) Calls() (creates, lists int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.lists
}
