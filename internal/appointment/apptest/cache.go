package apptest

import (
	"context"
	"sync"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

// Cache is an in-process appointment.ListCache.
type Cache struct {
	mu      sync.Mutex
	gen     int64
	entries map[int64][]appointment.Appointment

	// Err, when set, fails every call.
	Err error
}

func NewCache() *Cache {
	return &Cache{entries: make(map[int64][]appointment.Appointment)}
}

func (c *Cache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.gen, nil
}

func (c *Cache) Get(_ context.Context, gen int64) ([]appointment.Appointment, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, false, c.Err
	}
	list, ok := c.entries[gen]
	return list, ok, nil
}

func (c *Cache) Put(_ context.Context, gen int64, list []appointment.Appointment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[gen] = list
	return nil
}

func (c *Cache) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.gen++
	return nil
}
