package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
)

func main() {
	count := flag.Int("count", 40, "number of bookings to attempt")
	days := flag.Int("days", 10, "number of upcoming business days to spread bookings over")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("service", "seed").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.PoolOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	faker := gofakeit.New(*seed)

	svc := appointment.NewService(appointment.NewPgRepository(pool), nil, zerolog.Nop())
	dates := upcomingBusinessDays(time.Now().UTC(), *days)
	slots := appointment.Slots()

	logger.Info().Int("count", *count).Int("days", len(dates)).Strs("physicians", cfg.Physicians).Msg("seeding appointments")

	var created, conflicts int
	for i := 0; i < *count; i++ {
		req := appointment.Request{
			PatientName: faker.Name(),
			Email:       faker.Email(),
			Phone:       faker.Phone(),
			Date:        dates[faker.Number(0, len(dates)-1)],
			Time:        slots[faker.Number(0, len(slots)-1)],
			Physician:   cfg.Physicians[faker.Number(0, len(cfg.Physicians)-1)],
		}

		_, err := svc.Book(ctx, req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, appointment.ErrConflict):
			conflicts++
		default:
			logger.Fatal().Err(err).Str("outcome", appointment.Outcome(err)).Msg("seed booking failed")
		}
	}

	logger.Info().Int("created", created).Int("conflicts", conflicts).Msg("seed complete")
}

// upcomingBusinessDays returns the next n weekdays after from, as YYYY-MM-DD.
func upcomingBusinessDays(from time.Time, n int) []string {
	if n <= 0 {
		n = 1
	}
	out := make([]string, 0, n)
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for len(out) < n {
		d = d.AddDate(0, 0, 1)
		if appointment.IsBusinessDay(d) {
			out = append(out, d.Format(appointment.DateLayout))
		}
	}
	return out
}
