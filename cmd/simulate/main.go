package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/api"
	"github.com/hackgods/clinic-booking/internal/appointment"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Days       int
	Physicians []string
	ReadRatio  float64
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status == http.StatusCreated || status == http.StatusOK:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case status == http.StatusUnprocessableEntity:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	log     zerolog.Logger
	dates   []string
	booking OperationMetrics
	listing OperationMetrics
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("service", "simulate").Logger()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Str("api", cfg.APIBaseURL).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Int("days", cfg.Days).
		Strs("physicians", cfg.Physicians).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger,
		dates:  businessDays(time.Now().UTC(), cfg.Days),
	}

	sim.Run()
	sim.PrintReport()

	if violations := sim.Verify(); violations > 0 {
		logger.Error().Int("violations", violations).Msg("listing verification failed")
		os.Exit(1)
	}
	logger.Info().Msg("listing verified: no duplicate (date, physician) and correct order")
}

func loadConfig() SimConfig {
	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL: getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:   getDuration("SIM_DURATION", 15*time.Second),
		Workers:    getInt("SIM_WORKERS", 10),
		Days:       getInt("SIM_DAYS", 5),
		ReadRatio:  getFloat("SIM_READ_RATIO", 0.2),
	}
	for _, p := range strings.Split(getEnv("PHYSICIANS", "A,B,C"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Physicians = append(cfg.Physicians, p)
		}
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	if len(cfg.Physicians) == 0 {
		return fmt.Errorf("PHYSICIANS must list at least one physician")
	}
	if cfg.ReadRatio < 0 || cfg.ReadRatio > 1 {
		return fmt.Errorf("SIM_READ_RATIO must be within [0, 1]")
	}
	return nil
}

// businessDays returns n weekdays after from. A small space keeps workers
// racing for the same (date, physician) pairs.
func businessDays(from time.Time, n int) []string {
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

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info().Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	slots := appointment.Slots()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if rng.Float64() < s.config.ReadRatio {
			s.doList(ctx)
			continue
		}

		req := api.CreateAppointmentRequest{
			PatientName: fmt.Sprintf("sim-%d-%d", workerID, rng.Int63()),
			Date:        s.dates[rng.Intn(len(s.dates))],
			Time:        slots[rng.Intn(len(slots))],
			Physician:   s.config.Physicians[rng.Intn(len(s.config.Physicians))],
		}
		s.doBooking(ctx, req)
	}
}

func (s *Simulator) doBooking(ctx context.Context, req api.CreateAppointmentRequest) {
	body, _ := json.Marshal(req)

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == nil {
			s.booking.Record(time.Since(start), 0)
		}
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	s.booking.Record(time.Since(start), resp.StatusCode)
}

func (s *Simulator) doList(ctx context.Context) {
	start := time.Now()
	_, status, err := s.fetchListing(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	s.listing.Record(time.Since(start), status)
}

func (s *Simulator) fetchListing(ctx context.Context) ([]api.AppointmentResponse, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/appointments", nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("list appointments: status %d", resp.StatusCode)
	}

	var list []api.AppointmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode listing: %w", err)
	}
	return list, resp.StatusCode, nil
}

// Verify fetches the final listing and counts duplicate (date, physician)
// pairs and adjacent rows out of order.
func (s *Simulator) Verify() int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, _, err := s.fetchListing(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("fetch final listing")
		return 1
	}

	violations := 0
	seen := make(map[string]int64, len(list))
	prev := appointment.Appointment{}
	for i, r := range list {
		key := r.Date + "|" + r.Physician
		if id, ok := seen[key]; ok {
			s.log.Error().Int64("id", r.ID).Int64("duplicate_of", id).Str("key", key).Msg("duplicate booking")
			violations++
		}
		seen[key] = r.ID

		date, err := time.Parse(appointment.DateLayout, r.Date)
		if err != nil {
			s.log.Error().Err(err).Int64("id", r.ID).Msg("unparseable date in listing")
			violations++
			continue
		}
		cur := appointment.Appointment{ID: r.ID, Date: date, Time: r.Time, Physician: r.Physician}
		if i > 0 && appointment.Less(cur, prev) {
			s.log.Error().Int64("id", r.ID).Int64("after", prev.ID).Msg("listing out of order")
			violations++
		}
		prev = cur
	}

	fmt.Printf("Final listing: %d appointments over %d (date, physician) pairs\n", len(list), len(s.dates)*len(s.config.Physicians))
	return violations
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Bookings", &s.booking)
	printOperationReport("Listings", &s.listing)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		fmt.Printf("%s: no operations\n\n", name)
		return
	}

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", om.Success, pct(om.Success))
	if om.Conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", om.Conflict, pct(om.Conflict))
	}
	if om.Rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", om.Rejected, pct(om.Rejected))
	}
	if om.Error > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", om.Error, pct(om.Error))
	}

	avg, min, max, p50, p95 := om.Stats()
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n", avg, min, max, p50, p95)
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
