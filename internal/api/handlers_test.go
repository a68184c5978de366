package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/appointment/apptest"
)

func newTestServer(t *testing.T, store *apptest.Store, redis PingFunc) http.Handler {
	t.Helper()
	svc := appointment.NewService(store, nil, zerolog.Nop())
	return NewRouter(RouterConfig{
		Service:      svc,
		PostgresPing: func(context.Context) error { return nil },
		RedisPing:    redis,
		Physicians:   []string{"A", "B", "C"},
		Logger:       zerolog.Nop(),
		Env:          "test",
	})
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestCreateAppointment_JSON(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	rec := postJSON(t, h, `{"patient_name":"Ana","date":"2025-06-02","time":"10:00","physician":"A"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == 0 || resp.Date != "2025-06-02" || resp.Time != "10:00" || resp.Physician != "A" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestCreateAppointment_JSONErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad body", `{`, http.StatusBadRequest, "invalid_request_body"},
		{"missing fields", `{"patient_name":"","date":"2025-06-02","time":"10:00","physician":"A"}`, http.StatusUnprocessableEntity, "missing_fields"},
		{"invalid date", `{"patient_name":"Ana","date":"tomorrow","time":"10:00","physician":"A"}`, http.StatusUnprocessableEntity, "invalid_date"},
		{"sunday", `{"patient_name":"Ana","date":"2025-06-01","time":"10:00","physician":"A"}`, http.StatusUnprocessableEntity, "non_business_day"},
		{"invalid time", `{"patient_name":"Ana","date":"2025-06-02","time":"noon","physician":"A"}`, http.StatusUnprocessableEntity, "invalid_time"},
		{"early slot", `{"patient_name":"Ana","date":"2025-06-02","time":"07:00","physician":"A"}`, http.StatusUnprocessableEntity, "invalid_slot"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := apptest.NewStore()
			rec := postJSON(t, newTestServer(t, store, nil), tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := decodeError(t, rec).Error; got != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, got)
			}
			if store.Len() != 0 {
				t.Fatal("rejected request must not be stored")
			}
		})
	}
}

func TestCreateAppointment_Conflict(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	if rec := postJSON(t, h, `{"patient_name":"Ana","date":"2025-06-02","time":"09:00","physician":"B"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: %d", rec.Code)
	}
	rec := postJSON(t, h, `{"patient_name":"Bruno","date":"2025-06-02","time":"11:00","physician":"B"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "conflict" {
		t.Fatalf("expected conflict code, got %s", got)
	}
}

func TestCreateAppointment_StorageFailure(t *testing.T) {
	store := apptest.NewStore()
	store.Err = errors.New("connection refused")
	h := newTestServer(t, store, nil)

	rec := postJSON(t, h, `{"patient_name":"Ana","date":"2025-06-02","time":"10:00","physician":"A"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "internal_error" {
		t.Fatalf("expected internal_error, got %s", got)
	}
}

func TestListAppointments_JSONOrdered(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	for _, body := range []string{
		`{"patient_name":"p1","date":"2025-06-03","time":"08:00","physician":"A"}`,
		`{"patient_name":"p2","date":"2025-06-02","time":"15:00","physician":"B"}`,
		`{"patient_name":"p3","date":"2025-06-02","time":"09:00","physician":"A"}`,
	} {
		if rec := postJSON(t, h, body); rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: %d", body, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list []AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, a := range list {
		names = append(names, a.PatientName)
	}
	if strings.Join(names, ",") != "p3,p2,p1" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestListAppointments_EmptyIsArray(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func submitForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// followFlash replays the flash cookie from a POST response on GET /book.
func followFlash(t *testing.T, h http.Handler, post *httptest.ResponseRecorder) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	for _, c := range post.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /book: %d", rec.Code)
	}
	return rec.Body.String()
}

func TestBookForm_SuccessThenListed(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	post := submitForm(t, h, url.Values{
		"patient_name": {"Paciente Teste"},
		"email":        {"paciente@teste.com"},
		"phone":        {"11999999999"},
		"date":         {"2025-03-03"},
		"time":         {"10:00"},
		"physician":    {"A"},
	})
	if post.Code != http.StatusSeeOther || post.Header().Get("Location") != "/book" {
		t.Fatalf("expected redirect to /book, got %d %s", post.Code, post.Header().Get("Location"))
	}
	if page := followFlash(t, h, post); !strings.Contains(page, "Appointment booked successfully.") {
		t.Fatalf("missing success message in page:\n%s", page)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list", nil))
	body := rec.Body.String()
	for _, want := range []string{"Paciente Teste", "2025-03-03", "10:00", "Physician A"} {
		if !strings.Contains(body, want) {
			t.Errorf("list page missing %q", want)
		}
	}
}

func TestBookForm_RejectionMessages(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing", url.Values{"patient_name": {""}, "date": {"2025-03-03"}, "time": {"10:00"}, "physician": {"A"}}, "Fill in all required fields"},
		{"weekend", url.Values{"patient_name": {"Ana"}, "date": {"2025-03-08"}, "time": {"10:00"}, "physician": {"A"}}, "Monday to Friday"},
		{"slot", url.Values{"patient_name": {"Ana"}, "date": {"2025-03-03"}, "time": {"07:00"}, "physician": {"A"}}, "from 08:00 to 16:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := apptest.NewStore()
			h := newTestServer(t, store, nil)
			post := submitForm(t, h, tc.form)
			if page := followFlash(t, h, post); !strings.Contains(page, tc.want) {
				t.Fatalf("expected %q in page:\n%s", tc.want, page)
			}
			if store.Len() != 0 {
				t.Fatal("rejected form must not be stored")
			}
		})
	}
}

func TestBookForm_SamePhysicianSameDay(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	first := url.Values{"patient_name": {"Paciente 1"}, "date": {"2025-03-04"}, "time": {"09:00"}, "physician": {"B"}}
	second := url.Values{"patient_name": {"Paciente 2"}, "date": {"2025-03-04"}, "time": {"11:00"}, "physician": {"B"}}

	submitForm(t, h, first)
	post := submitForm(t, h, second)
	if page := followFlash(t, h, post); !strings.Contains(page, "already has an appointment on that date") {
		t.Fatalf("expected conflict message, got:\n%s", page)
	}
}

func TestBookForm_StorageFailure(t *testing.T) {
	store := apptest.NewStore()
	store.Err = errors.New("connection refused")
	h := newTestServer(t, store, nil)

	post := submitForm(t, h, url.Values{"patient_name": {"Ana"}, "date": {"2025-03-03"}, "time": {"10:00"}, "physician": {"A"}})
	if post.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", post.Code)
	}
	if loc := post.Header().Get("Location"); loc != "" {
		t.Errorf("storage failure must not redirect, got Location %q", loc)
	}
	for _, c := range post.Result().Cookies() {
		if c.Name == flashCookie {
			t.Fatalf("storage failure must not set a flash cookie, got %q", c.Value)
		}
	}
	if strings.Contains(post.Body.String(), "connection refused") {
		t.Error("storage error details must not reach the client")
	}
}

func TestListPage_StorageFailure(t *testing.T) {
	store := apptest.NewStore()
	store.Err = errors.New("connection refused")
	h := newTestServer(t, store, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/list", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<table") {
		t.Error("failed listing must not render the table")
	}
}

func TestBookForm_FlashIsCleared(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "created"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected flash cookie to be cleared")
	}
}

func TestBookForm_UnknownFlashIgnored(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "<script>"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "<script>") {
		t.Fatal("unknown flash code must not be echoed")
	}
}

func TestRootRedirects(t *testing.T) {
	h := newTestServer(t, apptest.NewStore(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/book" {
		t.Fatalf("expected redirect to /book, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name   string
		redis  PingFunc
		status string
		code   int
	}{
		{"cache disabled", nil, "ok", http.StatusOK},
		{"cache up", func(context.Context) error { return nil }, "ok", http.StatusOK},
		{"cache down", func(context.Context) error { return errors.New("down") }, "degraded", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, apptest.NewStore(), tc.redis)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp ReadinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tc.status {
				t.Fatalf("expected status %s, got %s", tc.status, resp.Status)
			}
		})
	}
}

func TestReadiness_PostgresDown(t *testing.T) {
	h := NewHealthHandler(func(context.Context) error { return errors.New("down") }, nil, "test", "")
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
