package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/suraksha-car-care/backend/internal/model"
	"github.com/suraksha-car-care/backend/internal/storage"
)

type fakeAppointmentStore struct {
	mu    sync.Mutex
	appts map[string]model.Appointment
	seq   int
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{appts: make(map[string]model.Appointment)}
}

func (s *fakeAppointmentStore) Create(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	appt.ID = fmt.Sprintf("appt-%d", s.seq)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
	appt.CreatedAt = now
	appt.UpdatedAt = now
	s.appts[appt.ID] = *appt
	return nil
}

func (s *fakeAppointmentStore) Get(_ context.Context, id string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appts[id]
	if !ok {
		return model.Appointment{}, storage.ErrNotFound
	}
	return appt, nil
}

func (s *fakeAppointmentStore) List(_ context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Appointment
	for _, a := range s.appts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeAppointmentStore) ListByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	all, _ := s.List(ctx)
	var out []model.Appointment
	for _, a := range all {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAppointmentStore) Update(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appts[appt.ID]; !ok {
		return storage.ErrNotFound
	}
	appt.UpdatedAt = appt.UpdatedAt.Add(time.Minute)
	s.appts[appt.ID] = *appt
	return nil
}

func (s *fakeAppointmentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.appts, id)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	appts    []*model.Appointment
	contacts []*model.Contact
}

func (n *fakeNotifier) AppointmentBooked(appt *model.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.appts = append(n.appts, appt)
}

func (n *fakeNotifier) ContactReceived(c *model.Contact) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, c)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAppointmentMux(store *fakeAppointmentStore, notifier *fakeNotifier) *http.ServeMux {
	mux := http.NewServeMux()
	NewAppointmentHandler(store, notifier, nil, testLogger()).Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func bookingPayload() map[string]any {
	return map[string]any{
		"name":     "Asha Rao",
		"email":    "Asha@Example.com",
		"phone":    "9876543210",
		"service":  "full-service",
		"date":     "2024-05-10",
		"time":     "10:30",
		"address":  "12 MG Road",
		"carModel": "Honda City",
		"message":  "Please check the brakes too",
	}
}

func TestCreateAppointment(t *testing.T) {
	store := newFakeAppointmentStore()
	notifier := &fakeNotifier{}
	mux := newAppointmentMux(store, notifier)

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Message     string            `json:"message"`
		Appointment model.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Appointment booked successfully" {
		t.Fatalf("message = %q", resp.Message)
	}
	appt := resp.Appointment
	if appt.ID == "" {
		t.Fatal("appointment id not assigned")
	}
	if appt.Status != model.StatusPending {
		t.Fatalf("status = %q, want pending", appt.Status)
	}
	if appt.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", appt.Email)
	}
	if appt.CreatedAt.IsZero() || appt.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	if len(notifier.appts) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(notifier.appts))
	}
	if notifier.appts[0].ID != appt.ID {
		t.Fatal("notifier received a different record")
	}
}

func TestCreateAppointment_MissingField(t *testing.T) {
	store := newFakeAppointmentStore()
	notifier := &fakeNotifier{}
	mux := newAppointmentMux(store, notifier)

	payload := bookingPayload()
	delete(payload, "phone")

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Error booking appointment" {
		t.Fatalf("message = %q", resp.Message)
	}
	if !strings.Contains(resp.Error, "phone") {
		t.Fatalf("error = %q, should mention phone", resp.Error)
	}

	if len(store.appts) != 0 {
		t.Fatal("rejected submission must not be persisted")
	}
	if len(notifier.appts) != 0 {
		t.Fatal("rejected submission must not trigger notifications")
	}
}

func TestCreateAppointment_InvalidJSON(t *testing.T) {
	mux := newAppointmentMux(newFakeAppointmentStore(), &fakeNotifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAppointment_BadDate(t *testing.T) {
	mux := newAppointmentMux(newFakeAppointmentStore(), &fakeNotifier{})

	payload := bookingPayload()
	payload["date"] = "10/05/2024"

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAppointment(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	var created struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/appointments/"+created.Appointment.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got model.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.ID != created.Appointment.ID || got.Name != "Asha Rao" || got.CarModel != "Honda City" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	mux := newAppointmentMux(newFakeAppointmentStore(), &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodGet, "/api/appointments/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Appointment not found" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestUpdateAppointment_StatusOnly(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	var created struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	before := created.Appointment

	rec = doJSON(t, mux, http.MethodPut, "/api/appointments/"+before.ID, map[string]any{
		"status": model.StatusConfirmed,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got model.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Fatalf("status = %q, want confirmed", got.Status)
	}
	if got.Name != before.Name || got.Email != before.Email || got.Service != before.Service {
		t.Fatal("untouched fields must survive a partial update")
	}
	if !got.UpdatedAt.After(before.UpdatedAt) {
		t.Fatal("updatedAt should advance on update")
	}
}

func TestUpdateAppointment_InvalidStatus(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	var created struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(t, mux, http.MethodPut, "/api/appointments/"+created.Appointment.ID, map[string]any{
		"status": "done",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	stored, err := store.Get(context.Background(), created.Appointment.ID)
	if err != nil {
		t.Fatalf("get stored record: %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Fatalf("invalid patch must not change the record, status = %q", stored.Status)
	}
}

func TestUpdateAppointment_NotFound(t *testing.T) {
	mux := newAppointmentMux(newFakeAppointmentStore(), &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodPut, "/api/appointments/no-such-id", map[string]any{
		"status": model.StatusCancelled,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteAppointment(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	var created struct {
		Appointment model.Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created.Appointment.ID

	rec = doJSON(t, mux, http.MethodDelete, "/api/appointments/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/appointments/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/api/appointments/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", rec.Code)
	}
}

func TestListAppointments(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	rec := doJSON(t, mux, http.MethodGet, "/api/appointments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty list should encode as [], got %s", body)
	}

	for i := 0; i < 3; i++ {
		doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
	}
	rec = doJSON(t, mux, http.MethodGet, "/api/appointments", nil)
	var appts []model.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appts); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(appts) != 3 {
		t.Fatalf("len = %d, want 3", len(appts))
	}
	for i := 1; i < len(appts); i++ {
		if appts[i].CreatedAt.After(appts[i-1].CreatedAt) {
			t.Fatal("list must be ordered newest first")
		}
	}
}

func TestListAppointmentsByStatus(t *testing.T) {
	store := newFakeAppointmentStore()
	mux := newAppointmentMux(store, &fakeNotifier{})

	var ids []string
	for i := 0; i < 4; i++ {
		rec := doJSON(t, mux, http.MethodPost, "/api/appointments", bookingPayload())
		var created struct {
			Appointment model.Appointment `json:"appointment"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode create response: %v", err)
		}
		ids = append(ids, created.Appointment.ID)
	}
	for _, id := range ids[:2] {
		rec := doJSON(t, mux, http.MethodPut, "/api/appointments/"+id, map[string]any{
			"status": model.StatusCompleted,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("patch status = %d", rec.Code)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/appointments/status/completed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var appts []model.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appts); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("len = %d, want 2", len(appts))
	}
	for _, a := range appts {
		if a.Status != model.StatusCompleted {
			t.Fatalf("filter leaked status %q", a.Status)
		}
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/appointments/status/archived", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status filter = %d, want 400", rec.Code)
	}
}
