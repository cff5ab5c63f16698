package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/suraksha-car-care/backend/internal/events"
	"github.com/suraksha-car-care/backend/internal/model"
	"github.com/suraksha-car-care/backend/internal/storage"
)

// AppointmentStore is the slice of the storage layer the handler needs;
// tests substitute an in-memory fake.
type AppointmentStore interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Get(ctx context.Context, id string) (model.Appointment, error)
	List(ctx context.Context) ([]model.Appointment, error)
	ListByStatus(ctx context.Context, status string) ([]model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	Delete(ctx context.Context, id string) error
}

type AppointmentHandler struct {
	store    AppointmentStore
	notifier Notifier
	events   EventPublisher
	logger   *slog.Logger
}

func NewAppointmentHandler(store AppointmentStore, notifier Notifier, publisher EventPublisher, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		store:    store,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
	}
}

func (h *AppointmentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/appointments", h.List)
	mux.HandleFunc("POST /api/appointments", h.Create)
	mux.HandleFunc("GET /api/appointments/status/{status}", h.ListByStatus)
	mux.HandleFunc("GET /api/appointments/{id}", h.Get)
	mux.HandleFunc("PUT /api/appointments/{id}", h.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", h.Delete)
}

type createAppointmentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Service  string `json:"service"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Address  string `json:"address"`
	CarModel string `json:"carModel"`
	Message  string `json:"message"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Error booking appointment", errors.New("invalid json body"))
		return
	}

	appt := &model.Appointment{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Service:  req.Service,
		Time:     req.Time,
		Address:  req.Address,
		CarModel: req.CarModel,
		Message:  req.Message,
		Status:   model.StatusPending,
	}
	if req.Date != "" {
		date, err := model.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Error booking appointment", err)
			return
		}
		appt.Date = date
	}
	appt.Normalize()
	if err := appt.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Error booking appointment", err)
		return
	}

	if err := h.store.Create(r.Context(), appt); err != nil {
		h.logger.Error("appointment create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error booking appointment", nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})

	// Response is written; everything below is deferred best-effort work.
	if h.notifier != nil {
		h.notifier.AppointmentBooked(appt)
	}
	if h.events != nil {
		h.events.Publish(r.Context(), events.AppointmentCreated, appt.ID, appt)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error listing appointments", nil)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.PathValue("status")
	if !model.IsValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Error listing appointments", errors.New("invalid status "+status))
		return
	}
	appts, err := h.store.ListByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error("appointment list by status failed", "err", err, "status", status)
		writeError(w, http.StatusInternalServerError, "Error listing appointments", nil)
		return
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("appointment get failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error loading appointment", nil)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type updateAppointmentRequest struct {
	Name               *string  `json:"name"`
	Email              *string  `json:"email"`
	Phone              *string  `json:"phone"`
	Service            *string  `json:"service"`
	Date               *string  `json:"date"`
	Time               *string  `json:"time"`
	Address            *string  `json:"address"`
	CarModel           *string  `json:"carModel"`
	Message            *string  `json:"message"`
	Status             *string  `json:"status"`
	AssignedTechnician *string  `json:"assignedTechnician"`
	EstimatedCost      *float64 `json:"estimatedCost"`
	ActualCost         *float64 `json:"actualCost"`
	Notes              *string  `json:"notes"`
}

// Update applies a partial patch and re-validates the merged record against
// the full schema, so a patch can never leave a stored record invalid.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Error updating appointment", errors.New("invalid json body"))
		return
	}

	appt, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("appointment get failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error updating appointment", nil)
		return
	}

	if req.Name != nil {
		appt.Name = *req.Name
	}
	if req.Email != nil {
		appt.Email = *req.Email
	}
	if req.Phone != nil {
		appt.Phone = *req.Phone
	}
	if req.Service != nil {
		appt.Service = *req.Service
	}
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Error updating appointment", err)
			return
		}
		appt.Date = date
	}
	if req.Time != nil {
		appt.Time = *req.Time
	}
	if req.Address != nil {
		appt.Address = *req.Address
	}
	if req.CarModel != nil {
		appt.CarModel = *req.CarModel
	}
	if req.Message != nil {
		appt.Message = *req.Message
	}
	if req.Status != nil {
		appt.Status = *req.Status
	}
	if req.AssignedTechnician != nil {
		appt.AssignedTechnician = *req.AssignedTechnician
	}
	if req.EstimatedCost != nil {
		appt.EstimatedCost = req.EstimatedCost
	}
	if req.ActualCost != nil {
		appt.ActualCost = req.ActualCost
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	appt.Normalize()
	if err := appt.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Error updating appointment", err)
		return
	}

	if err := h.store.Update(r.Context(), &appt); err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("appointment update failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error updating appointment", nil)
		return
	}

	writeJSON(w, http.StatusOK, appt)

	if h.events != nil {
		h.events.Publish(r.Context(), events.AppointmentUpdated, appt.ID, appt)
	}
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("appointment delete failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error deleting appointment", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Appointment deleted successfully")

	if h.events != nil {
		h.events.Publish(r.Context(), events.AppointmentDeleted, id, map[string]string{"id": id})
	}
}
