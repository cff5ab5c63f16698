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

type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	Get(ctx context.Context, id string) (model.Contact, error)
	List(ctx context.Context) ([]model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id string) error
}

type ContactHandler struct {
	store    ContactStore
	notifier Notifier
	events   EventPublisher
	logger   *slog.Logger
}

func NewContactHandler(store ContactStore, notifier Notifier, publisher EventPublisher, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		store:    store,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
	}
}

func (h *ContactHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/contact", h.List)
	mux.HandleFunc("POST /api/contact", h.Create)
	mux.HandleFunc("GET /api/contact/{id}", h.Get)
	mux.HandleFunc("PUT /api/contact/{id}", h.Update)
	mux.HandleFunc("DELETE /api/contact/{id}", h.Delete)
}

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Error sending message", errors.New("invalid json body"))
		return
	}

	c := &model.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Error sending message", err)
		return
	}

	if err := h.store.Create(r.Context(), c); err != nil {
		h.logger.Error("contact create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error sending message", nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Message sent successfully",
		"contact": c,
	})

	if h.notifier != nil {
		h.notifier.ContactReceived(c)
	}
	if h.events != nil {
		h.events.Publish(r.Context(), events.ContactCreated, c.ID, c)
	}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("contact list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error listing contact messages", nil)
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Contact message not found")
			return
		}
		h.logger.Error("contact get failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error loading contact message", nil)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type updateContactRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Error updating contact message", errors.New("invalid json body"))
		return
	}

	c, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Contact message not found")
			return
		}
		h.logger.Error("contact get failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error updating contact message", nil)
		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Subject != nil {
		c.Subject = *req.Subject
	}
	if req.Message != nil {
		c.Message = *req.Message
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Error updating contact message", err)
		return
	}

	if err := h.store.Update(r.Context(), &c); err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Contact message not found")
			return
		}
		h.logger.Error("contact update failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error updating contact message", nil)
		return
	}

	writeJSON(w, http.StatusOK, c)

	if h.events != nil {
		h.events.Publish(r.Context(), events.ContactUpdated, c.ID, c)
	}
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Contact message not found")
			return
		}
		h.logger.Error("contact delete failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error deleting contact message", nil)
		return
	}
	writeMessage(w, http.StatusOK, "Contact message deleted successfully")

	if h.events != nil {
		h.events.Publish(r.Context(), events.ContactDeleted, id, map[string]string{"id": id})
	}
}
