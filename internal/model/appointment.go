package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Appointment statuses. Transitions are unrestricted within this set; the
// workshop staff drive them manually from the admin panel.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var appointmentStatuses = map[string]struct{}{
	StatusPending:    {},
	StatusConfirmed:  {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func IsValidStatus(s string) bool {
	_, ok := appointmentStatuses[s]
	return ok
}

type Appointment struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Service            string    `json:"service"`
	Date               time.Time `json:"date"`
	Time               string    `json:"time"`
	Address            string    `json:"address"`
	CarModel           string    `json:"carModel"`
	Message            string    `json:"message,omitempty"`
	Status             string    `json:"status"`
	AssignedTechnician string    `json:"assignedTechnician,omitempty"`
	EstimatedCost      *float64  `json:"estimatedCost,omitempty"`
	ActualCost         *float64  `json:"actualCost,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Normalize trims user-supplied fields and lowercases the email.
func (a *Appointment) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Phone = strings.TrimSpace(a.Phone)
	a.Service = strings.TrimSpace(a.Service)
	a.Time = strings.TrimSpace(a.Time)
	a.Address = strings.TrimSpace(a.Address)
	a.CarModel = strings.TrimSpace(a.CarModel)
	a.Message = strings.TrimSpace(a.Message)
	a.AssignedTechnician = strings.TrimSpace(a.AssignedTechnician)
	a.Notes = strings.TrimSpace(a.Notes)
}

func (a *Appointment) Validate() error {
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.Phone == "" {
		return errors.New("phone is required")
	}
	if a.Service == "" {
		return errors.New("service is required")
	}
	if a.Date.IsZero() {
		return errors.New("date is required")
	}
	if a.Time == "" {
		return errors.New("time is required")
	}
	if a.Address == "" {
		return errors.New("address is required")
	}
	if a.CarModel == "" {
		return errors.New("carModel is required")
	}
	if !IsValidStatus(a.Status) {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	return nil
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC 3339
// timestamp, which some frontends send for date inputs.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
