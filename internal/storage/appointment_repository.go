package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suraksha-car-care/backend/internal/model"
	"github.com/suraksha-car-care/backend/libs/db"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `
	id, name, email, phone, service, date, time_slot, address, car_model,
	message, status, assigned_technician, estimated_cost, actual_cost, notes,
	created_at, updated_at`

// Create assigns the id and timestamps and writes the record in a single
// atomic insert. Status defaults to pending when unset.
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if appt.Status == "" {
		appt.Status = model.StatusPending
	}
	now := time.Now().UTC()
	appt.ID = uuid.NewString()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, name, email, phone, service, date, time_slot, address, car_model,
			message, status, assigned_technician, estimated_cost, actual_cost, notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, appt.ID, appt.Name, appt.Email, appt.Phone, appt.Service, appt.Date, appt.Time,
		appt.Address, appt.CarModel, appt.Message, appt.Status, appt.AssignedTechnician,
		appt.EstimatedCost, appt.ActualCost, appt.Notes, appt.CreatedAt, appt.UpdatedAt)
	return err
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	appt, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, ErrNotFound
	}
	return appt, err
}

func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// Update rewrites every mutable column; the caller merged the patch and
// re-validated beforehand. created_at is never touched.
func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET name = $2, email = $3, phone = $4, service = $5, date = $6,
			time_slot = $7, address = $8, car_model = $9, message = $10,
			status = $11, assigned_technician = $12, estimated_cost = $13,
			actual_cost = $14, notes = $15, updated_at = $16
		WHERE id = $1
	`, appt.ID, appt.Name, appt.Email, appt.Phone, appt.Service, appt.Date, appt.Time,
		appt.Address, appt.CarModel, appt.Message, appt.Status, appt.AssignedTechnician,
		appt.EstimatedCost, appt.ActualCost, appt.Notes, appt.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.Name,
		&appt.Email,
		&appt.Phone,
		&appt.Service,
		&appt.Date,
		&appt.Time,
		&appt.Address,
		&appt.CarModel,
		&appt.Message,
		&appt.Status,
		&appt.AssignedTechnician,
		&appt.EstimatedCost,
		&appt.ActualCost,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	return appt, err
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
