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

type ContactRepository struct {
	pool *db.Pool
}

func NewContactRepository(pool *db.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO contacts (id, name, email, phone, subject, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.Phone, c.Subject, c.Message, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ContactRepository) Get(ctx context.Context, id string) (model.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, subject, message, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`, id)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Contact{}, ErrNotFound
	}
	return c, err
}

func (r *ContactRepository) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, subject, message, created_at, updated_at
		FROM contacts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET name = $2, email = $3, phone = $4, subject = $5, message = $6, updated_at = $7
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone, c.Subject, c.Message, c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM contacts
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

func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Subject,
		&c.Message,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
