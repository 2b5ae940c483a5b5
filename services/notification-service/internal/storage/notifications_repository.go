package storage

import (
	"context"

	"github.com/uncacademycode/bookingdesk/libs/db"
)

// Delivery is one row of the delivery log: a single rendered message and
// whether handing it to the provider succeeded.
type Delivery struct {
	Kind        string
	Recipient   string
	Subject     string
	Status      string
	ErrorReason string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (kind, recipient, subject, status, error_reason)
		VALUES ($1, $2, $3, $4, $5)
	`, d.Kind, d.Recipient, d.Subject, d.Status, d.ErrorReason)
	return err
}
