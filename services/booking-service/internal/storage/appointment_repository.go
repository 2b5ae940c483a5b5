package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/uncacademycode/bookingdesk/libs/db"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/model"
)

var ErrNotFound = errors.New("appointment not found")

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, created_at, client_name, client_email, project_type, scheduled_time, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, appt.ID, appt.CreatedAt, appt.ClientName, appt.ClientEmail, string(appt.ProjectType),
		appt.ScheduledTime, appt.Notes, string(appt.Status))
	return err
}

// List returns every appointment ordered by scheduled time, soonest first.
func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, client_name, client_email, project_type, scheduled_time, notes, status
		FROM appointments
		ORDER BY scheduled_time ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		var projectType, status string
		if err := rows.Scan(
			&appt.ID,
			&appt.CreatedAt,
			&appt.ClientName,
			&appt.ClientEmail,
			&projectType,
			&appt.ScheduledTime,
			&appt.Notes,
			&status,
		); err != nil {
			return nil, err
		}
		appt.ProjectType = model.ProjectType(projectType)
		appt.Status = model.Status(status)
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (model.Appointment, error) {
	var appt model.Appointment
	var projectType, status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, created_at, client_name, client_email, project_type, scheduled_time, notes, status
		FROM appointments
		WHERE id = $1
	`, id).Scan(
		&appt.ID,
		&appt.CreatedAt,
		&appt.ClientName,
		&appt.ClientEmail,
		&projectType,
		&appt.ScheduledTime,
		&appt.Notes,
		&status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	appt.ProjectType = model.ProjectType(projectType)
	appt.Status = model.Status(status)
	return appt, nil
}

// UpdateStatus sets the status unconditionally; there is no legality check
// between the old and new state.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.Status(status)] = n
	}
	return counts, rows.Err()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
