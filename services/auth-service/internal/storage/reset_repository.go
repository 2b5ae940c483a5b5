package storage

import (
	"context"
	"time"

	"github.com/uncacademycode/bookingdesk/libs/db"
)

// ResetToken is a single-use password reset grant. Only the SHA-256 hash of
// the raw token ever touches the database.
type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

type ResetRepository struct {
	pool *db.Pool
}

func NewResetRepository(pool *db.Pool) *ResetRepository {
	return &ResetRepository{pool: pool}
}

func (r *ResetRepository) Create(ctx context.Context, token ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt)
	return err
}

func (r *ResetRepository) GetByHash(ctx context.Context, hash string) (ResetToken, error) {
	var token ResetToken
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`, hash).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.UsedAt)
	if err != nil {
		return ResetToken{}, err
	}
	return token, nil
}

func (r *ResetRepository) MarkUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = now()
		WHERE id = $1
	`, id)
	return err
}
