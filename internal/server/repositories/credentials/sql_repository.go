package credentials

import (
	"context"
	"fmt"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/budda-star9/reelforge/internal/timex"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Credential) error {
	query := `
		INSERT INTO credentials (id, user_id, credential_id, public_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.CredentialID, c.PublicKey, timex.UnixMilli(c.CreatedAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("db error: %w: credential for user %s", common.ErrAlreadyExists, c.UserID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Credential, error) {
	query := `
		SELECT id, credential_id, public_key, created_at
		FROM credentials
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Credential, 0)
	for rows.Next() {
		c := &models.Credential{UserID: userID}
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.CredentialID, &c.PublicKey, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.CreatedAt = timex.FromUnixMilli(createdAt)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
