package ceremonies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/budda-star9/reelforge/internal/timex"
	"github.com/google/uuid"
)

// SQLRepository implements Repository over dbx.DBTX. The statements are
// valid for both the pgx and the sqlite driver.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Ceremony) error {
	query := `
		INSERT INTO registration_ceremonies (id, user_id, state, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.State, timex.UnixMilli(c.ExpiresAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("db error: %w: ceremony %s", common.ErrAlreadyExists, c.ID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Take relies on DELETE ... RETURNING being a single statement: the row is
// matched, removed and returned under the row lock, so a concurrent Take of
// the same id finds nothing.
func (r *SQLRepository) Take(ctx context.Context, id uuid.UUID, now time.Time) (*models.Ceremony, error) {
	query := `
		DELETE FROM registration_ceremonies
		WHERE id = $1 AND expires_at > $2
		RETURNING user_id, state, expires_at
	`
	c := &models.Ceremony{ID: id}
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, query, id, timex.UnixMilli(now)).Scan(&c.UserID, &c.State, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.ExpiresAt = timex.FromUnixMilli(expiresAt)
	return c, nil
}

func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM registration_ceremonies
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, timex.UnixMilli(now))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
