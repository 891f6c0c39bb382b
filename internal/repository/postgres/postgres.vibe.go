// FilePath: internal/repository/postgres/postgres.vibe.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
)

type VibeRepo struct {
	PostgresBaseRepo
}

func NewVibeRepository(db database.DB) (*VibeRepo, error) {
	repo := &VibeRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *VibeRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS vibes (
			cell_id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			vibe TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			hour TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (cell_id, device_id, hour)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vibes_cell_ts ON vibes(cell_id, ts DESC)`,
	}
	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize vibes schema", err)
		}
	}
	return nil
}

// Upsert stores the reaction for the (cell, device, hour) slot. A second
// submission in the same hour overwrites value and timestamp.
func (r *VibeRepo) Upsert(ctx context.Context, vibe *models.Vibe) error {
	query := `
		INSERT INTO vibes (cell_id, device_id, vibe, ts, hour)
		VALUES (:cell_id, :device_id, :vibe, :ts, :hour)
		ON CONFLICT (cell_id, device_id, hour) DO UPDATE SET
			vibe = EXCLUDED.vibe,
			ts = EXCLUDED.ts`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, vibe)
	if err != nil {
		return errors.NewDatabaseError("failed to upsert vibe", err)
	}
	return nil
}

func (r *VibeRepo) TallySince(ctx context.Context, cellID string, since time.Time) ([]models.VibeTally, error) {
	tallies := []models.VibeTally{}
	query := `
		SELECT vibe, COUNT(*) AS count
		FROM vibes
		WHERE cell_id = $1 AND ts >= $2
		GROUP BY vibe
		ORDER BY count DESC, vibe ASC`

	err := r.db.GetDB().SelectContext(ctx, &tallies, query, cellID, since)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to tally vibes", err)
	}
	return tallies, nil
}

func (r *VibeRepo) GetForHour(ctx context.Context, cellID, deviceID string, hour time.Time) (*models.Vibe, error) {
	vibe := &models.Vibe{}
	query := `
		SELECT cell_id, device_id, vibe, ts, hour
		FROM vibes
		WHERE cell_id = $1 AND device_id = $2 AND hour = $3`

	err := r.db.GetDB().GetContext(ctx, vibe, query, cellID, deviceID, hour)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("vibe not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get vibe", err)
	}
	return vibe, nil
}

func (r *VibeRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM vibes WHERE ts < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old vibes", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
