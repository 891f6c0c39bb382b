// FilePath: internal/repository/postgres/postgres.presence.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
)

type PresenceRepo struct {
	PostgresBaseRepo
}

func NewPresenceRepository(db database.DB) (*PresenceRepo, error) {
	repo := &PresenceRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PresenceRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS device_presence (
			device_id TEXT PRIMARY KEY,
			cell_id TEXT NOT NULL,
			updated_ts TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_device_presence_cell
			ON device_presence(cell_id, updated_ts DESC)`,
	}
	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize presence schema", err)
		}
	}
	return nil
}

// Upsert records the device's latest reported cell. One row per device;
// re-reports move the row rather than adding one.
func (r *PresenceRepo) Upsert(ctx context.Context, deviceID, cellID string, ts time.Time) error {
	query := `
		INSERT INTO device_presence (device_id, cell_id, updated_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			cell_id = EXCLUDED.cell_id,
			updated_ts = EXCLUDED.updated_ts`

	_, err := r.db.GetDB().ExecContext(ctx, query, deviceID, cellID, ts)
	if err != nil {
		return errors.NewDatabaseError("failed to upsert presence", err)
	}
	return nil
}

func (r *PresenceRepo) Get(ctx context.Context, deviceID string) (*models.DevicePresence, error) {
	presence := &models.DevicePresence{}
	query := `SELECT device_id, cell_id, updated_ts FROM device_presence WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, presence, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("presence not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get presence", err)
	}
	return presence, nil
}

func (r *PresenceRepo) CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM device_presence WHERE cell_id = $1 AND updated_ts >= $2`

	err := r.db.GetDB().GetContext(ctx, &count, query, cellID, since)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count presence", err)
	}
	return count, nil
}

func (r *PresenceRepo) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM device_presence WHERE updated_ts < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete idle presence", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
