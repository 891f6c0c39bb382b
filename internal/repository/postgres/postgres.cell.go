// FilePath: internal/repository/postgres/postgres.cell.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
)

type CellRepo struct {
	PostgresBaseRepo
}

func NewCellRepository(db database.DB) (*CellRepo, error) {
	repo := &CellRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *CellRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cells (
			cell_id TEXT PRIMARY KEY,
			score DOUBLE PRECISION NOT NULL,
			last_ts TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cells_score ON cells(score) WHERE score > 0`,
	}
	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize cells schema", err)
		}
	}
	return nil
}

// ApplyHit decays and bumps the cell score in one conditional upsert, so
// concurrent hits for the same cell never lose a contribution. The decay
// factor exp(-dt/tau) is evaluated inside the statement against the stored
// last_ts; dt is clamped at zero for hits that arrive out of order.
func (r *CellRepo) ApplyHit(ctx context.Context, cellID string, ts time.Time, tau float64) (float64, error) {
	query := `
		INSERT INTO cells (cell_id, score, last_ts)
		VALUES ($1, 1, $2)
		ON CONFLICT (cell_id) DO UPDATE SET
			score = cells.score * exp(-GREATEST(0, EXTRACT(EPOCH FROM (EXCLUDED.last_ts - cells.last_ts))) / $3) + 1,
			last_ts = EXCLUDED.last_ts
		RETURNING score`

	var score float64
	err := r.db.GetDB().GetContext(ctx, &score, query, cellID, ts, tau)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to apply hit", err)
	}
	return score, nil
}

func (r *CellRepo) Get(ctx context.Context, cellID string) (*models.Cell, error) {
	cell := &models.Cell{}
	query := `SELECT cell_id, score, last_ts FROM cells WHERE cell_id = $1`

	err := r.db.GetDB().GetContext(ctx, cell, query, cellID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("cell not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get cell", err)
	}
	return cell, nil
}

func (r *CellRepo) ListActive(ctx context.Context) ([]*models.Cell, error) {
	cells := []*models.Cell{}
	query := `SELECT cell_id, score, last_ts FROM cells WHERE score > 0`

	err := r.db.GetDB().SelectContext(ctx, &cells, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list active cells", err)
	}
	return cells, nil
}
