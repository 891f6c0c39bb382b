// FilePath: internal/repository/timescale/timescale.hits.go
package timescale

import (
	"context"
	"fmt"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

type HitRepo struct {
	TimeScaleBaseRepo
}

// NewHitRepository creates the append-only hit log backed by a hypertable.
// retention bounds how long raw hits are kept; only the trailing seven days
// feed the typical-hour baseline, the rest is slack for late arrivals.
func NewHitRepository(db database.DB, retention time.Duration) (*HitRepo, error) {
	repo := &HitRepo{TimeScaleBaseRepo: TimeScaleBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	repo.setupRetentionPolicy(retention)
	return repo, nil
}

func (r *HitRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS hits (
			id TEXT NOT NULL,
			cell_id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('hits', 'ts',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_cell_ts ON hits(cell_id, ts DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize hits schema", err)
		}
	}
	return nil
}

func (r *HitRepo) setupRetentionPolicy(retention time.Duration) {
	query := fmt.Sprintf(`
		SELECT add_retention_policy('hits',
			INTERVAL '%d seconds',
			if_not_exists => TRUE
		)`, int64(retention.Seconds()))

	if _, err := r.db.GetDB().Exec(query); err != nil {
		nuts.L.Errorf("[HitRepository] Failed to set up retention policy: %v", err)
	}
}

func (r *HitRepo) Insert(ctx context.Context, cellID, deviceID string, ts time.Time) error {
	id := nuts.NID("hit", 12)
	query := `
		INSERT INTO hits (id, cell_id, device_id, ts)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.GetDB().ExecContext(ctx, query, id, cellID, deviceID, ts)
	if err != nil {
		return errors.NewDatabaseError("failed to insert hit", err)
	}
	return nil
}

func (r *HitRepo) CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM hits WHERE cell_id = $1 AND ts >= $2`

	err := r.db.GetDB().GetContext(ctx, &count, query, cellID, since)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count hits", err)
	}
	return count, nil
}

// ContributorsSince counts distinct contributing devices per cell within
// the lookback window. This feeds the k-anonymity gate.
func (r *HitRepo) ContributorsSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	rows := []struct {
		CellID string `db:"cell_id"`
		Count  int64  `db:"count"`
	}{}
	query := `
		SELECT cell_id, COUNT(DISTINCT device_id) AS count
		FROM hits
		WHERE ts >= $1
		GROUP BY cell_id`

	err := r.db.GetDB().SelectContext(ctx, &rows, query, since)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to count contributors", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CellID] = row.Count
	}
	return counts, nil
}

// TypicalHourAverage computes the same-hour-of-day baseline: hits from the
// trailing seven days are grouped by calendar day, filtered to rows whose
// UTC hour matches now's, and the per-day counts are averaged. Days with no
// matching hits do not drag the average down.
func (r *HitRepo) TypicalHourAverage(ctx context.Context, cellID string, now time.Time) (float64, error) {
	var avg float64
	query := `
		SELECT COALESCE(AVG(day_count), 0)
		FROM (
			SELECT time_bucket('1 day', ts) AS day, COUNT(*) AS day_count
			FROM hits
			WHERE cell_id = $1
			  AND ts >= $2
			  AND ts <= $3
			  AND EXTRACT(HOUR FROM ts AT TIME ZONE 'UTC') = $4
			GROUP BY day
		) daily`

	start := now.Add(-7 * 24 * time.Hour)
	hour := now.UTC().Hour()
	err := r.db.GetDB().GetContext(ctx, &avg, query, cellID, start, now, hour)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to compute typical hour average", err)
	}
	return avg, nil
}

// DeleteBefore is the manual prune path; the retention policy handles the
// steady state, this backs the cleanup sweeper and non-timescale setups.
func (r *HitRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM hits WHERE ts < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old hits", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
