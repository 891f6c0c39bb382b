// FilePath: internal/repository/postgres/postgres.building.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type BuildingRepo struct {
	PostgresBaseRepo
}

func NewBuildingRepository(db database.DB) (*BuildingRepo, error) {
	repo := &BuildingRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	repo.seedDefaults()
	return repo, nil
}

func (r *BuildingRepo) initializeSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS buildings (
			slug TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL
		)`
	if _, err := r.db.GetDB().Exec(query); err != nil {
		return errors.NewDatabaseError("failed to initialize buildings schema", err)
	}
	return nil
}

// seedDefaults inserts the built-in buildings without touching rows an
// operator has already registered.
func (r *BuildingRepo) seedDefaults() {
	query := `
		INSERT INTO buildings (slug, name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING`

	for _, b := range models.DefaultBuildings {
		if _, err := r.db.GetDB().Exec(query, b.Slug, b.Name, b.Latitude, b.Longitude); err != nil {
			nuts.L.Warnf("[BuildingRepository] Failed to seed building %s: %v", b.Slug, err)
		}
	}
}

func (r *BuildingRepo) Get(ctx context.Context, slug string) (*models.Building, error) {
	building := &models.Building{}
	query := `SELECT slug, name, latitude, longitude FROM buildings WHERE slug = $1`

	err := r.db.GetDB().GetContext(ctx, building, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("building not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get building", err)
	}
	return building, nil
}

func (r *BuildingRepo) List(ctx context.Context) ([]*models.Building, error) {
	buildings := []*models.Building{}
	query := `SELECT slug, name, latitude, longitude FROM buildings ORDER BY slug ASC`

	err := r.db.GetDB().SelectContext(ctx, &buildings, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list buildings", err)
	}
	return buildings, nil
}

func (r *BuildingRepo) Upsert(ctx context.Context, building *models.Building) error {
	query := `
		INSERT INTO buildings (slug, name, latitude, longitude)
		VALUES (:slug, :name, :latitude, :longitude)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, building)
	if err != nil {
		return errors.NewDatabaseError("failed to upsert building", err)
	}
	return nil
}
