// FilePath: internal/pulseservice/mocks_test.go
package pulseservice

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/buzzpulse/core/internal/database"
	"github.com/buzzpulse/core/internal/errors"
	"github.com/buzzpulse/core/internal/models"
)

// The fakes below implement the repository interfaces over plain maps so
// service tests exercise the real aggregation logic without a database.

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
func (fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

type fakeBaseRepo struct{}

func (fakeBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return fakeTx{}, nil
}

type fakeDeviceRepo struct {
	fakeBaseRepo
	mu      sync.Mutex
	devices map[string]*models.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*models.Device)}
}

func (r *fakeDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *fakeDeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[id]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	copied := *device
	return &copied, nil
}

func (r *fakeDeviceRepo) UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[id]
	if !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	device.LastSeen = lastSeen
	return nil
}

func (r *fakeDeviceRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[id]
	if !ok {
		return errors.NewNotFoundError("device not found", nil)
	}
	device.Disabled = disabled
	return nil
}

type fakeCellRepo struct {
	fakeBaseRepo
	mu    sync.Mutex
	cells map[string]*models.Cell
}

func newFakeCellRepo() *fakeCellRepo {
	return &fakeCellRepo{cells: make(map[string]*models.Cell)}
}

// ApplyHit mirrors the SQL upsert: decay to ts, add one, advance last_ts.
func (r *fakeCellRepo) ApplyHit(ctx context.Context, cellID string, ts time.Time, tau float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell, ok := r.cells[cellID]
	if !ok {
		r.cells[cellID] = &models.Cell{CellID: cellID, Score: 1, LastTS: ts}
		return 1, nil
	}
	dt := ts.Sub(cell.LastTS).Seconds()
	if dt < 0 {
		dt = 0
	}
	cell.Score = cell.Score*math.Exp(-dt/tau) + 1
	cell.LastTS = ts
	return cell.Score, nil
}

func (r *fakeCellRepo) Get(ctx context.Context, cellID string) (*models.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cell, ok := r.cells[cellID]
	if !ok {
		return nil, errors.NewNotFoundError("cell not found", nil)
	}
	copied := *cell
	return &copied, nil
}

func (r *fakeCellRepo) ListActive(ctx context.Context) ([]*models.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cells := []*models.Cell{}
	for _, cell := range r.cells {
		if cell.Score > 0 {
			copied := *cell
			cells = append(cells, &copied)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].CellID < cells[j].CellID })
	return cells, nil
}

type fakePresenceRepo struct {
	fakeBaseRepo
	mu   sync.Mutex
	rows map[string]*models.DevicePresence
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{rows: make(map[string]*models.DevicePresence)}
}

func (r *fakePresenceRepo) Upsert(ctx context.Context, deviceID, cellID string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[deviceID] = &models.DevicePresence{DeviceID: deviceID, CellID: cellID, UpdatedTS: ts}
	return nil
}

func (r *fakePresenceRepo) Get(ctx context.Context, deviceID string) (*models.DevicePresence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[deviceID]
	if !ok {
		return nil, errors.NewNotFoundError("presence not found", nil)
	}
	copied := *row
	return &copied, nil
}

func (r *fakePresenceRepo) CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.CellID == cellID && !row.UpdatedTS.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakePresenceRepo) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, row := range r.rows {
		if row.UpdatedTS.Before(before) {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeHitRepo struct {
	fakeBaseRepo
	mu   sync.Mutex
	hits []models.Hit
}

func newFakeHitRepo() *fakeHitRepo {
	return &fakeHitRepo{}
}

func (r *fakeHitRepo) Insert(ctx context.Context, cellID, deviceID string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, models.Hit{CellID: cellID, DeviceID: deviceID, TS: ts})
	return nil
}

func (r *fakeHitRepo) CountForCell(ctx context.Context, cellID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, hit := range r.hits {
		if hit.CellID == cellID && !hit.TS.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeHitRepo) ContributorsSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]map[string]bool)
	for _, hit := range r.hits {
		if hit.TS.Before(since) {
			continue
		}
		if seen[hit.CellID] == nil {
			seen[hit.CellID] = make(map[string]bool)
		}
		seen[hit.CellID][hit.DeviceID] = true
	}
	counts := make(map[string]int64, len(seen))
	for cellID, devices := range seen {
		counts[cellID] = int64(len(devices))
	}
	return counts, nil
}

func (r *fakeHitRepo) TypicalHourAverage(ctx context.Context, cellID string, now time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := now.Add(-7 * 24 * time.Hour)
	hour := now.UTC().Hour()
	perDay := make(map[time.Time]int64)
	for _, hit := range r.hits {
		if hit.CellID != cellID || hit.TS.Before(start) || hit.TS.After(now) {
			continue
		}
		if hit.TS.UTC().Hour() != hour {
			continue
		}
		day := hit.TS.UTC().Truncate(24 * time.Hour)
		perDay[day]++
	}
	if len(perDay) == 0 {
		return 0, nil
	}
	var sum int64
	for _, count := range perDay {
		sum += count
	}
	return float64(sum) / float64(len(perDay)), nil
}

func (r *fakeHitRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.hits[:0]
	var deleted int64
	for _, hit := range r.hits {
		if hit.TS.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, hit)
	}
	r.hits = kept
	return deleted, nil
}

type vibeKey struct {
	cellID   string
	deviceID string
	hour     time.Time
}

type fakeVibeRepo struct {
	fakeBaseRepo
	mu   sync.Mutex
	rows map[vibeKey]*models.Vibe
}

func newFakeVibeRepo() *fakeVibeRepo {
	return &fakeVibeRepo{rows: make(map[vibeKey]*models.Vibe)}
}

func (r *fakeVibeRepo) Upsert(ctx context.Context, vibe *models.Vibe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *vibe
	r.rows[vibeKey{vibe.CellID, vibe.DeviceID, vibe.Hour}] = &copied
	return nil
}

func (r *fakeVibeRepo) TallySince(ctx context.Context, cellID string, since time.Time) ([]models.VibeTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, vibe := range r.rows {
		if vibe.CellID == cellID && !vibe.TS.Before(since) {
			counts[vibe.Vibe]++
		}
	}
	tallies := []models.VibeTally{}
	for value, count := range counts {
		tallies = append(tallies, models.VibeTally{Vibe: value, Count: count})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return tallies[i].Vibe < tallies[j].Vibe
	})
	return tallies, nil
}

func (r *fakeVibeRepo) GetForHour(ctx context.Context, cellID, deviceID string, hour time.Time) (*models.Vibe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vibe, ok := r.rows[vibeKey{cellID, deviceID, hour}]
	if !ok {
		return nil, errors.NewNotFoundError("vibe not found", nil)
	}
	copied := *vibe
	return &copied, nil
}

func (r *fakeVibeRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, vibe := range r.rows {
		if vibe.TS.Before(before) {
			delete(r.rows, key)
			deleted++
		}
	}
	return deleted, nil
}

type fakeBuildingRepo struct {
	fakeBaseRepo
	mu        sync.Mutex
	buildings map[string]*models.Building
}

func newFakeBuildingRepo() *fakeBuildingRepo {
	repo := &fakeBuildingRepo{buildings: make(map[string]*models.Building)}
	for _, b := range models.DefaultBuildings {
		copied := b
		repo.buildings[b.Slug] = &copied
	}
	return repo
}

func (r *fakeBuildingRepo) Get(ctx context.Context, slug string) (*models.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	building, ok := r.buildings[slug]
	if !ok {
		return nil, errors.NewNotFoundError("building not found", nil)
	}
	copied := *building
	return &copied, nil
}

func (r *fakeBuildingRepo) List(ctx context.Context) ([]*models.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buildings := []*models.Building{}
	for _, building := range r.buildings {
		copied := *building
		buildings = append(buildings, &copied)
	}
	sort.Slice(buildings, func(i, j int) bool { return buildings[i].Slug < buildings[j].Slug })
	return buildings, nil
}

func (r *fakeBuildingRepo) Upsert(ctx context.Context, building *models.Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *building
	r.buildings[building.Slug] = &copied
	return nil
}
