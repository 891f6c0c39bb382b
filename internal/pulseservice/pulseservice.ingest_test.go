// FilePath: internal/pulseservice/pulseservice.ingest_test.go
package pulseservice

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/buzzpulse/core/internal/config"
)

func TestRecordHitFirstHit(t *testing.T) {
	svc := newTestService(t, config.PresenceConfig{})
	ctx := context.Background()
	cell := mustCellID(t, "b:eng-quad")

	result, err := svc.RecordHit(ctx, "dev-1", cell, svc.now)
	if err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("first hit score = %f, want 1", result.Score)
	}
	if result.Presence != 1 {
		t.Errorf("first hit presence = %d, want 1", result.Presence)
	}
	if result.CellID != "b:eng-quad" {
		t.Errorf("echoed cellId = %q, want b:eng-quad", result.CellID)
	}
	if result.TS != svc.now.Unix() {
		t.Errorf("echoed ts = %d, want %d", result.TS, svc.now.Unix())
	}

	count, _ := svc.hits.CountForCell(ctx, "b:eng-quad", time.Time{})
	if count != 1 {
		t.Errorf("hit rows appended = %d, want exactly 1", count)
	}
}

// TestRecordHitHalfLifeDecay checks the core decay identity: after exactly
// one half-life the prior contribution is halved before the new hit's +1.
func TestRecordHitHalfLifeDecay(t *testing.T) {
	halfLife := 6 * time.Hour
	svc := newTestService(t, config.PresenceConfig{HalfLife: halfLife})
	ctx := context.Background()
	cell := mustCellID(t, "9q9hgvs")

	if _, err := svc.RecordHit(ctx, "dev-1", cell, svc.now); err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}

	svc.advance(halfLife)
	result, err := svc.RecordHit(ctx, "dev-1", cell, svc.now)
	if err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	if math.Abs(result.Score-1.5) > 1e-9 {
		t.Errorf("score after one half-life = %f, want 1.5", result.Score)
	}

	// A second half-life halves 1.5 before adding the next hit.
	svc.advance(halfLife)
	result, err = svc.RecordHit(ctx, "dev-1", cell, svc.now)
	if err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	if math.Abs(result.Score-1.75) > 1e-9 {
		t.Errorf("score after two half-lives = %f, want 1.75", result.Score)
	}
}

// TestRecordHitOutOfOrder verifies a hit timestamped before last_ts does
// not inflate the score: elapsed time clamps to zero.
func TestRecordHitOutOfOrder(t *testing.T) {
	svc := newTestService(t, config.PresenceConfig{})
	ctx := context.Background()
	cell := mustCellID(t, "9q9hgvs")

	if _, err := svc.RecordHit(ctx, "dev-1", cell, svc.now); err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	result, err := svc.RecordHit(ctx, "dev-2", cell, svc.now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	if math.Abs(result.Score-2) > 1e-9 {
		t.Errorf("score after out-of-order hit = %f, want 2", result.Score)
	}
}

func TestRecordHitMovesPresence(t *testing.T) {
	svc := newTestService(t, config.PresenceConfig{})
	ctx := context.Background()

	if _, err := svc.RecordHit(ctx, "dev-1", mustCellID(t, "b:eng-quad"), svc.now); err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}
	svc.advance(time.Minute)
	if _, err := svc.RecordHit(ctx, "dev-1", mustCellID(t, "b:main-quad"), svc.now); err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}

	row, err := svc.presence.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("presence lookup failed: %v", err)
	}
	if row.CellID != "b:main-quad" {
		t.Errorf("presence cell = %q, want b:main-quad (one row per device)", row.CellID)
	}

	engCount, _ := svc.presence.CountForCell(ctx, "b:eng-quad", svc.now.Add(-10*time.Minute))
	if engCount != 0 {
		t.Errorf("old cell presence = %d, want 0 after the device moved", engCount)
	}
}

// TestScoreMonotonicDecay reads stats at increasing times with no new hits
// and requires a non-increasing score.
func TestScoreMonotonicDecay(t *testing.T) {
	svc := newTestService(t, config.PresenceConfig{HalfLife: 2 * time.Second})
	ctx := context.Background()
	cell := mustCellID(t, "9q9hgvs")

	if _, err := svc.RecordHit(ctx, "dev-1", cell, svc.now); err != nil {
		t.Fatalf("RecordHit failed: %v", err)
	}

	prev := math.Inf(1)
	for i := 0; i < 5; i++ {
		svc.advance(time.Second)
		stats, err := svc.CellStats(ctx, cell, "")
		if err != nil {
			t.Fatalf("CellStats failed: %v", err)
		}
		if stats.Score >= prev {
			t.Errorf("score did not decrease: %f after %f", stats.Score, prev)
		}
		if stats.Score < 0 {
			t.Errorf("score went negative: %f", stats.Score)
		}
		prev = stats.Score
	}
}
