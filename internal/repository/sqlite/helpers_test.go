package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/violets/internal/model"
)

// newTestDB opens a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCultivar(t *testing.T, db *DB, name string) *model.Cultivar {
	t.Helper()
	c := &model.Cultivar{Name: name}
	if err := db.CreateCultivar(context.Background(), c); err != nil {
		t.Fatalf("failed to create test cultivar: %v", err)
	}
	return c
}

func addTestLog(t *testing.T, db *DB, cultivarID, date, action string) *model.CareLog {
	t.Helper()
	l := &model.CareLog{
		CultivarID:  cultivarID,
		PerformedOn: mustDate(t, date),
		Action:      action,
	}
	if err := db.AddCareLog(context.Background(), l); err != nil {
		t.Fatalf("failed to add test care log: %v", err)
	}
	return l
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}
