// Package repository declares the storage contracts the services depend on.
// The SQLite implementation lives in the sqlite subpackage.
package repository

import (
	"context"
	"time"

	"github.com/sakif/violets/internal/model"
)

type ListOptions struct {
	// Query, when non-empty, keeps only cultivars whose name contains it
	// (case-insensitive).
	Query string
}

// CareHistoryFilter narrows ListCareHistory. Zero fields match everything.
type CareHistoryFilter struct {
	CultivarID string
	Action     string     // exact match
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	// NewestFirst reverses the default oldest-first order.
	NewestFirst bool
}

type CultivarRepository interface {
	ListWithLatestCare(ctx context.Context, opts ListOptions) ([]model.CultivarSummary, error)
	ListCultivars(ctx context.Context) ([]model.Cultivar, error)
	CreateCultivar(ctx context.Context, cultivar *model.Cultivar) error
	GetCultivar(ctx context.Context, id string) (*model.Cultivar, error)
	// UpdateCultivar overwrites every descriptive field of the cultivar with
	// cultivar.ID. ID and CreatedAt are left alone.
	UpdateCultivar(ctx context.Context, cultivar *model.Cultivar) error
	DeleteCultivar(ctx context.Context, id string) error
}

type CareLogRepository interface {
	ListCareLogs(ctx context.Context, cultivarID string) ([]model.CareLog, error)
	ListCareHistory(ctx context.Context, filter CareHistoryFilter) ([]model.CareHistoryEntry, error)
	AddCareLog(ctx context.Context, log *model.CareLog) error
	// DeleteCareLog removes one log and returns the id of the cultivar that
	// owned it.
	DeleteCareLog(ctx context.Context, id string) (string, error)
}

// JournalRepository is the full store: both entities plus bulk restore.
type JournalRepository interface {
	CultivarRepository
	CareLogRepository
	// ReplaceAll atomically discards every record and stores the given ones.
	ReplaceAll(ctx context.Context, cultivars []model.Cultivar, logs []model.CareLog) error
}
