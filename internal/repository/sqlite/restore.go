package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

var _ repository.JournalRepository = (*DB)(nil)

// ReplaceAll wipes both tables and inserts the given records in a single
// transaction; on any failure the previous contents are left untouched.
//
// Records keep their IDs so care logs can reference cultivars from the same
// batch. A blank cultivar ID is generated, which only makes sense for a
// cultivar without logs.
func (db *DB) ReplaceAll(ctx context.Context, cultivars []model.Cultivar, logs []model.CareLog) error {
	now := time.Now().UTC()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM care_logs`); err != nil {
			return fmt.Errorf("sqlite: clearing care logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cultivars`); err != nil {
			return fmt.Errorf("sqlite: clearing cultivars: %w", err)
		}

		for i := range cultivars {
			c := &cultivars[i]
			id := c.ID
			if id == "" {
				id = xid.New().String()
			}
			createdAt := c.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			if err := insertCultivar(ctx, tx, id, createdAt, c); err != nil {
				return err
			}
		}

		for i := range logs {
			l := &logs[i]
			id := l.ID
			if id == "" {
				id = xid.New().String()
			}
			createdAt := l.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			if err := insertCareLog(ctx, tx, id, createdAt, l); err != nil {
				return err
			}
		}

		return nil
	})
}
