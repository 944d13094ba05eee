package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

var _ repository.CareLogRepository = (*DB)(nil)

func scanCareLog(row rowScanner, extra ...any) (*model.CareLog, error) {
	var (
		l           model.CareLog
		performedOn string
		notes       sql.NullString
	)
	dest := append([]any{&l.ID, &l.CultivarID, &performedOn, &l.Action, &notes, &l.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	d, err := model.ParseDate(performedOn)
	if err != nil {
		return nil, fmt.Errorf("decoding performed_on of care log %s: %w", l.ID, err)
	}
	l.PerformedOn = d
	l.Notes = notes.String

	return &l, nil
}

// ListCareLogs returns the care logs of one cultivar, most recent first.
// Logs sharing a date come back by created_at, newest first. An unknown
// cultivar simply has no logs.
func (db *DB) ListCareLogs(ctx context.Context, cultivarID string) ([]model.CareLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, cultivar_id, performed_on, action, notes, created_at
		 FROM care_logs
		 WHERE cultivar_id = ?
		 ORDER BY performed_on DESC, created_at DESC, rowid DESC`,
		cultivarID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing care logs of %s: %w", cultivarID, err)
	}
	defer rows.Close()

	logs := []model.CareLog{}
	for rows.Next() {
		l, err := scanCareLog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning care log row: %w", err)
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating care logs: %w", err)
	}

	return logs, nil
}

// ListCareHistory returns care logs across all cultivars with each
// cultivar's name, oldest first unless filter.NewestFirst is set. Logs
// sharing a date are ordered by created_at.
func (db *DB) ListCareHistory(ctx context.Context, filter repository.CareHistoryFilter) ([]model.CareHistoryEntry, error) {
	query := `SELECT l.id, l.cultivar_id, l.performed_on, l.action, l.notes, l.created_at, c.name
		FROM care_logs l
		JOIN cultivars c ON c.id = l.cultivar_id`

	var (
		where []string
		args  []any
	)
	if filter.CultivarID != "" {
		where = append(where, `l.cultivar_id = ?`)
		args = append(args, filter.CultivarID)
	}
	if filter.Action != "" {
		where = append(where, `l.action = ?`)
		args = append(args, filter.Action)
	}
	if filter.From != nil {
		where = append(where, `l.performed_on >= ?`)
		args = append(args, filter.From.Format(model.DateLayout))
	}
	if filter.To != nil {
		where = append(where, `l.performed_on <= ?`)
		args = append(args, filter.To.Format(model.DateLayout))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}

	if filter.NewestFirst {
		query += ` ORDER BY l.performed_on DESC, l.created_at DESC, l.rowid DESC`
	} else {
		query += ` ORDER BY l.performed_on ASC, l.created_at ASC, l.rowid ASC`
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing care history: %w", err)
	}
	defer rows.Close()

	entries := []model.CareHistoryEntry{}
	for rows.Next() {
		var name string
		l, err := scanCareLog(rows, &name)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning care history row: %w", err)
		}
		entries = append(entries, model.CareHistoryEntry{CareLog: *l, CultivarName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating care history: %w", err)
	}

	return entries, nil
}

// AddCareLog attaches a new log to an existing cultivar, filling in ID and
// CreatedAt. Returns apperror.ErrNotFound if the cultivar doesn't exist.
func (db *DB) AddCareLog(ctx context.Context, log *model.CareLog) error {
	id := xid.New().String()
	createdAt := time.Now().UTC()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM cultivars WHERE id = ?`, log.CultivarID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return apperror.NotFound("cultivar", log.CultivarID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: looking up cultivar %s: %w", log.CultivarID, err)
		}

		return insertCareLog(ctx, tx, id, createdAt, log)
	})
	if err != nil {
		return err
	}

	log.ID = id
	log.CreatedAt = createdAt
	return nil
}

func insertCareLog(ctx context.Context, tx *sql.Tx, id string, createdAt time.Time, l *model.CareLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO care_logs (id, cultivar_id, performed_on, action, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		l.CultivarID,
		l.PerformedOn.Format(model.DateLayout),
		l.Action,
		nullable(l.Notes),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating care log: %w", err)
	}
	return nil
}

// DeleteCareLog removes one care log and returns the ID of the cultivar it
// belonged to. Returns apperror.ErrNotFound if the log doesn't exist.
func (db *DB) DeleteCareLog(ctx context.Context, id string) (string, error) {
	var cultivarID string

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT cultivar_id FROM care_logs WHERE id = ?`, id,
		).Scan(&cultivarID)
		if err == sql.ErrNoRows {
			return apperror.NotFound("care log", id)
		}
		if err != nil {
			return fmt.Errorf("sqlite: looking up care log %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM care_logs WHERE id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting care log %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return cultivarID, nil
}
