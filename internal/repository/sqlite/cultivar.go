package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

var _ repository.CultivarRepository = (*DB)(nil)

const cultivarColumns = `c.id, c.name, c.flower_color, c.leaf_description, c.acquisition_date,
	c.light_level, c.soil_mix, c.notes, c.created_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCultivar reads cultivarColumns, plus any extra trailing destinations,
// from one row.
func scanCultivar(row rowScanner, extra ...any) (*model.Cultivar, error) {
	var c model.Cultivar
	var flowerColor, leafDesc, acquired, light, soil, notes sql.NullString
	dest := append([]any{
		&c.ID, &c.Name, &flowerColor, &leafDesc, &acquired,
		&light, &soil, &notes, &c.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	c.FlowerColor = flowerColor.String
	c.LeafDescription = leafDesc.String
	c.LightLevel = light.String
	c.SoilMix = soil.String
	c.Notes = notes.String

	if acquired.Valid {
		d, err := model.ParseDate(acquired.String)
		if err != nil {
			return nil, fmt.Errorf("decoding acquisition_date of cultivar %s: %w", c.ID, err)
		}
		c.AcquisitionDate = &d
	}

	return &c, nil
}

// ListWithLatestCare returns every cultivar with the date of its most recent
// care log, ordered by name. A single LEFT JOIN + GROUP BY pass computes the
// latest date, so cultivars without logs appear with a NULL date.
//
// ISO dates sort lexically in date order, which is what makes MAX over the
// TEXT column correct.
func (db *DB) ListWithLatestCare(ctx context.Context, opts repository.ListOptions) ([]model.CultivarSummary, error) {
	query := `SELECT ` + cultivarColumns + `, MAX(l.performed_on)
		FROM cultivars c
		LEFT JOIN care_logs l ON l.cultivar_id = c.id`
	var args []any
	if opts.Query != "" {
		query += ` WHERE c.name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(opts.Query))
	}
	query += ` GROUP BY c.id ORDER BY c.name ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cultivars: %w", err)
	}
	defer rows.Close()

	summaries := []model.CultivarSummary{}
	for rows.Next() {
		var latest sql.NullString
		c, err := scanCultivar(rows, &latest)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning cultivar row: %w", err)
		}

		summary := model.CultivarSummary{Cultivar: *c}
		if latest.Valid {
			d, err := model.ParseDate(latest.String)
			if err != nil {
				return nil, fmt.Errorf("sqlite: decoding latest care of %s: %w", c.ID, err)
			}
			summary.LatestCare = &d
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cultivars: %w", err)
	}

	return summaries, nil
}

// ListCultivars returns every cultivar ordered by name.
func (db *DB) ListCultivars(ctx context.Context) ([]model.Cultivar, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cultivarColumns+` FROM cultivars c ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cultivars: %w", err)
	}
	defer rows.Close()

	cultivars := []model.Cultivar{}
	for rows.Next() {
		c, err := scanCultivar(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning cultivar row: %w", err)
		}
		cultivars = append(cultivars, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cultivars: %w", err)
	}

	return cultivars, nil
}

// CreateCultivar inserts a new cultivar, filling in its ID and CreatedAt.
// A name that is already taken yields apperror.DuplicateName and nothing is
// written.
func (db *DB) CreateCultivar(ctx context.Context, cultivar *model.Cultivar) error {
	if cultivar.Name == "" {
		return apperror.ValidationFailed("name", "Cultivar name is required.")
	}

	id := xid.New().String()
	createdAt := time.Now().UTC()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		return insertCultivar(ctx, tx, id, createdAt, cultivar)
	})
	if err != nil {
		return err
	}

	cultivar.ID = id
	cultivar.CreatedAt = createdAt
	return nil
}

func insertCultivar(ctx context.Context, tx *sql.Tx, id string, createdAt time.Time, c *model.Cultivar) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cultivars (id, name, flower_color, leaf_description, acquisition_date,
			light_level, soil_mix, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		c.Name,
		nullable(c.FlowerColor),
		nullable(c.LeafDescription),
		nullable(model.FormatDate(c.AcquisitionDate)),
		nullable(c.LightLevel),
		nullable(c.SoilMix),
		nullable(c.Notes),
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateName("cultivar", c.Name)
		}
		return fmt.Errorf("sqlite: creating cultivar: %w", err)
	}
	return nil
}

// GetCultivar retrieves a single cultivar by its ID.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetCultivar(ctx context.Context, id string) (*model.Cultivar, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+cultivarColumns+` FROM cultivars c WHERE c.id = ?`, id)

	c, err := scanCultivar(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("cultivar", id)
		}
		return nil, fmt.Errorf("sqlite: getting cultivar %s: %w", id, err)
	}

	return c, nil
}

// UpdateCultivar rewrites the descriptive fields of an existing cultivar.
// Returns apperror.ErrNotFound if no cultivar has cultivar.ID, and
// apperror.DuplicateName if the new name belongs to another cultivar.
func (db *DB) UpdateCultivar(ctx context.Context, cultivar *model.Cultivar) error {
	if cultivar.Name == "" {
		return apperror.ValidationFailed("name", "Cultivar name is required.")
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE cultivars
			 SET name = ?, flower_color = ?, leaf_description = ?, acquisition_date = ?,
				light_level = ?, soil_mix = ?, notes = ?
			 WHERE id = ?`,
			cultivar.Name,
			nullable(cultivar.FlowerColor),
			nullable(cultivar.LeafDescription),
			nullable(model.FormatDate(cultivar.AcquisitionDate)),
			nullable(cultivar.LightLevel),
			nullable(cultivar.SoilMix),
			nullable(cultivar.Notes),
			cultivar.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.DuplicateName("cultivar", cultivar.Name)
			}
			return fmt.Errorf("sqlite: updating cultivar %s: %w", cultivar.ID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("cultivar", cultivar.ID)
		}
		return nil
	})
}

// DeleteCultivar removes a cultivar and all of its care logs in one
// transaction. Returns apperror.ErrNotFound, with nothing deleted, if the
// cultivar doesn't exist.
func (db *DB) DeleteCultivar(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM care_logs WHERE cultivar_id = ?`, id,
		); err != nil {
			return fmt.Errorf("sqlite: deleting care logs of cultivar %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM cultivars WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting cultivar %s: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("cultivar", id)
		}
		return nil
	})
}
