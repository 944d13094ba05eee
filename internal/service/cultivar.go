// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → parses forms, renders pages, maps errors to status codes
//	Service          → validates, applies defaults, orchestrates
//	Repository (DB) → reads/writes SQLite
//
// Services accept plain Go values, never *http.Request, and return
// apperror values that the handlers translate.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

// Field length limits, in characters.
const (
	MaxNameLength            = 120
	MaxFlowerColorLength     = 80
	MaxLeafDescriptionLength = 120
	MaxLightLevelLength      = 80
	MaxSoilMixLength         = 120
	MaxActionLength          = 80
)

// CultivarInput is the raw create or edit cultivar form. Dates are still strings
// here; the service parses them.
type CultivarInput struct {
	Name            string
	FlowerColor     string
	LeafDescription string
	AcquisitionDate string
	LightLevel      string
	SoilMix         string
	Notes           string
}

// CareLogInput is the raw add-care-log form.
type CareLogInput struct {
	Action      string
	Notes       string
	PerformedOn string
}

// CultivarDetail is everything the detail page shows.
type CultivarDetail struct {
	Cultivar *model.Cultivar
	CareLogs []model.CareLog // most recent first
	Today    time.Time       // default date for a new care log
}

// CultivarService handles business logic for cultivars and their care logs.
type CultivarService struct {
	cultivars repository.CultivarRepository
	careLogs  repository.CareLogRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewCultivarService creates a CultivarService. Any repository.JournalRepository
// (such as *sqlite.DB) satisfies repo.
func NewCultivarService(repo repository.JournalRepository, logger *slog.Logger) *CultivarService {
	return &CultivarService{
		cultivars: repo,
		careLogs:  repo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *CultivarService) today() time.Time {
	return model.DateOf(s.now())
}

// List returns every cultivar with its latest care date, sorted by name.
// A non-empty query narrows the list to names containing it.
func (s *CultivarService) List(ctx context.Context, query string) ([]model.CultivarSummary, error) {
	summaries, err := s.cultivars.ListWithLatestCare(ctx, repository.ListOptions{
		Query: strings.TrimSpace(query),
	})
	if err != nil {
		s.logger.Error("failed to list cultivars", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cultivars: %w", err)
	}
	return summaries, nil
}

// Create validates the form and stores a new cultivar.
//
// Failures the user can fix come back as apperror values: ErrValidation for a
// blank name or an over-long field, ErrParse for a malformed acquisition
// date, ErrConflict for a name already in use.
func (s *CultivarService) Create(ctx context.Context, in CultivarInput) (*model.Cultivar, error) {
	c, err := cultivarFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.cultivars.CreateCultivar(ctx, c); err != nil {
		if apperror.IsUserFacing(err) {
			return nil, err
		}
		s.logger.Error("failed to create cultivar",
			slog.String("name", c.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating cultivar: %w", err)
	}

	s.logger.Info("cultivar created",
		slog.String("id", c.ID),
		slog.String("name", c.Name),
	)
	return c, nil
}

// Update validates the form exactly as Create does and overwrites the
// cultivar's fields. Care logs and the creation time are untouched.
// Returns apperror.ErrNotFound if the cultivar doesn't exist.
func (s *CultivarService) Update(ctx context.Context, id string, in CultivarInput) (*model.Cultivar, error) {
	existing, err := s.cultivars.GetCultivar(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := cultivarFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt

	if err := s.cultivars.UpdateCultivar(ctx, c); err != nil {
		if apperror.IsUserFacing(err) || isNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update cultivar",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating cultivar: %w", err)
	}

	s.logger.Info("cultivar updated",
		slog.String("id", c.ID),
		slog.String("name", c.Name),
	)
	return c, nil
}

// InputFromCultivar turns a stored cultivar back into form values, for
// prefilling the edit form.
func InputFromCultivar(c *model.Cultivar) CultivarInput {
	return CultivarInput{
		Name:            c.Name,
		FlowerColor:     c.FlowerColor,
		LeafDescription: c.LeafDescription,
		AcquisitionDate: model.FormatDate(c.AcquisitionDate),
		LightLevel:      c.LightLevel,
		SoilMix:         c.SoilMix,
		Notes:           c.Notes,
	}
}

// cultivarFromInput trims and validates a cultivar form.
func cultivarFromInput(in CultivarInput) (*model.Cultivar, error) {
	c := &model.Cultivar{
		Name:            strings.TrimSpace(in.Name),
		FlowerColor:     strings.TrimSpace(in.FlowerColor),
		LeafDescription: strings.TrimSpace(in.LeafDescription),
		LightLevel:      strings.TrimSpace(in.LightLevel),
		SoilMix:         strings.TrimSpace(in.SoilMix),
		Notes:           strings.TrimSpace(in.Notes),
	}

	if c.Name == "" {
		return nil, apperror.ValidationFailed("name", "Cultivar name is required.")
	}
	if err := validateCultivarLengths(c); err != nil {
		return nil, err
	}

	acquired, err := parseOptionalDate("acquisition_date", in.AcquisitionDate)
	if err != nil {
		return nil, err
	}
	c.AcquisitionDate = acquired
	return c, nil
}

func validateCultivarLengths(c *model.Cultivar) error {
	limits := []struct {
		field, label, value string
		max                 int
	}{
		{"name", "Cultivar name", c.Name, MaxNameLength},
		{"flower_color", "Flower color", c.FlowerColor, MaxFlowerColorLength},
		{"leaf_description", "Leaf description", c.LeafDescription, MaxLeafDescriptionLength},
		{"light_level", "Light level", c.LightLevel, MaxLightLevelLength},
		{"soil_mix", "Soil mix", c.SoilMix, MaxSoilMixLength},
	}
	for _, l := range limits {
		if len([]rune(l.value)) > l.max {
			return apperror.ValidationFailed(l.field,
				fmt.Sprintf("%s must be %d characters or less.", l.label, l.max))
		}
	}
	return nil
}

// parseOptionalDate parses an ISO date form value. Blank means absent; any
// other value that doesn't parse is rejected rather than ignored.
func parseOptionalDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperror.ParseFailed(field, raw, "date (YYYY-MM-DD)")
	}
	return &d, nil
}

// Detail loads a cultivar and its care logs, most recent first.
// Returns apperror.ErrNotFound if the cultivar doesn't exist.
func (s *CultivarService) Detail(ctx context.Context, id string) (*CultivarDetail, error) {
	c, err := s.cultivars.GetCultivar(ctx, id)
	if err != nil {
		return nil, err
	}

	logs, err := s.careLogs.ListCareLogs(ctx, c.ID)
	if err != nil {
		s.logger.Error("failed to list care logs",
			slog.String("cultivar_id", c.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading care logs: %w", err)
	}

	return &CultivarDetail{
		Cultivar: c,
		CareLogs: logs,
		Today:    s.today(),
	}, nil
}

// AddCareLog records a care event against a cultivar. A blank date means
// today and a blank action means model.DefaultCareAction.
func (s *CultivarService) AddCareLog(ctx context.Context, cultivarID string, in CareLogInput) (*model.CareLog, error) {
	c, err := s.cultivars.GetCultivar(ctx, cultivarID)
	if err != nil {
		return nil, err
	}

	action := strings.TrimSpace(in.Action)
	if action == "" {
		action = model.DefaultCareAction
	}
	if len([]rune(action)) > MaxActionLength {
		return nil, apperror.ValidationFailed("action",
			fmt.Sprintf("Action must be %d characters or less.", MaxActionLength))
	}

	performedOn, err := parseOptionalDate("performed_on", in.PerformedOn)
	if err != nil {
		return nil, err
	}
	if performedOn == nil {
		today := s.today()
		performedOn = &today
	}

	log := &model.CareLog{
		CultivarID:  c.ID,
		PerformedOn: *performedOn,
		Action:      action,
		Notes:       strings.TrimSpace(in.Notes),
	}

	// The cultivar may have been deleted since the lookup; the store checks
	// again inside its transaction and reports NotFound.
	if err := s.careLogs.AddCareLog(ctx, log); err != nil {
		if apperror.IsUserFacing(err) || isNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to add care log",
			slog.String("cultivar_id", c.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding care log: %w", err)
	}

	s.logger.Info("care log added",
		slog.String("id", log.ID),
		slog.String("cultivar_id", c.ID),
		slog.String("action", log.Action),
		slog.String("performed_on", log.PerformedOn.Format(model.DateLayout)),
	)
	return log, nil
}

// DeleteCultivar removes a cultivar together with all of its care logs.
func (s *CultivarService) DeleteCultivar(ctx context.Context, id string) error {
	if err := s.cultivars.DeleteCultivar(ctx, id); err != nil {
		if isNotFound(err) {
			return err
		}
		s.logger.Error("failed to delete cultivar",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting cultivar: %w", err)
	}

	s.logger.Info("cultivar deleted", slog.String("id", id))
	return nil
}

// DeleteCareLog removes one care log and returns the ID of the cultivar it
// belonged to, so the caller can go back to that cultivar's page.
func (s *CultivarService) DeleteCareLog(ctx context.Context, id string) (string, error) {
	cultivarID, err := s.careLogs.DeleteCareLog(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return "", err
		}
		s.logger.Error("failed to delete care log",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("deleting care log: %w", err)
	}

	s.logger.Info("care log deleted",
		slog.String("id", id),
		slog.String("cultivar_id", cultivarID),
	)
	return cultivarID, nil
}
