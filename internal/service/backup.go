package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

// Snapshot encodings understood by EncodeSnapshot and DecodeSnapshot.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// BackupService exports the whole journal and restores it from an export.
type BackupService struct {
	repo   repository.JournalRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewBackupService(repo repository.JournalRepository, logger *slog.Logger) *BackupService {
	return &BackupService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Export captures every cultivar and care log.
func (s *BackupService) Export(ctx context.Context) (*model.Snapshot, error) {
	cultivars, err := s.repo.ListCultivars(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting cultivars: %w", err)
	}
	history, err := s.repo.ListCareHistory(ctx, repository.CareHistoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting care logs: %w", err)
	}

	snap := &model.Snapshot{
		ExportedAt: s.now().UTC().Truncate(time.Second),
		Cultivars:  make([]model.CultivarRecord, 0, len(cultivars)),
		CareLogs:   make([]model.CareLogRecord, 0, len(history)),
	}
	for _, c := range cultivars {
		snap.Cultivars = append(snap.Cultivars, model.CultivarRecord{
			ID:              c.ID,
			Name:            c.Name,
			FlowerColor:     c.FlowerColor,
			LeafDescription: c.LeafDescription,
			AcquisitionDate: model.FormatDate(c.AcquisitionDate),
			LightLevel:      c.LightLevel,
			SoilMix:         c.SoilMix,
			Notes:           c.Notes,
		})
	}
	for _, h := range history {
		snap.CareLogs = append(snap.CareLogs, model.CareLogRecord{
			ID:          h.ID,
			CultivarID:  h.CultivarID,
			PerformedOn: h.PerformedOn.Format(model.DateLayout),
			Action:      h.Action,
			Notes:       h.Notes,
		})
	}

	return snap, nil
}

// Import replaces the whole journal with the snapshot's contents.
//
// The snapshot is checked before anything is written: every cultivar needs a
// unique non-empty name, ids must not repeat, dates must parse, and every
// care log must point at a cultivar in the same snapshot. The store then swaps the data in one
// transaction.
func (s *BackupService) Import(ctx context.Context, snap *model.Snapshot) error {
	cultivars, logs, err := decodeRecords(snap)
	if err != nil {
		return err
	}

	if err := s.repo.ReplaceAll(ctx, cultivars, logs); err != nil {
		if apperror.IsUserFacing(err) {
			return err
		}
		s.logger.Error("failed to import snapshot", slog.String("error", err.Error()))
		return fmt.Errorf("importing snapshot: %w", err)
	}

	s.logger.Info("snapshot imported",
		slog.Int("cultivars", len(cultivars)),
		slog.Int("care_logs", len(logs)),
	)
	return nil
}

func decodeRecords(snap *model.Snapshot) ([]model.Cultivar, []model.CareLog, error) {
	names := make(map[string]bool, len(snap.Cultivars))
	ids := make(map[string]bool, len(snap.Cultivars))
	cultivars := make([]model.Cultivar, 0, len(snap.Cultivars))

	for i, r := range snap.Cultivars {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, nil, apperror.ValidationFailed("cultivars",
				fmt.Sprintf("cultivar #%d has no name", i+1))
		}
		if names[name] {
			return nil, nil, apperror.DuplicateName("cultivar", name)
		}
		names[name] = true
		if r.ID != "" {
			if ids[r.ID] {
				return nil, nil, apperror.ValidationFailed("cultivars",
					fmt.Sprintf("cultivar id %s appears more than once", r.ID))
			}
			ids[r.ID] = true
		}

		acquired, err := parseOptionalDate("acquisition_date", r.AcquisitionDate)
		if err != nil {
			return nil, nil, err
		}

		c := model.Cultivar{
			ID:              r.ID,
			Name:            name,
			FlowerColor:     strings.TrimSpace(r.FlowerColor),
			LeafDescription: strings.TrimSpace(r.LeafDescription),
			AcquisitionDate: acquired,
			LightLevel:      strings.TrimSpace(r.LightLevel),
			SoilMix:         strings.TrimSpace(r.SoilMix),
			Notes:           strings.TrimSpace(r.Notes),
		}
		if err := validateCultivarLengths(&c); err != nil {
			return nil, nil, err
		}
		cultivars = append(cultivars, c)
	}

	logIDs := make(map[string]bool, len(snap.CareLogs))
	logs := make([]model.CareLog, 0, len(snap.CareLogs))
	for i, r := range snap.CareLogs {
		if r.ID != "" {
			if logIDs[r.ID] {
				return nil, nil, apperror.ValidationFailed("care_logs",
					fmt.Sprintf("care log id %s appears more than once", r.ID))
			}
			logIDs[r.ID] = true
		}
		if !ids[r.CultivarID] {
			return nil, nil, apperror.ValidationFailed("care_logs",
				fmt.Sprintf("care log #%d refers to unknown cultivar %q", i+1, r.CultivarID))
		}

		performedOn, err := parseOptionalDate("performed_on", r.PerformedOn)
		if err != nil {
			return nil, nil, err
		}
		if performedOn == nil {
			return nil, nil, apperror.ValidationFailed("care_logs",
				fmt.Sprintf("care log #%d has no date", i+1))
		}

		action := strings.TrimSpace(r.Action)
		if action == "" {
			action = model.DefaultCareAction
		}

		logs = append(logs, model.CareLog{
			ID:          r.ID,
			CultivarID:  r.CultivarID,
			PerformedOn: *performedOn,
			Action:      action,
			Notes:       strings.TrimSpace(r.Notes),
		})
	}

	return cultivars, logs, nil
}

// WriteCareCSV writes the whole care history, oldest first, as CSV with a
// Date,Cultivar,Action,Notes header.
func (s *BackupService) WriteCareCSV(ctx context.Context, w io.Writer) error {
	history, err := s.repo.ListCareHistory(ctx, repository.CareHistoryFilter{})
	if err != nil {
		return fmt.Errorf("loading care history: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Cultivar", "Action", "Notes"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, h := range history {
		row := []string{h.PerformedOn.Format(model.DateLayout), h.CultivarName, h.Action, h.Notes}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeSnapshot writes snap in the given format ("json" or "yaml").
func EncodeSnapshot(w io.Writer, snap *model.Snapshot, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return apperror.ValidationFailed("format", fmt.Sprintf("unknown export format %q", format))
	}
}

// DecodeSnapshot reads a snapshot in the given format. Malformed input is
// reported as apperror.ErrParse.
func DecodeSnapshot(r io.Reader, format string) (*model.Snapshot, error) {
	var snap model.Snapshot
	var err error

	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&snap)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	default:
		return nil, apperror.ValidationFailed("format", fmt.Sprintf("unknown import format %q", format))
	}
	if err != nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrParse,
			Message: fmt.Sprintf("could not read %s snapshot: %v", format, err),
		}
	}

	return &snap, nil
}

// FormatFromPath guesses the snapshot format from a file extension,
// defaulting to JSON.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}
