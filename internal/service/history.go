package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

// CareHistoryQuery is the raw care-history filter form. Blank fields match
// everything.
type CareHistoryQuery struct {
	CultivarID string
	Action     string
	From       string
	To         string
}

// CareHistory is everything the care-history page shows.
type CareHistory struct {
	Entries   []model.CareHistoryEntry // newest first
	Cultivars []model.Cultivar         // choices for the cultivar filter
	Actions   []string                 // distinct recorded actions, sorted
}

// CareHistory lists care logs across all cultivars matching q, newest first.
// The cultivar and action must match exactly; From and To are inclusive
// dates. A malformed date comes back as apperror.ErrParse.
func (s *CultivarService) CareHistory(ctx context.Context, q CareHistoryQuery) (*CareHistory, error) {
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return nil, err
	}

	entries, err := s.careLogs.ListCareHistory(ctx, repository.CareHistoryFilter{
		CultivarID:  strings.TrimSpace(q.CultivarID),
		Action:      strings.TrimSpace(q.Action),
		From:        from,
		To:          to,
		NewestFirst: true,
	})
	if err != nil {
		s.logger.Error("failed to list care history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing care history: %w", err)
	}

	cultivars, err := s.cultivars.ListCultivars(ctx)
	if err != nil {
		s.logger.Error("failed to list cultivars", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cultivars: %w", err)
	}

	all, err := s.careLogs.ListCareHistory(ctx, repository.CareHistoryFilter{})
	if err != nil {
		s.logger.Error("failed to list care actions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing care actions: %w", err)
	}

	return &CareHistory{
		Entries:   entries,
		Cultivars: cultivars,
		Actions:   distinctActions(all),
	}, nil
}

func distinctActions(entries []model.CareHistoryEntry) []string {
	seen := make(map[string]bool)
	actions := []string{}
	for _, e := range entries {
		if !seen[e.Action] {
			seen[e.Action] = true
			actions = append(actions, e.Action)
		}
	}
	sort.Strings(actions)
	return actions
}
