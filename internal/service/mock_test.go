package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/repository"
)

// mockJournalRepo is an in-memory repository.JournalRepository.
// err, when set, is returned by every method to simulate a failing store.
type mockJournalRepo struct {
	cultivars map[string]*model.Cultivar
	logs      map[string]*model.CareLog
	order     []string // care log ids in insertion order
	nextID    int
	err       error
}

var _ repository.JournalRepository = (*mockJournalRepo)(nil)

var errStoreDown = errors.New("store is down")

func newMockRepo() *mockJournalRepo {
	return &mockJournalRepo{
		cultivars: make(map[string]*model.Cultivar),
		logs:      make(map[string]*model.CareLog),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m *mockJournalRepo) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockJournalRepo) ListWithLatestCare(_ context.Context, opts repository.ListOptions) ([]model.CultivarSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.CultivarSummary
	for _, c := range m.cultivars {
		if opts.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(opts.Query)) {
			continue
		}
		s := model.CultivarSummary{Cultivar: *c}
		for _, l := range m.logs {
			if l.CultivarID == c.ID && (s.LatestCare == nil || l.PerformedOn.After(*s.LatestCare)) {
				d := l.PerformedOn
				s.LatestCare = &d
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockJournalRepo) ListCultivars(_ context.Context) ([]model.Cultivar, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Cultivar{}
	for _, c := range m.cultivars {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockJournalRepo) CreateCultivar(_ context.Context, c *model.Cultivar) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.cultivars {
		if existing.Name == c.Name {
			return apperror.DuplicateName("cultivar", c.Name)
		}
	}
	c.ID = m.id("cultivar")
	stored := *c
	m.cultivars[c.ID] = &stored
	return nil
}

func (m *mockJournalRepo) GetCultivar(_ context.Context, id string) (*model.Cultivar, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.cultivars[id]
	if !ok {
		return nil, apperror.NotFound("cultivar", id)
	}
	result := *c
	return &result, nil
}

func (m *mockJournalRepo) UpdateCultivar(_ context.Context, c *model.Cultivar) error {
	if m.err != nil {
		return m.err
	}
	stored, ok := m.cultivars[c.ID]
	if !ok {
		return apperror.NotFound("cultivar", c.ID)
	}
	for _, existing := range m.cultivars {
		if existing.ID != c.ID && existing.Name == c.Name {
			return apperror.DuplicateName("cultivar", c.Name)
		}
	}
	updated := *c
	updated.CreatedAt = stored.CreatedAt
	m.cultivars[c.ID] = &updated
	return nil
}

func (m *mockJournalRepo) DeleteCultivar(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.cultivars[id]; !ok {
		return apperror.NotFound("cultivar", id)
	}
	delete(m.cultivars, id)
	for lid, l := range m.logs {
		if l.CultivarID == id {
			delete(m.logs, lid)
		}
	}
	return nil
}

func (m *mockJournalRepo) ListCareLogs(_ context.Context, cultivarID string) ([]model.CareLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []model.CareLog{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if l, ok := m.logs[m.order[i]]; ok && l.CultivarID == cultivarID {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformedOn.After(out[j].PerformedOn) })
	return out, nil
}

func (m *mockJournalRepo) ListCareHistory(_ context.Context, f repository.CareHistoryFilter) ([]model.CareHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []model.CareHistoryEntry{}
	for _, id := range m.order {
		l, ok := m.logs[id]
		if !ok {
			continue
		}
		if f.CultivarID != "" && l.CultivarID != f.CultivarID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.From != nil && l.PerformedOn.Before(*f.From) {
			continue
		}
		if f.To != nil && l.PerformedOn.After(*f.To) {
			continue
		}
		out = append(out, model.CareHistoryEntry{CareLog: *l, CultivarName: m.cultivars[l.CultivarID].Name})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformedOn.Before(out[j].PerformedOn) })
	if f.NewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (m *mockJournalRepo) AddCareLog(_ context.Context, l *model.CareLog) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.cultivars[l.CultivarID]; !ok {
		return apperror.NotFound("cultivar", l.CultivarID)
	}
	l.ID = m.id("log")
	stored := *l
	m.logs[l.ID] = &stored
	m.order = append(m.order, l.ID)
	return nil
}

func (m *mockJournalRepo) DeleteCareLog(_ context.Context, id string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	l, ok := m.logs[id]
	if !ok {
		return "", apperror.NotFound("care log", id)
	}
	delete(m.logs, id)
	return l.CultivarID, nil
}

func (m *mockJournalRepo) ReplaceAll(_ context.Context, cultivars []model.Cultivar, logs []model.CareLog) error {
	if m.err != nil {
		return m.err
	}
	m.cultivars = make(map[string]*model.Cultivar)
	m.logs = make(map[string]*model.CareLog)
	m.order = nil
	for i := range cultivars {
		c := cultivars[i]
		if c.ID == "" {
			c.ID = m.id("cultivar")
		}
		m.cultivars[c.ID] = &c
	}
	for i := range logs {
		l := logs[i]
		if l.ID == "" {
			l.ID = m.id("log")
		}
		m.logs[l.ID] = &l
		m.order = append(m.order, l.ID)
	}
	return nil
}
