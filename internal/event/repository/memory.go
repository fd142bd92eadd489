package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/platform/domainerr"
)

// MemoryRepository keeps series and instances in process. It assigns ids like the database does.
type MemoryRepository struct {
	mu        sync.Mutex
	series    map[int64]domain.Series
	instances map[int64]domain.Instance
	lastID    int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		series:    make(map[int64]domain.Series),
		instances: make(map[int64]domain.Instance),
	}
}

func (m *MemoryRepository) GetSeries(_ context.Context, id int64) (*domain.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[id]
	if !ok {
		return nil, domainerr.NotFound("series", id)
	}
	return cloneSeries(s), nil
}

func (m *MemoryRepository) SaveSeries(_ context.Context, s *domain.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range s.PendingChanges() {
		switch c.(type) {
		case domain.SeriesCreated:
			m.lastID++
			s.ID = m.lastID
		case domain.SeriesUpdated, domain.SeriesDeactivated:
			if _, ok := m.series[s.ID]; !ok {
				return domainerr.NotFound("series", s.ID)
			}
		default:
			return errors.Errorf("unhandled series change %T", c)
		}
	}
	s.DrainChanges()
	m.series[s.ID] = *cloneSeries(*s)
	return nil
}

func (m *MemoryRepository) GetInstance(_ context.Context, id int64) (*domain.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.instances[id]
	if !ok {
		return nil, domainerr.NotFound("instance", id)
	}
	return cloneInstance(i), nil
}

func (m *MemoryRepository) SaveInstance(_ context.Context, i *domain.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveInstance(i)
}

func (m *MemoryRepository) saveInstance(i *domain.Instance) error {
	for _, c := range i.PendingChanges() {
		switch c.(type) {
		case domain.InstanceCreated:
			m.lastID++
			i.ID = m.lastID
		case domain.InstanceUpdated, domain.InstanceDeactivated:
			if _, ok := m.instances[i.ID]; !ok {
				return domainerr.NotFound("instance", i.ID)
			}
		default:
			return errors.Errorf("unhandled instance change %T", c)
		}
	}
	i.DrainChanges()
	m.instances[i.ID] = *cloneInstance(*i)
	return nil
}

func (m *MemoryRepository) ReplaceFutureInstances(_ context.Context, seriesID int64, from time.Time, drafts []domain.InstanceDraft) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from = domain.DateOf(from)
	for id, inst := range m.instances {
		if inst.SeriesID != nil && *inst.SeriesID == seriesID && !inst.Date.Before(from) {
			delete(m.instances, id)
		}
	}
	for _, d := range drafts {
		if err := m.saveInstance(d.Instance()); err != nil {
			return 0, err
		}
	}
	return len(drafts), nil
}

func (m *MemoryRepository) DeactivateFutureInstances(_ context.Context, seriesID int64, from time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from = domain.DateOf(from)
	n := 0
	for id, inst := range m.instances {
		if inst.IsActive && inst.SeriesID != nil && *inst.SeriesID == seriesID && !inst.Date.Before(from) {
			inst.IsActive = false
			m.instances[id] = inst
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) ListSeriesInstances(_ context.Context, seriesID int64) ([]*domain.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Instance
	for _, inst := range m.instances {
		if inst.SeriesID != nil && *inst.SeriesID == seriesID {
			out = append(out, cloneInstance(inst))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Instance) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func cloneSeries(s domain.Series) *domain.Series {
	s.LocationID = clonePtr(s.LocationID)
	s.EventTypeID = clonePtr(s.EventTypeID)
	s.EventTagID = clonePtr(s.EventTagID)
	s.EndDate = clonePtr(s.EndDate)
	s.StartTime = clonePtr(s.StartTime)
	s.EndTime = clonePtr(s.EndTime)
	s.IndexWithinInterval = clonePtr(s.IndexWithinInterval)
	return &s
}

func cloneInstance(i domain.Instance) *domain.Instance {
	i.SeriesID = clonePtr(i.SeriesID)
	i.LocationID = clonePtr(i.LocationID)
	i.EventTypeID = clonePtr(i.EventTypeID)
	i.EventTagID = clonePtr(i.EventTagID)
	i.StartTime = clonePtr(i.StartTime)
	i.EndTime = clonePtr(i.EndTime)
	return &i
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
