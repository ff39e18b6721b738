package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal/errors"
)

// InMemoryRunRepository implements ports.RunRepository with in-memory storage
type InMemoryRunRepository struct {
	runs  map[core.RunID]*prevalence.Run
	order []core.RunID
	mu    sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{
		runs: make(map[core.RunID]*prevalence.Run),
	}
}

func (s *InMemoryRunRepository) SaveRun(ctx context.Context, run *prevalence.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already stored", run.ID)
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	return nil
}

func (s *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*prevalence.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, errors.NotFound("run "+id.String(), core.ErrRunNotFound)
	}
	return run, nil
}

func (s *InMemoryRunRepository) ListRuns(ctx context.Context, gene string, limit int) ([]prevalence.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []prevalence.RunInfo
	for _, id := range s.order {
		run := s.runs[id]
		if gene != "" && run.Gene != gene {
			continue
		}
		results = append(results, prevalence.RunInfo{
			ID:          run.ID,
			Gene:        run.Gene,
			Test:        run.Test,
			Source:      run.Source,
			Fingerprint: run.Fingerprint,
			CreatedAt:   run.CreatedAt,
			RowCount:    len(run.Rows),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Time().After(results[j].CreatedAt.Time())
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored runs.
func (s *InMemoryRunRepository) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
