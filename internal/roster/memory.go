// Package roster keeps the process-owned activity store.
package roster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"example.com/mergington/internal/domain"
)

// InMemoryRepository stores activities in memory; state is lost on restart.
type InMemoryRepository struct {
	mu         sync.RWMutex
	activities map[string]*domain.Activity
}

// NewInMemoryRepository constructs a repository seeded with the given activities.
func NewInMemoryRepository(seed []domain.Activity) (*InMemoryRepository, error) {
	repo := &InMemoryRepository{
		activities: make(map[string]*domain.Activity, len(seed)),
	}
	for _, a := range seed {
		if _, exists := repo.activities[a.Name]; exists {
			return nil, fmt.Errorf("duplicate activity %q", a.Name)
		}
		clone := a.Clone()
		repo.activities[a.Name] = &clone
	}
	return repo, nil
}

// List implements domain.ActivityRepository. Activities come back sorted by name.
func (r *InMemoryRepository) List(ctx context.Context) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update implements domain.ActivityRepository. fn runs under the write lock against a
// scratch copy which replaces the stored activity only when fn succeeds.
func (r *InMemoryRepository) Update(ctx context.Context, name string, fn func(*domain.Activity) error) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}

	scratch := current.Clone()
	if err := fn(&scratch); err != nil {
		return domain.Activity{}, err
	}
	scratch.Name = current.Name

	r.activities[name] = &scratch
	return scratch.Clone(), nil
}
