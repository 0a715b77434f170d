package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pkordes/travel-guide/internal/domain"
)

// memoryProfileRepo keeps profiles in process memory. It is used when no
// DATABASE_URL is configured and in unit tests of the layers above.
type memoryProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	now      func() time.Time
}

// NewMemoryProfileRepo returns an empty in-memory ProfileRepo.
func NewMemoryProfileRepo() ProfileRepo {
	return &memoryProfileRepo{
		profiles: make(map[string]domain.UserProfile),
		now:      time.Now,
	}
}

func (r *memoryProfileRepo) Create(_ context.Context, p domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p.CreatedAt = now
	p.LastLogin = now
	p.LastLogout = nil
	p.Preferences = slices.Clone(p.Preferences)
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	if p.AccountStatus == "" {
		p.AccountStatus = domain.AccountActive
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *memoryProfileRepo) Get(_ context.Context, id string) (domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return domain.UserProfile{}, fmt.Errorf("repo.memoryProfileRepo.Get: %w", domain.ErrNotFound)
	}
	p.Preferences = slices.Clone(p.Preferences)
	if p.LastLogout != nil {
		t := *p.LastLogout
		p.LastLogout = &t
	}
	return p, nil
}

func (r *memoryProfileRepo) TouchLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("repo.memoryProfileRepo.TouchLastLogin: %w", domain.ErrNotFound)
	}
	p.LastLogin = r.now().UTC()
	r.profiles[id] = p
	return nil
}

func (r *memoryProfileRepo) TouchLastLogout(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("repo.memoryProfileRepo.TouchLastLogout: %w", domain.ErrNotFound)
	}
	now := r.now().UTC()
	p.LastLogout = &now
	r.profiles[id] = p
	return nil
}
