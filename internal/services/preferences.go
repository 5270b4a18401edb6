package services

import (
	"context"
	"sync"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/repository"
	"github.com/abrezinsky/hoopsboard/internal/selection"
)

// PreferencesRepository is the storage the preferences service needs
type PreferencesRepository interface {
	repository.PreferenceRepository
	repository.PinRepository
}

// PreferencesService persists per-viewer flags and pinned users. When the store
// fails, values are kept in memory for the life of the process.
type PreferencesService struct {
	log  logger.Logger
	repo PreferencesRepository

	mu       sync.Mutex
	fallback map[string]string
}

// NewPreferencesService creates a new PreferencesService
func NewPreferencesService(log logger.Logger, repo PreferencesRepository) *PreferencesService {
	return &PreferencesService{log: log, repo: repo, fallback: make(map[string]string)}
}

// For returns the flag store of one viewer scope
func (s *PreferencesService) For(scope string) selection.Preferences {
	return &scopedPreferences{svc: s, scope: scope}
}

func fallbackKey(scope, key string) string {
	return scope + "\x00" + key
}

// Get returns the stored flag, or "" when it was never set
func (s *PreferencesService) Get(ctx context.Context, scope, key string) (string, error) {
	value, err := s.repo.GetPreference(ctx, scope, key)
	if err == nil {
		return value, nil
	}
	s.mu.Lock()
	mem, ok := s.fallback[fallbackKey(scope, key)]
	s.mu.Unlock()
	if ok {
		return mem, nil
	}
	if err == repository.ErrNotFound {
		return "", nil
	}
	return "", err
}

// Set stores a flag. On store failure the value is still remembered in memory.
func (s *PreferencesService) Set(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	s.fallback[fallbackKey(scope, key)] = value
	s.mu.Unlock()
	return s.repo.SetPreference(ctx, scope, key, value)
}

// LoadPinned returns the users viewer pinned for season
func (s *PreferencesService) LoadPinned(ctx context.Context, viewer, season string) ([]string, error) {
	if viewer == "" {
		return nil, nil
	}
	return s.repo.ListPinned(ctx, viewer, season)
}

// SavePinned replaces the users viewer pinned for season
func (s *PreferencesService) SavePinned(viewer, season string, ids []string) error {
	return s.repo.ReplacePinned(context.Background(), viewer, season, ids)
}

type scopedPreferences struct {
	svc   *PreferencesService
	scope string
}

func (p *scopedPreferences) Get(key string) (string, error) {
	return p.svc.Get(context.Background(), p.scope, key)
}

func (p *scopedPreferences) Set(key, value string) error {
	return p.svc.Set(context.Background(), p.scope, key, value)
}
