package mock

import (
	"context"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ReplacePinnedError = errors.New("database error")
//	svc := services.NewPreferencesService(log, mockRepo)
//	err := svc.SavePinned("viewer", "2024-25", []string{"7"})
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Preference Errors =====
	GetPreferenceError error
	SetPreferenceError error

	// ===== Pin Errors =====
	ListPinnedError    error
	ReplacePinnedError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// ===== Submission Errors =====
	RecordSubmissionError error
	ListSubmissionsError  error

	PingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Preference Methods =====

func (m *Repository) GetPreference(ctx context.Context, scope, key string) (string, error) {
	if m.GetPreferenceError != nil {
		return "", m.GetPreferenceError
	}
	return m.FullRepository.GetPreference(ctx, scope, key)
}

func (m *Repository) SetPreference(ctx context.Context, scope, key, value string) error {
	if m.SetPreferenceError != nil {
		return m.SetPreferenceError
	}
	return m.FullRepository.SetPreference(ctx, scope, key, value)
}

// ===== Pin Methods =====

func (m *Repository) ListPinned(ctx context.Context, viewer, season string) ([]string, error) {
	if m.ListPinnedError != nil {
		return nil, m.ListPinnedError
	}
	return m.FullRepository.ListPinned(ctx, viewer, season)
}

func (m *Repository) ReplacePinned(ctx context.Context, viewer, season string, userIDs []string) error {
	if m.ReplacePinnedError != nil {
		return m.ReplacePinnedError
	}
	return m.FullRepository.ReplacePinned(ctx, viewer, season, userIDs)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// ===== Submission Methods =====

func (m *Repository) RecordSubmission(ctx context.Context, s models.Submission) (int64, error) {
	if m.RecordSubmissionError != nil {
		return 0, m.RecordSubmissionError
	}
	return m.FullRepository.RecordSubmission(ctx, s)
}

func (m *Repository) ListSubmissions(ctx context.Context, batchID string) ([]models.Submission, error) {
	if m.ListSubmissionsError != nil {
		return nil, m.ListSubmissionsError
	}
	return m.FullRepository.ListSubmissions(ctx, batchID)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}
