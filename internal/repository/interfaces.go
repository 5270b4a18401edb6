package repository

import (
	"context"

	"github.com/abrezinsky/hoopsboard/internal/models"
)

// PreferenceRepository stores small per-viewer flags
type PreferenceRepository interface {
	GetPreference(ctx context.Context, scope, key string) (string, error)
	SetPreference(ctx context.Context, scope, key, value string) error
}

// PinRepository stores the users a viewer pinned for a season
type PinRepository interface {
	ListPinned(ctx context.Context, viewer, season string) ([]string, error)
	ReplacePinned(ctx context.Context, viewer, season string, userIDs []string) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SubmissionRepository records authored questions sent upstream
type SubmissionRepository interface {
	RecordSubmission(ctx context.Context, s models.Submission) (int64, error)
	ListSubmissions(ctx context.Context, batchID string) ([]models.Submission, error)
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	PreferenceRepository
	PinRepository
	SettingsRepository
	SubmissionRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
