package services

import (
	"context"
	"time"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/questions"
)

// LeaderboardServicer defines the interface for fetching contest data
type LeaderboardServicer interface {
	Load(ctx context.Context, season string) (page.Data, error)
	Seasons(ctx context.Context) ([]models.Season, error)
}

// PageServicer defines the interface for page lifecycle operations
type PageServicer interface {
	Mount(ctx context.Context, req MountRequest) (*page.Page, error)
	Get(id string) (*page.Page, error)
	Unmount(id string) error
	Count() int
	Reap(now time.Time) int
	ShareURL(ctx context.Context, id, fallbackBase string) (string, error)
	ShareQR(ctx context.Context, id, fallbackBase string) ([]byte, error)
}

// BatchServicer defines the interface for question authoring
type BatchServicer interface {
	Preview(season string, drafts []questions.Draft) ([]Preview, error)
	Submit(ctx context.Context, season string, drafts []questions.Draft) (*BatchResult, error)
	Batch(ctx context.Context, batchID string) ([]models.Submission, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetAPIBaseURL(ctx context.Context) (string, error)
	SetAPIBaseURL(ctx context.Context, url string) error
	GetDefaultSeason(ctx context.Context) (string, error)
	SetDefaultSeason(ctx context.Context, season string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
}

// Ensure concrete types implement interfaces
var (
	_ LeaderboardServicer = (*LeaderboardService)(nil)
	_ PageServicer        = (*PageService)(nil)
	_ BatchServicer       = (*BatchService)(nil)
	_ SettingsServicer    = (*SettingsService)(nil)
	_ page.PinStore       = (*PreferencesService)(nil)
	_ DataLoader          = (*LeaderboardService)(nil)
)
