package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/repository"
)

// Setting keys
const (
	SettingBaseURL       = "base_url"
	SettingAPIBaseURL    = "api_base_url"
	SettingDefaultSeason = "default_season"
)

// URLSetter is anything whose upstream base URL can be changed at runtime
type URLSetter interface {
	SetBaseURL(url string)
}

// Settings holds admin-editable settings. Nil fields are left unchanged.
type Settings struct {
	BaseURL       *string `json:"base_url"`
	APIBaseURL    *string `json:"api_base_url"`
	DefaultSeason *string `json:"default_season"`
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log           logger.Logger
	repo          repository.SettingsRepository
	client        URLSetter
	defaultSeason string
}

// NewSettingsService creates a new SettingsService. defaultSeason is used until an admin stores one.
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository, defaultSeason string) *SettingsService {
	return &SettingsService{log: log, repo: repo, defaultSeason: defaultSeason}
}

// SetClient sets the upstream client that follows api_base_url changes
func (s *SettingsService) SetClient(c URLSetter) {
	s.client = c
}

// ApplyStored pushes a stored api_base_url to the client, overriding the configured one
func (s *SettingsService) ApplyStored(ctx context.Context) error {
	url, err := s.GetAPIBaseURL(ctx)
	if err != nil {
		return err
	}
	if url != "" && s.client != nil {
		s.client.SetBaseURL(url)
		s.log.Info("Using stored contest API URL", "url", url)
	}
	return nil
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// getOr returns the setting or fallback when it was never stored
func (s *SettingsService) getOr(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return fallback, nil
		}
		return "", err
	}
	return value, nil
}

// GetBaseURL returns the public URL of this server, empty when not configured
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.getOr(ctx, SettingBaseURL, "")
}

// SetBaseURL saves the public URL of this server
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	url, err := normaliseURL(url)
	if err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, SettingBaseURL, url)
}

// GetAPIBaseURL returns the stored contest API URL, empty when the configured one applies
func (s *SettingsService) GetAPIBaseURL(ctx context.Context) (string, error) {
	return s.getOr(ctx, SettingAPIBaseURL, "")
}

// SetAPIBaseURL saves the contest API URL and points the client at it
func (s *SettingsService) SetAPIBaseURL(ctx context.Context, url string) error {
	url, err := normaliseURL(url)
	if err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, SettingAPIBaseURL, url); err != nil {
		return err
	}
	if url != "" && s.client != nil {
		s.client.SetBaseURL(url)
	}
	return nil
}

// GetDefaultSeason returns the season / redirects to
func (s *SettingsService) GetDefaultSeason(ctx context.Context) (string, error) {
	value, err := s.getOr(ctx, SettingDefaultSeason, s.defaultSeason)
	if err != nil {
		return "", err
	}
	if value == "" {
		return s.defaultSeason, nil
	}
	return value, nil
}

// SetDefaultSeason saves the season / redirects to
func (s *SettingsService) SetDefaultSeason(ctx context.Context, season string) error {
	return s.repo.SetSetting(ctx, SettingDefaultSeason, strings.TrimSpace(season))
}

// AllSettings returns the admin-editable settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	baseURL, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	settings[SettingBaseURL] = baseURL

	apiURL, err := s.GetAPIBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	settings[SettingAPIBaseURL] = apiURL

	season, err := s.GetDefaultSeason(ctx)
	if err != nil {
		return nil, err
	}
	settings[SettingDefaultSeason] = season

	return settings, nil
}

// UpdateSettings applies every non-nil field
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != nil {
		if err := s.SetBaseURL(ctx, *settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.APIBaseURL != nil {
		if err := s.SetAPIBaseURL(ctx, *settings.APIBaseURL); err != nil {
			return err
		}
	}
	if settings.DefaultSeason != nil {
		if err := s.SetDefaultSeason(ctx, *settings.DefaultSeason); err != nil {
			return err
		}
	}
	return nil
}

// normaliseURL trims whitespace and a trailing slash. Empty clears the setting.
func normaliseURL(url string) (string, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return "", nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", ErrInvalidBaseURL
	}
	return url, nil
}
