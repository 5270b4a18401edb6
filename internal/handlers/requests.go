package handlers

import "github.com/abrezinsky/hoopsboard/internal/questions"

// PageMountRequest represents a request to mount a leaderboard page
type PageMountRequest struct {
	Season        string `json:"season"`
	Query         string `json:"query"`
	InitialUserID string `json:"initial_user_id"`
}

// ViewerLoginRequest represents a viewer signing in with their contest username
type ViewerLoginRequest struct {
	Username string `json:"username"`
}

// QuestionBatchRequest represents a batch of authored questions for one season
type QuestionBatchRequest struct {
	Season    string            `json:"season"`
	Questions []questions.Draft `json:"questions"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL       *string `json:"base_url"`
	APIBaseURL    *string `json:"api_base_url"`
	DefaultSeason *string `json:"default_season"`
}
