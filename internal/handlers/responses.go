package handlers

import (
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/services"
)

// PageResponse is the response for page operations
type PageResponse struct {
	ID   string    `json:"id"`
	View page.View `json:"view"`
}

// ShareResponse is the absolute link of a page's current state
type ShareResponse struct {
	URL string `json:"url"`
}

// SeasonsResponse lists the seasons a viewer can open
type SeasonsResponse struct {
	Seasons []models.Season `json:"seasons"`
	Default string          `json:"default"`
}

// ViewerResponse is the current viewer identity
type ViewerResponse struct {
	Username string `json:"username,omitempty"`
	LoggedIn bool   `json:"logged_in"`
}

// QuestionPreviewResponse is the response for a batch preview
type QuestionPreviewResponse struct {
	Season string             `json:"season"`
	Items  []services.Preview `json:"items"`
	Valid  bool               `json:"valid"`
}

// BatchRecordsResponse lists the recorded items of a batch
type BatchRecordsResponse struct {
	BatchID string              `json:"batch_id"`
	Items   []models.Submission `json:"items"`
}
