// Package nbaapi is a client for the prediction contest API that serves
// leaderboards, conference standings and the seasons a viewer took part in.
package nbaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
)

// DefaultTimeout bounds every upstream request
const DefaultTimeout = 30 * time.Second

// Leaderboard is a season's ranked entries
type Leaderboard struct {
	Season  string                    `json:"season"`
	Entries []models.LeaderboardEntry `json:"leaderboard"`
	Totals  map[string]interface{}    `json:"totals,omitempty"`
}

// UnmarshalJSON accepts both the {leaderboard, season, totals} envelope and a bare array of entries
func (l *Leaderboard) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []models.LeaderboardEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		*l = Leaderboard{Entries: entries}
		return nil
	}

	type envelope Leaderboard
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*l = Leaderboard(env)
	return nil
}

// Standings is the actual table split by conference
type Standings struct {
	East []models.StandingsTeam `json:"east"`
	West []models.StandingsTeam `json:"west"`
}

// Teams returns west then east with each team's conference filled in from its list
func (s Standings) Teams() []models.StandingsTeam {
	out := make([]models.StandingsTeam, 0, len(s.West)+len(s.East))
	for _, t := range s.West {
		if t.Conference == "" {
			t.Conference = models.ConferenceWest
		}
		out = append(out, t)
	}
	for _, t := range s.East {
		if t.Conference == "" {
			t.Conference = models.ConferenceEast
		}
		out = append(out, t)
	}
	return out
}

// CreateQuestionResponse is returned when a question is authored
type CreateQuestionResponse struct {
	ID      models.ID `json:"id"`
	Message string    `json:"message,omitempty"`
}

// errorResponse is the body the API sends with non-2xx statuses
type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("contest API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("contest API returned status %d: %s", e.StatusCode, e.Message)
}

// Client defines the interface for talking to the contest API
type Client interface {
	// FetchLeaderboard retrieves the ranked entries of a season
	FetchLeaderboard(ctx context.Context, season string) (*Leaderboard, error)
	// FetchStandings retrieves the actual conference standings of a season
	FetchStandings(ctx context.Context, season string) (*Standings, error)
	// FetchParticipatedSeasons retrieves the seasons the authenticated viewer entered
	FetchParticipatedSeasons(ctx context.Context) ([]models.Season, error)
	// CreateQuestion authors a question and returns its new id
	CreateQuestion(ctx context.Context, payload interface{}) (string, error)
	// BaseURL returns the configured API base URL
	BaseURL() string
	// SetBaseURL updates the API base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the contest API
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new API client with cookie support
func NewHTTPClient(baseURL string, timeout time.Duration, log logger.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new API client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured API base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the API base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetToken sets the bearer token sent with every request. An empty token disables the header.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do executes a request and decodes a 2xx JSON body into response
func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, response interface{}) error {
	apiURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	c.log.Debug("Contest API request", "method", method, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to contest API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Contest API response", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchLeaderboard retrieves the ranked entries of a season
func (c *HTTPClient) FetchLeaderboard(ctx context.Context, season string) (*Leaderboard, error) {
	var lb Leaderboard
	if err := c.do(ctx, http.MethodGet, "/api/v2/leaderboards/"+url.PathEscape(season), nil, &lb); err != nil {
		return nil, err
	}
	if lb.Season == "" {
		lb.Season = season
	}
	if lb.Entries == nil {
		lb.Entries = []models.LeaderboardEntry{}
	}
	return &lb, nil
}

// FetchStandings retrieves the actual conference standings of a season
func (c *HTTPClient) FetchStandings(ctx context.Context, season string) (*Standings, error) {
	var st Standings
	if err := c.do(ctx, http.MethodGet, "/api/v2/standings/"+url.PathEscape(season), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// FetchParticipatedSeasons retrieves the seasons the authenticated viewer entered
func (c *HTTPClient) FetchParticipatedSeasons(ctx context.Context) ([]models.Season, error) {
	seasons := []models.Season{}
	if err := c.do(ctx, http.MethodGet, "/api/v2/seasons/user-participated", nil, &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

// CreateQuestion authors a question and returns its new id
func (c *HTTPClient) CreateQuestion(ctx context.Context, payload interface{}) (string, error) {
	var resp CreateQuestionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v2/admin/questions", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("question created but no id in response")
	}
	c.log.Info("Question created", "id", resp.ID.String())
	return resp.ID.String(), nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
