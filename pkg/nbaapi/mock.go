package nbaapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/abrezinsky/hoopsboard/internal/models"
)

// MockClient is a mock contest API client for testing
type MockClient struct {
	mu             sync.Mutex
	baseURL        string
	leaderboards   map[string]*Leaderboard
	standings      map[string]*Standings
	seasons        []models.Season
	leaderboardErr error
	standingsErr   error
	seasonsErr     error
	createErr      error
	failOn         map[int]error // call number (1-based) -> error for CreateQuestion
	created        []interface{}
	nextID         int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithLeaderboard sets the leaderboard returned for a season
func WithLeaderboard(season string, entries []models.LeaderboardEntry) MockOption {
	return func(m *MockClient) {
		m.leaderboards[season] = &Leaderboard{Season: season, Entries: entries}
	}
}

// WithStandings sets the standings returned for a season
func WithStandings(season string, teams []models.StandingsTeam) MockOption {
	return func(m *MockClient) {
		st := &Standings{}
		for _, t := range teams {
			if models.IsEast(t.Conference) {
				st.East = append(st.East, t)
			} else {
				st.West = append(st.West, t)
			}
		}
		m.standings[season] = st
	}
}

// WithSeasons sets the participated seasons
func WithSeasons(seasons []models.Season) MockOption {
	return func(m *MockClient) {
		m.seasons = seasons
	}
}

// WithLeaderboardError sets an error to return from FetchLeaderboard
func WithLeaderboardError(err error) MockOption {
	return func(m *MockClient) {
		m.leaderboardErr = err
	}
}

// WithStandingsError sets an error to return from FetchStandings
func WithStandingsError(err error) MockOption {
	return func(m *MockClient) {
		m.standingsErr = err
	}
}

// WithSeasonsError sets an error to return from FetchParticipatedSeasons
func WithSeasonsError(err error) MockOption {
	return func(m *MockClient) {
		m.seasonsErr = err
	}
}

// WithCreateError sets an error to return from every CreateQuestion call
func WithCreateError(err error) MockOption {
	return func(m *MockClient) {
		m.createErr = err
	}
}

// WithCreateFailureOn makes the nth CreateQuestion call (1-based) fail
func WithCreateFailureOn(n int, err error) MockOption {
	return func(m *MockClient) {
		m.failOn[n] = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock client serving DefaultMockSeason
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:      "http://mock-contest.local",
		leaderboards: map[string]*Leaderboard{},
		standings:    map[string]*Standings{},
		failOn:       map[int]error{},
		seasons:      []models.Season{{Slug: DefaultMockSeason, Description: "2024-25 Regular Season", Year: "2025"}},
		nextID:       100,
	}
	m.leaderboards[DefaultMockSeason] = &Leaderboard{Season: DefaultMockSeason, Entries: DefaultMockEntries()}
	WithStandings(DefaultMockSeason, DefaultMockStandings())(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

// FetchLeaderboard returns the configured leaderboard or error
func (m *MockClient) FetchLeaderboard(ctx context.Context, season string) (*Leaderboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaderboardErr != nil {
		return nil, m.leaderboardErr
	}
	lb, ok := m.leaderboards[season]
	if !ok {
		return nil, &StatusError{StatusCode: 404, Message: "season not found"}
	}
	out := *lb
	return &out, nil
}

// FetchStandings returns the configured standings or error
func (m *MockClient) FetchStandings(ctx context.Context, season string) (*Standings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.standingsErr != nil {
		return nil, m.standingsErr
	}
	st, ok := m.standings[season]
	if !ok {
		return &Standings{}, nil
	}
	out := *st
	return &out, nil
}

// FetchParticipatedSeasons returns the configured seasons or error
func (m *MockClient) FetchParticipatedSeasons(ctx context.Context) ([]models.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seasonsErr != nil {
		return nil, m.seasonsErr
	}
	return m.seasons, nil
}

// CreateQuestion records the payload and returns a generated id
func (m *MockClient) CreateQuestion(ctx context.Context, payload interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.created) + 1
	m.created = append(m.created, payload)
	if m.createErr != nil {
		return "", m.createErr
	}
	if err, ok := m.failOn[call]; ok {
		return "", err
	}
	m.nextID++
	return fmt.Sprintf("q-%d", m.nextID), nil
}

// Created returns every payload passed to CreateQuestion (for testing)
func (m *MockClient) Created() []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]interface{}, len(m.created))
	copy(out, m.created)
	return out
}

// DefaultMockSeason is the season the mock serves out of the box
const DefaultMockSeason = "2025"

// DefaultMockStandings returns three teams per conference with actual positions
func DefaultMockStandings() []models.StandingsTeam {
	return []models.StandingsTeam{
		{Team: "Oklahoma City Thunder", Conference: models.ConferenceWest, ActualPosition: models.IntPtr(1)},
		{Team: "Houston Rockets", Conference: models.ConferenceWest, ActualPosition: models.IntPtr(2)},
		{Team: "Denver Nuggets", Conference: models.ConferenceWest, ActualPosition: models.IntPtr(3)},
		{Team: "Cleveland Cavaliers", Conference: models.ConferenceEast, ActualPosition: models.IntPtr(1)},
		{Team: "Boston Celtics", Conference: models.ConferenceEast, ActualPosition: models.IntPtr(2)},
		{Team: "New York Knicks", Conference: models.ConferenceEast, ActualPosition: models.IntPtr(3)},
	}
}

// DefaultMockEntries returns a small ranked leaderboard for DefaultMockSeason
func DefaultMockEntries() []models.LeaderboardEntry {
	names := []struct{ id, username, display string }{
		{"1", "ann", "Ann Arbor"},
		{"2", "ben", "Ben Bailey"},
		{"3", "cat", ""},
		{"4", "dan", "Dan Dixon"},
		{"5", "eve", "Eve Evans"},
	}
	out := make([]models.LeaderboardEntry, len(names))
	for i, n := range names {
		total := float64(40 - i*5)
		out[i] = models.LeaderboardEntry{
			Rank: i + 1,
			User: models.User{
				ID:          models.ID(n.id),
				Username:    n.username,
				DisplayName: n.display,
				TotalPoints: total,
				Categories: map[string]models.Category{
					models.CategoryStandings: {Points: total, MaxPoints: 60, Predictions: []models.Prediction{
						{Team: "Oklahoma City Thunder", Conference: models.ConferenceWest, PredictedPosition: models.IntPtr(1 + i%3)},
						{Team: "Boston Celtics", Conference: models.ConferenceEast, PredictedPosition: models.IntPtr(1 + (i+1)%3)},
					}},
				},
			},
		}
	}
	return out
}
