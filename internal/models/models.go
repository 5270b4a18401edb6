package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category keys recognised on a user's prediction map
const (
	CategoryStandings = "Regular Season Standings"
	CategoryAwards    = "Player Awards"
	CategoryProps     = "Props & Yes/No"
)

// ID is an opaque identifier that can be unmarshaled from either a JSON string or number.
// The contest API is inconsistent: user and question ids arrive as both.
type ID string

// UnmarshalJSON implements json.Unmarshaler for ID
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}

	return fmt.Errorf("ID: cannot unmarshal %s", string(data))
}

// String returns the string form of the id
func (id ID) String() string {
	return string(id)
}

// Prediction is a single answer a user gave, either a standings slot or a question answer
type Prediction struct {
	QuestionID        ID      `json:"question_id,omitempty"`
	QuestionText      string  `json:"question_text,omitempty"`
	Answer            string  `json:"answer,omitempty"`
	Correct           *bool   `json:"correct"` // nil means not yet graded
	Points            float64 `json:"points"`
	Team              string  `json:"team,omitempty"`
	PredictedPosition *int    `json:"predicted_position,omitempty"`
	ActualPosition    *int    `json:"actual_position,omitempty"`
	IsFinalized       bool    `json:"is_finalized,omitempty"`
	Conference        string  `json:"conference,omitempty"`
}

// IsStandings reports whether the prediction is a standings slot rather than a question answer
func (p Prediction) IsStandings() bool {
	return p.Team != "" && p.PredictedPosition != nil
}

// Category groups a user's predictions of the same kind
type Category struct {
	Points      float64      `json:"points"`
	MaxPoints   float64      `json:"max_points"`
	Predictions []Prediction `json:"predictions"`
}

// User is a contest participant together with their graded predictions
type User struct {
	ID          ID                  `json:"id"`
	Username    string              `json:"username"`
	DisplayName string              `json:"display_name,omitempty"`
	TotalPoints float64             `json:"total_points"`
	Categories  map[string]Category `json:"categories"`
}

// Label returns the name shown for the user: display name, falling back to username
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Clone returns a deep copy of the user so derived views never alias fetched data
func (u User) Clone() User {
	out := u
	if u.Categories == nil {
		return out
	}
	out.Categories = make(map[string]Category, len(u.Categories))
	for key, cat := range u.Categories {
		preds := make([]Prediction, len(cat.Predictions))
		copy(preds, cat.Predictions)
		cat.Predictions = preds
		out.Categories[key] = cat
	}
	return out
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	User            User     `json:"user"`
	Rank            int      `json:"rank"`
	OrigTotalPoints *float64 `json:"orig_total_points,omitempty"`
}

// Conference names as they appear in standings
const (
	ConferenceWest = "West"
	ConferenceEast = "East"
)

// IsWest reports whether a conference label denotes the Western conference
func IsWest(conference string) bool {
	return strings.HasPrefix(strings.ToLower(conference), "w")
}

// IsEast reports whether a conference label denotes the Eastern conference
func IsEast(conference string) bool {
	return strings.HasPrefix(strings.ToLower(conference), "e")
}

// StandingsTeam is a team with its real conference position
type StandingsTeam struct {
	Team           string `json:"team"`
	Conference     string `json:"conference"`
	ActualPosition *int   `json:"actual_position,omitempty"`
}

// OrderedTeam is a standings team placed in a draggable conference list
type OrderedTeam struct {
	StandingsTeam
	ID string `json:"id"`
}

// Season is a contest season the viewer took part in
type Season struct {
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Section selects which grid the page shows
type Section string

const (
	SectionStandings Section = "standings"
	SectionAwards    Section = "awards"
	SectionProps     Section = "props"
)

// ParseSection returns the section for a recognised value
func ParseSection(s string) (Section, bool) {
	switch Section(s) {
	case SectionStandings, SectionAwards, SectionProps:
		return Section(s), true
	}
	return "", false
}

// CategoryKey returns the category a section displays
func (s Section) CategoryKey() string {
	switch s {
	case SectionAwards:
		return CategoryAwards
	case SectionProps:
		return CategoryProps
	default:
		return CategoryStandings
	}
}

// Mode selects between the single-user showcase and the side-by-side comparison
type Mode string

const (
	ModeShowcase Mode = "showcase"
	ModeCompare  Mode = "compare"
)

// ParseMode returns the mode for a recognised value
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeShowcase, ModeCompare:
		return Mode(s), true
	}
	return "", false
}

// SortOption is the column ordering criterion
type SortOption string

const (
	SortStandings SortOption = "standings"
	SortTotal     SortOption = "total"
	SortName      SortOption = "name"
)

// Submission statuses
const (
	SubmissionOK    = "ok"
	SubmissionError = "error"
)

// Submission is the stored outcome of one authored question in a batch
type Submission struct {
	ID        int64     `json:"id"`
	BatchID   string    `json:"batch_id"`
	Index     int       `json:"index"`
	Kind      string    `json:"kind"`
	Season    string    `json:"season"`
	Summary   string    `json:"summary"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	RemoteID  string    `json:"remote_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WSMessage represents a WebSocket message sent to the browser
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// InboundMessage is a WebSocket message received from the browser
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
