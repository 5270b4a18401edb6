// Package questions defines the question variants an admin can author for a
// season. Each variant knows its defaults, how to validate itself, a one-line
// summary for review lists and the payload the contest API expects.
package questions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/models"
)

// Kind names a question variant
type Kind string

// Question variants
const (
	KindSuperlative Kind = "superlative"
	KindProp        Kind = "prop"
	KindHeadToHead  Kind = "head_to_head"
	KindPlayerStat  Kind = "player_stat"
	KindIST         Kind = "ist"
	KindNBAFinals   Kind = "nba_finals"
)

// Categories the variants are filed under, beyond the ones a leaderboard shows
const (
	CategoryIST    = "In-Season Tournament"
	CategoryFinals = "NBA Finals"
)

// Kinds lists every variant in authoring order
var Kinds = []Kind{KindSuperlative, KindProp, KindHeadToHead, KindPlayerStat, KindIST, KindNBAFinals}

// Question is one draft of any variant
type Question interface {
	Kind() Kind
	Validate() error
	Summary() string
	Payload(season string) map[string]interface{}
}

// Defaults returns a fresh draft of kind with its default values filled in
func Defaults(kind Kind) (Question, error) {
	switch kind {
	case KindSuperlative:
		return &Superlative{AwardName: "Most Valuable Player", PointValue: 3}, nil
	case KindProp:
		return &Prop{PointValue: 1}, nil
	case KindHeadToHead:
		return &HeadToHead{PointValue: 1}, nil
	case KindPlayerStat:
		return &PlayerStat{Stat: "points", PointValue: 1}, nil
	case KindIST:
		return &IST{Round: "champion", PointValue: 2}, nil
	case KindNBAFinals:
		return &NBAFinals{Market: "champion", PointValue: 5}, nil
	default:
		return nil, errors.InvalidInputf("unknown question kind %q", kind)
	}
}

// Draft is the wire form of a question: its kind plus the variant's fields
type Draft struct {
	Kind   Kind            `json:"kind"`
	Fields json.RawMessage `json:"fields"`
}

// Decode builds a question from a draft, applying defaults for omitted fields
func Decode(d Draft) (Question, error) {
	q, err := Defaults(d.Kind)
	if err != nil {
		return nil, err
	}
	if len(d.Fields) > 0 && string(d.Fields) != "null" {
		if err := json.Unmarshal(d.Fields, q); err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, fmt.Sprintf("invalid %s fields", d.Kind))
		}
	}
	return q, nil
}

func basePayload(kind Kind, season, category, text string, points float64) map[string]interface{} {
	return map[string]interface{}{
		"season":        season,
		"question_type": string(kind),
		"category":      category,
		"text":          strings.TrimSpace(text),
		"point_value":   points,
	}
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Validationf("%s is required", field)
	}
	return nil
}

func requirePoints(points float64) error {
	if points <= 0 {
		return errors.Validation("point value must be positive")
	}
	return nil
}

func pointsLabel(points float64) string {
	if points == 1 {
		return "1 pt"
	}
	return fmt.Sprintf("%g pts", points)
}

// Superlative asks which player wins a season award
type Superlative struct {
	AwardName  string  `json:"award_name"`
	Text       string  `json:"text,omitempty"`
	PointValue float64 `json:"point_value"`
}

func (q *Superlative) Kind() Kind { return KindSuperlative }

func (q *Superlative) Validate() error {
	if err := requireText("award name", q.AwardName); err != nil {
		return err
	}
	return requirePoints(q.PointValue)
}

func (q *Superlative) text() string {
	if strings.TrimSpace(q.Text) != "" {
		return q.Text
	}
	return fmt.Sprintf("Who will win %s?", strings.TrimSpace(q.AwardName))
}

func (q *Superlative) Summary() string {
	return fmt.Sprintf("%s (%s)", q.text(), pointsLabel(q.PointValue))
}

func (q *Superlative) Payload(season string) map[string]interface{} {
	p := basePayload(KindSuperlative, season, models.CategoryAwards, q.text(), q.PointValue)
	p["award_name"] = strings.TrimSpace(q.AwardName)
	return p
}

// Prop is a yes/no question, optionally over/under a line
type Prop struct {
	Text       string   `json:"text"`
	Line       *float64 `json:"line,omitempty"`
	PointValue float64  `json:"point_value"`
}

func (q *Prop) Kind() Kind { return KindProp }

func (q *Prop) Validate() error {
	if err := requireText("question text", q.Text); err != nil {
		return err
	}
	return requirePoints(q.PointValue)
}

func (q *Prop) Summary() string {
	if q.Line != nil {
		return fmt.Sprintf("%s o/u %g (%s)", strings.TrimSpace(q.Text), *q.Line, pointsLabel(q.PointValue))
	}
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(q.Text), pointsLabel(q.PointValue))
}

func (q *Prop) Payload(season string) map[string]interface{} {
	p := basePayload(KindProp, season, models.CategoryProps, q.Text, q.PointValue)
	if q.Line != nil {
		p["line"] = *q.Line
		p["answer_options"] = []string{"Over", "Under"}
	} else {
		p["answer_options"] = []string{"Yes", "No"}
	}
	return p
}

// HeadToHead asks which of two teams finishes with the better record
type HeadToHead struct {
	TeamA      string  `json:"team_a"`
	TeamB      string  `json:"team_b"`
	Text       string  `json:"text,omitempty"`
	PointValue float64 `json:"point_value"`
}

func (q *HeadToHead) Kind() Kind { return KindHeadToHead }

func (q *HeadToHead) Validate() error {
	if err := requireText("team A", q.TeamA); err != nil {
		return err
	}
	if err := requireText("team B", q.TeamB); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(q.TeamA), strings.TrimSpace(q.TeamB)) {
		return errors.Validation("head-to-head teams must differ")
	}
	return requirePoints(q.PointValue)
}

func (q *HeadToHead) text() string {
	if strings.TrimSpace(q.Text) != "" {
		return q.Text
	}
	return fmt.Sprintf("Who finishes with the better record: %s or %s?", strings.TrimSpace(q.TeamA), strings.TrimSpace(q.TeamB))
}

func (q *HeadToHead) Summary() string {
	return fmt.Sprintf("%s vs %s (%s)", strings.TrimSpace(q.TeamA), strings.TrimSpace(q.TeamB), pointsLabel(q.PointValue))
}

func (q *HeadToHead) Payload(season string) map[string]interface{} {
	p := basePayload(KindHeadToHead, season, models.CategoryProps, q.text(), q.PointValue)
	p["answer_options"] = []string{strings.TrimSpace(q.TeamA), strings.TrimSpace(q.TeamB)}
	return p
}

// PlayerStat is an over/under on a player's season average
type PlayerStat struct {
	Player     string  `json:"player"`
	Stat       string  `json:"stat"`
	Line       float64 `json:"line"`
	PointValue float64 `json:"point_value"`
}

var playerStats = map[string]bool{
	"points": true, "rebounds": true, "assists": true, "steals": true, "blocks": true, "threes": true,
}

func (q *PlayerStat) Kind() Kind { return KindPlayerStat }

func (q *PlayerStat) Validate() error {
	if err := requireText("player", q.Player); err != nil {
		return err
	}
	if !playerStats[strings.ToLower(q.Stat)] {
		return errors.Validationf("unknown stat %q", q.Stat)
	}
	if q.Line <= 0 {
		return errors.Validation("line must be positive")
	}
	return requirePoints(q.PointValue)
}

func (q *PlayerStat) text() string {
	return fmt.Sprintf("Will %s average over %g %s per game?", strings.TrimSpace(q.Player), q.Line, strings.ToLower(q.Stat))
}

func (q *PlayerStat) Summary() string {
	return fmt.Sprintf("%s %s o/u %g (%s)", strings.TrimSpace(q.Player), strings.ToLower(q.Stat), q.Line, pointsLabel(q.PointValue))
}

func (q *PlayerStat) Payload(season string) map[string]interface{} {
	p := basePayload(KindPlayerStat, season, models.CategoryProps, q.text(), q.PointValue)
	p["player"] = strings.TrimSpace(q.Player)
	p["stat"] = strings.ToLower(q.Stat)
	p["line"] = q.Line
	p["answer_options"] = []string{"Over", "Under"}
	return p
}

// IST asks about the in-season tournament
type IST struct {
	Round      string  `json:"round"`
	Group      string  `json:"group,omitempty"`
	Text       string  `json:"text,omitempty"`
	PointValue float64 `json:"point_value"`
}

var istRounds = []string{"group", "quarterfinal", "semifinal", "champion"}

func (q *IST) Kind() Kind { return KindIST }

func (q *IST) Validate() error {
	round := strings.ToLower(q.Round)
	found := false
	for _, r := range istRounds {
		if r == round {
			found = true
			break
		}
	}
	if !found {
		return errors.Validationf("unknown tournament round %q", q.Round)
	}
	if round == "group" {
		if err := requireText("group", q.Group); err != nil {
			return err
		}
	}
	return requirePoints(q.PointValue)
}

func (q *IST) text() string {
	if strings.TrimSpace(q.Text) != "" {
		return q.Text
	}
	switch strings.ToLower(q.Round) {
	case "group":
		return fmt.Sprintf("Who wins In-Season Tournament group %s?", strings.TrimSpace(q.Group))
	case "champion":
		return "Who wins the In-Season Tournament?"
	default:
		return fmt.Sprintf("Who reaches the In-Season Tournament %s?", strings.ToLower(q.Round))
	}
}

func (q *IST) Summary() string {
	return fmt.Sprintf("%s (%s)", q.text(), pointsLabel(q.PointValue))
}

func (q *IST) Payload(season string) map[string]interface{} {
	p := basePayload(KindIST, season, CategoryIST, q.text(), q.PointValue)
	p["round"] = strings.ToLower(q.Round)
	if q.Group != "" {
		p["group"] = strings.TrimSpace(q.Group)
	}
	return p
}

// NBAFinals asks about the Finals: the champion, the Finals MVP or the series length
type NBAFinals struct {
	Market     string  `json:"market"`
	Text       string  `json:"text,omitempty"`
	PointValue float64 `json:"point_value"`
}

var finalsText = map[string]string{
	"champion":      "Who will win the NBA Finals?",
	"mvp":           "Who will be Finals MVP?",
	"series_length": "How many games will the NBA Finals go?",
}

func (q *NBAFinals) Kind() Kind { return KindNBAFinals }

func (q *NBAFinals) Validate() error {
	if _, ok := finalsText[strings.ToLower(q.Market)]; !ok {
		return errors.Validationf("unknown finals market %q", q.Market)
	}
	return requirePoints(q.PointValue)
}

func (q *NBAFinals) text() string {
	if strings.TrimSpace(q.Text) != "" {
		return q.Text
	}
	return finalsText[strings.ToLower(q.Market)]
}

func (q *NBAFinals) Summary() string {
	return fmt.Sprintf("%s (%s)", q.text(), pointsLabel(q.PointValue))
}

func (q *NBAFinals) Payload(season string) map[string]interface{} {
	p := basePayload(KindNBAFinals, season, CategoryFinals, q.text(), q.PointValue)
	p["market"] = strings.ToLower(q.Market)
	if strings.ToLower(q.Market) == "series_length" {
		p["answer_options"] = []string{"4", "5", "6", "7"}
	}
	return p
}
