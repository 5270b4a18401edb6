package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/pkg/nbaapi"
)

// Upstream operations, as reported to the UpstreamObserver
const (
	OpLeaderboard = "leaderboard"
	OpStandings   = "standings"
	OpSeasons     = "seasons"
	OpCreate      = "create_question"
)

// UpstreamObserver is told about failed contest API calls
type UpstreamObserver interface {
	UpstreamError(operation string)
}

// LeaderboardService fetches the read-only data a page is built from
type LeaderboardService struct {
	log      logger.Logger
	client   nbaapi.Client
	observer UpstreamObserver
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(log logger.Logger, client nbaapi.Client) *LeaderboardService {
	return &LeaderboardService{log: log, client: client}
}

// SetObserver sets where upstream failures are reported
func (s *LeaderboardService) SetObserver(o UpstreamObserver) {
	s.observer = o
}

func (s *LeaderboardService) failed(op string, err error) error {
	if s.observer != nil {
		s.observer.UpstreamError(op)
	}
	s.log.Warn("Contest API call failed", "operation", op, "error", err)
	return errors.Unavailable("failed to fetch "+op, err)
}

// Load fetches a season's leaderboard and standings. Either failing makes the
// whole load fail with an Unavailable error.
func (s *LeaderboardService) Load(ctx context.Context, season string) (page.Data, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return page.Data{}, ErrSeasonRequired
	}

	lb, err := s.client.FetchLeaderboard(ctx, season)
	if err != nil {
		return page.Data{}, s.failed(OpLeaderboard, err)
	}
	st, err := s.client.FetchStandings(ctx, season)
	if err != nil {
		return page.Data{}, s.failed(OpStandings, err)
	}

	data := page.Data{
		Season:    season,
		Entries:   normaliseEntries(lb.Entries),
		Standings: st.Teams(),
	}
	s.log.Debug("Leaderboard loaded", "season", season, "entries", len(data.Entries), "teams", len(data.Standings))
	return data, nil
}

// Seasons returns the seasons the viewer took part in
func (s *LeaderboardService) Seasons(ctx context.Context) ([]models.Season, error) {
	seasons, err := s.client.FetchParticipatedSeasons(ctx)
	if err != nil {
		return nil, s.failed(OpSeasons, err)
	}
	return seasons, nil
}

// normaliseEntries drops entries without a user id and gives every user a
// non-nil category map, so malformed rows render as empty cells.
func normaliseEntries(in []models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, 0, len(in))
	for _, e := range in {
		if e.User.ID == "" {
			continue
		}
		if e.User.Categories == nil {
			e.User.Categories = map[string]models.Category{}
		}
		out = append(out, e)
	}
	return out
}
