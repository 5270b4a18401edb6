package scoring_test

import (
	"testing"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func team(name, conf string, actual int) models.OrderedTeam {
	prefix := "W"
	if models.IsEast(conf) {
		prefix = "E"
	}
	return models.OrderedTeam{
		StandingsTeam: models.StandingsTeam{Team: name, Conference: conf, ActualPosition: models.IntPtr(actual)},
		ID:            prefix + "-" + name,
	}
}

func standingsPred(name string, predicted, actual int, points float64) models.Prediction {
	return models.Prediction{
		Team:              name,
		PredictedPosition: models.IntPtr(predicted),
		ActualPosition:    models.IntPtr(actual),
		Points:            points,
	}
}

func entry(id, username string, total float64, cats map[string]models.Category) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		User: models.User{
			ID:          models.ID(id),
			Username:    username,
			TotalPoints: total,
			Categories:  cats,
		},
	}
}

func TestStandingPoints(t *testing.T) {
	Convey("Given predicted and actual positions", t, func() {
		Convey("Exact matches score 3 for every position", func() {
			for a := 1; a <= 15; a++ {
				So(scoring.StandingPoints(models.IntPtr(a), models.IntPtr(a)), ShouldEqual, 3)
			}
		})

		Convey("Neighbouring positions score 1 and everything else 0", func() {
			for a := 1; a <= 15; a++ {
				for b := 1; b <= 15; b++ {
					if a == b {
						continue
					}
					want := 0
					if a-b == 1 || b-a == 1 {
						want = 1
					}
					So(scoring.StandingPoints(models.IntPtr(a), models.IntPtr(b)), ShouldEqual, want)
				}
			}
		})

		Convey("A missing side scores 0", func() {
			So(scoring.StandingPoints(nil, models.IntPtr(3)), ShouldEqual, 0)
			So(scoring.StandingPoints(models.IntPtr(3), nil), ShouldEqual, 0)
			So(scoring.StandingPoints(nil, nil), ShouldEqual, 0)
		})
	})
}

func TestReorderList(t *testing.T) {
	Convey("Given a list of five items", t, func() {
		list := []string{"a", "b", "c", "d", "e"}

		Convey("Moving forward shifts the items between", func() {
			So(scoring.ReorderList(list, 0, 2), ShouldResemble, []string{"b", "c", "a", "d", "e"})
		})

		Convey("Moving backward shifts the items between", func() {
			So(scoring.ReorderList(list, 4, 1), ShouldResemble, []string{"a", "e", "b", "c", "d"})
		})

		Convey("Out of range indices are clamped", func() {
			So(scoring.ReorderList(list, -3, 99), ShouldResemble, []string{"b", "c", "d", "e", "a"})
			So(scoring.ReorderList(list, 42, 0), ShouldResemble, []string{"e", "a", "b", "c", "d"})
		})

		Convey("The input is never modified", func() {
			_ = scoring.ReorderList(list, 1, 3)
			So(list, ShouldResemble, []string{"a", "b", "c", "d", "e"})
		})

		Convey("Every move is a permutation of the same length", func() {
			for i := -1; i <= 6; i++ {
				for j := -1; j <= 6; j++ {
					got := scoring.ReorderList(list, i, j)
					So(len(got), ShouldEqual, len(list))
					So(got, ShouldContain, "a")
					So(got, ShouldContain, "b")
					So(got, ShouldContain, "c")
					So(got, ShouldContain, "d")
					So(got, ShouldContain, "e")
				}
			}
		})

		Convey("An empty list stays empty", func() {
			So(scoring.ReorderList([]int{}, 0, 1), ShouldBeEmpty)
		})
	})
}

func TestCalculateSimulatedTotals(t *testing.T) {
	Convey("Given a user who predicted two West teams exactly", t, func() {
		west := []models.OrderedTeam{team("A", "West", 1), team("M", "West", 2), team("B", "West", 3)}
		entries := []models.LeaderboardEntry{
			entry("x", "userX", 11, map[string]models.Category{
				models.CategoryStandings: {Points: 6, MaxPoints: 6, Predictions: []models.Prediction{
					standingsPred("A", 1, 1, 3),
					standingsPred("B", 3, 3, 3),
				}},
				models.CategoryAwards: {Points: 5, MaxPoints: 10, Predictions: []models.Prediction{
					{QuestionID: "q1", Answer: "Jokic", Points: 5},
				}},
			}),
			entry("y", "userY", 8, map[string]models.Category{
				models.CategoryStandings: {Points: 2, MaxPoints: 6, Predictions: []models.Prediction{
					standingsPred("A", 2, 1, 1),
					standingsPred("B", 2, 3, 1),
				}},
				models.CategoryAwards: {Points: 6, MaxPoints: 10},
			}),
		}
		swap := func(order []models.OrderedTeam) []models.OrderedTeam {
			// A to third, then B to first
			return scoring.ReorderList(scoring.ReorderList(order, 0, 2), 1, 0)
		}

		Convey("When the canonical order is simulated", func() {
			got := scoring.CalculateSimulatedTotals(entries, west, nil)

			Convey("Then every total equals its original total", func() {
				for _, e := range got {
					So(e.OrigTotalPoints, ShouldNotBeNil)
					So(e.User.TotalPoints, ShouldEqual, *e.OrigTotalPoints)
				}
			})
		})

		Convey("When A and B are swapped", func() {
			swapped := swap(west)
			got := scoring.CalculateSimulatedTotals(entries, swapped, nil)

			Convey("Then userX loses exactly six points", func() {
				var x models.LeaderboardEntry
				for _, e := range got {
					if e.User.ID == "x" {
						x = e
					}
				}
				So(x.User.Categories[models.CategoryStandings].Points, ShouldEqual, 0.0)
				So(x.User.TotalPoints, ShouldEqual, 5.0)
				So(*x.OrigTotalPoints, ShouldEqual, 11.0)
			})

			Convey("And the ranks are recomputed", func() {
				So(got[0].User.ID, ShouldEqual, models.ID("y"))
				So(got[0].Rank, ShouldEqual, 1)
				So(got[1].User.ID, ShouldEqual, models.ID("x"))
				So(got[1].Rank, ShouldEqual, 2)
				So(got[0].User.TotalPoints, ShouldEqual, 8.0)
			})

			Convey("And award categories are untouched", func() {
				for _, e := range got {
					So(e.User.Categories[models.CategoryAwards].Points, ShouldEqual, entriesAwardPoints(entries, e.User.ID))
				}
			})

			Convey("And the input entries are not modified", func() {
				So(entries[0].User.TotalPoints, ShouldEqual, 11.0)
				So(entries[0].User.Categories[models.CategoryStandings].Predictions[0].Points, ShouldEqual, 3.0)
				So(entries[0].OrigTotalPoints, ShouldBeNil)
			})
		})

		Convey("When the result is fed back repeatedly", func() {
			swapped := swap(west)
			once := scoring.CalculateSimulatedTotals(entries, swapped, nil)
			twice := scoring.CalculateSimulatedTotals(once, swapped, nil)
			back := scoring.CalculateSimulatedTotals(twice, west, nil)

			Convey("Then totals do not drift and the original total is kept", func() {
				So(twice, ShouldResemble, once)
				for _, e := range back {
					So(e.User.TotalPoints, ShouldEqual, *e.OrigTotalPoints)
				}
			})
		})
	})

	Convey("Given an off-by-one prediction", t, func() {
		west := []models.OrderedTeam{
			team("A", "West", 1), team("B", "West", 2), team("C2", "West", 3),
			team("D", "West", 4), team("C", "West", 5),
		}
		entries := []models.LeaderboardEntry{
			entry("z", "userZ", 1, map[string]models.Category{
				models.CategoryStandings: {Points: 1, MaxPoints: 3, Predictions: []models.Prediction{
					standingsPred("C", 4, 5, 1),
				}},
			}),
		}

		Convey("When C is moved to fourth", func() {
			moved := scoring.ReorderList(west, 4, 3)
			got := scoring.CalculateSimulatedTotals(entries, moved, nil)

			Convey("Then the slot is worth three points", func() {
				So(got[0].User.Categories[models.CategoryStandings].Predictions[0].Points, ShouldEqual, 3.0)
				So(got[0].User.TotalPoints, ShouldEqual, 3.0)
			})
		})
	})

	Convey("Given malformed entries", t, func() {
		entries := []models.LeaderboardEntry{
			entry("n", "nocats", 4, nil),
			entry("m", "missingteam", 2, map[string]models.Category{
				models.CategoryStandings: {Points: 2, Predictions: []models.Prediction{{Points: 2}}},
			}),
		}

		Convey("Then nothing panics and missing data contributes nothing", func() {
			got := scoring.CalculateSimulatedTotals(entries, nil, nil)
			So(got, ShouldHaveLength, 2)
			So(got[0].User.Username, ShouldEqual, "nocats")
			So(got[0].User.TotalPoints, ShouldEqual, 4.0)
			So(got[1].User.TotalPoints, ShouldEqual, 0.0)
		})
	})
}

func entriesAwardPoints(entries []models.LeaderboardEntry, id models.ID) float64 {
	for _, e := range entries {
		if e.User.ID == id {
			return e.User.Categories[models.CategoryAwards].Points
		}
	}
	return -1
}

func TestSortAndRank(t *testing.T) {
	Convey("Ties are broken by username ascending", t, func() {
		entries := []models.LeaderboardEntry{
			entry("1", "zed", 10, nil),
			entry("2", "amy", 10, nil),
			entry("3", "bob", 12, nil),
		}
		scoring.SortAndRank(entries)
		So(entries[0].User.Username, ShouldEqual, "bob")
		So(entries[1].User.Username, ShouldEqual, "amy")
		So(entries[2].User.Username, ShouldEqual, "zed")
		So(entries[2].Rank, ShouldEqual, 3)
	})
}
