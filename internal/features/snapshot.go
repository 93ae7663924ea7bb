package features

import (
	"sort"
	"time"

	"github.com/yourusername/sharpeye/internal/models"
)

// Snapshot is an immutable, versioned view of the historical feature store.
// Every slice is sorted by ascending game date.
type Snapshot struct {
	version uint64
	builtAt time.Time

	players         map[int64][]models.PlayerGameLog
	teams           map[string][]models.TeamGameLog
	positionAgainst map[positionKey][]dailyPoints
	teamLogCount    int
}

type positionKey struct {
	opponent string
	position string
}

type dailyPoints struct {
	date   time.Time
	points float64
	rows   int
}

// NewSnapshot indexes the given logs. The inputs are copied, so callers may
// reuse their slices.
func NewSnapshot(version uint64, builtAt time.Time, players []models.PlayerGameLog, teams []models.TeamGameLog) *Snapshot {
	s := &Snapshot{
		version:         version,
		builtAt:         builtAt,
		players:         make(map[int64][]models.PlayerGameLog),
		teams:           make(map[string][]models.TeamGameLog),
		positionAgainst: make(map[positionKey][]dailyPoints),
		teamLogCount:    len(teams),
	}

	byDay := make(map[positionKey]map[time.Time]*dailyPoints)
	for _, g := range players {
		g.GameDate = day(g.GameDate)
		s.players[g.PlayerID] = append(s.players[g.PlayerID], g)

		key := positionKey{opponent: g.OppAbbr, position: g.Position}
		if byDay[key] == nil {
			byDay[key] = make(map[time.Time]*dailyPoints)
		}
		d := byDay[key][g.GameDate]
		if d == nil {
			d = &dailyPoints{date: g.GameDate}
			byDay[key][g.GameDate] = d
		}
		d.points += g.Points
		d.rows++
	}
	for id, logs := range s.players {
		sort.SliceStable(logs, func(i, j int) bool { return logs[i].GameDate.Before(logs[j].GameDate) })
		s.players[id] = logs
	}
	for key, days := range byDay {
		list := make([]dailyPoints, 0, len(days))
		for _, d := range days {
			list = append(list, *d)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].date.Before(list[j].date) })
		s.positionAgainst[key] = list
	}

	for _, g := range teams {
		g.GameDate = day(g.GameDate)
		s.teams[g.TeamAbbr] = append(s.teams[g.TeamAbbr], g)
	}
	for abbr, logs := range s.teams {
		sort.SliceStable(logs, func(i, j int) bool { return logs[i].GameDate.Before(logs[j].GameDate) })
		s.teams[abbr] = logs
	}

	return s
}

// Version returns the snapshot version
func (s *Snapshot) Version() uint64 { return s.version }

// BuiltAt returns when the snapshot was built
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// PlayerCount returns the number of distinct players
func (s *Snapshot) PlayerCount() int { return len(s.players) }

// TeamLogCount returns the number of team logs
func (s *Snapshot) TeamLogCount() int { return s.teamLogCount }

// playerGamesBefore returns the player's games strictly before date, oldest first
func (s *Snapshot) playerGamesBefore(playerID int64, date time.Time) []models.PlayerGameLog {
	logs := s.players[playerID]
	n := sort.Search(len(logs), func(i int) bool { return !logs[i].GameDate.Before(date) })
	return logs[:n]
}

// teamGamesBefore returns a team's logs strictly before date, oldest first
func (s *Snapshot) teamGamesBefore(abbr string, date time.Time) []models.TeamGameLog {
	logs := s.teams[abbr]
	n := sort.Search(len(logs), func(i int) bool { return !logs[i].GameDate.Before(date) })
	return logs[:n]
}

// positionPointsBefore returns per-date totals scored by a position against
// the opponent strictly before date, oldest first
func (s *Snapshot) positionPointsBefore(opponent, position string, date time.Time) []dailyPoints {
	days := s.positionAgainst[positionKey{opponent: opponent, position: position}]
	n := sort.Search(len(days), func(i int) bool { return !days[i].date.Before(date) })
	return days[:n]
}

// day truncates t to its UTC calendar date
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
