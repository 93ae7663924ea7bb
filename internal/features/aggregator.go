package features

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/sharpeye/internal/models"
)

const (
	shortWindow = 5
	longWindow  = 10

	defaultDefensePPG = 110.0
	defaultPace       = 100.0
	minutesPerGame    = 48.0
)

// Config holds the fixed aggregation constants
type Config struct {
	MinGames        int
	DefenseBaseline float64
	DefenseBand     float64
	PaceFast        float64
	PaceSlow        float64
}

// DefaultConfig mirrors the production feature pipeline
func DefaultConfig() Config {
	return Config{
		MinGames:        5,
		DefenseBaseline: 55,
		DefenseBand:     5,
		PaceFast:        102,
		PaceSlow:        98,
	}
}

// FeatureQuery identifies the game to build features for
type FeatureQuery struct {
	PlayerID     int64
	OpponentAbbr string
	Location     models.Location
	GameDate     time.Time
}

// Aggregator builds feature sets from the live snapshot
type Aggregator struct {
	store *Store
	cfg   Config
}

// NewAggregator creates an aggregator reading from store
func NewAggregator(store *Store, cfg Config) *Aggregator {
	return &Aggregator{store: store, cfg: cfg}
}

// Build assembles the snapshot, matchup and pace context for q. Only games
// strictly before q.GameDate are read.
func (a *Aggregator) Build(ctx context.Context, q FeatureQuery) (*models.FeatureSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := a.store.Current()
	if snap == nil {
		return nil, models.ErrFeatureStoreNotReady
	}

	target := day(q.GameDate)
	games := snap.playerGamesBefore(q.PlayerID, target)
	if len(games) < a.cfg.MinGames {
		return nil, fmt.Errorf("%w: player %d has %d games before %s, need %d",
			models.ErrDataUnavailable, q.PlayerID, len(games), target.Format(models.GameDateLayout), a.cfg.MinGames)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: player %d has no games before %s",
			models.ErrDataUnavailable, q.PlayerID, target.Format(models.GameDateLayout))
	}

	last := games[len(games)-1]
	player := models.PlayerInfo{
		PlayerID:   q.PlayerID,
		PlayerName: last.PlayerName,
		Position:   positionOrUnknown(last.Position),
		TeamAbbr:   last.TeamAbbr,
	}

	snapshot := buildPlayerSnapshot(games, target)
	matchup := a.buildMatchup(snap, q.OpponentAbbr, last.Position, target)
	pace := a.buildPace(snap, player.TeamAbbr, q.OpponentAbbr, snapshot.MinutesPerGame, target)

	set := &models.FeatureSet{
		Player:          player,
		OpponentAbbr:    q.OpponentAbbr,
		Location:        q.Location,
		GameDate:        target.Format(models.GameDateLayout),
		Snapshot:        snapshot,
		Matchup:         matchup,
		Pace:            pace,
		SnapshotVersion: snap.Version(),
	}
	set.Vector = BuildVector(set)
	return set, nil
}

func buildPlayerSnapshot(games []models.PlayerGameLog, target time.Time) models.FeatureSnapshot {
	l5 := tail(games, shortWindow)
	l10 := tail(games, longWindow)

	pts5 := make([]float64, len(l5))
	min5 := make([]float64, len(l5))
	usage5 := make([]float64, len(l5))
	for i, g := range l5 {
		pts5[i] = g.Points
		min5[i] = g.Minutes
		usage5[i] = g.Usage()
	}
	pts10 := make([]float64, len(l10))
	for i, g := range l10 {
		pts10[i] = g.Points
	}

	last5 := stat.Mean(pts5, nil)
	minutes := stat.Mean(min5, nil)
	perMin := 0.0
	if minutes > 0 {
		perMin = last5 / minutes
	}

	return models.FeatureSnapshot{
		Last5Avg:       last5,
		Last10Avg:      stat.Mean(pts10, nil),
		ConsistencyStd: sampleStd(pts10),
		MinutesPerGame: minutes,
		RestDays:       int(target.Sub(games[len(games)-1].GameDate).Hours() / 24),
		PointsPerMin:   perMin,
		UsageRate:      stat.Mean(usage5, nil),
		GamesPlayed:    len(games),
	}
}

func (a *Aggregator) buildMatchup(snap *Snapshot, opponent, position string, target time.Time) models.MatchupContext {
	defensePPG := defaultDefensePPG
	if logs := tail(snap.teamGamesBefore(opponent, target), shortWindow); len(logs) > 0 {
		allowed := make([]float64, len(logs))
		for i, g := range logs {
			allowed[i] = g.PtsAllowed
		}
		defensePPG = stat.Mean(allowed, nil)
	}

	vsPosition := a.defenseVsPosition(snap, opponent, position, target)

	return models.MatchupContext{
		OpponentDefensePPG: defensePPG,
		DefenseVsPosition:  vsPosition,
		DefenseQuality:     ClassifyDefense(vsPosition, a.cfg.DefenseBaseline, a.cfg.DefenseBand),
	}
}

// defenseVsPosition averages per-date points scored by the position against
// the opponent over the last five such dates. Thin history falls back to the
// league baseline.
func (a *Aggregator) defenseVsPosition(snap *Snapshot, opponent, position string, target time.Time) float64 {
	if !knownPosition(position) {
		return a.cfg.DefenseBaseline
	}
	days := snap.positionPointsBefore(opponent, position, target)
	rows := 0
	for _, d := range days {
		rows += d.rows
	}
	if rows < shortWindow {
		return a.cfg.DefenseBaseline
	}
	recent := tail(days, shortWindow)
	totals := make([]float64, len(recent))
	for i, d := range recent {
		totals[i] = d.points
	}
	return stat.Mean(totals, nil)
}

func (a *Aggregator) buildPace(snap *Snapshot, team, opponent string, minutes float64, target time.Time) models.PaceContext {
	teamPace := recentPace(snap.teamGamesBefore(team, target))
	oppPace := recentPace(snap.teamGamesBefore(opponent, target))
	expected := (teamPace + oppPace) / 2

	return models.PaceContext{
		PlayerTeamPace:      teamPace,
		OpponentPace:        oppPace,
		ExpectedGamePace:    expected,
		PaceEnvironment:     ClassifyPace(expected, a.cfg.PaceFast, a.cfg.PaceSlow),
		ExpectedPossessions: minutes / minutesPerGame * expected,
	}
}

func recentPace(logs []models.TeamGameLog) float64 {
	var paces []float64
	for _, g := range tail(logs, shortWindow) {
		if g.GamePace > 0 {
			paces = append(paces, g.GamePace)
		}
	}
	if len(paces) == 0 {
		return defaultPace
	}
	return stat.Mean(paces, nil)
}

// ClassifyDefense labels points allowed to a position. Allowing more than
// baseline+band is a weak defense; less than baseline-band is strong.
func ClassifyDefense(vsPosition, baseline, band float64) models.DefenseQuality {
	switch {
	case vsPosition > baseline+band:
		return models.DefenseWeak
	case vsPosition < baseline-band:
		return models.DefenseStrong
	default:
		return models.DefenseAverage
	}
}

// ClassifyPace labels the expected game pace
func ClassifyPace(pace, fast, slow float64) models.PaceEnvironment {
	switch {
	case pace > fast:
		return models.PaceFast
	case pace < slow:
		return models.PaceSlow
	default:
		return models.PaceAverage
	}
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd := stat.StdDev(values, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func knownPosition(p string) bool {
	switch p {
	case "Guard", "Forward", "Center":
		return true
	default:
		return false
	}
}

func positionOrUnknown(p string) string {
	if p == "" {
		return "Unknown"
	}
	return p
}
