package poller

import (
	"context"
	"errors"
	"fmt"

	"nba-game-poller/feed"
)

// IngestResult summarizes one scoreboard ingestion.
type IngestResult struct {
	Date     string   `json:"date"`
	Games    int      `json:"games"`
	Upserted int      `json:"upserted"`
	Upcoming int      `json:"upcoming"`
	Failed   []string `json:"failed,omitempty"`
}

// recordFromScoreboard maps one scoreboard game onto a record. The record's
// date is the Eastern date of its tip-off, falling back to the board's date.
func recordFromScoreboard(g feed.ScoreboardGame, boardDate string) GameRecord {
	date := boardDate
	if len(g.GameEt) >= len("2006-01-02") {
		date = g.GameEt[:len("2006-01-02")]
	}
	return GameRecord{
		ID:         g.GameID,
		Date:       date,
		Status:     g.GameStatusText,
		Clock:      g.GameClock,
		StartTime:  g.GameEt,
		HomeTeam:   g.HomeTeam.TeamTricode,
		AwayTeam:   g.AwayTeam.TeamTricode,
		HomeTeamID: g.HomeTeam.TeamID,
		AwayTeamID: g.AwayTeam.TeamID,
		HomeScore:  g.HomeTeam.Score,
		AwayScore:  g.AwayTeam.Score,
		HomeRecord: g.HomeTeam.Record(),
		AwayRecord: g.AwayTeam.Record(),
	}
}

// IngestScoreboard loads today's scoreboard into the record store. It fails
// when the scoreboard cannot be read or when no game could be stored.
func (c *Controller) IngestScoreboard(ctx context.Context) (IngestResult, error) {
	logger := c.logger(ctx)
	if c.deps.Scoreboard == nil {
		return IngestResult{}, errors.New("no scoreboard source configured")
	}
	logger.Info("Fetching scoreboard")

	sb, err := c.deps.Scoreboard.FetchScoreboard(ctx, feed.PickUserAgent(nil))
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	now := c.deps.Now()
	res := IngestResult{Date: sb.Scoreboard.GameDate, Games: len(sb.Scoreboard.Games)}
	var errs []error
	for _, g := range sb.Scoreboard.Games {
		if g.GameID == "" {
			continue
		}
		rec := recordFromScoreboard(g, res.Date)
		if err := c.deps.Records.Upsert(ctx, rec); err != nil {
			logger.Error("Failed to store game", "gameID", rec.ID, "date", rec.Date, "err", err)
			c.deps.Metrics.IncStoreError("upsert")
			res.Failed = append(res.Failed, rec.ID)
			errs = append(errs, err)
			continue
		}
		res.Upserted++
		if Classify(rec.Status, rec.Clock, rec.StartTime, now) == LifecyclePregame {
			res.Upcoming++
		}
	}

	logger.Info("Ingested scoreboard", "date", res.Date, "games", res.Games, "upserted", res.Upserted)
	if res.Upserted == 0 && len(errs) > 0 {
		return res, fmt.Errorf("no games stored: %w", errors.Join(errs...))
	}
	return res, nil
}
