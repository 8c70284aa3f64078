package poller

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"nba-game-poller/feed"
	"nba-game-poller/playbyplay"
)

// ErrNoTeamIDs is reported when neither the feeds, the record nor the action
// log identify both teams.
var ErrNoTeamIDs = errors.New("team ids could not be resolved")

// Artifact kinds, as counted in metrics.
const (
	artifactRawPlayByPlay       = "raw_playbyplay"
	artifactProcessedPlayByPlay = "processed_playbyplay"
	artifactBoxScore            = "boxscore"
)

func artifactKey(prefix, gameID string) string {
	return prefix + gameID + ".json"
}

// isGameEnd reports whether the last action closes the game.
func isGameEnd(actions []playbyplay.Action) bool {
	return len(actions) > 0 && strings.HasPrefix(actions[len(actions)-1].Description, "Game End")
}

// resolveTeamIDs fills each side independently from the play-by-play header,
// then the box score header, then the record, and finally inference over the
// actions for whichever side is still missing.
func resolveTeamIDs(rec GameRecord, pbp *feed.PlayByPlay, box *feed.BoxScore) (away, home int, err error) {
	if pbp != nil {
		away, home = pbp.AwayTeamID, pbp.HomeTeamID
	}
	if box != nil {
		away = cmp.Or(away, box.Game.ResolvedAwayTeamID())
		home = cmp.Or(home, box.Game.ResolvedHomeTeamID())
	}
	away = cmp.Or(away, rec.AwayTeamID)
	home = cmp.Or(home, rec.HomeTeamID)
	if (away == 0 || home == 0) && pbp != nil {
		if a, h, ok := playbyplay.InferTeamIDs(pbp.Actions); ok {
			away = cmp.Or(away, a)
			home = cmp.Or(home, h)
		}
	}
	if away == 0 || home == 0 {
		return 0, 0, ErrNoTeamIDs
	}
	return away, home, nil
}

// processGame fetches both feeds for one game, writes whatever changed and
// updates the record. It returns the record as updated and whether the game
// finished. Failures are logged and isolated to this game.
func (c *Controller) processGame(ctx context.Context, rec GameRecord, userAgent string) (GameRecord, bool) {
	logger := c.logger(ctx)

	pbp, playTag := c.deps.Feed.FetchPlayByPlay(ctx, rec.ID, rec.PlayETag, userAgent)
	box, boxTag := c.deps.Feed.FetchBoxScore(ctx, rec.ID, rec.BoxETag, userAgent)
	if pbp == nil && box == nil {
		logger.Debug("No feed changes", "gameID", rec.ID)
		return rec, false
	}

	var update GameUpdate
	boxFinal := box != nil && strings.HasPrefix(strings.TrimSpace(box.Game.GameStatusText), "Final")

	if pbp != nil && c.storePlayByPlay(ctx, rec, pbp, box, boxFinal) {
		update.PlayETag = &playTag
	}

	if box != nil {
		c.applyBoxScore(&update, box)
		if c.put(ctx, artifactKey(boxScoreKey, rec.ID), box.RawGame, boxFinal, artifactBoxScore, rec.ID) {
			update.BoxETag = &boxTag
		}
	}

	if update.IsEmpty() {
		return rec, boxFinal
	}
	if err := c.deps.Records.UpdateFields(ctx, rec.ID, rec.Date, update); err != nil {
		logger.Error("Failed to update game record", "gameID", rec.ID, "date", rec.Date, "err", err)
		c.deps.Metrics.IncStoreError("update")
		return rec.Apply(update), boxFinal
	}

	updated := rec.Apply(update)
	if c.deps.Updates != nil {
		if err := c.deps.Updates.PublishGameUpdate(ctx, updated); err != nil {
			logger.Warn("Failed to publish game update", "gameID", rec.ID, "err", err)
		}
	}
	return updated, boxFinal
}

// storePlayByPlay writes the raw log once the game is over and the processed
// payload whenever both teams are known. It reports whether every write it
// attempted succeeded, so the validator only advances past stored data.
func (c *Controller) storePlayByPlay(ctx context.Context, rec GameRecord, pbp *feed.PlayByPlay, box *feed.BoxScore, boxFinal bool) bool {
	if len(pbp.Actions) == 0 {
		return true
	}
	logger := c.logger(ctx)
	final := isGameEnd(pbp.Actions) || boxFinal
	ok := true

	if final && len(pbp.RawActions) > 0 {
		ok = c.put(ctx, artifactKey(rawPlayByPlayKey, rec.ID), pbp.RawActions, true, artifactRawPlayByPlay, rec.ID) && ok
	}

	away, home, err := resolveTeamIDs(rec, pbp, box)
	if err != nil {
		logger.Warn("Skipping processed play-by-play", "gameID", rec.ID, "err", err)
		return false
	}
	payload := playbyplay.Reconstruct(pbp.Actions, playbyplay.Options{
		GameID:     rec.ID,
		AwayTeamID: strconv.Itoa(away),
		HomeTeamID: strconv.Itoa(home),
		Now:        c.deps.Now,
	})
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode processed play-by-play", "gameID", rec.ID, "err", err)
		return false
	}
	return c.put(ctx, artifactKey(processedPlayByPlayKey, rec.ID), data, final, artifactProcessedPlayByPlay, rec.ID) && ok
}

func (c *Controller) applyBoxScore(update *GameUpdate, box *feed.BoxScore) {
	g := box.Game
	status := g.GameStatusText
	clock := g.GameClock
	homeScore, awayScore := g.HomeTeam.Score, g.AwayTeam.Score
	homeRecord, awayRecord := g.HomeTeam.Record(), g.AwayTeam.Record()

	update.Status = &status
	update.Clock = &clock
	update.HomeScore = &homeScore
	update.AwayScore = &awayScore
	update.HomeRecord = &homeRecord
	update.AwayRecord = &awayRecord
	if id := g.ResolvedHomeTeamID(); id != 0 {
		update.HomeTeamID = &id
	}
	if id := g.ResolvedAwayTeamID(); id != 0 {
		update.AwayTeamID = &id
	}
}

func (c *Controller) put(ctx context.Context, key string, data []byte, cacheable bool, kind, gameID string) bool {
	if err := c.deps.Artifacts.Put(ctx, key, data, cacheable); err != nil {
		c.logger(ctx).Error("Failed to store artifact", "gameID", gameID, "key", key, "err", err)
		c.deps.Metrics.IncStoreError("artifact")
		return false
	}
	c.deps.Metrics.IncArtifact(kind)
	return true
}
