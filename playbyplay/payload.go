package playbyplay

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const SchemaVersion = 1

// Payload is the processed, replayable view of one game's action log.
type Payload struct {
	SchemaVersion      int              `json:"schemaVersion"`
	GameID             string           `json:"gameId"`
	GeneratedAt        string           `json:"generatedAt"`
	AwayTeamID         *int             `json:"awayTeamId"`
	HomeTeamID         *int             `json:"homeTeamId"`
	NumPeriods         int              `json:"numPeriods"`
	LastAction         *Action          `json:"lastAction"`
	ScoreTimeline      []ScorePoint     `json:"scoreTimeline"`
	AwayActions        *Group[Action]   `json:"awayActions"`
	HomeActions        *Group[Action]   `json:"homeActions"`
	AwayPlayerTimeline *Group[Interval] `json:"awayPlayerTimeline"`
	HomePlayerTimeline *Group[Interval] `json:"homePlayerTimeline"`
	AllActions         []Action         `json:"allActions,omitempty"`
	Actions            []Action         `json:"actions,omitempty"`
}

type Options struct {
	GameID string
	// Team ids as they come from records or feed headers; non-numeric values become null.
	AwayTeamID string
	HomeTeamID string
	// IncludeActions embeds the raw action log.
	IncludeActions bool
	// IncludeAllActions embeds the flattened, sorted player view.
	IncludeAllActions bool
	Now               func() time.Time
}

// Reconstruct derives the processed payload from an ordered action log.
// It never fails: malformed input yields a best-effort payload.
func Reconstruct(actions []Action, opts Options) *Payload {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	awayID := teamID(opts.AwayTeamID)
	homeID := teamID(opts.HomeTeamID)

	p := &Payload{
		SchemaVersion: SchemaVersion,
		GameID:        opts.GameID,
		GeneratedAt:   now().UTC().Format(time.RFC3339Nano),
		AwayTeamID:    awayID,
		HomeTeamID:    homeID,
		NumPeriods:    regulationPeriods,
		ScoreTimeline: ScoreTimeline(actions),
	}

	var lastClock string
	if n := len(actions); n > 0 {
		last := actions[n-1]
		p.LastAction = &last
		lastClock = last.Clock
		if last.Period > p.NumPeriods {
			p.NumPeriods = last.Period
		}
	}

	p.AwayActions, p.HomeActions = GroupActions(actions, awayID, homeID)

	away := newTeamPlaytime(p.AwayActions)
	home := newTeamPlaytime(p.HomeActions)
	currentPeriod := 1
	for _, a := range actions {
		if a.Period != 0 && a.Period != currentPeriod {
			away.periodEnd()
			home.periodEnd()
			currentPeriod = a.Period
		}
		switch {
		case awayID != nil && a.TeamID == *awayID:
			away.apply(a)
		case homeID != nil && a.TeamID == *homeID:
			home.apply(a)
		}
	}
	p.AwayPlayerTimeline = away.finish(lastClock)
	p.HomePlayerTimeline = home.finish(lastClock)

	if opts.IncludeAllActions {
		all := append(p.AwayActions.Flatten(), p.HomeActions.Flatten()...)
		p.AllActions = SortActions(all)
	}
	if opts.IncludeActions {
		p.Actions = append([]Action(nil), actions...)
	}
	return p
}

// SortActions orders actions by period ascending, then by clock descending
// (time remaining), keeping input order for ties.
func SortActions(actions []Action) []Action {
	out := append([]Action(nil), actions...)
	slices.SortStableFunc(out, func(a, b Action) int {
		if c := cmp.Compare(a.Period, b.Period); c != 0 {
			return c
		}
		return cmp.Compare(ClockSeconds(b.Clock), ClockSeconds(a.Clock))
	})
	return out
}

func teamID(s string) *int {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &id
}
