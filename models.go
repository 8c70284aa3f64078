package poller

import (
	"context"
	"time"

	"nba-game-poller/feed"
)

// GameRecord is one scheduled game as kept in the record store.
type GameRecord struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Clock      string `json:"clock"`
	StartTime  string `json:"starttime"`
	HomeTeam   string `json:"hometeam"`
	AwayTeam   string `json:"awayteam"`
	HomeTeamID int    `json:"hometeamid,omitempty"`
	AwayTeamID int    `json:"awayteamid,omitempty"`
	HomeScore  int    `json:"homescore"`
	AwayScore  int    `json:"awayscore"`
	HomeRecord string `json:"homerecord,omitempty"`
	AwayRecord string `json:"awayrecord,omitempty"`
	PlayETag   string `json:"play_etag,omitempty"`
	BoxETag    string `json:"box_etag,omitempty"`
}

// Field names shared by the record stores.
const (
	FieldStatus     = "status"
	FieldClock      = "clock"
	FieldStartTime  = "starttime"
	FieldHomeTeam   = "hometeam"
	FieldAwayTeam   = "awayteam"
	FieldHomeTeamID = "hometeamid"
	FieldAwayTeamID = "awayteamid"
	FieldHomeScore  = "homescore"
	FieldAwayScore  = "awayscore"
	FieldHomeRecord = "homerecord"
	FieldAwayRecord = "awayrecord"
	FieldPlayETag   = "play_etag"
	FieldBoxETag    = "box_etag"
)

// GameUpdate is a partial update of a GameRecord. Only non-nil fields are written.
type GameUpdate struct {
	Status     *string
	Clock      *string
	HomeScore  *int
	AwayScore  *int
	HomeRecord *string
	AwayRecord *string
	HomeTeamID *int
	AwayTeamID *int
	PlayETag   *string
	BoxETag    *string
}

func (u GameUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// Fields lists the supplied fields by storage name. Values are string or int.
func (u GameUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	setString := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	setInt := func(name string, v *int) {
		if v != nil {
			fields[name] = *v
		}
	}
	setString(FieldStatus, u.Status)
	setString(FieldClock, u.Clock)
	setInt(FieldHomeScore, u.HomeScore)
	setInt(FieldAwayScore, u.AwayScore)
	setString(FieldHomeRecord, u.HomeRecord)
	setString(FieldAwayRecord, u.AwayRecord)
	setInt(FieldHomeTeamID, u.HomeTeamID)
	setInt(FieldAwayTeamID, u.AwayTeamID)
	setString(FieldPlayETag, u.PlayETag)
	setString(FieldBoxETag, u.BoxETag)
	return fields
}

// Apply returns a copy of rec with the update's fields set.
func (rec GameRecord) Apply(u GameUpdate) GameRecord {
	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.Clock != nil {
		rec.Clock = *u.Clock
	}
	if u.HomeScore != nil {
		rec.HomeScore = *u.HomeScore
	}
	if u.AwayScore != nil {
		rec.AwayScore = *u.AwayScore
	}
	if u.HomeRecord != nil {
		rec.HomeRecord = *u.HomeRecord
	}
	if u.AwayRecord != nil {
		rec.AwayRecord = *u.AwayRecord
	}
	if u.HomeTeamID != nil {
		rec.HomeTeamID = *u.HomeTeamID
	}
	if u.AwayTeamID != nil {
		rec.AwayTeamID = *u.AwayTeamID
	}
	if u.PlayETag != nil {
		rec.PlayETag = *u.PlayETag
	}
	if u.BoxETag != nil {
		rec.BoxETag = *u.BoxETag
	}
	return rec
}

// State is the controller's polling state.
type State string

const (
	StateDisabled         State = "disabled"
	StateKickoffScheduled State = "kickoff_scheduled"
	StateEnabledPolling   State = "enabled_polling"
)

// Ordinal is the state's numeric value for the controller-state gauge.
func (s State) Ordinal() int {
	switch s {
	case StateKickoffScheduled:
		return 1
	case StateEnabledPolling:
		return 2
	}
	return 0
}

// TickResult summarizes one poll tick.
type TickResult struct {
	Date      string   `json:"date"`
	State     State    `json:"state"`
	Outcome   string   `json:"outcome"`
	Remaining int      `json:"remaining"`
	Active    int      `json:"active"`
	Processed int      `json:"processed"`
	Final     []string `json:"final,omitempty"`
	// TriggerError is set when disabling the recurring poll failed.
	TriggerError string `json:"triggerError,omitempty"`
}

// ManagerResult summarizes one daily manager run.
type ManagerResult struct {
	Date      string    `json:"date"`
	State     State     `json:"state"`
	Games     int       `json:"games"`
	KickoffAt time.Time `json:"kickoffAt,omitzero"`
	// TriggerError is set when scheduling the kickoff failed and polling was enabled instead.
	TriggerError string `json:"triggerError,omitempty"`
}

// Tick outcomes.
const (
	OutcomeNoGames    = "no_games"
	OutcomeIdle       = "idle"
	OutcomeProcessed  = "processed"
	OutcomeStoreError = "store_error"
)

// RecordStore holds the day's game records.
type RecordStore interface {
	QueryByDate(ctx context.Context, date string) ([]GameRecord, error)
	UpdateFields(ctx context.Context, gameID, date string, update GameUpdate) error
	Upsert(ctx context.Context, rec GameRecord) error
}

// Fetcher reads the live feeds. Failures and unchanged documents both come
// back as a nil document with the prior validator token.
type Fetcher interface {
	FetchPlayByPlay(ctx context.Context, gameID, etag, userAgent string) (*feed.PlayByPlay, string)
	FetchBoxScore(ctx context.Context, gameID, etag, userAgent string) (*feed.BoxScore, string)
}

type ScoreboardFetcher interface {
	FetchScoreboard(ctx context.Context, userAgent string) (*feed.Scoreboard, error)
}

// ArtifactStore persists derived and raw documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, cacheable bool) error
}

// Manifest tracks which games have final artifacts. MarkFinal is idempotent.
type Manifest interface {
	MarkFinal(ctx context.Context, gameID string) error
}

// Trigger turns the recurring poll on and off and schedules one-shot tasks.
type Trigger interface {
	EnableRecurring(ctx context.Context) error
	DisableRecurring(ctx context.Context) error
	ScheduleOnce(ctx context.Context, at time.Time, task string) error
}

// UpdatePublisher hands game updates to downstream subscribers.
type UpdatePublisher interface {
	PublishGameUpdate(ctx context.Context, rec GameRecord) error
}

// FinalNotifier announces games that just finished.
type FinalNotifier interface {
	NotifyFinal(ctx context.Context, rec GameRecord) error
}
