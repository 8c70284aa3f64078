package feed

import (
	"encoding/json"
	"fmt"

	"nba-game-poller/playbyplay"
)

type TeamRef struct {
	TeamID      int    `json:"teamId"`
	TeamTricode string `json:"teamTricode,omitempty"`
	Score       int    `json:"score"`
	Wins        *int   `json:"wins,omitempty"`
	Losses      *int   `json:"losses,omitempty"`
}

// Record formats the team's win-loss record as "W-L". Missing counts are zero.
func (t TeamRef) Record() string {
	wins, losses := 0, 0
	if t.Wins != nil {
		wins = *t.Wins
	}
	if t.Losses != nil {
		losses = *t.Losses
	}
	return fmt.Sprintf("%d-%d", wins, losses)
}

// PlayByPlay is the decoded play-by-play document. RawActions keeps the
// actions exactly as served.
type PlayByPlay struct {
	GameID     string
	HomeTeamID int
	AwayTeamID int
	Actions    []playbyplay.Action
	RawActions json.RawMessage
}

func (p *PlayByPlay) UnmarshalJSON(b []byte) error {
	var doc struct {
		Game struct {
			GameID     string          `json:"gameId"`
			HomeTeamID int             `json:"homeTeamId"`
			AwayTeamID int             `json:"awayTeamId"`
			HomeTeam   *TeamRef        `json:"homeTeam"`
			AwayTeam   *TeamRef        `json:"awayTeam"`
			Actions    json.RawMessage `json:"actions"`
		} `json:"game"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	g := doc.Game
	p.GameID = g.GameID
	p.HomeTeamID = g.HomeTeamID
	if p.HomeTeamID == 0 && g.HomeTeam != nil {
		p.HomeTeamID = g.HomeTeam.TeamID
	}
	p.AwayTeamID = g.AwayTeamID
	if p.AwayTeamID == 0 && g.AwayTeam != nil {
		p.AwayTeamID = g.AwayTeam.TeamID
	}
	p.Actions = nil
	p.RawActions = nil
	if len(g.Actions) > 0 && string(g.Actions) != "null" {
		if err := json.Unmarshal(g.Actions, &p.Actions); err != nil {
			return fmt.Errorf("decoding actions: %w", err)
		}
		p.RawActions = g.Actions
	}
	return nil
}

// BoxGame is the part of the box score the poller reads.
type BoxGame struct {
	GameID         string  `json:"gameId"`
	GameStatus     int     `json:"gameStatus"`
	GameStatusText string  `json:"gameStatusText"`
	GameClock      string  `json:"gameClock"`
	GameEt         string  `json:"gameEt"`
	Period         int     `json:"period"`
	HomeTeamID     int     `json:"homeTeamId"`
	AwayTeamID     int     `json:"awayTeamId"`
	HomeTeam       TeamRef `json:"homeTeam"`
	AwayTeam       TeamRef `json:"awayTeam"`
}

// ResolvedHomeTeamID prefers the nested team object over the flat field.
func (g BoxGame) ResolvedHomeTeamID() int {
	if g.HomeTeam.TeamID != 0 {
		return g.HomeTeam.TeamID
	}
	return g.HomeTeamID
}

func (g BoxGame) ResolvedAwayTeamID() int {
	if g.AwayTeam.TeamID != 0 {
		return g.AwayTeam.TeamID
	}
	return g.AwayTeamID
}

// BoxScore is the decoded box score document. RawGame keeps the full game
// object for storage.
type BoxScore struct {
	Game    BoxGame
	RawGame json.RawMessage
}

func (s *BoxScore) UnmarshalJSON(b []byte) error {
	var doc struct {
		Game json.RawMessage `json:"game"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if len(doc.Game) == 0 || string(doc.Game) == "null" {
		return fmt.Errorf("box score has no game object")
	}
	if err := json.Unmarshal(doc.Game, &s.Game); err != nil {
		return fmt.Errorf("decoding box score game: %w", err)
	}
	s.RawGame = doc.Game
	return nil
}

type ScoreboardGame struct {
	GameID         string  `json:"gameId"`
	GameStatus     int     `json:"gameStatus"`
	GameStatusText string  `json:"gameStatusText"`
	GameClock      string  `json:"gameClock"`
	GameEt         string  `json:"gameEt"`
	HomeTeam       TeamRef `json:"homeTeam"`
	AwayTeam       TeamRef `json:"awayTeam"`
}

type Scoreboard struct {
	Scoreboard struct {
		GameDate string           `json:"gameDate"`
		Games    []ScoreboardGame `json:"games"`
	} `json:"scoreboard"`
}
