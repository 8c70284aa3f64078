package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poller "nba-game-poller"
	"nba-game-poller/playbyplay"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../playbyplay/testdata/game_end.json")
	require.NoError(t, err)
	return data
}

func TestReprocess_FeedDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reprocess(readFixture(t), options{}, &buf))

	var p playbyplay.Payload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &p))
	assert.Equal(t, "0022300001", p.GameID)
	require.NotNil(t, p.AwayTeamID)
	require.NotNil(t, p.HomeTeamID)
	assert.Equal(t, 1610612740, *p.AwayTeamID)
	assert.Equal(t, 1610612759, *p.HomeTeamID)
	assert.Empty(t, p.Actions)
	assert.Empty(t, p.AllActions)
}

func TestReprocess_ActionArrayWithFlags(t *testing.T) {
	var doc struct {
		Game struct {
			Actions json.RawMessage `json:"actions"`
		} `json:"game"`
	}
	require.NoError(t, json.Unmarshal(readFixture(t), &doc))

	var buf bytes.Buffer
	err := reprocess(doc.Game.Actions, options{gameID: "0022300001", raw: true, all: true, indent: true}, &buf)
	require.NoError(t, err)

	var p playbyplay.Payload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &p))
	assert.Equal(t, "0022300001", p.GameID)
	assert.NotEmpty(t, p.Actions)
	assert.NotEmpty(t, p.AllActions)
	assert.Contains(t, buf.String(), "\n  ")
}

func TestReprocess_OneSideOverride(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reprocess(readFixture(t), options{homeTeamID: 42}, &buf))

	var p playbyplay.Payload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &p))
	require.NotNil(t, p.HomeTeamID)
	require.NotNil(t, p.AwayTeamID)
	assert.Equal(t, 42, *p.HomeTeamID)
	assert.Equal(t, 1610612740, *p.AwayTeamID)
}

func TestReprocess_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, reprocess([]byte("  "), options{}, &buf))
	assert.Error(t, reprocess([]byte("{not json"), options{}, &buf))

	// Period markers alone carry no team side.
	noTeams := `[{"actionNumber":1,"clock":"PT12M00.00S","period":1,"actionType":"period","description":"Period Start"}]`
	assert.ErrorIs(t, reprocess([]byte(noTeams), options{}, &buf), poller.ErrNoTeamIDs)
}
