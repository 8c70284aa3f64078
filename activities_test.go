package poller

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"nba-game-poller/feed"
)

const scoreboardBody = `{"scoreboard":{"gameDate":"2024-01-15","games":[
	{"gameId":"0022300001","gameStatus":1,"gameStatusText":"7:30 pm ET","gameClock":"","gameEt":"2024-01-15T19:30:00Z",
	 "homeTeam":{"teamId":1610612759,"teamTricode":"SAS","score":0,"wins":5,"losses":30},
	 "awayTeam":{"teamId":1610612740,"teamTricode":"NOP","score":0,"wins":22,"losses":15}},
	{"gameId":"0022300002","gameStatus":2,"gameStatusText":"Q2 05:12","gameClock":"PT05M12.00S","gameEt":"2024-01-15T19:00:00Z",
	 "homeTeam":{"teamId":1610612747,"teamTricode":"LAL","score":48},
	 "awayTeam":{"teamId":1610612738,"teamTricode":"BOS","score":51}}
]}}`

func TestIngestScoreboardActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard/todaysScoreboard_00.json", r.URL.Path)
		io.WriteString(w, scoreboardBody)
	}))
	defer srv.Close()

	records := newFakeRecords()
	c := NewController(Deps{
		Records:    records,
		Scoreboard: feed.New(feed.WithBaseURL(srv.URL), feed.WithHTTPClient(srv.Client())),
		Now:        func() time.Time { return testNow },
	})

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(c.IngestScoreboard)

	val, err := env.ExecuteActivity(c.IngestScoreboard)
	require.NoError(t, err)

	var res IngestResult
	require.NoError(t, val.Get(&res))
	assert.Equal(t, "2024-01-15", res.Date)
	assert.Equal(t, 2, res.Games)
	assert.Equal(t, 2, res.Upserted)
	assert.Zero(t, res.Upcoming)

	sas := records.get("0022300001")
	assert.Equal(t, "2024-01-15", sas.Date)
	assert.Equal(t, "SAS", sas.HomeTeam)
	assert.Equal(t, "NOP", sas.AwayTeam)
	assert.Equal(t, 1610612740, sas.AwayTeamID)
	assert.Equal(t, "22-15", sas.AwayRecord)
	assert.Equal(t, "2024-01-15T19:30:00Z", sas.StartTime)

	lal := records.get("0022300002")
	assert.Equal(t, "Q2 05:12", lal.Status)
	assert.Equal(t, "PT05M12.00S", lal.Clock)
	assert.Equal(t, 51, lal.AwayScore)
}

func TestIngestScoreboardActivity_FeedDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewController(Deps{
		Records:    newFakeRecords(),
		Scoreboard: feed.New(feed.WithBaseURL(srv.URL), feed.WithHTTPClient(srv.Client())),
	})

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(c.IngestScoreboard)

	_, err := env.ExecuteActivity(c.IngestScoreboard)
	assert.Error(t, err)
}

func TestRecordFromScoreboard_DateFallback(t *testing.T) {
	rec := recordFromScoreboard(feed.ScoreboardGame{GameID: "1"}, "2024-01-15")
	assert.Equal(t, "2024-01-15", rec.Date)
	assert.Equal(t, "0-0", rec.HomeRecord)

	rec = recordFromScoreboard(feed.ScoreboardGame{GameID: "1", GameEt: "2024-01-16T00:30:00Z"}, "2024-01-15")
	assert.Equal(t, "2024-01-16", rec.Date)
}
