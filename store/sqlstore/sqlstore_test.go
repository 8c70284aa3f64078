package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poller "nba-game-poller"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "games.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, poller.GameRecord{
		ID: "0022300002", Date: "2024-01-15", Status: "8:00 pm ET", StartTime: "2024-01-15T20:00:00Z",
		HomeTeam: "LAL", AwayTeam: "BOS", HomeTeamID: 1610612747, AwayTeamID: 1610612738, HomeRecord: "20-20",
	}))
	require.NoError(t, s.Upsert(ctx, poller.GameRecord{ID: "0022300001", Date: "2024-01-15", Status: "Q3", HomeScore: 70}))
	require.NoError(t, s.Upsert(ctx, poller.GameRecord{ID: "0022300009", Date: "2024-01-16"}))

	recs, err := s.QueryByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "0022300001", recs[0].ID)
	assert.Equal(t, 70, recs[0].HomeScore)
	assert.Equal(t, 1610612747, recs[1].HomeTeamID)
	assert.Equal(t, "20-20", recs[1].HomeRecord)

	none, err := s.QueryByDate(ctx, "2023-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_UpdateFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, poller.GameRecord{ID: "1", Date: "2024-01-15", Status: "Q1", Clock: "PT05M00.00S", AwayScore: 10}))

	status, home, etag := "Q2", 31, `"pbp"`
	require.NoError(t, s.UpdateFields(ctx, "1", "2024-01-15", poller.GameUpdate{Status: &status, HomeScore: &home, PlayETag: &etag}))

	recs, err := s.QueryByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Q2", recs[0].Status)
	assert.Equal(t, 31, recs[0].HomeScore)
	assert.Equal(t, 10, recs[0].AwayScore)
	assert.Equal(t, "PT05M00.00S", recs[0].Clock)
	assert.Equal(t, `"pbp"`, recs[0].PlayETag)
}

func TestStore_UpdateFieldsMissingRecord(t *testing.T) {
	s := newTestStore(t)
	status := "Final"
	err := s.UpdateFields(context.Background(), "404", "2024-01-15", poller.GameUpdate{Status: &status})
	assert.Error(t, err)

	assert.NoError(t, s.UpdateFields(context.Background(), "404", "2024-01-15", poller.GameUpdate{}))
}

func TestStore_UpsertKeepsValidators(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, poller.GameRecord{ID: "1", Date: "2024-01-15"}))
	etag := "box-3"
	require.NoError(t, s.UpdateFields(ctx, "1", "2024-01-15", poller.GameUpdate{BoxETag: &etag}))

	require.NoError(t, s.Upsert(ctx, poller.GameRecord{ID: "1", Date: "2024-01-15", Status: "Final", BoxETag: "ignored"}))

	recs, err := s.QueryByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Final", recs[0].Status)
	assert.Equal(t, "box-3", recs[0].BoxETag)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.Error(t, err)
}

func TestStore_Placeholders(t *testing.T) {
	assert.Equal(t, "?", (&Store{driver: DriverSQLite}).placeholder(3))
	assert.Equal(t, "$3", (&Store{driver: DriverPostgres}).placeholder(3))
}
