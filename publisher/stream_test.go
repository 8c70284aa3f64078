package publisher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poller "nba-game-poller"
)

func TestPublishGameUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	p := NewStreamPublisher(client)
	ctx := context.Background()

	rec := poller.GameRecord{ID: "0022300001", Date: "2024-01-15", Status: "Q4", HomeScore: 90, AwayScore: 99}
	require.NoError(t, p.PublishGameUpdate(ctx, rec))
	rec.Status = "Final"
	require.NoError(t, p.PublishGameUpdate(ctx, rec))

	msgs, err := client.XRange(ctx, "games.updates.2024-01-15", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "0022300001", msgs[0].Values["game_id"])
	assert.Equal(t, "Q4", msgs[0].Values["status"])
	assert.Equal(t, "Final", msgs[1].Values["status"])

	var got poller.GameRecord
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Values["data"].(string)), &got))
	assert.Equal(t, rec, got)
}

func TestPublishGameUpdate_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	err := NewStreamPublisher(client).PublishGameUpdate(context.Background(), poller.GameRecord{ID: "1", Date: "2024-01-15"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.PublishGameUpdate(context.Background(), poller.GameRecord{}))
}
