package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	poller "nba-game-poller"
)

// DefaultMaxLen caps each day's stream, approximately.
const DefaultMaxLen = 10000

// StreamKey is the stream that carries a day's game updates.
func StreamKey(date string) string {
	return "games.updates." + date
}

// StreamPublisher publishes game updates to Redis streams.
type StreamPublisher struct {
	client *redis.Client
	maxLen int64
}

func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client, maxLen: DefaultMaxLen}
}

// PublishGameUpdate appends the record to its day's stream.
func (p *StreamPublisher) PublishGameUpdate(ctx context.Context, rec poller.GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling game update: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(rec.Date),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"game_id": rec.ID,
			"status":  rec.Status,
			"data":    string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing update for %s: %w", rec.ID, err)
	}
	return nil
}

// Nop discards updates.
type Nop struct{}

func (Nop) PublishGameUpdate(context.Context, poller.GameRecord) error { return nil }
