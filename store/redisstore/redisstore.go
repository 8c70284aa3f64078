package redisstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	poller "nba-game-poller"
)

// Store keeps each game as a hash at game:<id>:<date> and indexes the day's
// games in the set games:date:<date>.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect parses a redis:// URL and checks the connection.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func dateKey(date string) string {
	return "games:date:" + date
}

func gameKey(id, date string) string {
	return fmt.Sprintf("game:%s:%s", id, date)
}

func (s *Store) QueryByDate(ctx context.Context, date string) ([]poller.GameRecord, error) {
	ids, err := s.client.SMembers(ctx, dateKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("list games for %s: %w", date, err)
	}
	sort.Strings(ids)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, gameKey(id, date))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("load games for %s: %w", date, err)
		}
	}

	records := make([]poller.GameRecord, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec := fromHash(fields)
		rec.ID = ids[i]
		rec.Date = date
		records = append(records, rec)
	}
	return records, nil
}

// UpdateFields writes only the supplied fields.
func (s *Store) UpdateFields(ctx context.Context, gameID, date string, update poller.GameUpdate) error {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, gameKey(gameID, date), fields).Err(); err != nil {
		return fmt.Errorf("update game %s: %w", gameID, err)
	}
	return nil
}

// Upsert writes every scheduling field of rec. Validator tokens are left alone.
func (s *Store) Upsert(ctx context.Context, rec poller.GameRecord) error {
	fields := map[string]any{
		poller.FieldStatus:     rec.Status,
		poller.FieldClock:      rec.Clock,
		poller.FieldStartTime:  rec.StartTime,
		poller.FieldHomeTeam:   rec.HomeTeam,
		poller.FieldAwayTeam:   rec.AwayTeam,
		poller.FieldHomeTeamID: rec.HomeTeamID,
		poller.FieldAwayTeamID: rec.AwayTeamID,
		poller.FieldHomeScore:  rec.HomeScore,
		poller.FieldAwayScore:  rec.AwayScore,
		poller.FieldHomeRecord: rec.HomeRecord,
		poller.FieldAwayRecord: rec.AwayRecord,
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, gameKey(rec.ID, rec.Date), fields)
		pipe.SAdd(ctx, dateKey(rec.Date), rec.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", rec.ID, err)
	}
	return nil
}

func fromHash(h map[string]string) poller.GameRecord {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return poller.GameRecord{
		Status:     h[poller.FieldStatus],
		Clock:      h[poller.FieldClock],
		StartTime:  h[poller.FieldStartTime],
		HomeTeam:   h[poller.FieldHomeTeam],
		AwayTeam:   h[poller.FieldAwayTeam],
		HomeTeamID: atoi(h[poller.FieldHomeTeamID]),
		AwayTeamID: atoi(h[poller.FieldAwayTeamID]),
		HomeScore:  atoi(h[poller.FieldHomeScore]),
		AwayScore:  atoi(h[poller.FieldAwayScore]),
		HomeRecord: h[poller.FieldHomeRecord],
		AwayRecord: h[poller.FieldAwayRecord],
		PlayETag:   h[poller.FieldPlayETag],
		BoxETag:    h[poller.FieldBoxETag],
	}
}
