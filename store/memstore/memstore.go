// Package memstore is an in-memory RecordStore for tests and local dry runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	poller "nba-game-poller"
)

type key struct{ id, date string }

type Store struct {
	mu      sync.RWMutex
	records map[key]poller.GameRecord
}

func New(records ...poller.GameRecord) *Store {
	s := &Store{records: make(map[key]poller.GameRecord)}
	for _, rec := range records {
		s.records[key{rec.ID, rec.Date}] = rec
	}
	return s
}

// QueryByDate returns the date's records ordered by id.
func (s *Store) QueryByDate(ctx context.Context, date string) ([]poller.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []poller.GameRecord
	for k, rec := range s.records {
		if k.date == date {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateFields(ctx context.Context, gameID, date string, update poller.GameUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{gameID, date}
	rec, ok := s.records[k]
	if !ok {
		return fmt.Errorf("game %s on %s not found", gameID, date)
	}
	s.records[k] = rec.Apply(update)
	return nil
}

// Upsert stores rec, keeping the validator tokens of an existing record.
func (s *Store) Upsert(ctx context.Context, rec poller.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{rec.ID, rec.Date}
	if existing, ok := s.records[k]; ok {
		rec.PlayETag = existing.PlayETag
		rec.BoxETag = existing.BoxETag
	}
	s.records[k] = rec
	return nil
}

func (s *Store) Get(gameID, date string) (poller.GameRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key{gameID, date}]
	return rec, ok
}
