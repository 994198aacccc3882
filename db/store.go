// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/election"
)

var ErrCoordinatorMismatch = errors.New("stored election has a different coordinator")

// ElectionRecord is the persisted identity of the election.
type ElectionRecord struct {
	ID            string    `json:"id"`
	CoordinatorID string    `json:"coordinator_id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists the election row and its event journal.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// LoadOrCreateElection returns the single stored election, creating it on
// first start. created reports whether a new row was inserted.
func (s *Store) LoadOrCreateElection(ctx context.Context, coordinatorID, title string) (rec ElectionRecord, created bool, err error) {
	var createdAt int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id, coordinator_id, title, created_at
		FROM election
		ORDER BY created_at
		LIMIT 1
	`).Scan(&rec.ID, &rec.CoordinatorID, &rec.Title, &createdAt)

	if err == nil {
		rec.CreatedAt = fromMillis(createdAt)
		if rec.CoordinatorID != coordinatorID {
			return ElectionRecord{}, false, fmt.Errorf("%w: %q, configured %q", ErrCoordinatorMismatch, rec.CoordinatorID, coordinatorID)
		}
		return rec, false, nil
	}
	if err != sql.ErrNoRows {
		return ElectionRecord{}, false, fmt.Errorf("failed to query election: %w", err)
	}

	rec = ElectionRecord{
		ID:            uuid.NewString(),
		CoordinatorID: coordinatorID,
		Title:         title,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO election (id, coordinator_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.CoordinatorID, rec.Title, toMillis(rec.CreatedAt))
	if err != nil {
		return ElectionRecord{}, false, fmt.Errorf("failed to insert election: %w", err)
	}

	slog.Info("election created", "election_id", rec.ID, "coordinator", rec.CoordinatorID)
	return rec, true, nil
}

// AppendEvent writes one journal row. The (election_id, seq) primary key
// rejects a second writer racing for the same position.
func (s *Store) AppendEvent(ctx context.Context, electionID string, event election.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO election_event (election_id, seq, event_id, kind, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, electionID, event.Seq, event.ID, string(event.Kind), string(payload), toMillis(event.OccurredAt))
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: seq %d", ErrEventConflict, event.Seq)
	}
	if err != nil {
		return fmt.Errorf("failed to insert event %d: %w", event.Seq, err)
	}
	return nil
}

// ListEvents returns journaled events with seq greater than afterSeq, in
// order. Pass 0 for the whole journal.
func (s *Store) ListEvents(ctx context.Context, electionID string, afterSeq int64) ([]election.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, payload
		FROM election_event
		WHERE election_id = $1 AND seq > $2
		ORDER BY seq
	`, electionID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []election.Event{}
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var event election.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", seq, err)
		}
		event.Seq = seq
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// Journal binds the store to one election so it can back election.Journal.
func (s *Store) Journal(electionID string) election.Journal {
	return journal{store: s, electionID: electionID}
}

type journal struct {
	store      *Store
	electionID string
}

func (j journal) Append(ctx context.Context, event election.Event) error {
	return j.store.AppendEvent(ctx, j.electionID, event)
}
