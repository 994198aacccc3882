// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"log/slog"
	"time"
)

// EventKind identifies the notification emitted by an accepted operation.
type EventKind string

const (
	EventParticipantRegistered EventKind = "participant_registered"
	EventPhaseChanged          EventKind = "phase_changed"
	EventProposalSubmitted     EventKind = "proposal_submitted"
	EventVoteCast              EventKind = "vote_cast"
)

// Event records one accepted state transition. Only the fields relevant to
// Kind are set.
type Event struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`

	// participant_registered, vote_cast
	Identity Identity `json:"identity,omitempty"`

	// phase_changed
	PreviousPhase Phase `json:"previous_phase"`
	NewPhase      Phase `json:"new_phase"`

	// proposal_submitted, vote_cast
	ProposalIndex int    `json:"proposal_index"`
	Description   string `json:"description,omitempty"`
}

// Journal persists events before they are applied. An Append error rejects
// the operation that produced the event.
type Journal interface {
	Append(ctx context.Context, event Event) error
}

// Observer receives events after they have been applied. Notify runs while
// the election lock is held and must not call back into the Election.
type Observer interface {
	Notify(event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(event Event) { f(event) }

// LogObserver writes every event to a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) Notify(event Event) {
	logger := resolveLogger(o.Logger)
	attrs := []any{
		"event", string(event.Kind),
		"seq", event.Seq,
	}
	switch event.Kind {
	case EventParticipantRegistered:
		attrs = append(attrs, "identity", string(event.Identity))
	case EventPhaseChanged:
		attrs = append(attrs, "previous_phase", event.PreviousPhase.String(), "new_phase", event.NewPhase.String())
	case EventProposalSubmitted:
		attrs = append(attrs, "proposal_index", event.ProposalIndex)
	case EventVoteCast:
		attrs = append(attrs, "identity", string(event.Identity), "proposal_index", event.ProposalIndex)
	}
	logger.Info("election event", attrs...)
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

type nopJournal struct{}

func (nopJournal) Append(context.Context, Event) error { return nil }
