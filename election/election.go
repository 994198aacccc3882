// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenesisDescription labels the placeholder proposal created at index 0 when
// proposals open.
const GenesisDescription = "GENESIS"

// Identity names a caller. The coordinator and participants share this space.
type Identity string

type Participant struct {
	Registered         bool `json:"registered"`
	HasVoted           bool `json:"has_voted"`
	VotedProposalIndex int  `json:"voted_proposal_index"`
}

type Proposal struct {
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
}

// State is a point-in-time copy of the whole election.
type State struct {
	Coordinator          Identity                 `json:"coordinator"`
	Phase                Phase                    `json:"phase"`
	LeadingProposalIndex int                      `json:"leading_proposal_index"`
	Proposals            []Proposal               `json:"proposals"`
	Participants         map[Identity]Participant `json:"participants"`
	LastSeq              int64                    `json:"last_seq"`
}

type Options struct {
	Journal   Journal
	Observers []Observer
	Logger    *slog.Logger
	Clock     func() time.Time
	NewID     func() string
}

// Election is the single-election state machine. All methods are safe for
// concurrent use; a single mutex serializes every operation end to end.
type Election struct {
	mu sync.Mutex

	coordinator  Identity
	phase        Phase
	proposals    []Proposal
	participants map[Identity]Participant
	leader       int
	seq          int64

	journal   Journal
	observers []Observer
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
}

func New(coordinator Identity, opts Options) *Election {
	e := &Election{
		coordinator:  coordinator,
		phase:        RegisteringParticipants,
		participants: make(map[Identity]Participant),
		journal:      opts.Journal,
		observers:    opts.Observers,
		logger:       resolveLogger(opts.Logger),
		clock:        opts.Clock,
		newID:        opts.NewID,
	}
	if e.journal == nil {
		e.journal = nopJournal{}
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Restore rebuilds an election by replaying journaled events in order. Every
// event goes through the same validation as the live operation that produced
// it, so a corrupt or reordered journal is reported instead of applied.
// Observers are not notified during replay.
func Restore(coordinator Identity, events []Event, opts Options) (*Election, error) {
	e := New(coordinator, opts)
	for _, event := range events {
		if event.Seq != e.seq+1 {
			return nil, fmt.Errorf("replay event %d: expected seq %d", event.Seq, e.seq+1)
		}
		if err := e.validate(event); err != nil {
			return nil, fmt.Errorf("replay event %d (%s): %w", event.Seq, event.Kind, err)
		}
		e.apply(event)
	}
	e.logger.Info("election restored",
		"coordinator", string(coordinator),
		"events", len(events),
		"phase", e.phase.String(),
	)
	return e, nil
}

func (e *Election) Coordinator() Identity {
	return e.coordinator
}

// Snapshot returns a deep copy of the current state.
func (e *Election) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Coordinator:          e.coordinator,
		Phase:                e.phase,
		LeadingProposalIndex: e.leader,
		Proposals:            slices.Clone(e.proposals),
		Participants:         maps.Clone(e.participants),
		LastSeq:              e.seq,
	}
}

// Register adds identity to the allow-list of participants.
func (e *Election) Register(ctx context.Context, caller, identity Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCoordinator(caller); err != nil {
		return err
	}
	return e.commit(ctx, Event{Kind: EventParticipantRegistered, Identity: identity})
}

// OpenProposals also creates the placeholder proposal at index 0.
func (e *Election) OpenProposals(ctx context.Context, caller Identity) error {
	return e.advance(ctx, caller, openProposals)
}

func (e *Election) CloseProposals(ctx context.Context, caller Identity) error {
	return e.advance(ctx, caller, closeProposals)
}

func (e *Election) OpenVoting(ctx context.Context, caller Identity) error {
	return e.advance(ctx, caller, openVoting)
}

func (e *Election) CloseVoting(ctx context.Context, caller Identity) error {
	return e.advance(ctx, caller, closeVoting)
}

// TallyResults only marks the final phase; the leader is tracked as votes
// arrive.
func (e *Election) TallyResults(ctx context.Context, caller Identity) error {
	return e.advance(ctx, caller, tallyResults)
}

func (e *Election) advance(ctx context.Context, caller Identity, op transition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCoordinator(caller); err != nil {
		return err
	}
	next, ok := nextPhase(e.phase, op)
	if !ok {
		return fmt.Errorf("%w: cannot %s during %s", ErrInvalidTransition, op, e.phase)
	}
	return e.commit(ctx, Event{Kind: EventPhaseChanged, PreviousPhase: e.phase, NewPhase: next})
}

// SubmitProposal appends a proposal and returns its index.
func (e *Election) SubmitProposal(ctx context.Context, caller Identity, description string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event := Event{
		Kind:          EventProposalSubmitted,
		Identity:      caller,
		ProposalIndex: len(e.proposals),
		Description:   description,
	}
	if err := e.commit(ctx, event); err != nil {
		return 0, err
	}
	return event.ProposalIndex, nil
}

// CastVote records caller's single vote for the proposal at index.
func (e *Election) CastVote(ctx context.Context, caller Identity, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.commit(ctx, Event{Kind: EventVoteCast, Identity: caller, ProposalIndex: index})
}

// Participant returns the record for identity, or the zero value if it was
// never registered.
func (e *Election) Participant(caller, identity Identity) (Participant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireVoter(caller); err != nil {
		return Participant{}, err
	}
	return e.participants[identity], nil
}

func (e *Election) Proposal(caller Identity, index int) (Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireVoter(caller); err != nil {
		return Proposal{}, err
	}
	if err := e.checkIndex(index); err != nil {
		return Proposal{}, err
	}
	return e.proposals[index], nil
}

func (e *Election) ProposalCount(caller Identity) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireVoter(caller); err != nil {
		return 0, err
	}
	return len(e.proposals), nil
}

// WinningProposal returns the leading proposal once results are tallied.
func (e *Election) WinningProposal(caller Identity) (int, Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireVoter(caller); err != nil {
		return 0, Proposal{}, err
	}
	if e.phase != ResultsTallied {
		return 0, Proposal{}, ErrResultsNotTallied
	}
	return e.leader, e.proposals[e.leader], nil
}

func (e *Election) requireCoordinator(caller Identity) error {
	if caller != e.coordinator {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Election) requireVoter(caller Identity) error {
	if !e.participants[caller].Registered {
		return ErrNotAVoter
	}
	return nil
}

func (e *Election) checkIndex(index int) error {
	if index < 0 || index >= len(e.proposals) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(e.proposals))
	}
	return nil
}

// commit validates event against the current state, journals it, applies it
// and notifies observers. Nothing is mutated unless every step before apply
// succeeds. Callers must hold e.mu.
func (e *Election) commit(ctx context.Context, event Event) error {
	if err := e.validate(event); err != nil {
		return err
	}

	event.Seq = e.seq + 1
	event.ID = e.newID()
	event.OccurredAt = e.clock().UTC()

	if err := e.journal.Append(ctx, event); err != nil {
		e.logger.Error("failed to journal election event",
			"event", string(event.Kind),
			"seq", event.Seq,
			"error", err,
		)
		return fmt.Errorf("journal event: %w", err)
	}

	e.apply(event)

	for _, o := range e.observers {
		o.Notify(event)
	}
	return nil
}

// validate checks the preconditions of event in the order: voter
// authorization, phase, arguments. Coordinator authorization is checked by
// the caller because coordinator events do not record who issued them.
func (e *Election) validate(event Event) error {
	switch event.Kind {
	case EventParticipantRegistered:
		if e.phase != RegisteringParticipants {
			return ErrRegistrationClosed
		}
		if event.Identity == "" {
			return ErrEmptyIdentity
		}
		if e.participants[event.Identity].Registered {
			return ErrAlreadyRegistered
		}

	case EventPhaseChanged:
		if event.PreviousPhase != e.phase {
			return fmt.Errorf("%w: event starts from %s, election is in %s", ErrInvalidTransition, event.PreviousPhase, e.phase)
		}
		if !validTransition(e.phase, event.NewPhase) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.phase, event.NewPhase)
		}

	case EventProposalSubmitted:
		if err := e.requireVoter(event.Identity); err != nil {
			return err
		}
		if e.phase != ProposalsOpen {
			return ErrProposalsNotOpen
		}
		if event.Description == "" {
			return ErrEmptyProposal
		}
		if event.ProposalIndex != len(e.proposals) {
			return fmt.Errorf("proposal index %d does not extend ledger of length %d", event.ProposalIndex, len(e.proposals))
		}

	case EventVoteCast:
		if err := e.requireVoter(event.Identity); err != nil {
			return err
		}
		if e.phase != VotingOpen {
			return ErrVotingNotOpen
		}
		if e.participants[event.Identity].HasVoted {
			return ErrAlreadyVoted
		}
		if err := e.checkIndex(event.ProposalIndex); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}

func validTransition(from, to Phase) bool {
	for key, next := range transitions {
		if key.from == from && next == to {
			return true
		}
	}
	return false
}

// apply mutates state for an already validated event. Callers must hold e.mu.
func (e *Election) apply(event Event) {
	switch event.Kind {
	case EventParticipantRegistered:
		p := e.participants[event.Identity]
		p.Registered = true
		e.participants[event.Identity] = p

	case EventPhaseChanged:
		e.phase = event.NewPhase
		if event.NewPhase == ProposalsOpen {
			e.proposals = append(e.proposals, Proposal{Description: GenesisDescription})
		}

	case EventProposalSubmitted:
		e.proposals = append(e.proposals, Proposal{Description: event.Description})

	case EventVoteCast:
		p := e.participants[event.Identity]
		p.HasVoted = true
		p.VotedProposalIndex = event.ProposalIndex
		e.participants[event.Identity] = p

		e.proposals[event.ProposalIndex].VoteCount++
		// Strictly greater: a tie keeps the proposal that reached the count first.
		if e.proposals[event.ProposalIndex].VoteCount > e.proposals[e.leader].VoteCount {
			e.leader = event.ProposalIndex
		}
	}
	e.seq = event.Seq
}
