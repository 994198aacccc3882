// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

const coordinator Identity = "coordinator"

type recordingJournal struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (j *recordingJournal) Append(_ context.Context, event Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, event)
	return nil
}

func newTestElection(t *testing.T, journal Journal, observers ...Observer) *Election {
	t.Helper()
	var n int
	return New(coordinator, Options{
		Journal:   journal,
		Observers: observers,
		Clock:     func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("event-%d", n)
		},
	})
}

// advanceTo registers voters and walks the election forward to target.
func advanceTo(t *testing.T, e *Election, target Phase, voters ...Identity) {
	t.Helper()
	ctx := context.Background()

	for _, v := range voters {
		if err := e.Register(ctx, coordinator, v); err != nil {
			t.Fatalf("Register(%s) error = %v", v, err)
		}
	}

	steps := []func(context.Context, Identity) error{
		e.OpenProposals, e.CloseProposals, e.OpenVoting, e.CloseVoting, e.TallyResults,
	}
	for i := 0; i < int(target); i++ {
		if err := steps[i](ctx, coordinator); err != nil {
			t.Fatalf("advance step %d error = %v", i, err)
		}
	}
}

func TestNewElection(t *testing.T) {
	e := newTestElection(t, nil)
	state := e.Snapshot()

	if state.Phase != RegisteringParticipants {
		t.Errorf("Expected phase %s, got %s", RegisteringParticipants, state.Phase)
	}
	if state.LeadingProposalIndex != 0 {
		t.Errorf("Expected leading index 0, got %d", state.LeadingProposalIndex)
	}
	if len(state.Proposals) != 0 {
		t.Errorf("Expected no proposals, got %d", len(state.Proposals))
	}
	if e.Coordinator() != coordinator {
		t.Errorf("Expected coordinator %s, got %s", coordinator, e.Coordinator())
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, e *Election)
		caller  Identity
		target  Identity
		wantErr error
	}{
		{
			name:   "coordinator registers participant",
			caller: coordinator,
			target: "alice",
		},
		{
			name:    "non-coordinator is rejected",
			caller:  "alice",
			target:  "bob",
			wantErr: ErrNotAuthorized,
		},
		{
			name: "non-coordinator is rejected even when registered",
			setup: func(t *testing.T, e *Election) {
				advanceTo(t, e, RegisteringParticipants, "alice")
			},
			caller:  "alice",
			target:  "bob",
			wantErr: ErrNotAuthorized,
		},
		{
			name: "duplicate registration",
			setup: func(t *testing.T, e *Election) {
				advanceTo(t, e, RegisteringParticipants, "alice")
			},
			caller:  coordinator,
			target:  "alice",
			wantErr: ErrAlreadyRegistered,
		},
		{
			name:    "empty identity",
			caller:  coordinator,
			target:  "",
			wantErr: ErrEmptyIdentity,
		},
		{
			name: "registration closed",
			setup: func(t *testing.T, e *Election) {
				advanceTo(t, e, ProposalsOpen)
			},
			caller:  coordinator,
			target:  "alice",
			wantErr: ErrRegistrationClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := &recordingJournal{}
			e := newTestElection(t, journal)
			if tt.setup != nil {
				tt.setup(t, e)
			}
			before := e.Snapshot()
			journaled := len(journal.events)

			err := e.Register(ctx, tt.caller, tt.target)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
				}
				if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
					t.Errorf("Rejected Register() changed state:\nbefore %+v\nafter  %+v", before, after)
				}
				if len(journal.events) != journaled {
					t.Errorf("Rejected Register() journaled an event")
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			p, err := e.Participant(tt.target, tt.target)
			if err != nil {
				t.Fatalf("Participant() error = %v", err)
			}
			if !p.Registered || p.HasVoted {
				t.Errorf("Unexpected participant record %+v", p)
			}
		})
	}
}

func TestRegisterTwiceLeavesRegistryUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newTestElection(t, nil)

	for _, id := range []Identity{"alice", "bob", "carol"} {
		if err := e.Register(ctx, coordinator, id); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
		before := e.Snapshot()
		if err := e.Register(ctx, coordinator, id); !errors.Is(err, ErrAlreadyRegistered) {
			t.Errorf("Second Register(%s) error = %v, want ErrAlreadyRegistered", id, err)
		}
		if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
			t.Errorf("Second Register(%s) changed state", id)
		}
	}
}

func TestPhaseTransitionsInOrder(t *testing.T) {
	ctx := context.Background()
	var seen []Event
	e := newTestElection(t, nil, ObserverFunc(func(ev Event) { seen = append(seen, ev) }))

	steps := []struct {
		name string
		op   func(context.Context, Identity) error
		want Phase
	}{
		{"OpenProposals", e.OpenProposals, ProposalsOpen},
		{"CloseProposals", e.CloseProposals, ProposalsClosed},
		{"OpenVoting", e.OpenVoting, VotingOpen},
		{"CloseVoting", e.CloseVoting, VotingClosed},
		{"TallyResults", e.TallyResults, ResultsTallied},
	}

	prev := RegisteringParticipants
	for i, step := range steps {
		if err := step.op(ctx, coordinator); err != nil {
			t.Fatalf("%s() error = %v", step.name, err)
		}
		if got := e.Snapshot().Phase; got != step.want {
			t.Errorf("After %s expected phase %s, got %s", step.name, step.want, got)
		}
		ev := seen[i]
		if ev.Kind != EventPhaseChanged || ev.PreviousPhase != prev || ev.NewPhase != step.want {
			t.Errorf("%s emitted %+v", step.name, ev)
		}
		prev = step.want
	}

	if !e.Snapshot().Phase.Terminal() {
		t.Error("Expected terminal phase after TallyResults")
	}
}

func TestPhaseTransitionsOutOfOrder(t *testing.T) {
	ctx := context.Background()

	type op struct {
		name string
		call func(e *Election) error
		from Phase
	}
	ops := []op{
		{"OpenProposals", func(e *Election) error { return e.OpenProposals(ctx, coordinator) }, RegisteringParticipants},
		{"CloseProposals", func(e *Election) error { return e.CloseProposals(ctx, coordinator) }, ProposalsOpen},
		{"OpenVoting", func(e *Election) error { return e.OpenVoting(ctx, coordinator) }, ProposalsClosed},
		{"CloseVoting", func(e *Election) error { return e.CloseVoting(ctx, coordinator) }, VotingOpen},
		{"TallyResults", func(e *Election) error { return e.TallyResults(ctx, coordinator) }, VotingClosed},
	}

	for phase := RegisteringParticipants; phase <= ResultsTallied; phase++ {
		for _, o := range ops {
			if o.from == phase {
				continue
			}
			t.Run(fmt.Sprintf("%s during %s", o.name, phase), func(t *testing.T) {
				journal := &recordingJournal{}
				e := newTestElection(t, journal)
				advanceTo(t, e, phase)
				before := e.Snapshot()
				journaled := len(journal.events)

				err := o.call(e)
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("error = %v, want ErrInvalidTransition", err)
				}
				if !errors.Is(err, ErrInvalidPhase) {
					t.Errorf("error = %v does not match ErrInvalidPhase", err)
				}
				if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
					t.Errorf("Rejected transition changed state")
				}
				if len(journal.events) != journaled {
					t.Errorf("Rejected transition journaled an event")
				}
			})
		}
	}
}

func TestTransitionsRequireCoordinator(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		phase Phase
		call  func(e *Election, caller Identity) error
	}{
		{"OpenProposals", RegisteringParticipants, func(e *Election, c Identity) error { return e.OpenProposals(ctx, c) }},
		{"CloseProposals", ProposalsOpen, func(e *Election, c Identity) error { return e.CloseProposals(ctx, c) }},
		{"OpenVoting", ProposalsClosed, func(e *Election, c Identity) error { return e.OpenVoting(ctx, c) }},
		{"CloseVoting", VotingOpen, func(e *Election, c Identity) error { return e.CloseVoting(ctx, c) }},
		{"TallyResults", VotingClosed, func(e *Election, c Identity) error { return e.TallyResults(ctx, c) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElection(t, nil)
			advanceTo(t, e, tt.phase, "alice")
			before := e.Snapshot()

			for _, caller := range []Identity{"alice", "mallory", ""} {
				if err := tt.call(e, caller); !errors.Is(err, ErrNotAuthorized) {
					t.Errorf("caller %q error = %v, want ErrNotAuthorized", caller, err)
				}
			}
			if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Errorf("Unauthorized transition changed state")
			}
		})
	}
}

func TestNotAuthorizedCheckedBeforePhase(t *testing.T) {
	e := newTestElection(t, nil)
	advanceTo(t, e, ResultsTallied)

	err := e.OpenProposals(context.Background(), "mallory")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized before phase check, got %v", err)
	}
	err = e.Register(context.Background(), "mallory", "bob")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized before phase check, got %v", err)
	}
}

func TestOpenProposalsCreatesGenesis(t *testing.T) {
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, "alice")

	n, err := e.ProposalCount("alice")
	if err != nil {
		t.Fatalf("ProposalCount() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected 1 proposal after OpenProposals, got %d", n)
	}

	p, err := e.Proposal("alice", 0)
	if err != nil {
		t.Fatalf("Proposal(0) error = %v", err)
	}
	if p.Description != GenesisDescription || p.VoteCount != 0 {
		t.Errorf("Unexpected placeholder %+v", p)
	}
}

func TestSubmitProposal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		phase       Phase
		caller      Identity
		description string
		wantErr     error
	}{
		{"registered participant", ProposalsOpen, "alice", "Pizza", nil},
		{"unregistered caller", ProposalsOpen, "mallory", "Pizza", ErrNotAVoter},
		{"coordinator not registered", ProposalsOpen, coordinator, "Pizza", ErrNotAVoter},
		{"empty description", ProposalsOpen, "alice", "", ErrEmptyProposal},
		{"before proposals open", RegisteringParticipants, "alice", "Pizza", ErrProposalsNotOpen},
		{"after proposals close", ProposalsClosed, "alice", "Pizza", ErrProposalsNotOpen},
		{"during voting", VotingOpen, "alice", "Pizza", ErrProposalsNotOpen},
		{"unregistered caller outside phase", VotingOpen, "mallory", "", ErrNotAVoter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElection(t, nil)
			advanceTo(t, e, tt.phase, "alice")
			before := e.Snapshot()

			index, err := e.SubmitProposal(ctx, tt.caller, tt.description)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SubmitProposal() error = %v, want %v", err, tt.wantErr)
				}
				if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
					t.Errorf("Rejected SubmitProposal() changed state")
				}
				return
			}
			if err != nil {
				t.Fatalf("SubmitProposal() error = %v", err)
			}
			if index != 1 {
				t.Errorf("Expected index 1, got %d", index)
			}
			p, err := e.Proposal(tt.caller, index)
			if err != nil {
				t.Fatalf("Proposal() error = %v", err)
			}
			if p.Description != tt.description || p.VoteCount != 0 {
				t.Errorf("Unexpected proposal %+v", p)
			}
		})
	}
}

func TestSubmitProposalAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	var seen []Event
	e := newTestElection(t, nil, ObserverFunc(func(ev Event) { seen = append(seen, ev) }))
	advanceTo(t, e, ProposalsOpen, "alice", "bob")
	seen = nil

	for i, desc := range []string{"Tacos", "Sushi", "Tacos"} {
		caller := Identity("alice")
		if i%2 == 1 {
			caller = "bob"
		}
		index, err := e.SubmitProposal(ctx, caller, desc)
		if err != nil {
			t.Fatalf("SubmitProposal(%q) error = %v", desc, err)
		}
		if index != i+1 {
			t.Errorf("Expected index %d, got %d", i+1, index)
		}
		if seen[i].Kind != EventProposalSubmitted || seen[i].ProposalIndex != index {
			t.Errorf("Unexpected event %+v", seen[i])
		}
	}

	if n, _ := e.ProposalCount("alice"); n != 4 {
		t.Errorf("Expected 4 proposals, got %d", n)
	}
}

func TestProposalIndexOutOfRange(t *testing.T) {
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, "alice")

	for _, index := range []int{1, 2, -1} {
		if _, err := e.Proposal("alice", index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Proposal(%d) error = %v, want ErrIndexOutOfRange", index, err)
		}
	}
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		phase   Phase
		caller  Identity
		index   int
		wantErr error
	}{
		{"vote for real proposal", VotingOpen, "alice", 1, nil},
		{"vote for placeholder", VotingOpen, "alice", 0, nil},
		{"unregistered caller", VotingOpen, "mallory", 1, ErrNotAVoter},
		{"coordinator not registered", VotingOpen, coordinator, 1, ErrNotAVoter},
		{"index out of range", VotingOpen, "alice", 2, ErrIndexOutOfRange},
		{"negative index", VotingOpen, "alice", -1, ErrIndexOutOfRange},
		{"before voting opens", ProposalsClosed, "alice", 1, ErrVotingNotOpen},
		{"after voting closes", VotingClosed, "alice", 1, ErrVotingNotOpen},
		{"after tally", ResultsTallied, "alice", 1, ErrVotingNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElection(t, nil)
			advanceTo(t, e, ProposalsOpen, "alice")
			if _, err := e.SubmitProposal(ctx, "alice", "Pizza"); err != nil {
				t.Fatalf("SubmitProposal() error = %v", err)
			}
			steps := []func(context.Context, Identity) error{e.CloseProposals, e.OpenVoting, e.CloseVoting, e.TallyResults}
			for i := 0; i < int(tt.phase-ProposalsOpen); i++ {
				if err := steps[i](ctx, coordinator); err != nil {
					t.Fatalf("advance error = %v", err)
				}
			}
			before := e.Snapshot()

			err := e.CastVote(ctx, tt.caller, tt.index)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CastVote() error = %v, want %v", err, tt.wantErr)
				}
				if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
					t.Errorf("Rejected CastVote() changed state")
				}
				return
			}
			if err != nil {
				t.Fatalf("CastVote() error = %v", err)
			}
			voter, _ := e.Participant(tt.caller, tt.caller)
			if !voter.HasVoted || voter.VotedProposalIndex != tt.index {
				t.Errorf("Unexpected voter record %+v", voter)
			}
			p, _ := e.Proposal(tt.caller, tt.index)
			if p.VoteCount != 1 {
				t.Errorf("Expected 1 vote, got %d", p.VoteCount)
			}
		})
	}
}

func TestCastVoteOnlyOnce(t *testing.T) {
	ctx := context.Background()
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, "alice")
	e.SubmitProposal(ctx, "alice", "Pizza")
	e.SubmitProposal(ctx, "alice", "Salad")
	e.CloseProposals(ctx, coordinator)
	e.OpenVoting(ctx, coordinator)

	if err := e.CastVote(ctx, "alice", 1); err != nil {
		t.Fatalf("First CastVote() error = %v", err)
	}
	before := e.Snapshot()

	for index := 0; index < 4; index++ {
		if err := e.CastVote(ctx, "alice", index); !errors.Is(err, ErrAlreadyVoted) {
			t.Errorf("Second CastVote(%d) error = %v, want ErrAlreadyVoted", index, err)
		}
	}
	if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("Rejected votes changed state")
	}
}

func TestLeaderMovesOnlyOnStrictImprovement(t *testing.T) {
	ctx := context.Background()
	voters := []Identity{"v1", "v2", "v3", "v4", "v5", "v6"}
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, voters...)
	e.SubmitProposal(ctx, "v1", "A") // 1
	e.SubmitProposal(ctx, "v1", "B") // 2
	e.CloseProposals(ctx, coordinator)
	e.OpenVoting(ctx, coordinator)

	steps := []struct {
		voter      Identity
		index      int
		wantLeader int
	}{
		{"v1", 2, 2}, // B:1 beats GENESIS:0
		{"v2", 1, 2}, // A:1 ties B:1, B reached 1 first
		{"v3", 1, 1}, // A:2 beats B:1
		{"v4", 2, 1}, // B:2 ties A:2
		{"v5", 0, 1}, // GENESIS:1
		{"v6", 2, 2}, // B:3
	}

	for _, step := range steps {
		if err := e.CastVote(ctx, step.voter, step.index); err != nil {
			t.Fatalf("CastVote(%s, %d) error = %v", step.voter, step.index, err)
		}
		state := e.Snapshot()
		if state.LeadingProposalIndex != step.wantLeader {
			t.Errorf("After %s voted %d expected leader %d, got %d",
				step.voter, step.index, step.wantLeader, state.LeadingProposalIndex)
		}
		leading := state.Proposals[state.LeadingProposalIndex].VoteCount
		for i, p := range state.Proposals {
			if p.VoteCount > leading {
				t.Errorf("Proposal %d has %d votes, more than leader's %d", i, p.VoteCount, leading)
			}
		}
	}
}

type ballot struct {
	voter Identity
	index int
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		votes      []ballot
		wantLeader int
	}{
		{
			// A's vote moves index 1 to 1 vote first; B's vote ties index 0
			// at 1 and does not overwrite.
			name: "A votes first",
			votes: []ballot{
				{"A", 1},
				{"B", 0},
			},
			wantLeader: 1,
		},
		{
			// B's vote lifts the placeholder to 1 first; A's tie keeps it.
			name: "B votes first",
			votes: []ballot{
				{"B", 0},
				{"A", 1},
			},
			wantLeader: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElection(t, nil)
			for _, id := range []Identity{"A", "B"} {
				if err := e.Register(ctx, coordinator, id); err != nil {
					t.Fatalf("Register(%s) error = %v", id, err)
				}
			}
			if err := e.OpenProposals(ctx, coordinator); err != nil {
				t.Fatalf("OpenProposals() error = %v", err)
			}
			index, err := e.SubmitProposal(ctx, "A", "X")
			if err != nil {
				t.Fatalf("SubmitProposal() error = %v", err)
			}
			if index != 1 {
				t.Fatalf("Expected proposal X at index 1, got %d", index)
			}
			if err := e.CloseProposals(ctx, coordinator); err != nil {
				t.Fatalf("CloseProposals() error = %v", err)
			}
			if err := e.OpenVoting(ctx, coordinator); err != nil {
				t.Fatalf("OpenVoting() error = %v", err)
			}
			for _, v := range tt.votes {
				if err := e.CastVote(ctx, v.voter, v.index); err != nil {
					t.Fatalf("CastVote(%s, %d) error = %v", v.voter, v.index, err)
				}
			}
			if err := e.CloseVoting(ctx, coordinator); err != nil {
				t.Fatalf("CloseVoting() error = %v", err)
			}
			if err := e.TallyResults(ctx, coordinator); err != nil {
				t.Fatalf("TallyResults() error = %v", err)
			}

			state := e.Snapshot()
			if state.Proposals[0].VoteCount != 1 || state.Proposals[1].VoteCount != 1 {
				t.Errorf("Expected both proposals at 1 vote, got %+v", state.Proposals)
			}
			winner, p, err := e.WinningProposal("A")
			if err != nil {
				t.Fatalf("WinningProposal() error = %v", err)
			}
			if winner != tt.wantLeader {
				t.Errorf("Expected winner %d, got %d", tt.wantLeader, winner)
			}
			if p != state.Proposals[tt.wantLeader] {
				t.Errorf("Winning proposal %+v does not match ledger", p)
			}
		})
	}
}

func TestGenesisCanWinWithoutVotes(t *testing.T) {
	ctx := context.Background()
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, "alice")
	e.SubmitProposal(ctx, "alice", "Pizza")
	for _, op := range []func(context.Context, Identity) error{e.CloseProposals, e.OpenVoting, e.CloseVoting, e.TallyResults} {
		if err := op(ctx, coordinator); err != nil {
			t.Fatalf("advance error = %v", err)
		}
	}

	winner, p, err := e.WinningProposal("alice")
	if err != nil {
		t.Fatalf("WinningProposal() error = %v", err)
	}
	if winner != 0 || p.Description != GenesisDescription {
		t.Errorf("Expected placeholder to win, got %d %+v", winner, p)
	}
}

func TestWinningProposalRequiresTally(t *testing.T) {
	for phase := RegisteringParticipants; phase < ResultsTallied; phase++ {
		e := newTestElection(t, nil)
		advanceTo(t, e, phase, "alice")
		if _, _, err := e.WinningProposal("alice"); !errors.Is(err, ErrResultsNotTallied) {
			t.Errorf("WinningProposal() during %s error = %v, want ErrResultsNotTallied", phase, err)
		}
	}
}

func TestQueriesRequireRegisteredCaller(t *testing.T) {
	e := newTestElection(t, nil)
	advanceTo(t, e, ResultsTallied, "alice")

	for _, caller := range []Identity{"mallory", coordinator, ""} {
		if _, err := e.Participant(caller, "alice"); !errors.Is(err, ErrNotAVoter) {
			t.Errorf("Participant() by %q error = %v, want ErrNotAVoter", caller, err)
		}
		if _, err := e.Proposal(caller, 0); !errors.Is(err, ErrNotAVoter) {
			t.Errorf("Proposal() by %q error = %v, want ErrNotAVoter", caller, err)
		}
		if _, err := e.ProposalCount(caller); !errors.Is(err, ErrNotAVoter) {
			t.Errorf("ProposalCount() by %q error = %v, want ErrNotAVoter", caller, err)
		}
		if _, _, err := e.WinningProposal(caller); !errors.Is(err, ErrNotAVoter) {
			t.Errorf("WinningProposal() by %q error = %v, want ErrNotAVoter", caller, err)
		}
	}
}

func TestCoordinatorCanSelfRegister(t *testing.T) {
	ctx := context.Background()
	e := newTestElection(t, nil)
	advanceTo(t, e, ProposalsOpen, coordinator)

	if _, err := e.SubmitProposal(ctx, coordinator, "Coordinator's pick"); err != nil {
		t.Fatalf("SubmitProposal() by registered coordinator error = %v", err)
	}
	if _, err := e.Participant(coordinator, coordinator); err != nil {
		t.Fatalf("Participant() by registered coordinator error = %v", err)
	}
}

func TestParticipantUnknownIdentityIsZero(t *testing.T) {
	e := newTestElection(t, nil)
	advanceTo(t, e, RegisteringParticipants, "alice")

	p, err := e.Participant("alice", "nobody")
	if err != nil {
		t.Fatalf("Participant() error = %v", err)
	}
	if p != (Participant{}) {
		t.Errorf("Expected zero participant, got %+v", p)
	}
}

func TestJournalFailureRejectsOperation(t *testing.T) {
	ctx := context.Background()
	journal := &recordingJournal{}
	e := newTestElection(t, journal)
	advanceTo(t, e, ProposalsOpen, "alice")

	journal.err = errors.New("disk full")
	before := e.Snapshot()

	if _, err := e.SubmitProposal(ctx, "alice", "Pizza"); err == nil {
		t.Fatal("Expected SubmitProposal() to fail when the journal fails")
	}
	if err := e.CloseProposals(ctx, coordinator); err == nil {
		t.Fatal("Expected CloseProposals() to fail when the journal fails")
	}
	if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("Failed journal append changed state")
	}

	journal.err = nil
	if _, err := e.SubmitProposal(ctx, "alice", "Pizza"); err != nil {
		t.Fatalf("SubmitProposal() after journal recovery error = %v", err)
	}
	if last := journal.events[len(journal.events)-1]; last.Seq != before.LastSeq+1 {
		t.Errorf("Expected seq %d after recovery, got %d", before.LastSeq+1, last.Seq)
	}
}

func TestEventsAreSequenced(t *testing.T) {
	journal := &recordingJournal{}
	e := newTestElection(t, journal)
	advanceTo(t, e, ProposalsOpen, "alice", "bob")

	if len(journal.events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(journal.events))
	}
	wantKinds := []EventKind{EventParticipantRegistered, EventParticipantRegistered, EventPhaseChanged}
	for i, ev := range journal.events {
		if ev.Seq != int64(i+1) {
			t.Errorf("Event %d has seq %d", i, ev.Seq)
		}
		if ev.Kind != wantKinds[i] {
			t.Errorf("Event %d kind = %s, want %s", i, ev.Kind, wantKinds[i])
		}
		if ev.ID == "" || ev.OccurredAt.IsZero() {
			t.Errorf("Event %d missing id or timestamp: %+v", i, ev)
		}
	}
	if journal.events[1].Identity != "bob" {
		t.Errorf("Expected registration of bob, got %s", journal.events[1].Identity)
	}
}

func TestRestoreReplaysJournal(t *testing.T) {
	ctx := context.Background()
	journal := &recordingJournal{}
	e := newTestElection(t, journal)
	advanceTo(t, e, ProposalsOpen, "alice", "bob", "carol")
	e.SubmitProposal(ctx, "alice", "Pizza")
	e.SubmitProposal(ctx, "bob", "Sushi")
	e.CloseProposals(ctx, coordinator)
	e.OpenVoting(ctx, coordinator)
	e.CastVote(ctx, "alice", 2)
	e.CastVote(ctx, "bob", 1)
	e.CastVote(ctx, "carol", 2)

	restored, err := Restore(coordinator, journal.events, Options{})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if want, got := e.Snapshot(), restored.Snapshot(); !reflect.DeepEqual(want, got) {
		t.Errorf("Restored state differs:\nwant %+v\ngot  %+v", want, got)
	}

	// The restored election keeps enforcing the same rules.
	if err := restored.CastVote(ctx, "alice", 1); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("Expected ErrAlreadyVoted after restore, got %v", err)
	}
}

func TestRestoreRejectsInvalidJournal(t *testing.T) {
	register := func(seq int64, id Identity) Event {
		return Event{Seq: seq, Kind: EventParticipantRegistered, Identity: id}
	}

	tests := []struct {
		name   string
		events []Event
	}{
		{"gap in sequence", []Event{register(1, "alice"), register(3, "bob")}},
		{"duplicate registration", []Event{register(1, "alice"), register(2, "alice")}},
		{"skipped phase", []Event{{Seq: 1, Kind: EventPhaseChanged, PreviousPhase: RegisteringParticipants, NewPhase: VotingOpen}}},
		{"vote before voting", []Event{register(1, "alice"), {Seq: 2, Kind: EventVoteCast, Identity: "alice"}}},
		{"unknown kind", []Event{{Seq: 1, Kind: "mystery"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(coordinator, tt.events, Options{}); err == nil {
				t.Error("Expected Restore() to fail")
			}
		})
	}
}

func TestConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	journal := &recordingJournal{}
	e := newTestElection(t, journal)

	numVoters := 50
	voters := make([]Identity, numVoters)
	for i := range voters {
		voters[i] = Identity(fmt.Sprintf("voter-%d", i))
	}
	advanceTo(t, e, ProposalsOpen, voters...)
	e.SubmitProposal(ctx, voters[0], "A")
	e.SubmitProposal(ctx, voters[0], "B")
	e.CloseProposals(ctx, coordinator)
	e.OpenVoting(ctx, coordinator)

	var wg sync.WaitGroup
	errs := make(chan error, numVoters*2)
	for i, v := range voters {
		wg.Add(1)
		go func(v Identity, index int) {
			defer wg.Done()
			errs <- e.CastVote(ctx, v, index)
			// Second vote must always lose.
			if err := e.CastVote(ctx, v, index); !errors.Is(err, ErrAlreadyVoted) {
				errs <- fmt.Errorf("second vote by %s: %v", v, err)
			}
		}(v, i%3)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}

	state := e.Snapshot()
	total := 0
	for _, p := range state.Proposals {
		total += p.VoteCount
	}
	if total != numVoters {
		t.Errorf("Expected %d votes, got %d", numVoters, total)
	}
	for i, ev := range journal.events {
		if ev.Seq != int64(i+1) {
			t.Fatalf("Journal out of order at %d: seq %d", i, ev.Seq)
		}
	}
}

func TestPhaseText(t *testing.T) {
	for phase := RegisteringParticipants; phase <= ResultsTallied; phase++ {
		text, err := phase.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var parsed Phase
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error = %v", text, err)
		}
		if parsed != phase {
			t.Errorf("Round trip of %s produced %s", phase, parsed)
		}
	}
	if _, err := ParsePhase("counting"); err == nil {
		t.Error("Expected error for unknown phase")
	}
}
