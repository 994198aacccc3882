// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the single-election state machine.

# Phases

An election moves through six phases, strictly in order:

	registering_participants → proposals_open → proposals_closed →
	voting_open → voting_closed → results_tallied

Each step is its own coordinator-only operation (OpenProposals,
CloseProposals, OpenVoting, CloseVoting, TallyResults). Calling one from the
wrong phase returns ErrInvalidTransition. OpenProposals also creates the
placeholder proposal "GENESIS" at index 0.

# Callers

Every operation takes the caller's Identity. Coordinator operations compare
it against the identity passed to New and fail with ErrNotAuthorized before
any other check. Participant operations and all queries require a registered
caller and fail with ErrNotAVoter otherwise; the coordinator is no exception
unless it registered itself.

# Tally

CastVote increments the target proposal and moves the leader only when the
new count is strictly greater than the leader's, so ties keep whichever
proposal reached the count first. WinningProposal reports the leader once
results are tallied.

# Events and Persistence

Accepted operations produce one Event each. The Event is appended to the
Journal before state changes; a Journal error rejects the operation and
leaves state untouched. Observers are notified afterwards.

	e := election.New("alice", election.Options{Journal: j, Observers: obs})

Restore rebuilds an Election from a journal by replaying events through the
same validation.

# Errors

Phase errors (ErrRegistrationClosed, ErrProposalsNotOpen, ErrVotingNotOpen,
ErrResultsNotTallied, ErrInvalidTransition) all match ErrInvalidPhase with
errors.Is.
*/
package election
