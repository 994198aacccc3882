// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterParticipantRequest: identity
  - SubmitProposalRequest: description
  - CastVoteRequest: proposal_index

# Response Types

Types for JSON responses:

  - RegisterParticipantResponse: identity
  - PhaseChangeResponse: previous_phase, phase
  - SubmitProposalResponse: proposal_index
  - CastVoteResponse: proposal_index, message
  - ParticipantResponse: identity, registered, has_voted, voted_proposal_index
  - ProposalResponse: index, description, vote_count
  - ProposalCountResponse: count
  - WinnerResponse: winner
  - ElectionResponse: election, state
  - EventsResponse: events, last_seq
  - ErrorResponse: error, message

# Headers

	HeaderCoordinatorKey = "X-Coordinator-Key"
	HeaderParticipantID  = "X-Participant-ID"

Phases are encoded as their snake_case names (see election.Phase).
*/
package models
