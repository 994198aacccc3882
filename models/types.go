package models

import (
	"time"

	"github.com/danielhkuo/quickly-elect/election"
)

// Request headers
const (
	HeaderCoordinatorKey = "X-Coordinator-Key"
	HeaderParticipantID  = "X-Participant-ID"
)

// Request types

type RegisterParticipantRequest struct {
	Identity string `json:"identity"`
}

type SubmitProposalRequest struct {
	Description string `json:"description"`
}

// Pointer so a missing index is distinguishable from index 0
type CastVoteRequest struct {
	ProposalIndex *int `json:"proposal_index"`
}

// Response types

type RegisterParticipantResponse struct {
	Identity string `json:"identity"`
}

type PhaseChangeResponse struct {
	PreviousPhase election.Phase `json:"previous_phase"`
	Phase         election.Phase `json:"phase"`
}

type SubmitProposalResponse struct {
	ProposalIndex int `json:"proposal_index"`
}

type CastVoteResponse struct {
	ProposalIndex int    `json:"proposal_index"`
	Message       string `json:"message"`
}

type ParticipantResponse struct {
	Identity           string `json:"identity"`
	Registered         bool   `json:"registered"`
	HasVoted           bool   `json:"has_voted"`
	VotedProposalIndex *int   `json:"voted_proposal_index,omitempty"` // only set once voted
}

type ProposalResponse struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
}

type ProposalCountResponse struct {
	Count int `json:"count"`
}

type WinnerResponse struct {
	Winner ProposalResponse `json:"winner"`
}

// Domain types

type ElectionInfo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CoordinatorID string    `json:"coordinator_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type ElectionResponse struct {
	Election ElectionInfo   `json:"election"`
	State    election.State `json:"state"`
}

type EventsResponse struct {
	Events  []election.Event `json:"events"`
	LastSeq int64            `json:"last_seq"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
