// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// GetParticipant handles GET /election/participants/{identity}
func (h *ElectionHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	identity := r.PathValue("identity")
	p, err := h.election.Participant(caller, election.Identity(identity))
	if err != nil {
		writeElectionError(w, err)
		return
	}

	resp := models.ParticipantResponse{
		Identity:   identity,
		Registered: p.Registered,
		HasVoted:   p.HasVoted,
	}
	if p.HasVoted {
		idx := p.VotedProposalIndex
		resp.VotedProposalIndex = &idx
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// SubmitProposal handles POST /election/proposals
func (h *ElectionHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req models.SubmitProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	index, err := h.election.SubmitProposal(r.Context(), caller, req.Description)
	if err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitProposalResponse{
		ProposalIndex: index,
	})
}

// GetProposal handles GET /election/proposals/{index}
func (h *ElectionHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	p, err := h.election.Proposal(caller, index)
	if err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProposalResponse{
		Index:       index,
		Description: p.Description,
		VoteCount:   p.VoteCount,
	})
}

// CountProposals handles GET /election/proposals
func (h *ElectionHandler) CountProposals(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	n, err := h.election.ProposalCount(caller)
	if err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProposalCountResponse{Count: n})
}

// CastVote handles POST /election/votes
func (h *ElectionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ProposalIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_index is required")
		return
	}

	if err := h.election.CastVote(r.Context(), caller, *req.ProposalIndex); err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		ProposalIndex: *req.ProposalIndex,
		Message:       "Vote recorded",
	})
}

// GetWinner handles GET /election/winner
func (h *ElectionHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	index, p, err := h.election.WinningProposal(caller)
	if err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WinnerResponse{
		Winner: models.ProposalResponse{
			Index:       index,
			Description: p.Description,
			VoteCount:   p.VoteCount,
		},
	})
}
