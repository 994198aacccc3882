// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// RegisterParticipant handles POST /election/participants
func (h *ElectionHandler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req models.RegisterParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.election.Register(r.Context(), caller, election.Identity(req.Identity)); err != nil {
		writeElectionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterParticipantResponse{
		Identity: req.Identity,
	})
}

// OpenProposals handles POST /election/proposals/open
func (h *ElectionHandler) OpenProposals(w http.ResponseWriter, r *http.Request) {
	h.changePhase(w, r, election.RegisteringParticipants, h.election.OpenProposals)
}

// CloseProposals handles POST /election/proposals/close
func (h *ElectionHandler) CloseProposals(w http.ResponseWriter, r *http.Request) {
	h.changePhase(w, r, election.ProposalsOpen, h.election.CloseProposals)
}

// OpenVoting handles POST /election/voting/open
func (h *ElectionHandler) OpenVoting(w http.ResponseWriter, r *http.Request) {
	h.changePhase(w, r, election.ProposalsClosed, h.election.OpenVoting)
}

// CloseVoting handles POST /election/voting/close
func (h *ElectionHandler) CloseVoting(w http.ResponseWriter, r *http.Request) {
	h.changePhase(w, r, election.VotingOpen, h.election.CloseVoting)
}

// TallyResults handles POST /election/tally
func (h *ElectionHandler) TallyResults(w http.ResponseWriter, r *http.Request) {
	h.changePhase(w, r, election.VotingClosed, h.election.TallyResults)
}

// changePhase runs one transition. Each transition has exactly one
// predecessor, so a successful run moved the election from `from` to the
// phase after it.
func (h *ElectionHandler) changePhase(w http.ResponseWriter, r *http.Request, from election.Phase, run func(context.Context, election.Identity) error) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := run(r.Context(), caller); err != nil {
		writeElectionError(w, err)
		return
	}

	slog.Info("phase advanced", "election_id", h.record.ID, "from", from.String(), "to", (from + 1).String())

	middleware.JSONResponse(w, http.StatusOK, models.PhaseChangeResponse{
		PreviousPhase: from,
		Phase:         from + 1,
	})
}
