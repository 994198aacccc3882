// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

var errCoordinatorKeyRequired = errors.New("coordinator identity requires " + models.HeaderCoordinatorKey)

type ElectionHandler struct {
	election *election.Election
	store    *db.Store
	record   db.ElectionRecord
	cfg      cliparse.Config
}

func NewElectionHandler(e *election.Election, store *db.Store, record db.ElectionRecord, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{election: e, store: store, record: record, cfg: cfg}
}

// callerIdentity resolves who is making the request. A valid coordinator key
// makes the caller the coordinator; otherwise X-Participant-ID is taken as
// asserted, except that it may not name the coordinator.
func (h *ElectionHandler) callerIdentity(r *http.Request) (election.Identity, error) {
	if key := r.Header.Get(models.HeaderCoordinatorKey); key != "" {
		if err := auth.ValidateCoordinatorKey(h.record.ID, h.record.CoordinatorID, key, h.cfg.CoordinatorKeySalt); err != nil {
			return "", err
		}
		return election.Identity(h.record.CoordinatorID), nil
	}

	id := r.Header.Get(models.HeaderParticipantID)
	if id == h.record.CoordinatorID {
		return "", errCoordinatorKeyRequired
	}
	return election.Identity(id), nil
}

// authenticate writes a 401 and returns false when the caller cannot be
// resolved.
func (h *ElectionHandler) authenticate(w http.ResponseWriter, r *http.Request) (election.Identity, bool) {
	caller, err := h.callerIdentity(r)
	if err != nil {
		slog.Warn("rejected caller", "error", err, "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return "", false
	}
	return caller, true
}

// writeElectionError maps state machine errors onto HTTP statuses.
func writeElectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, election.ErrNotAuthorized), errors.Is(err, election.ErrNotAVoter):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, election.ErrIndexOutOfRange):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, election.ErrEmptyProposal), errors.Is(err, election.ErrEmptyIdentity):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, election.ErrInvalidPhase),
		errors.Is(err, election.ErrAlreadyRegistered),
		errors.Is(err, election.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("election operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetElection handles GET /election
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if caller != h.election.Coordinator() {
		writeElectionError(w, election.ErrNotAuthorized)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionResponse{
		Election: h.info(),
		State:    h.election.Snapshot(),
	})
}

// ListEvents handles GET /election/events?after=N
func (h *ElectionHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if caller != h.election.Coordinator() {
		writeElectionError(w, election.ErrNotAuthorized)
		return
	}

	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "after must be a non-negative integer")
			return
		}
		after = n
	}

	events, err := h.store.ListEvents(r.Context(), h.record.ID, after)
	if err != nil {
		slog.Error("failed to list events", "election_id", h.record.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	lastSeq := after
	if len(events) > 0 {
		lastSeq = events[len(events)-1].Seq
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventsResponse{
		Events:  events,
		LastSeq: lastSeq,
	})
}

func (h *ElectionHandler) info() models.ElectionInfo {
	return models.ElectionInfo{
		ID:            h.record.ID,
		Title:         h.record.Title,
		CoordinatorID: h.record.CoordinatorID,
		CreatedAt:     h.record.CreatedAt,
	}
}
