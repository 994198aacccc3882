// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/middleware"
)

func NewRouter(e *election.Election, store *db.Store, record db.ElectionRecord, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	h := handlers.NewElectionHandler(e, store, record, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Coordinator views
	mux.HandleFunc("GET /election", middleware.WithLogging(h.GetElection))
	mux.HandleFunc("GET /election/events", middleware.WithLogging(h.ListEvents))

	// Registry
	mux.HandleFunc("POST /election/participants", middleware.WithLogging(h.RegisterParticipant))
	mux.HandleFunc("GET /election/participants/{identity}", middleware.WithLogging(h.GetParticipant))

	// Workflow (coordinator only)
	mux.HandleFunc("POST /election/proposals/open", middleware.WithLogging(h.OpenProposals))
	mux.HandleFunc("POST /election/proposals/close", middleware.WithLogging(h.CloseProposals))
	mux.HandleFunc("POST /election/voting/open", middleware.WithLogging(h.OpenVoting))
	mux.HandleFunc("POST /election/voting/close", middleware.WithLogging(h.CloseVoting))
	mux.HandleFunc("POST /election/tally", middleware.WithLogging(h.TallyResults))

	// Proposals
	mux.HandleFunc("POST /election/proposals", middleware.WithLogging(h.SubmitProposal))
	mux.HandleFunc("GET /election/proposals", middleware.WithLogging(h.CountProposals))
	mux.HandleFunc("GET /election/proposals/{index}", middleware.WithLogging(h.GetProposal))

	// Voting and results
	mux.HandleFunc("POST /election/votes", middleware.WithLogging(h.CastVote))
	mux.HandleFunc("GET /election/winner", middleware.WithLogging(h.GetWinner))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-elect API v1"))
	})

	return mux
}
