// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Elect API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(election, store, record, cfg)

# Endpoints

Health:

	GET /health

Coordinator (requires X-Coordinator-Key):

	GET  /election                  - Election info and state snapshot
	GET  /election/events?after=N   - Journal feed
	POST /election/participants     - Register participant
	POST /election/proposals/open   - Open proposals
	POST /election/proposals/close  - Close proposals
	POST /election/voting/open      - Open voting
	POST /election/voting/close     - Close voting
	POST /election/tally            - Tally results

Participants (X-Participant-ID, or the coordinator key once registered):

	GET  /election/participants/{identity} - Participant record
	POST /election/proposals               - Submit proposal
	GET  /election/proposals               - Proposal count
	GET  /election/proposals/{index}       - Proposal by index
	POST /election/votes                   - Cast vote
	GET  /election/winner                  - Winning proposal (tallied only)
*/
package router
