// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Elect API.

ElectionHandler wraps the running election.Election together with the store
and the persisted election record:

	h := handlers.NewElectionHandler(e, store, record, cfg)

# Caller Identity

Each request names its caller through headers. A valid X-Coordinator-Key
makes the caller the coordinator. Otherwise X-Participant-ID is used as is;
naming the coordinator without the key is rejected with 401.

# Error Mapping

	ErrNotAuthorized, ErrNotAVoter              → 403
	ErrInvalidPhase (and wrapped phase errors)  → 409
	ErrAlreadyRegistered, ErrAlreadyVoted       → 409
	ErrEmptyProposal, ErrEmptyIdentity          → 400
	ErrIndexOutOfRange                          → 404

Anything else is logged and returned as 500.
*/
package handlers
