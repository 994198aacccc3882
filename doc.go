// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Elect API server.

Quickly Elect runs a single election: a coordinator registers participants,
participants submit proposals and then each cast one vote, and the proposal
with the most votes wins.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=election.db COORDINATOR_ID=alice COORDINATOR_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -coordinator alice

Variables from a .env file in the working directory are loaded first and never
override the real environment.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - COORDINATOR_ID (-coordinator): Identity of the election coordinator
  - COORDINATOR_KEY_SALT (-coordinator-salt): Secret for coordinator key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ELECTION_TITLE (-title): Display title (default: Election)

# Startup

On first start the election row is created and the coordinator key is
logged. On every start the event journal is replayed to rebuild the state
machine before the server accepts requests.

# Architecture

  - election: The state machine (phases, registry, proposals, tally)
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Coordinator key generation and validation
  - db: Schema, election row and event journal
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
