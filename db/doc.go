// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and the election
event journal.

# Connections

Open picks the driver from the configured database type:

	conn, err := db.Open("sqlite", "election.db")     // modernc.org/sqlite
	conn, err := db.Open("postgres", "postgres://...") // github.com/lib/pq

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: the single election and its coordinator
  - election_event: append-only journal, one row per accepted operation

	election 1──* election_event

Events are stored as JSON payloads keyed by (election_id, seq). The primary
key makes a second append at the same sequence number fail with
ErrEventConflict, under either driver.

# Journal

Store.Journal adapts the store to election.Journal. On startup the server
reads the journal back with ListEvents and rebuilds the in-memory election
with election.Restore.
*/
package db
