// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - CoordinatorKeySalt: Secret for coordinator key HMAC (required)
  - CoordinatorID: Identity of the election coordinator (required)
  - ElectionTitle: Title stored with a newly created election (default: Election)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	-coordinator       Coordinator identity
	-title             Election title
	-coordinator-salt  Coordinator key salt

# Environment Variables

Environment variables are read first and CLI flags override them:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	COORDINATOR_ID       → -coordinator
	ELECTION_TITLE       → -title
	COORDINATOR_KEY_SALT → -coordinator-salt

LoadDotEnv can seed the environment from a .env file before parsing.
Variables already present in the environment are not overridden.

# Example

	// In main.go
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
