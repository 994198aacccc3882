// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
)

// TestCoordinator is the coordinator identity used by GetTestConfig
const TestCoordinator = "test-coordinator"

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema.
// The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "election.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file:test.db",
		DatabaseType:       cliparse.DatabaseSQLite,
		CoordinatorKeySalt: "test-coordinator-salt",
		CoordinatorID:      TestCoordinator,
		ElectionTitle:      "Test Election",
	}
}

// TestElection bundles a stored election with its live state machine
type TestElection struct {
	Store          *db.Store
	Record         db.ElectionRecord
	Election       *election.Election
	CoordinatorKey string
}

// Coordinator returns the configured coordinator identity
func (te *TestElection) Coordinator() election.Identity {
	return election.Identity(te.Record.CoordinatorID)
}

// CreateTestElection loads or creates the election row and restores its
// journal, the same way the server does on start.
func CreateTestElection(t *testing.T, conn *sql.DB, cfg cliparse.Config) *TestElection {
	t.Helper()
	ctx := context.Background()

	store := db.NewStore(conn)
	rec, _, err := store.LoadOrCreateElection(ctx, cfg.CoordinatorID, cfg.ElectionTitle)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	events, err := store.ListEvents(ctx, rec.ID, 0)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}

	e, err := election.Restore(election.Identity(rec.CoordinatorID), events, election.Options{
		Journal: store.Journal(rec.ID),
	})
	if err != nil {
		t.Fatalf("Failed to restore election: %v", err)
	}

	return &TestElection{
		Store:          store,
		Record:         rec,
		Election:       e,
		CoordinatorKey: auth.GenerateCoordinatorKey(rec.ID, rec.CoordinatorID, cfg.CoordinatorKeySalt),
	}
}

// RegisterTestParticipants registers each identity as the coordinator
func RegisterTestParticipants(t *testing.T, te *TestElection, identities ...election.Identity) {
	t.Helper()
	for _, id := range identities {
		if err := te.Election.Register(context.Background(), te.Coordinator(), id); err != nil {
			t.Fatalf("Failed to register %q: %v", id, err)
		}
	}
}

// AdvanceTestElection runs phase transitions until the election reaches target
func AdvanceTestElection(t *testing.T, te *TestElection, target election.Phase) {
	t.Helper()
	ctx := context.Background()
	coordinator := te.Coordinator()

	steps := map[election.Phase]func(context.Context, election.Identity) error{
		election.RegisteringParticipants: te.Election.OpenProposals,
		election.ProposalsOpen:           te.Election.CloseProposals,
		election.ProposalsClosed:         te.Election.OpenVoting,
		election.VotingOpen:              te.Election.CloseVoting,
		election.VotingClosed:            te.Election.TallyResults,
	}

	for {
		current := te.Election.Snapshot().Phase
		if current == target {
			return
		}
		step, ok := steps[current]
		if !ok {
			t.Fatalf("Cannot advance election from %s to %s", current, target)
		}
		if err := step(ctx, coordinator); err != nil {
			t.Fatalf("Failed to leave %s: %v", current, err)
		}
	}
}

// SubmitTestProposal submits a proposal and returns its index
func SubmitTestProposal(t *testing.T, te *TestElection, caller election.Identity, description string) int {
	t.Helper()
	index, err := te.Election.SubmitProposal(context.Background(), caller, description)
	if err != nil {
		t.Fatalf("Failed to submit proposal %q: %v", description, err)
	}
	return index
}

// CastTestVote casts caller's vote for index
func CastTestVote(t *testing.T, te *TestElection, caller election.Identity, index int) {
	t.Helper()
	if err := te.Election.CastVote(context.Background(), caller, index); err != nil {
		t.Fatalf("Failed to cast vote for %q: %v", caller, err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
