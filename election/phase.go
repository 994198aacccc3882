// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "fmt"

// Phase is one stage of the linear election workflow.
type Phase int

const (
	RegisteringParticipants Phase = iota
	ProposalsOpen
	ProposalsClosed
	VotingOpen
	VotingClosed
	ResultsTallied
)

var phaseNames = map[Phase]string{
	RegisteringParticipants: "registering_participants",
	ProposalsOpen:           "proposals_open",
	ProposalsClosed:         "proposals_closed",
	VotingOpen:              "voting_open",
	VotingClosed:            "voting_closed",
	ResultsTallied:          "results_tallied",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for phase, name := range phaseNames {
		if name == s {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Terminal reports whether no further transition exists.
func (p Phase) Terminal() bool {
	return p == ResultsTallied
}

// transition names one coordinator-driven phase change.
type transition string

const (
	openProposals  transition = "open_proposals"
	closeProposals transition = "close_proposals"
	openVoting     transition = "open_voting"
	closeVoting    transition = "close_voting"
	tallyResults   transition = "tally_results"
)

type transitionKey struct {
	from Phase
	op   transition
}

// transitions is the complete table of allowed phase changes. Anything not
// listed here is rejected with ErrInvalidTransition.
var transitions = map[transitionKey]Phase{
	{RegisteringParticipants, openProposals}: ProposalsOpen,
	{ProposalsOpen, closeProposals}:          ProposalsClosed,
	{ProposalsClosed, openVoting}:            VotingOpen,
	{VotingOpen, closeVoting}:                VotingClosed,
	{VotingClosed, tallyResults}:             ResultsTallied,
}

func nextPhase(from Phase, op transition) (Phase, bool) {
	next, ok := transitions[transitionKey{from, op}]
	return next, ok
}
