// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthorized     = errors.New("caller is not the coordinator")
	ErrNotAVoter         = errors.New("caller is not a registered participant")
	ErrAlreadyRegistered = errors.New("participant is already registered")
	ErrAlreadyVoted      = errors.New("participant has already voted")
	ErrEmptyProposal     = errors.New("proposal description is empty")
	ErrEmptyIdentity     = errors.New("identity is empty")
	ErrIndexOutOfRange   = errors.New("proposal index out of range")

	// ErrInvalidPhase is the parent of every phase-gating error; match it
	// with errors.Is to catch any of the specific variants below.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")

	ErrRegistrationClosed = fmt.Errorf("%w: registration is closed", ErrInvalidPhase)
	ErrProposalsNotOpen   = fmt.Errorf("%w: proposals are not open", ErrInvalidPhase)
	ErrVotingNotOpen      = fmt.Errorf("%w: voting is not open", ErrInvalidPhase)
	ErrResultsNotTallied  = fmt.Errorf("%w: results are not tallied", ErrInvalidPhase)
	ErrInvalidTransition  = fmt.Errorf("%w: invalid phase transition", ErrInvalidPhase)
)
