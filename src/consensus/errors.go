package consensus

import "errors"

// Typed failures returned by engine operations. Callers are expected to
// match with errors.Is: NotFound and DuplicateVote are benign under
// concurrent delivery, RecoveryInProgress requires the caller to undo any
// external side effect, ArchiveFailed means the terminal transition did not
// happen and the proposal is still live.
var (
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrVoterNotFound      = errors.New("voter not found")
	ErrDuplicateVote      = errors.New("user already voted on this proposal")
	ErrRecoveryInProgress = errors.New("voting paused: recovery in progress")
	ErrArchiveFailed      = errors.New("failed to archive proposal")
	ErrInvariantViolation = errors.New("invariant violation")
)
