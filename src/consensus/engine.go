package consensus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Engine owns the lazy consensus decision logic: it records objections,
// applies the author and threshold cancellation rules, gates voting during
// recovery, and drives terminal proposals through the archiver. It performs
// no network I/O; callers do all messaging with the data in VoteOutcome,
// outside the per-proposal critical section.
type Engine struct {
	store    Store
	index    *Index
	gate     *RecoveryGate
	archiver *Archiver
	locks    *keyLocks
}

func NewEngine(store Store, index *Index, gate *RecoveryGate, archiver *Archiver) *Engine {
	return &Engine{
		store:    store,
		index:    index,
		gate:     gate,
		archiver: archiver,
		locks:    newKeyLocks(),
	}
}

func (e *Engine) Index() *Index { return e.index }

func (e *Engine) Gate() *RecoveryGate { return e.gate }

// VoteOutcome reports what a vote or expiry did, with a snapshot of the
// proposal taken inside the critical section so callers can format
// notifications without touching shared state.
type VoteOutcome struct {
	Proposal   types.Proposal
	VoterCount int
	Deadline   time.Time
	Closed     bool
	Result     types.ProposalResult
}

// VoteAdd records an objection by userID against the proposal behind
// votingMessageID. The author objecting cancels the proposal outright; the
// author rule wins even when the author's vote is the one that reaches the
// threshold. The vote is counted only after it is durably stored.
func (e *Engine) VoteAdd(ctx context.Context, votingMessageID, userID string) (VoteOutcome, error) {
	if e.gate.InProgress() {
		return VoteOutcome{}, ErrRecoveryInProgress
	}

	unlock := e.locks.Lock(votingMessageID)
	defer unlock()

	p, ok := e.index.Lookup(votingMessageID)
	if !ok {
		return VoteOutcome{}, ErrProposalNotFound
	}
	if p.HasVoter(userID) {
		return VoteOutcome{}, ErrDuplicateVote
	}

	voter := types.Voter{
		UserID:          userID,
		VotingMessageID: p.VotingMessageID,
		ProposalID:      p.ID,
	}
	if err := e.store.AddVoter(ctx, &voter); err != nil {
		return VoteOutcome{}, fmt.Errorf("store voter: %w", err)
	}
	count := e.index.AppendVoter(p, voter)

	if userID == p.AuthorID {
		return e.close(ctx, p, types.ResultCancelledByProposer, count)
	}
	if count >= p.Threshold {
		return e.close(ctx, p, types.ResultCancelledByThreshold, count)
	}

	return VoteOutcome{
		Proposal:   snapshot(p),
		VoterCount: count,
		Deadline:   p.Deadline(),
	}, nil
}

// VoteRemove withdraws an objection. Withdrawal never re-evaluates the
// threshold; a closed or unknown proposal is reported via the NotFound
// sentinels, which callers treat as benign races.
func (e *Engine) VoteRemove(ctx context.Context, votingMessageID, userID string) (bool, error) {
	unlock := e.locks.Lock(votingMessageID)
	defer unlock()

	p, ok := e.index.Lookup(votingMessageID)
	if !ok {
		return false, ErrProposalNotFound
	}

	at := -1
	for i := range p.Voters {
		if p.Voters[i].UserID == userID {
			at = i
			break
		}
	}
	if at < 0 {
		return false, ErrVoterNotFound
	}

	if err := e.store.DeleteVoter(ctx, p.Voters[at].ID); err != nil {
		return false, fmt.Errorf("delete voter: %w", err)
	}
	e.index.RemoveVoterAt(p, at)
	return true, nil
}

// FinalizeAccept closes a proposal whose timer elapsed with no cancellation.
// Called by the expiry scheduler; losing the race against a cancelling vote
// surfaces as ErrProposalNotFound and is a no-op.
func (e *Engine) FinalizeAccept(ctx context.Context, votingMessageID string) (VoteOutcome, error) {
	unlock := e.locks.Lock(votingMessageID)
	defer unlock()

	p, ok := e.index.Lookup(votingMessageID)
	if !ok {
		return VoteOutcome{}, ErrProposalNotFound
	}
	return e.close(ctx, p, types.ResultAccepted, len(p.Voters))
}

// close archives the proposal and removes it from the index. Caller holds
// the key lock. On archive failure the proposal stays live in both store
// and index, and the already-recorded voters are kept.
func (e *Engine) close(ctx context.Context, p *types.Proposal, result types.ProposalResult, count int) (VoteOutcome, error) {
	if _, err := e.archiver.Archive(ctx, p, result); err != nil {
		log.Printf("archive failed, proposal stays live: voting_message_id=%s result=%s err=%v",
			p.VotingMessageID, result, err)
		return VoteOutcome{}, err
	}
	e.index.Remove(p.VotingMessageID)
	log.Printf("closed proposal: voting_message_id=%s result=%s voters=%d",
		p.VotingMessageID, result, count)
	return VoteOutcome{
		Proposal:   snapshot(p),
		VoterCount: count,
		Deadline:   p.Deadline(),
		Closed:     true,
		Result:     result,
	}, nil
}

func snapshot(p *types.Proposal) types.Proposal {
	cp := *p
	cp.Voters = make([]types.Voter, len(p.Voters))
	copy(cp.Voters, p.Voters)
	return cp
}
