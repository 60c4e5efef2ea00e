package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Scheduler detects proposals whose objection window elapsed and triggers
// the accept transition. It is the external timer collaborator of the
// engine: the engine never tracks time itself, it only ever sees
// FinalizeAccept calls. Races with cancelling votes are resolved by the
// engine (the loser observes ErrProposalNotFound).
//
// beforeAccept runs before the proposal is archived; any side effect the
// accept depends on (applying the grant) happens there. If it fails the
// proposal is left live and the sweep retries it on the next tick.
type Scheduler struct {
	engine       *consensus.Engine
	beforeAccept func(types.Proposal) error
	onAccepted   func(consensus.VoteOutcome)
	interval     time.Duration
}

func New(engine *consensus.Engine, interval time.Duration, beforeAccept func(types.Proposal) error, onAccepted func(consensus.VoteOutcome)) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Scheduler{engine: engine, beforeAccept: beforeAccept, onAccepted: onAccepted, interval: interval}
}

func (sc *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	// Run immediately to catch proposals that expired while we were down.
	sc.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping expiry scheduler")
			return
		case <-ticker.C:
			sc.sweep(ctx)
		}
	}
}

func (sc *Scheduler) sweep(ctx context.Context) {
	now := time.Now()
	for _, p := range sc.engine.Index().Active() {
		if now.Before(p.Deadline()) {
			continue
		}

		if sc.beforeAccept != nil {
			if err := sc.beforeAccept(p); err != nil {
				log.Printf("accept deferred, will retry: voting_message_id=%s err=%v", p.VotingMessageID, err)
				continue
			}
		}

		outcome, err := sc.engine.FinalizeAccept(ctx, p.VotingMessageID)
		switch {
		case errors.Is(err, consensus.ErrProposalNotFound):
			// Closed by a vote between the snapshot and now.
		case errors.Is(err, consensus.ErrArchiveFailed):
			log.Printf("CRITICAL: accept decided but not recorded, will retry: voting_message_id=%s err=%v",
				p.VotingMessageID, err)
		case err != nil:
			log.Printf("finalize accept failed: voting_message_id=%s err=%v", p.VotingMessageID, err)
		default:
			if sc.onAccepted != nil {
				sc.onAccepted(outcome)
			}
		}
	}
}
