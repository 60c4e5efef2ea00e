package consensus

import (
	"context"
	"fmt"
	"time"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Archiver turns a terminal proposal into its immutable history record.
// The history insert and the proposal (plus voters) delete are one store
// transaction; the caller removes the index entry only after this returns
// nil, still inside the proposal's critical section.
type Archiver struct {
	store Store
	// permalink builds the voting message URL recorded in history.
	permalink func(channelID, messageID string) string
}

func NewArchiver(store Store, permalink func(channelID, messageID string) string) *Archiver {
	if permalink == nil {
		permalink = func(string, string) string { return "" }
	}
	return &Archiver{store: store, permalink: permalink}
}

// Archive commits the history row and deletes the live proposal. On error
// the proposal is untouched and must remain live.
func (a *Archiver) Archive(ctx context.Context, p *types.Proposal, result types.ProposalResult) (*types.ProposalHistory, error) {
	h := &types.ProposalHistory{
		ID:               p.ID,
		VotingMessageID:  p.VotingMessageID,
		ChannelID:        p.ChannelID,
		MessageID:        p.MessageID,
		AuthorID:         p.AuthorID,
		IsGrantless:      p.IsGrantless,
		Mention:          p.Mention,
		Amount:           p.Amount,
		Description:      p.Description,
		TimerSeconds:     p.TimerSeconds,
		Threshold:        p.Threshold,
		SubmittedAt:      p.SubmittedAt,
		Result:           result,
		VotingMessageURL: a.permalink(p.ChannelID, p.VotingMessageID),
		ClosedAt:         time.Now().UTC(),
	}
	if err := a.store.Archive(ctx, p, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}
	return h, nil
}
