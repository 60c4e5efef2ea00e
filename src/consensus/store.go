package consensus

import (
	"context"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Store is the durable side of the engine. The database is the source of
// truth; the in-memory index only ever reflects committed writes.
type Store interface {
	// ActiveProposals returns all live proposals with their voters, used to
	// rebuild the index at startup.
	ActiveProposals(ctx context.Context) ([]types.Proposal, error)

	CreateProposal(ctx context.Context, p *types.Proposal) error

	AddVoter(ctx context.Context, v *types.Voter) error
	DeleteVoter(ctx context.Context, voterID uint64) error

	// Archive commits the terminal transition as one transaction: insert the
	// history row, delete the proposal's voters, delete the proposal. Either
	// all three happen or none.
	Archive(ctx context.Context, p *types.Proposal, h *types.ProposalHistory) error
}
