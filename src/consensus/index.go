package consensus

import (
	"context"
	"sync"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Index is the in-memory map of live proposals, keyed by voting message ID.
// A secondary map keyed by the original proposer message ID supports
// detecting reactions placed on the wrong message. Mutations happen only
// inside the engine's per-key critical sections, after the corresponding
// store write committed.
type Index struct {
	mu       sync.RWMutex
	byVoting map[string]*types.Proposal
	byOrigin map[string]*types.Proposal
}

func NewIndex() *Index {
	return &Index{
		byVoting: make(map[string]*types.Proposal),
		byOrigin: make(map[string]*types.Proposal),
	}
}

// LoadIndex rebuilds the index from the store's committed state.
func LoadIndex(ctx context.Context, store Store) (*Index, error) {
	proposals, err := store.ActiveProposals(ctx)
	if err != nil {
		return nil, err
	}
	idx := NewIndex()
	for i := range proposals {
		idx.Insert(&proposals[i])
	}
	return idx, nil
}

func (idx *Index) Lookup(votingMessageID string) (*types.Proposal, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	p, ok := idx.byVoting[votingMessageID]
	return p, ok
}

// LookupByOrigin finds a live proposal by the message that initiated it.
func (idx *Index) LookupByOrigin(messageID string) (*types.Proposal, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	p, ok := idx.byOrigin[messageID]
	return p, ok
}

func (idx *Index) Insert(p *types.Proposal) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byVoting[p.VotingMessageID] = p
	idx.byOrigin[p.MessageID] = p
}

// Remove drops a proposal from both maps and returns it, or false when no
// entry exists.
func (idx *Index) Remove(votingMessageID string) (*types.Proposal, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p, ok := idx.byVoting[votingMessageID]
	if !ok {
		return nil, false
	}
	delete(idx.byVoting, votingMessageID)
	delete(idx.byOrigin, p.MessageID)
	return p, true
}

// AppendVoter records v on p and returns the new count. The caller holds
// the proposal's key lock; taking the index lock as well keeps the mutation
// safe against concurrent Active snapshots.
func (idx *Index) AppendVoter(p *types.Proposal, v types.Voter) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p.Voters = append(p.Voters, v)
	return len(p.Voters)
}

// RemoveVoterAt drops the voter at position i. Caller holds the key lock.
func (idx *Index) RemoveVoterAt(p *types.Proposal, i int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	p.Voters = append(p.Voters[:i], p.Voters[i+1:]...)
}

// Active returns a snapshot of the live proposals.
func (idx *Index) Active() []types.Proposal {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]types.Proposal, 0, len(idx.byVoting))
	for _, p := range idx.byVoting {
		out = append(out, *p)
	}
	return out
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byVoting)
}
