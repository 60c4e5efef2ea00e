package consensus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookupAndRemove(t *testing.T) {
	idx := NewIndex()
	p := testProposal(1, 3)
	idx.Insert(p)

	got, ok := idx.Lookup(p.VotingMessageID)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	// Reverse lookup by the original proposer message.
	got, ok = idx.LookupByOrigin(p.MessageID)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	_, ok = idx.Lookup("unknown")
	assert.False(t, ok)

	removed, ok := idx.Remove(p.VotingMessageID)
	require.True(t, ok)
	assert.Equal(t, p.ID, removed.ID)
	assert.Equal(t, 0, idx.Len())

	// Both keys are gone.
	_, ok = idx.Lookup(p.VotingMessageID)
	assert.False(t, ok)
	_, ok = idx.LookupByOrigin(p.MessageID)
	assert.False(t, ok)

	_, ok = idx.Remove(p.VotingMessageID)
	assert.False(t, ok)
}

func TestLoadIndexFromStore(t *testing.T) {
	store := newFakeStore()
	p1 := testProposal(1, 3)
	p2 := testProposal(2, 3)
	require.NoError(t, store.CreateProposal(context.Background(), p1))
	require.NoError(t, store.CreateProposal(context.Background(), p2))

	idx, err := LoadIndex(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	_, ok := idx.Lookup(p1.VotingMessageID)
	assert.True(t, ok)
	_, ok = idx.Lookup(p2.VotingMessageID)
	assert.True(t, ok)
}

func TestIndexActiveSnapshot(t *testing.T) {
	idx := NewIndex()
	idx.Insert(testProposal(1, 3))
	idx.Insert(testProposal(2, 3))

	active := idx.Active()
	assert.Len(t, active, 2)

	// The snapshot is detached from the index.
	idx.Remove("vm-1")
	assert.Len(t, active, 2)
}
