package consensus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

func TestArchiveCopiesProposalFields(t *testing.T) {
	store := newFakeStore()
	p := testProposal(7, 3)
	store.proposals[p.ID] = *p
	arch := NewArchiver(store, func(channelID, messageID string) string {
		return "https://discord.com/channels/guild/" + channelID + "/" + messageID
	})

	before := time.Now().UTC()
	h, err := arch.Archive(context.Background(), p, types.ResultAccepted)
	require.NoError(t, err)

	assert.Equal(t, p.ID, h.ID)
	assert.Equal(t, p.VotingMessageID, h.VotingMessageID)
	assert.Equal(t, p.AuthorID, h.AuthorID)
	assert.Equal(t, p.Amount, h.Amount)
	assert.Equal(t, p.Description, h.Description)
	assert.Equal(t, p.Threshold, h.Threshold)
	assert.Equal(t, types.ResultAccepted, h.Result)
	assert.Equal(t, "https://discord.com/channels/guild/chan-origin/vm-7", h.VotingMessageURL)
	assert.False(t, h.ClosedAt.Before(before))

	stored, ok := store.historyRow(p.ID)
	require.True(t, ok)
	assert.Equal(t, *h, stored)
}

func TestArchiveFailureIsTyped(t *testing.T) {
	store := newFakeStore()
	store.failArchive = errors.New("deadlock")
	p := testProposal(7, 3)
	arch := NewArchiver(store, nil)

	_, err := arch.Archive(context.Background(), p, types.ResultCancelledByThreshold)
	assert.ErrorIs(t, err, ErrArchiveFailed)
}

func TestArchiveTwiceViolatesInvariant(t *testing.T) {
	store := newFakeStore()
	p := testProposal(7, 3)
	arch := NewArchiver(store, nil)
	ctx := context.Background()

	_, err := arch.Archive(ctx, p, types.ResultAccepted)
	require.NoError(t, err)

	_, err = arch.Archive(ctx, p, types.ResultAccepted)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArchiveFailed)
}
