package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/lazy-consensus-bot/src/LCBot/config"
	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

func newTestBot(voters map[string]bool) *Bot {
	index := consensus.NewIndex()
	index.Insert(&types.Proposal{
		ID:              1,
		VotingMessageID: "vm-1",
		MessageID:       "orig-1",
		AuthorID:        "author",
	})
	engine := consensus.NewEngine(nil, index, consensus.NewRecoveryGate(),
		consensus.NewArchiver(nil, nil))
	return &Bot{
		engine:  engine,
		cfg:     config.Config{GuildID: "g", VotingChannelID: "voting", VoterRoleID: "voter"},
		hasRole: func(userID string) bool { return voters[userID] },
	}
}

func reaction(emoji, channelID, messageID, userID string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		Emoji:     discordgo.Emoji{Name: emoji},
		ChannelID: channelID,
		MessageID: messageID,
		UserID:    userID,
	}
}

func TestIsVotingReaction(t *testing.T) {
	b := newTestBot(map[string]bool{"member": true})

	assert.True(t, b.isVotingReaction(reaction(CancelEmoji, "voting", "vm-1", "member")))
	assert.False(t, b.isVotingReaction(reaction("👍", "voting", "vm-1", "member")))
	assert.False(t, b.isVotingReaction(reaction(CancelEmoji, "voting", "vm-1", "stranger")))
	assert.False(t, b.isVotingReaction(reaction(CancelEmoji, "general", "vm-1", "member")))
}

func TestMisplacedVoteTargetRequiresVoterRole(t *testing.T) {
	b := newTestBot(map[string]bool{"member": true})

	// A role-less user reacting on the original message gets no help.
	_, ok := b.misplacedVoteTarget(reaction(CancelEmoji, "general", "orig-1", "stranger"))
	assert.False(t, ok)

	p, ok := b.misplacedVoteTarget(reaction(CancelEmoji, "general", "orig-1", "member"))
	require.True(t, ok)
	assert.Equal(t, "vm-1", p.VotingMessageID)

	// Reactions in the voting channel or on unknown messages are not misplaced.
	_, ok = b.misplacedVoteTarget(reaction(CancelEmoji, "voting", "orig-1", "member"))
	assert.False(t, ok)
	_, ok = b.misplacedVoteTarget(reaction(CancelEmoji, "general", "orig-2", "member"))
	assert.False(t, ok)
}
