package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/lazy-consensus-bot/src/LCBot/config"
	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/data"
	"github.com/stake-plus/lazy-consensus-bot/src/discord"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// Bot is the Discord boundary of the consensus engine. It validates
// reaction events, feeds them to the engine, and performs all messaging
// side effects with the data the engine returns, outside the engine's
// critical sections.
type Bot struct {
	session *discordgo.Session
	engine  *consensus.Engine
	rdb     *redis.Client
	cfg     config.Config
	hasRole func(userID string) bool
}

func New(cfg config.Config, engine *consensus.Engine, rdb *redis.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{session: dg, engine: engine, rdb: rdb, cfg: cfg}
	b.hasRole = func(userID string) bool {
		return discord.HasRole(dg, cfg.GuildID, userID, cfg.VoterRoleID)
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleReactionAdd)
	dg.AddHandler(b.handleReactionRemove)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages

	return b, nil
}

func (b *Bot) Start() error { return b.session.Open() }

func (b *Bot) Stop() error { return b.session.Close() }

func (b *Bot) Session() *discordgo.Session { return b.session }

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Lazy consensus bot logged in as %s", event.User.Username)
}

// isVotingReaction checks emoji, voter role and channel. It does not check
// the proposal itself; the engine owns that.
func (b *Bot) isVotingReaction(r *discordgo.MessageReaction) bool {
	if r.Emoji.Name != CancelEmoji {
		return false
	}
	if !b.hasRole(r.UserID) {
		return false
	}
	return r.ChannelID == b.cfg.VotingChannelID
}

// misplacedVoteTarget resolves a voting reaction placed on the original
// proposer message instead of the voting message. The reactor must carry
// the voter role, same check as a real vote.
func (b *Bot) misplacedVoteTarget(r *discordgo.MessageReaction) (*types.Proposal, bool) {
	if r.Emoji.Name != CancelEmoji || r.ChannelID == b.cfg.VotingChannelID {
		return nil, false
	}
	if !b.hasRole(r.UserID) {
		return nil, false
	}
	return b.engine.Index().LookupByOrigin(r.MessageID)
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	// A voting reaction on the original proposer message means the user
	// tried to vote in the wrong place; point them at the voting message.
	if p, ok := b.misplacedVoteTarget(r.MessageReaction); ok {
		b.helpMisplacedVote(r, p)
		return
	}

	if !b.isVotingReaction(r.MessageReaction) {
		// Double heart reactions, just for fun
		if heartEmojis[r.Emoji.Name] {
			if err := s.MessageReactionAdd(r.ChannelID, r.MessageID, r.Emoji.APIName()); err != nil {
				log.Printf("mirror heart reaction: %v", err)
			}
		}
		return
	}

	ctx := context.Background()
	outcome, err := b.engine.VoteAdd(ctx, r.MessageID, r.UserID)
	switch {
	case errors.Is(err, consensus.ErrRecoveryInProgress):
		b.rejectDuringRecovery(r)
	case errors.Is(err, consensus.ErrProposalNotFound):
		// Reaction on a non-proposal or already-closed message; nothing to do.
	case errors.Is(err, consensus.ErrDuplicateVote):
		log.Printf("Warning: duplicate vote ignored: message=%s user=%s", r.MessageID, r.UserID)
	case errors.Is(err, consensus.ErrArchiveFailed):
		log.Printf("CRITICAL: cancellation decided but not recorded: message=%s user=%s err=%v",
			r.MessageID, r.UserID, err)
	case err != nil:
		log.Printf("vote add failed: message=%s user=%s err=%v", r.MessageID, r.UserID, err)
	case outcome.Closed:
		b.announceCancelled(outcome)
		b.publishEvent(ctx, "proposal_closed", outcome)
	default:
		b.notifyVoteCounted(r.UserID, outcome)
		b.publishEvent(ctx, "vote_counted", outcome)
	}
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	if !b.isVotingReaction(r.MessageReaction) {
		return
	}

	ctx := context.Background()
	removed, err := b.engine.VoteRemove(ctx, r.MessageID, r.UserID)
	switch {
	case errors.Is(err, consensus.ErrProposalNotFound):
		// Withdrawal raced a close; expected, nothing to do.
	case errors.Is(err, consensus.ErrVoterNotFound):
		log.Printf("Warning: withdrawal without a recorded vote: message=%s user=%s", r.MessageID, r.UserID)
	case err != nil:
		log.Printf("vote remove failed: message=%s user=%s err=%v", r.MessageID, r.UserID, err)
	case removed:
		log.Printf("Removed vote of user=%s against voting_message_id=%s", r.UserID, r.MessageID)
	}
}

func (b *Bot) helpMisplacedVote(r *discordgo.MessageReactionAdd, p *types.Proposal) {
	// Remove the stray reaction so other members aren't confused.
	if err := b.session.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID); err != nil {
		log.Printf("remove misplaced reaction: %v", err)
	}
	votingURL := discord.MessageURL(b.cfg.GuildID, b.cfg.VotingChannelID, p.VotingMessageID)
	dm := fmt.Sprintf(msgVotedIncorrectly, CancelEmoji, votingURL)
	if err := discord.SendDM(b.session, r.UserID, dm); err != nil {
		log.Printf("dm misplaced-vote help: %v", err)
	}
}

func (b *Bot) rejectDuringRecovery(r *discordgo.MessageReactionAdd) {
	if err := discord.SendDM(b.session, r.UserID, msgVotingPaused); err != nil {
		log.Printf("dm recovery notice: %v", err)
	}
	// Undo the external side effect of the rejected vote.
	if err := b.session.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID); err != nil {
		log.Printf("remove reaction during recovery: %v", err)
	}
	log.Printf("Rejected vote from user=%s: recovery in progress", r.UserID)
}

func (b *Bot) notifyVoteCounted(userID string, o consensus.VoteOutcome) {
	votingURL := discord.MessageURL(b.cfg.GuildID, b.cfg.VotingChannelID, o.Proposal.VotingMessageID)
	dm := fmt.Sprintf(msgVoteCounted,
		discord.Mention(o.Proposal.AuthorID),
		discord.CountdownTag(o.Deadline),
		CancelEmoji,
		votingURL,
	)
	if err := discord.SendDM(b.session, userID, dm); err != nil {
		log.Printf("dm vote counted: %v", err)
	}
	log.Printf("Added vote of user=%s, total %d voters against voting_message_id=%s",
		userID, o.VoterCount, o.Proposal.VotingMessageID)
}

// announceCancelled edits the voting message, marks the original message and
// replies to the proposer. All three are best-effort: the terminal state is
// already durable.
func (b *Bot) announceCancelled(o consensus.VoteOutcome) {
	p := o.Proposal
	originURL := discord.MessageURL(b.cfg.GuildID, p.ChannelID, p.MessageID)

	var edit, reply string
	switch o.Result {
	case types.ResultCancelledByProposer:
		edit = fmt.Sprintf(msgCancelledByProposer, discord.Mention(p.AuthorID), originURL)
		reply = fmt.Sprintf(msgProposerCancelledSelf, discord.Mention(p.AuthorID))
	case types.ResultCancelledByThreshold:
		voters := discord.VoterMentions(p.Voters)
		edit = fmt.Sprintf(msgCancelledByThreshold, p.Threshold, voters, originURL)
		reply = fmt.Sprintf(msgProposerCancelledThreshold, discord.Mention(p.AuthorID), p.Threshold, voters)
	}

	if _, err := b.session.ChannelMessageEdit(b.cfg.VotingChannelID, p.VotingMessageID, discord.WrapURLsNoEmbed(edit)); err != nil {
		log.Printf("edit voting message: %v", err)
	}

	if original := discord.GetMessage(b.session, p.ChannelID, p.MessageID); original != nil {
		if err := b.session.MessageReactionAdd(p.ChannelID, p.MessageID, CancelledReaction); err != nil {
			log.Printf("react on original message: %v", err)
		}
		// Reply in the original channel unless it is the voting channel itself.
		if p.ChannelID != b.cfg.VotingChannelID {
			if _, err := b.session.ChannelMessageSendReply(p.ChannelID, discord.WrapURLsNoEmbed(reply), original.Reference()); err != nil {
				log.Printf("reply to proposer: %v", err)
			}
		}
	}

	log.Printf("Cancelled proposal (%s). voting_message_id=%s", o.Result, p.VotingMessageID)
}

// ApplyGrant sends the grant command for a proposal about to be accepted.
// It runs before the proposal is archived: returning an error keeps the
// proposal live so the expiry sweep retries the grant later. Grantless
// proposals have nothing to apply.
func (b *Bot) ApplyGrant(p types.Proposal) error {
	if p.IsGrantless {
		return nil
	}
	votingURL := discord.MessageURL(b.cfg.GuildID, b.cfg.VotingChannelID, p.VotingMessageID)
	grantMsg := fmt.Sprintf(msgGrantCommand, p.Mention, discord.FormatAmount(p.Amount), p.Description, votingURL)
	if _, err := b.session.ChannelMessageSend(b.cfg.GrantChannelID, grantMsg); err != nil {
		log.Printf("grant apply failed, accept deferred: voting_message_id=%s err=%v", p.VotingMessageID, err)
		return fmt.Errorf("apply grant: %w", err)
	}
	return nil
}

// AnnounceAccepted updates all messages after the engine archived the
// proposal as accepted. The grant itself was already applied by ApplyGrant.
func (b *Bot) AnnounceAccepted(o consensus.VoteOutcome) {
	p := o.Proposal
	originURL := discord.MessageURL(b.cfg.GuildID, p.ChannelID, p.MessageID)

	var edit string
	if p.IsGrantless {
		edit = fmt.Sprintf(msgAcceptedGrantless, discord.Mention(p.AuthorID), p.Description, originURL)
	} else {
		edit = fmt.Sprintf(msgAcceptedWithGrant, discord.FormatAmount(p.Amount), p.Mention, p.Description, originURL)
	}
	if _, err := b.session.ChannelMessageEdit(b.cfg.VotingChannelID, p.VotingMessageID, discord.WrapURLsNoEmbed(edit)); err != nil {
		log.Printf("edit voting message: %v", err)
	}

	for _, emoji := range []string{AcceptedReaction, HoorayReaction} {
		if err := b.session.MessageReactionAdd(b.cfg.VotingChannelID, p.VotingMessageID, emoji); err != nil {
			log.Printf("react on voting message: %v", err)
		}
	}

	if original := discord.GetMessage(b.session, p.ChannelID, p.MessageID); original != nil {
		if err := b.session.MessageReactionAdd(p.ChannelID, p.MessageID, AcceptedReaction); err != nil {
			log.Printf("react on original message: %v", err)
		}
	} else {
		log.Printf("Warning: original proposal message was removed. message_id=%s", p.MessageID)
	}

	b.publishEvent(context.Background(), "proposal_closed", o)
	log.Printf("Successfully approved proposal. voting_message_id=%s", p.VotingMessageID)
}

func (b *Bot) publishEvent(ctx context.Context, kind string, o consensus.VoteOutcome) {
	if b.rdb == nil {
		return
	}
	payload := map[string]interface{}{
		"kind":              kind,
		"voting_message_id": o.Proposal.VotingMessageID,
		"author":            o.Proposal.AuthorID,
		"voters":            o.VoterCount,
	}
	if o.Closed {
		payload["result"] = o.Result.String()
	}
	if err := data.PublishEvent(ctx, b.rdb, payload); err != nil {
		log.Printf("publish event: %v", err)
	}
}
