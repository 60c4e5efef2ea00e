package bot

// Emoji used by the voting flow.
const (
	CancelEmoji       = "❌"
	AcceptedReaction  = "✅"
	HoorayReaction    = "🎉"
	CancelledReaction = "❌"
)

// Heart emoji the bot mirrors on non-voting messages.
var heartEmojis = map[string]bool{
	"❤️": true,
	"💚": true,
	"💙": true,
	"💛": true,
	"🧡": true,
	"💜": true,
}

// User-facing message templates. Dynamic parts are filled with fmt.Sprintf.
const (
	msgVotedIncorrectly = "Hey! Looks like you tried to vote on the proposal message itself. " +
		"To object, add %s to the voting message instead: %s"

	msgVotingPaused = "Voting is paused for a short while because the system is recovering its state. " +
		"Your reaction was removed; please try again in a few minutes."

	msgVoteCounted = "Your objection to %s's proposal was counted. The proposal closes %s. " +
		"If enough members object before then, it will be cancelled. You can withdraw your vote by " +
		"removing the %s reaction: %s"

	msgCancelledByProposer = "Proposal was withdrawn by its author %s. Original message: %s"

	msgCancelledByThreshold = "Proposal was cancelled: %d members objected (%s). Original message: %s"

	msgAcceptedWithGrant = "Accepted: grant of %s to %s. %s\nOriginal message: %s"

	msgAcceptedGrantless = "Accepted: %s's proposal. %s\nOriginal message: %s"

	msgGrantCommand = "!grant %s %s %s\nVoting: %s"

	msgProposerCancelledSelf = "%s, your proposal was cancelled on your own request."

	msgProposerCancelledThreshold = "%s, your proposal was cancelled because %d members objected: %s"
)
