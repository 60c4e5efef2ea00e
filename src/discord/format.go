package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// FormatAmount prints a grant amount without trailing zeros ("50", "12.5").
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// CountdownTag renders a Discord relative timestamp ("in 3 days") for t.
func CountdownTag(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// Mention renders a user mention from a user ID.
func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// VoterMentions joins the mentions of all voters of a proposal.
func VoterMentions(voters []types.Voter) string {
	mentions := make([]string, 0, len(voters))
	for i := range voters {
		mentions = append(mentions, Mention(voters[i].UserID))
	}
	return strings.Join(mentions, ", ")
}
