package discord

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{50, "50"},
		{12.5, "12.5"},
		{0.25, "0.25"},
		{1000, "1000"},
		{0, "0"},
		{-3.4, "-3.4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in), "amount %v", tt.in)
	}
}

func TestCountdownTag(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("<t:%d:R>", deadline.Unix()), CountdownTag(deadline))
}

func TestVoterMentions(t *testing.T) {
	voters := []types.Voter{
		{UserID: "111"},
		{UserID: "222"},
	}
	assert.Equal(t, "<@111>, <@222>", VoterMentions(voters))
	assert.Equal(t, "", VoterMentions(nil))
}

func TestMessageURL(t *testing.T) {
	assert.Equal(t,
		"https://discord.com/channels/g/c/m",
		MessageURL("g", "c", "m"))
}

func TestWrapURLsNoEmbed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare url gets wrapped",
			in:   "see https://discord.com/channels/1/2/3 for details",
			want: "see <https://discord.com/channels/1/2/3> for details",
		},
		{
			name: "already wrapped is untouched",
			in:   "see <https://example.com> now",
			want: "see <https://example.com> now",
		},
		{
			name: "no url",
			in:   "nothing here",
			want: "nothing here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapURLsNoEmbed(tt.in))
		})
	}
}
