package types

import "time"

// Proposal result codes, stored in proposal_histories.result.
type ProposalResult int

const (
	ResultAccepted ProposalResult = iota
	ResultCancelledByProposer
	ResultCancelledByThreshold
)

func (r ProposalResult) String() string {
	switch r {
	case ResultAccepted:
		return "accepted"
	case ResultCancelledByProposer:
		return "cancelled_by_proposer"
	case ResultCancelledByThreshold:
		return "cancelled_by_threshold"
	}
	return "unknown"
}

// Bounds for grant amounts, mirrored by the CHECK constraint on proposals.
const (
	MinGrantAmount = -1000000000
	MaxGrantAmount = 1000000000
)

// Proposals under lazy consensus voting
type Proposal struct {
	ID              uint64 `gorm:"primaryKey"`
	VotingMessageID string `gorm:"size:64;uniqueIndex;not null"`
	ChannelID       string `gorm:"size:64;not null"`
	MessageID       string `gorm:"size:64;not null"` // original proposer message
	AuthorID        string `gorm:"size:64;not null"`
	IsGrantless     bool   `gorm:"default:false"`
	Mention         string `gorm:"size:64"` // grantee, empty when grantless
	// Bounded to avoid overflow and display issues downstream
	Amount        float64 `gorm:"check:amount > -1000000000 AND amount < 1000000000"`
	Description   string  `gorm:"type:text"`
	TimerSeconds  int64   `gorm:"not null"`
	Threshold     int     `gorm:"not null"`
	SubmittedAt   time.Time
	BotResponseID string `gorm:"size:64"` // helper reply, used for onboarding error recovery

	Voters []Voter `gorm:"constraint:OnDelete:CASCADE"`
}

// Deadline is the moment the proposal is accepted unless cancelled first.
func (p *Proposal) Deadline() time.Time {
	return p.SubmittedAt.Add(time.Duration(p.TimerSeconds) * time.Second)
}

// HasVoter reports whether userID already has an objection recorded.
func (p *Proposal) HasVoter(userID string) bool {
	for i := range p.Voters {
		if p.Voters[i].UserID == userID {
			return true
		}
	}
	return false
}

// Voters holds one user's outstanding objection against one proposal.
// A user may hold at most one row per proposal.
type Voter struct {
	ID              uint64 `gorm:"primaryKey"`
	UserID          string `gorm:"size:64;not null;uniqueIndex:idx_voter_user_proposal"`
	VotingMessageID string `gorm:"size:64;index"` // denormalized parent key for reverse lookup
	ProposalID      uint64 `gorm:"not null;uniqueIndex:idx_voter_user_proposal"`
}

// ProposalHistory is the immutable record of a closed proposal. One row per
// terminal proposal, written in the same transaction that deletes the live
// row, and never updated afterwards.
type ProposalHistory struct {
	ID               uint64         `gorm:"primaryKey"` // the closed proposal's ID
	VotingMessageID  string         `gorm:"size:64;not null"`
	ChannelID        string         `gorm:"size:64;not null"`
	MessageID        string         `gorm:"size:64;not null"`
	AuthorID         string         `gorm:"size:64;not null"`
	IsGrantless      bool
	Mention          string         `gorm:"size:64"`
	Amount           float64
	Description      string         `gorm:"type:text"`
	TimerSeconds     int64
	Threshold        int
	SubmittedAt      time.Time
	Result           ProposalResult `gorm:"index"`
	VotingMessageURL string         `gorm:"size:256"`
	ClosedAt         time.Time
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}
