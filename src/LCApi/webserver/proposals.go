package webserver

import (
	"context"
	"html"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// ProposalWriter is the slice of the store the intake handler needs.
type ProposalWriter interface {
	CreateProposal(ctx context.Context, p *types.Proposal) error
}

type Proposals struct {
	engine    *consensus.Engine
	store     ProposalWriter
	sanitizer *bluemonday.Policy
}

func NewProposals(engine *consensus.Engine, store ProposalWriter) Proposals {
	return Proposals{
		engine:    engine,
		store:     store,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Create registers a proposal that was already announced on Discord: the
// voting message exists, the objection window starts now. The row is
// committed before the index entry, so a crash between the two is repaired
// by the startup index load.
func (h Proposals) Create(c *gin.Context) {
	var req struct {
		VotingMessageID string  `json:"votingMessageId" binding:"required,max=64"`
		ChannelID       string  `json:"channelId" binding:"required,max=64"`
		MessageID       string  `json:"messageId" binding:"required,max=64"`
		AuthorID        string  `json:"authorId" binding:"required,max=64"`
		IsGrantless     bool    `json:"isGrantless"`
		Mention         string  `json:"mention" binding:"max=64"`
		Amount          float64 `json:"amount"`
		Description     string  `json:"description" binding:"required,min=1,max=10000"`
		TimerSeconds    int64   `json:"timerSeconds" binding:"required,min=60"`
		Threshold       int     `json:"threshold" binding:"required,min=1"`
		BotResponseID   string  `json:"botResponseId" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if req.IsGrantless {
		// A grantless proposal carries no amount; don't let one leak into
		// the row and trip the schema check later.
		req.Amount = 0
		req.Mention = ""
	} else {
		if req.Mention == "" {
			c.JSON(http.StatusBadRequest, gin.H{"err": "mention is required for grant proposals"})
			return
		}
		if req.Amount <= types.MinGrantAmount || req.Amount >= types.MaxGrantAmount {
			c.JSON(http.StatusBadRequest, gin.H{"err": "amount out of bounds"})
			return
		}
	}

	req.Description = h.sanitizer.Sanitize(req.Description)
	req.Mention = html.EscapeString(req.Mention)
	if !utf8.ValidString(req.Description) || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid description"})
		return
	}

	if _, exists := h.engine.Index().Lookup(req.VotingMessageID); exists {
		c.JSON(http.StatusConflict, gin.H{"err": "proposal already exists"})
		return
	}

	p := types.Proposal{
		VotingMessageID: req.VotingMessageID,
		ChannelID:       req.ChannelID,
		MessageID:       req.MessageID,
		AuthorID:        req.AuthorID,
		IsGrantless:     req.IsGrantless,
		Mention:         req.Mention,
		Amount:          req.Amount,
		Description:     req.Description,
		TimerSeconds:    req.TimerSeconds,
		Threshold:       req.Threshold,
		SubmittedAt:     time.Now().UTC(),
		BotResponseID:   req.BotResponseID,
	}
	if err := h.store.CreateProposal(c, &p); err != nil {
		log.Printf("create proposal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to store proposal"})
		return
	}
	h.engine.Index().Insert(&p)

	log.Printf("Registered proposal: voting_message_id=%s author=%s threshold=%d timer=%ds",
		p.VotingMessageID, p.AuthorID, p.Threshold, p.TimerSeconds)
	c.JSON(http.StatusCreated, gin.H{"id": p.ID, "deadline": p.Deadline()})
}

// List returns the live proposals from the index.
func (h Proposals) List(c *gin.Context) {
	active := h.engine.Index().Active()
	out := make([]gin.H, 0, len(active))
	for i := range active {
		p := &active[i]
		out = append(out, gin.H{
			"votingMessageId": p.VotingMessageID,
			"author":          p.AuthorID,
			"isGrantless":     p.IsGrantless,
			"description":     p.Description,
			"voters":          len(p.Voters),
			"threshold":       p.Threshold,
			"deadline":        p.Deadline(),
		})
	}
	c.JSON(http.StatusOK, out)
}
