package webserver

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

// HistoryLister is the slice of the store the history handler needs.
type HistoryLister interface {
	ListHistory(ctx context.Context, result *types.ProposalResult) ([]types.ProposalHistory, error)
}

type History struct {
	store HistoryLister
}

func NewHistory(store HistoryLister) History {
	return History{store: store}
}

// List returns closed proposals, optionally filtered with ?result=accepted,
// cancelled_by_proposer or cancelled_by_threshold.
func (h History) List(c *gin.Context) {
	var filter *types.ProposalResult
	switch c.Query("result") {
	case "":
	case "accepted":
		r := types.ResultAccepted
		filter = &r
	case "cancelled_by_proposer":
		r := types.ResultCancelledByProposer
		filter = &r
	case "cancelled_by_threshold":
		r := types.ResultCancelledByThreshold
		filter = &r
	default:
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown result filter"})
		return
	}

	rows, err := h.store.ListHistory(c, filter)
	if err != nil {
		log.Printf("list history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to load history"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, gin.H{
			"votingMessageId":  r.VotingMessageID,
			"votingMessageUrl": r.VotingMessageURL,
			"author":           r.AuthorID,
			"isGrantless":      r.IsGrantless,
			"description":      r.Description,
			"result":           r.Result.String(),
			"closedAt":         r.ClosedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
