package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
)

// Recovery is the operator surface for the voting pause.
type Recovery struct {
	gate *consensus.RecoveryGate
}

func NewRecovery(gate *consensus.RecoveryGate) Recovery {
	return Recovery{gate: gate}
}

func (h Recovery) Set(c *gin.Context) {
	var req struct {
		InProgress *bool `json:"inProgress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	h.gate.Set(*req.InProgress)
	log.Printf("Recovery mode set to %v by %v", *req.InProgress, c.GetString("client"))
	c.JSON(http.StatusOK, gin.H{"inProgress": h.gate.InProgress()})
}

func (h Recovery) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"inProgress": h.gate.InProgress()})
}
