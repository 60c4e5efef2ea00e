package webserver

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/lazy-consensus-bot/src/data"
)

type Auth struct {
	rdb       *redis.Client
	jwtSecret []byte
	apiKey    string
}

func NewAuth(rdb *redis.Client, secret []byte, apiKey string) Auth {
	return Auth{rdb: rdb, jwtSecret: secret, apiKey: apiKey}
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		ClientID string `json:"clientId" binding:"required,min=3,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	log.Printf("Auth challenge for %s from IP %s", req.ClientID, c.ClientIP())

	nonce := uuid.NewString()
	if err := data.SetNonce(c, a.rdb, req.ClientID, nonce); err != nil {
		log.Printf("Failed to set nonce for %s: %v", req.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		ClientID string `json:"clientId" binding:"required"`
		Nonce    string `json:"nonce" binding:"required"`
		APIKey   string `json:"apiKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	nonce, err := data.GetAndDelNonce(c, a.rdb, req.ClientID)
	if err != nil || nonce != req.Nonce {
		log.Printf("Challenge mismatch for %s", req.ClientID)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "challenge expired or not found"})
		return
	}

	if a.apiKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(a.apiKey)) != 1 {
		log.Printf("Bad API key for %s", req.ClientID)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad credentials"})
		return
	}

	token, err := issueJWT(req.ClientID, a.jwtSecret)
	if err != nil {
		log.Printf("Failed to issue JWT for %s: %v", req.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	log.Printf("Successfully authenticated %s", req.ClientID)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
