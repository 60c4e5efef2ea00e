package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/data"
)

// Config is the webserver's own slice of configuration.
type Config struct {
	Port      string
	JWTSecret string
	// APIKey authenticates collaborators (the proposal intake flow and
	// operators) in the challenge/verify handshake.
	APIKey string
}

func New(cfg Config, engine *consensus.Engine, store *data.ProposalStore, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, engine, store, rdb)
	return g
}

func attachRoutes(r *gin.Engine, cfg Config, engine *consensus.Engine, store *data.ProposalStore, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret), cfg.APIKey)
	propH := NewProposals(engine, store)
	histH := NewHistory(store)
	recH := NewRecovery(engine.Gate())

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/proposals", propH.Create)
		secured.GET("/proposals", propH.List)
		secured.GET("/history", histH.List)
	}

	admin := v1.Group("/admin")
	admin.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
	{
		admin.POST("/recovery", recH.Set)
		admin.GET("/recovery", recH.Get)
	}
}
