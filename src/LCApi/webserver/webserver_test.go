package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/lazy-consensus-bot/src/consensus"
	"github.com/stake-plus/lazy-consensus-bot/src/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore backs the handlers in tests; it satisfies consensus.Store,
// ProposalWriter and HistoryLister.
type memStore struct {
	proposals []types.Proposal
	history   []types.ProposalHistory
	createErr error
	nextID    uint64
}

func (s *memStore) ActiveProposals(ctx context.Context) ([]types.Proposal, error) {
	return s.proposals, nil
}

func (s *memStore) CreateProposal(ctx context.Context, p *types.Proposal) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	p.ID = s.nextID
	s.proposals = append(s.proposals, *p)
	return nil
}

func (s *memStore) AddVoter(ctx context.Context, v *types.Voter) error { return nil }

func (s *memStore) DeleteVoter(ctx context.Context, voterID uint64) error { return nil }

func (s *memStore) Archive(ctx context.Context, p *types.Proposal, h *types.ProposalHistory) error {
	s.history = append(s.history, *h)
	return nil
}

func (s *memStore) ListHistory(ctx context.Context, result *types.ProposalResult) ([]types.ProposalHistory, error) {
	if result == nil {
		return s.history, nil
	}
	var out []types.ProposalHistory
	for _, h := range s.history {
		if h.Result == *result {
			out = append(out, h)
		}
	}
	return out, nil
}

func newTestEngine(store *memStore) *consensus.Engine {
	return consensus.NewEngine(store, consensus.NewIndex(), consensus.NewRecoveryGate(),
		consensus.NewArchiver(store, nil))
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validProposalReq() map[string]interface{} {
	return map[string]interface{}{
		"votingMessageId": "vm-1",
		"channelId":       "chan-1",
		"messageId":       "orig-1",
		"authorId":        "author-1",
		"isGrantless":     false,
		"mention":         "<@grantee>",
		"amount":          250.5,
		"description":     "fund the tooling work",
		"timerSeconds":    259200,
		"threshold":       3,
	}
}

func TestProposalCreate(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(store)
	h := NewProposals(engine, store)

	r := gin.New()
	r.POST("/proposals", h.Create)

	w := postJSON(t, r, "/proposals", validProposalReq())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The proposal is live in both store and index.
	require.Len(t, store.proposals, 1)
	p, ok := engine.Index().Lookup("vm-1")
	require.True(t, ok)
	assert.Equal(t, "author-1", p.AuthorID)
	assert.Equal(t, 3, p.Threshold)

	// Same voting message again: conflict.
	w = postJSON(t, r, "/proposals", validProposalReq())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProposalCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(map[string]interface{})
	}{
		{"amount above bound", func(m map[string]interface{}) { m["amount"] = float64(2000000000) }},
		{"amount below bound", func(m map[string]interface{}) { m["amount"] = float64(-2000000000) }},
		{"grant without mention", func(m map[string]interface{}) { m["mention"] = "" }},
		{"threshold zero", func(m map[string]interface{}) { m["threshold"] = 0 }},
		{"missing voting message", func(m map[string]interface{}) { delete(m, "votingMessageId") }},
		{"empty description", func(m map[string]interface{}) { m["description"] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			h := NewProposals(newTestEngine(store), store)
			r := gin.New()
			r.POST("/proposals", h.Create)

			req := validProposalReq()
			tt.modify(req)
			w := postJSON(t, r, "/proposals", req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Empty(t, store.proposals)
		})
	}
}

func TestProposalCreateGrantlessDropsAmount(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(store)
	h := NewProposals(engine, store)
	r := gin.New()
	r.POST("/proposals", h.Create)

	// An out-of-bounds amount on a grantless proposal is meaningless: the
	// request succeeds and stores no amount instead of tripping the schema.
	req := validProposalReq()
	req["isGrantless"] = true
	req["amount"] = float64(2000000000)
	w := postJSON(t, r, "/proposals", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p, ok := engine.Index().Lookup("vm-1")
	require.True(t, ok)
	assert.Zero(t, p.Amount)
	assert.Empty(t, p.Mention)
}

func TestProposalCreateSanitizesDescription(t *testing.T) {
	store := &memStore{}
	engine := newTestEngine(store)
	h := NewProposals(engine, store)
	r := gin.New()
	r.POST("/proposals", h.Create)

	req := validProposalReq()
	req["description"] = `hello <script>alert("x")</script>world`
	w := postJSON(t, r, "/proposals", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p, ok := engine.Index().Lookup("vm-1")
	require.True(t, ok)
	assert.NotContains(t, p.Description, "<script>")
	assert.Contains(t, p.Description, "hello")
}

func TestHistoryList(t *testing.T) {
	store := &memStore{history: []types.ProposalHistory{
		{ID: 1, VotingMessageID: "vm-1", Result: types.ResultAccepted, ClosedAt: time.Now()},
		{ID: 2, VotingMessageID: "vm-2", Result: types.ResultCancelledByThreshold, ClosedAt: time.Now()},
	}}
	h := NewHistory(store)
	r := gin.New()
	r.GET("/history", h.List)

	get := func(query string) (*httptest.ResponseRecorder, []map[string]interface{}) {
		req := httptest.NewRequest(http.MethodGet, "/history"+query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var out []map[string]interface{}
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w, out
	}

	w, out := get("")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out, 2)

	w, out = get("?result=accepted")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, out, 1)
	assert.Equal(t, "vm-1", out[0]["votingMessageId"])
	assert.Equal(t, "accepted", out[0]["result"])

	w, _ = get("?result=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecoveryEndpoints(t *testing.T) {
	gate := consensus.NewRecoveryGate()
	h := NewRecovery(gate)
	r := gin.New()
	r.POST("/recovery", h.Set)
	r.GET("/recovery", h.Get)

	w := postJSON(t, r, "/recovery", map[string]interface{}{"inProgress": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gate.InProgress())

	req := httptest.NewRequest(http.MethodGet, "/recovery", nil)
	get := httptest.NewRecorder()
	r.ServeHTTP(get, req)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.JSONEq(t, `{"inProgress":true}`, get.Body.String())

	w = postJSON(t, r, "/recovery", map[string]interface{}{"inProgress": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gate.InProgress())

	// Missing field is rejected, gate unchanged.
	w = postJSON(t, r, "/recovery", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, gate.InProgress())
}

func TestJWTMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	r := gin.New()
	r.Use(JWTMiddleware(secret))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client": c.GetString("client")})
	})

	// No token.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong secret.
	badTok, err := issueJWT("intake", []byte("other-secret"))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+badTok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token.
	tok, err := issueJWT("intake", secret)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tok))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"client":"intake"}`, w.Body.String())
}
