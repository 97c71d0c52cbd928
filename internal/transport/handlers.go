// Package transport wires a replica.Engine onto a Gin HTTP router: one
// route group, /replica, carrying both the client-facing request API
// and the peer-to-peer token/shadow traffic.
package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redblue-bank/internal/replica"
	"redblue-bank/internal/shadow"
)

// Handler holds the single Engine this node serves.
type Handler struct {
	engine *replica.Engine
}

// NewHandler creates a Handler.
func NewHandler(e *replica.Engine) *Handler {
	return &Handler{engine: e}
}

// Register mounts all routes on r.
func (h *Handler) Register(r *gin.Engine) {
	g := r.Group("/replica")
	g.POST("/request", h.Request)
	g.POST("/token", h.Token)
	g.POST("/shadow", h.Shadow)
	g.GET("/dump", h.Dump)
}

// Request handles POST /replica/request.
// Body: replica.Request, e.g. {"cmd":"DEPOSIT","aid":3,"amount":50}
func (h *Handler) Request(c *gin.Context) {
	var req replica.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.Request(req))
}

// tokenBody is the wire shape of a token handoff: the sender's observed
// max_r, the only state that must survive the handoff.
type tokenBody struct {
	MaxR uint64 `json:"max_r"`
}

// Token handles POST /replica/token. Fire-and-forget on both ends: the
// sender does not wait for a reply beyond HTTP 202, and the receiver's
// own main loop decides when to actually consume it.
func (h *Handler) Token(c *gin.Context) {
	var body tokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.engine.PassToken(body.MaxR)
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// Shadow handles POST /replica/shadow, accepting one shadow operation
// authored by a peer for later causal application.
func (h *Handler) Shadow(c *gin.Context) {
	var w shadow.Wire
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.engine.AddShadowOp(shadow.FromWire(w))
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// Dump handles GET /replica/dump, a diagnostic-only snapshot of this
// replica's clock, token, and queue state. Not part of the replicated
// protocol.
func (h *Handler) Dump(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dump": h.engine.Dump()})
}
