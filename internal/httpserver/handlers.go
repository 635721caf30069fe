package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/pricing"
)

func (h *handlers) createSession(c *gin.Context) {
	token, sessionID, err := h.deps.SessionSvc.Issue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   h.deps.SessionSvc.AccessTTLSeconds(),
		"sessionId":   sessionID,
	})
}

// endSession revokes the token and drops the in-memory cart. The persisted
// slot stays so a later session with the same id could resume it.
func (h *handlers) endSession(c *gin.Context) {
	sessionID, err := h.deps.SessionSvc.End(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.deps.Sessions.Close(sessionID)
	c.Status(http.StatusNoContent)
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := productList{Count: len(products), Results: make([]productResponse, 0, len(products))}
	for _, p := range products {
		out.Results = append(out.Results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

type quoteRequest struct {
	BasePriceCents int64              `json:"basePriceCents"`
	Placements     []domain.Placement `json:"placements"`
}

type placementQuote struct {
	Position       string           `json:"position,omitempty"`
	Technique      domain.Technique `json:"technique"`
	SurchargeCents int64            `json:"surchargeCents"`
}

func (h *handlers) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	if req.BasePriceCents < 0 {
		c.JSON(http.StatusBadRequest, errorBody("basePriceCents must not be negative"))
		return
	}

	lines := make([]placementQuote, 0, len(req.Placements))
	for _, p := range req.Placements {
		cents, err := pricing.PlacementSurcharge(p)
		if err != nil {
			h.writeError(c, err)
			return
		}
		lines = append(lines, placementQuote{Position: p.Position, Technique: p.Technique, SurchargeCents: cents})
	}
	unit, err := pricing.UnitPrice(req.BasePriceCents, req.Placements)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"placements":     lines,
		"surchargeCents": unit - req.BasePriceCents,
		"unitPriceCents": unit,
	})
}
