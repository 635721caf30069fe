package httpserver

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cartsvc "printshop-storefront/internal/service/cart"
)

const eventsKeepAlive = 25 * time.Second

func (h *handlers) getCart(c *gin.Context) {
	snap := h.deps.CartSvc.Get(c.Request.Context(), sessionIDFrom(c))
	c.JSON(http.StatusOK, toCartResponse(snap, h.currency))
}

func (h *handlers) addItem(c *gin.Context) {
	var in cartsvc.AddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	snap, err := h.deps.CartSvc.Add(c.Request.Context(), sessionIDFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(snap, h.currency))
}

func (h *handlers) updateItem(c *gin.Context) {
	var in cartsvc.LineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	snap, err := h.deps.CartSvc.ChangeQuantity(c.Request.Context(), sessionIDFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(snap, h.currency))
}

func (h *handlers) removeItem(c *gin.Context) {
	var in cartsvc.LineInput
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid query"))
		return
	}
	snap, err := h.deps.CartSvc.Remove(c.Request.Context(), sessionIDFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(snap, h.currency))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.deps.CartSvc.Clear(c.Request.Context(), sessionIDFrom(c))
	c.Status(http.StatusNoContent)
}

// cartEvents streams the badge totals: one "totals" event on connect, then a
// "change" event per cart mutation. Slow readers only see the latest change.
func (h *handlers) cartEvents(c *gin.Context) {
	ctx := c.Request.Context()
	totals, changes, cancel := h.deps.CartSvc.Subscribe(ctx, sessionIDFrom(c))
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("totals", totals)
	c.Writer.Flush()

	ticker := time.NewTicker(eventsKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}
