package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	checkoutsvc "printshop-storefront/internal/service/checkout"
)

// checkout hands a copy of the cart to order creation. The cart is left as
// is; the client clears it once payment succeeds.
func (h *handlers) checkout(c *gin.Context) {
	var in checkoutsvc.InitiateInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("invalid body"))
			return
		}
	}
	ctx := c.Request.Context()
	sessionID := sessionIDFrom(c)
	snap := h.deps.CartSvc.Get(ctx, sessionID)

	order, err := h.deps.CheckoutSvc.Initiate(ctx, sessionID, snap, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// getOrder only reveals orders placed by the calling session.
func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.CheckoutSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if order.SessionID != sessionIDFrom(c) {
		c.JSON(http.StatusNotFound, errorBody("not found"))
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
