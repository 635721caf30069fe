package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	cartsvc "printshop-storefront/internal/service/cart"
	checkoutsvc "printshop-storefront/internal/service/checkout"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, sessionID string) cartstore.Snapshot
	Add(ctx context.Context, sessionID string, in cartsvc.AddInput) (cartstore.Snapshot, error)
	ChangeQuantity(ctx context.Context, sessionID string, in cartsvc.LineInput) (cartstore.Snapshot, error)
	Remove(ctx context.Context, sessionID string, in cartsvc.LineInput) (cartstore.Snapshot, error)
	Clear(ctx context.Context, sessionID string)
	Subscribe(ctx context.Context, sessionID string) (cartstore.Totals, <-chan cartstore.Change, func())
}

type checkoutService interface {
	Initiate(ctx context.Context, sessionID string, snap cartstore.Snapshot, in checkoutsvc.InitiateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
}

type sessionService interface {
	Issue(ctx context.Context) (accessToken, sessionID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	End(ctx context.Context, token string) (string, error)
	AccessTTLSeconds() int
}

// sessionCloser releases per-session resources when a session ends.
type sessionCloser interface {
	Close(sessionID string)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	ProductSvc  productService
	CartSvc     cartService
	CheckoutSvc checkoutService
	SessionSvc  sessionService
	Sessions    sessionCloser
}

func (d Deps) validate() error {
	if d.ProductSvc == nil || d.CartSvc == nil || d.CheckoutSvc == nil || d.SessionSvc == nil || d.Sessions == nil {
		return errors.New("httpserver: missing service dependency")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db pinger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	currency := opts.Currency
	if currency == "" {
		currency = "EUR"
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(corsConfig(opts.CORSAllowedOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger, currency: currency}

	router.POST("/sessions", h.createSession)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.POST("/pricing/quote", h.quote)

	authed := router.Group("/", sessionAuth(deps.SessionSvc, logger))
	authed.DELETE("/sessions", h.endSession)
	authed.GET("/cart", h.getCart)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/cart/items", h.addItem)
	authed.PATCH("/cart/items", h.updateItem)
	authed.DELETE("/cart/items", h.removeItem)
	authed.GET("/cart/events", h.cartEvents)
	authed.POST("/checkout", h.checkout)
	authed.GET("/orders/:id", h.getOrder)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

type handlers struct {
	deps     Deps
	logger   zerolog.Logger
	currency string
}
