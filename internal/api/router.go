package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"giftguard-backend/config"
	"giftguard-backend/internal/mw"
	"giftguard-backend/internal/validator"
	"giftguard-backend/internal/voucher"
)

var registerBindingRules sync.Once

// NewRouter creates and configures a new Gin router. Cached responses are
// dropped whenever the voucher store changes.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	registerBindingRules.Do(func() {
		if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
			if err := validator.Register(v); err != nil {
				panic(err)
			}
		}
	})

	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(), mw.CORS(cfg.CORSAllowOrigins))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	responseCache := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	h.store.Subscribe(func(voucher.Snapshot) { responseCache.Flush() })
	caching := responseCache.Middleware()

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/giftcons", caching, h.ListGiftcons)
		api.GET("/giftcons/:id", caching, h.GetGiftcon)
		api.POST("/giftcons/reload", h.ReloadGiftcons)
		api.POST("/giftcons/:id/use", h.MarkGiftconUsed)
		api.DELETE("/giftcons/:id", h.DeleteGiftcon)

		api.GET("/form", h.GetForm)
		api.PATCH("/form", h.PatchForm)
		api.POST("/form/edit/:id", h.BeginEdit)
		api.POST("/form/save", h.SaveForm)
		api.DELETE("/form/status", h.ClearFormStatus)
		api.POST("/form/reset", h.ResetForm)

		api.GET("/screens", h.ListScreens)
		api.POST("/navigate", h.Navigate)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
