package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cosmetia/cosmetia/pkg/auth"
	"github.com/cosmetia/cosmetia/pkg/config"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
	"github.com/cosmetia/cosmetia/pkg/observability/metrics"
)

// RouterConfig carries everything route registration needs.
type RouterConfig struct {
	Products  *ProductHandler
	System    *SystemHandler
	Validator auth.Validator
	RateLimit config.RateLimitConfig
	Logger    logger.Logger
}

// NewRouter builds the service's HTTP routing table.
//
// Search and single-product reads accept anonymous requests; a valid
// bearer token only personalizes them. Review and like mutations require
// authentication.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(RequestID())
	engine.Use(Logging(cfg.Logger))
	engine.Use(Recovery(cfg.Logger))

	engine.GET("/healthz", cfg.System.Healthz)
	engine.GET("/readyz", cfg.System.Readyz)
	engine.GET("/version", cfg.System.Version)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := engine.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	v1.GET("/products", Authenticate(cfg.Validator, false), cfg.Products.Search)
	v1.GET("/products/:id", Authenticate(cfg.Validator, false), cfg.Products.Get)
	v1.POST("/products", Authenticate(cfg.Validator, true), cfg.Products.Create)

	v1.POST("/products/:id/review", Authenticate(cfg.Validator, true), cfg.Products.AddReview)
	v1.PUT("/products/:id/review", Authenticate(cfg.Validator, true), cfg.Products.EditReview)
	v1.DELETE("/products/:id/review", Authenticate(cfg.Validator, true), cfg.Products.DeleteReview)

	v1.PUT("/products/:id/like", Authenticate(cfg.Validator, true), cfg.Products.Like)
	v1.DELETE("/products/:id/like", Authenticate(cfg.Validator, true), cfg.Products.Unlike)

	return engine
}
