package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	AllowOrigins []string
	// MaxBodyBytes bounds every request body; uploads need room for the
	// multipart envelope on top of the image limit.
	MaxBodyBytes int64
	Debug        bool
}

// NewRouter wires the middleware and routes around h.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = h.opts.MaxImageBytes + 1<<20
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}

	r := gin.New()
	r.Use(requestid.New())
	r.Use(Recovery(logger))
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(BodySizeLimit(cfg.MaxBodyBytes))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/analyze-image", h.AnalyzeImage)
		api.POST("/shopping-list", h.ShoppingList)
		api.POST("/shopping-list/export", h.ExportShoppingList)
		api.POST("/generate-shopping-list", h.GenerateShoppingList)
		api.POST("/get-recipes", h.GetRecipes)
		if h.store != nil {
			api.GET("/analyses", h.ListAnalyses)
		}
	}
	return r
}
