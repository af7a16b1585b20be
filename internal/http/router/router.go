package router

import (
	"crypto/ed25519"

	"github.com/gin-gonic/gin"

	"gerard.app/bot/internal/http/handler"
	"gerard.app/bot/internal/http/middleware"
)

type RouterConfig struct {
	// PublicKey enables Ed25519 verification of /interactions when set.
	PublicKey   ed25519.PublicKey
	AdminAPIKey string
}

type Handlers struct {
	Interactions *handler.InteractionHandler
	Files        *handler.FilesHandler
}

func SetupRoutes(router *gin.Engine, handlers Handlers, cfg RouterConfig) {
	router.GET("/health", handler.Health)

	interactions := router.Group("/interactions")
	if cfg.PublicKey != nil {
		interactions.Use(middleware.VerifyDiscordSignature(cfg.PublicKey))
	}
	InteractionRouter(interactions, handlers.Interactions)

	FilesRouter(router.Group("/files", middleware.RequireAdminAPIKey(cfg.AdminAPIKey)), handlers.Files)
}

func InteractionRouter(router *gin.RouterGroup, h *handler.InteractionHandler) {
	router.POST("", h.Handle)
}

func FilesRouter(router *gin.RouterGroup, h *handler.FilesHandler) {
	router.GET("", h.ListGroups)
	router.GET("/:group", h.ListSlots)
	router.GET("/:group/:slot", h.Read)
	router.POST("/:group/:slot", h.Write)
}
