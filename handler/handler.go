// Package handler exposes the HTTP surface: authentication, pass
// verification, and the verification ledger queries.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	nonstdval "github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/middleware"
	"github.com/smartbuspass/backend/net/resp"
	"github.com/smartbuspass/backend/service"
	"github.com/smartbuspass/backend/version"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", nonstdval.NotBlank)
	}
}

// Handler holds the services the HTTP layer delegates to.
type Handler struct {
	sessions *service.SessionService
	verify   *service.VerifyService
	logger   *logger.Logger
}

func New(sessions *service.SessionService, verify *service.VerifyService, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		verify:   verify,
		logger:   log,
	}
}

// Register wires all routes onto the engine.
func (h *Handler) Register(e *gin.Engine) {
	e.GET("/health", h.Health)

	auth := e.Group("/auth")
	auth.POST("/login", h.LoginRider)
	auth.POST("/conductor/login", h.LoginConductor)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	authed := auth.Group("", middleware.Auth(h.sessions))
	authed.GET("/verify-token", h.VerifyToken)
	authed.GET("/conductor/profile", middleware.ConductorOnly(), h.ConductorProfile)

	api := e.Group("/api/conductor", middleware.Auth(h.sessions), middleware.ConductorOnly())
	api.POST("/verify-pass", h.VerifyPass)
	api.GET("/verifications", h.Verifications)
	api.GET("/verification-history", h.VerificationHistory)
}

// Health reports liveness and the build version.
func (h *Handler) Health(c *gin.Context) {
	resp.Success(c.Writer, map[string]any{
		"status":  "ok",
		"version": version.Version,
	})
}
