package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartbuspass/backend/ctxutil"
	"github.com/smartbuspass/backend/ecode"
	"github.com/smartbuspass/backend/net/resp"
	"github.com/smartbuspass/backend/service"
)

type riderLoginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,notblank"`
}

type conductorLoginBody struct {
	ConductorID string `json:"conductor_id" binding:"required,notblank"`
	Password    string `json:"password" binding:"required"`
}

// LoginRider authenticates a rider by email and password and issues a
// session token.
func (h *Handler) LoginRider(c *gin.Context) {
	var body riderLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsInvalid("payload"), err.Error()))
		return
	}

	rider, token, expiry, err := h.sessions.LoginRider(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			resp.Fail(c.Writer, resp.UnAuthorized("Invalid email or password"))
			return
		}
		h.logger.Error(c.Request.Context(), "rider login failed", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("Login failed"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"token":  token,
		"expiry": expiry.Format(time.RFC3339),
		"user":   rider,
	})
}

// LoginConductor authenticates a conductor by conductor id and
// password and issues a session token.
func (h *Handler) LoginConductor(c *gin.Context) {
	var body conductorLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(ecode.FieldIsInvalid("payload"), err.Error()))
		return
	}

	conductor, token, expiry, err := h.sessions.LoginConductor(c.Request.Context(), body.ConductorID, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			resp.Fail(c.Writer, resp.UnAuthorized("Invalid conductor id or password"))
			return
		}
		h.logger.Error(c.Request.Context(), "conductor login failed", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("Login failed"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"token":     token,
		"expiry":    expiry.Format(time.RFC3339),
		"conductor": conductor,
	})
}

// Refresh exchanges a live token for a fresh one.
func (h *Handler) Refresh(c *gin.Context) {
	token, expiry, err := h.sessions.Refresh(c.Request.Context(), bearerToken(c))
	if err != nil {
		failSession(c, err)
		return
	}

	resp.Success(c.Writer, map[string]any{
		"token":  token,
		"expiry": expiry.Format(time.RFC3339),
	})
}

// Logout clears the caller's session.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		failSession(c, err)
		return
	}
	resp.Success(c.Writer, map[string]any{"message": "Logged out"})
}

// VerifyToken reports which principal the bearer token belongs to.
func (h *Handler) VerifyToken(c *gin.Context) {
	principal, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"valid": true,
		"type":  principal.Type,
		"id":    principal.ID(),
	})
}

// ConductorProfile returns the authenticated conductor's own record.
func (h *Handler) ConductorProfile(c *gin.Context) {
	principal, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
		return
	}
	resp.Success(c.Writer, principal.Conductor)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(header)
}

func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenMissing):
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
	case errors.Is(err, service.ErrTokenExpired):
		resp.Fail(c.Writer, resp.UnAuthorized("Token has expired"))
	case errors.Is(err, service.ErrTokenInvalid):
		resp.Fail(c.Writer, resp.UnAuthorized("Token is invalid"))
	default:
		resp.Fail(c.Writer, resp.InternalServer("Session operation failed"))
	}
}
