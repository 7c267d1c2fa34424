package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smartbuspass/backend/ctxutil"
	"github.com/smartbuspass/backend/net/resp"
	"github.com/smartbuspass/backend/service"
	"github.com/smartbuspass/backend/structs"
)

// Auth authenticates the bearer token and attaches the resolved
// principal to the request context.
func Auth(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := sessions.Authenticate(c.Request.Context(), extractToken(c))
		if err != nil {
			c.Abort()
			switch {
			case errors.Is(err, service.ErrTokenMissing):
				resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
			case errors.Is(err, service.ErrTokenExpired):
				resp.Fail(c.Writer, resp.UnAuthorized("Token has expired"))
			case errors.Is(err, service.ErrTokenInvalid):
				resp.Fail(c.Writer, resp.UnAuthorized("Token is invalid"))
			default:
				resp.Fail(c.Writer, resp.InternalServer("Authentication failed"))
			}
			return
		}

		c.Request = c.Request.WithContext(ctxutil.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// ConductorOnly rejects principals that are not conductors. It must
// run after Auth.
func ConductorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := ctxutil.GetPrincipal(c.Request.Context())
		if !ok {
			c.Abort()
			resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
			return
		}
		if principal.Type != structs.PrincipalConductor {
			c.Abort()
			resp.Fail(c.Writer, resp.Forbidden("Conductor access required"))
			return
		}
		c.Next()
	}
}

// Principal retrieves the authenticated principal, aborting the
// request when it is absent.
func Principal(c *gin.Context) (*structs.Principal, bool) {
	principal, ok := ctxutil.GetPrincipal(c.Request.Context())
	if !ok {
		c.Abort()
		resp.Fail(c.Writer, resp.UnAuthorized("Token is missing"))
	}
	return principal, ok
}
