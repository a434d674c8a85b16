package server

import (
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	obscontext "github.com/colmadolabs/colmado/internal/observability/context"
	"github.com/gin-gonic/gin"
)

const contextIdentityKey = "identity"

// AuthRequired resolves the session cookie to an identity and stores it on
// the gin context for handlers and downstream middleware.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		ctx := obscontext.WithActor(c.Request.Context(), identity.UserID.String(), string(identity.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission enforces the role policy for one object and action. It
// must run after AuthRequired.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := s.identityFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), identity, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) identityFromContext(c *gin.Context) (authdomain.Identity, bool) {
	value, exists := c.Get(contextIdentityKey)
	if !exists {
		return authdomain.Identity{}, false
	}
	identity, ok := value.(authdomain.Identity)
	if !ok || identity.IsZero() {
		return authdomain.Identity{}, false
	}
	return identity, true
}
