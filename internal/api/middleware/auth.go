package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/therabot/therabot/internal/core/domain"
	"github.com/therabot/therabot/internal/core/service"
)

const IdentityContextKey = "identity"

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration // zero means a browser-session cookie
	Secure bool
}

// Set stores token in the session cookie.
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session cookie.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// IdentityResolver confirms that a session identity still names an account.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}

// Session validates the session cookie, when present, and attaches the
// identity it carries to the request. Requests without a valid cookie, or
// whose account is gone, continue anonymously.
func Session(sessions *service.SessionService, accounts IdentityResolver, cookie SessionCookie, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		identity, err := sessions.Validate(token)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("Ignoring invalid session cookie")
			c.Next()
			return
		}

		identity, err = accounts.Resolve(c.Request.Context(), identity)
		if err != nil {
			if service.KindOf(err) != service.KindUnauthenticated {
				_ = c.Error(err)
				c.Abort()
				return
			}
			log.WithField("path", c.Request.URL.Path).Debug("Ignoring session cookie for unknown account")
			c.Next()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// RequirePage redirects anonymous requests to the sign-in page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.Redirect(http.StatusFound, "/signin")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPI rejects anonymous API requests with an Unauthenticated error.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			_ = c.Error(service.NewError(service.KindUnauthenticated, service.MsgLoginRequired))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity retrieves the authenticated identity from context
func GetIdentity(c *gin.Context) (*domain.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*domain.Identity)
	return identity, ok
}
