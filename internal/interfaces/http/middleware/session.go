package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderSessionID lets non-browser clients pass their session explicitly
const HeaderSessionID = "X-Session-ID"

// SessionConfig configures the session cookie
type SessionConfig struct {
	CookieName string
	Domain     string
	Secure     bool
	SameSite   string // strict, lax, none
	MaxAge     time.Duration
}

// DefaultSessionConfig returns development cookie settings
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: "storefront_session",
		SameSite:   "lax",
		MaxAge:     30 * 24 * time.Hour,
	}
}

// Session identifies the shopper. The id comes from the X-Session-ID header,
// then the session cookie; a new UUID is issued when neither holds a valid
// UUID. The id is echoed in X-Session-ID and stored in the gin context and the
// request context.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionConfig().CookieName
	}
	sameSite := parseSameSite(cfg.SameSite)

	return func(c *gin.Context) {
		sessionID := validSessionID(c.GetHeader(HeaderSessionID))
		if sessionID == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				sessionID = validSessionID(cookie)
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			c.SetSameSite(sameSite)
			c.SetCookie(cfg.CookieName, sessionID, int(cfg.MaxAge.Seconds()), "/", cfg.Domain, cfg.Secure, true)
		}

		c.Set(logger.GinSessionIDKey, sessionID)
		c.Header(HeaderSessionID, sessionID)

		ctx, _ := logger.WithSessionID(c.Request.Context(), logger.FromContext(c.Request.Context()), sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSessionID returns the session id set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(logger.GinSessionIDKey)
}

func validSessionID(raw string) string {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return id.String()
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
