package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sink applies the propagated session effect on the serving domain. The
// core protocol never touches cookies directly; receivers go through this.
type Sink interface {
	// SetSessionID sets the local session to the propagated id.
	SetSessionID(c *gin.Context, sessionID string)

	// ClearSessionID removes the local session, including a secondary
	// root-domain-scoped clear for split cookie configurations.
	ClearSessionID(c *gin.Context)
}

// CookieSink implements Sink over the configured session cookie.
type CookieSink struct {
	name       string
	rootDomain string
	secure     bool
}

// NewCookieSink creates a cookie-backed sink. rootDomain may be empty.
func NewCookieSink(name, rootDomain string, secure bool) *CookieSink {
	return &CookieSink{
		name:       name,
		rootDomain: rootDomain,
		secure:     secure,
	}
}

// SetSessionID sets a session-lifetime cookie on the serving host.
func (s *CookieSink) SetSessionID(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, sessionID, 0, "/", "", s.secure, true)
}

// ClearSessionID expires the cookie on the serving host, and on the root
// domain when one is configured.
func (s *CookieSink) ClearSessionID(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
	if s.rootDomain != "" {
		c.SetCookie(s.name, "", -1, "/", s.rootDomain, s.secure, true)
	}
}
