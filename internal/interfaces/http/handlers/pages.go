package handlers

import (
	"fmt"
	"html"
	"html/template"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Minimal terminal/redirect pages of the sync protocol. Redirects are
// client-side location.replace so the chain runs in the same tab without
// popup blockers; the noscript meta-refresh carries the same target.

func writeHTML(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

// redirectPage navigates to url immediately.
func redirectPage(c *gin.Context, url string) {
	writeHTML(c, http.StatusOK, fmt.Sprintf(
		`<script>location.replace(%q);</script>`+
			`<noscript><meta http-equiv="refresh" content="0;url=%s"></noscript>`,
		template.JSEscapeString(url), html.EscapeString(url)))
}

// delayedRedirectPage shows heading and the target before navigating.
// Diagnostic (slow) mode only.
func delayedRedirectPage(c *gin.Context, heading, url string, delayMS int) {
	writeHTML(c, http.StatusOK, fmt.Sprintf(
		`<h2>%s</h2><p><code>%s</code></p>`+
			`<script>setTimeout(function(){location.replace(%q);}, %d);</script>`+
			`<noscript><meta http-equiv="refresh" content="0;url=%s"></noscript>`,
		html.EscapeString(heading), html.EscapeString(url),
		template.JSEscapeString(url), delayMS, html.EscapeString(url)))
}

// notFoundPage is the terminal page for an absent or expired run. A normal
// terminal outcome, not an error status.
func notFoundPage(c *gin.Context) {
	writeHTML(c, http.StatusOK, `<h2>Session sync: plan not found</h2>`)
}

// donePage closes out a run that had no final return URL.
func donePage(c *gin.Context) {
	writeHTML(c, http.StatusOK,
		`<h2>Session sync: done</h2>`+
			`<script>setTimeout(function(){window.close&&window.close();},800);</script>`)
}

// overlayPage is the kickoff view: a dim overlay while the first hop loads.
func overlayPage(c *gin.Context, startURL string) {
	writeHTML(c, http.StatusOK, fmt.Sprintf(
		`<div style="position:fixed;inset:0;background:rgba(0,0,0,.35);z-index:99999;`+
			`display:flex;align-items:center;justify-content:center;font:14px/1.4 system-ui,Segoe UI,Arial;color:#fff">`+
			`<div style="background:#111;padding:14px 18px;border-radius:10px;box-shadow:0 10px 24px rgba(0,0,0,.35)">`+
			`Synchronizing the session on other domains&hellip;</div></div>`+
			`<script>location.replace(%q);</script>`+
			`<noscript><meta http-equiv="refresh" content="0;url=%s"></noscript>`,
		template.JSEscapeString(startURL), html.EscapeString(startURL)))
}

// requestScheme resolves the effective scheme behind proxies.
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
		return "https"
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// requestHost returns the Host header without any port.
func requestHost(c *gin.Context) string {
	host := c.Request.Host
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			return h
		}
	}
	return host
}
