package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/multidom/domainsync/internal/application/services"
	"github.com/multidom/domainsync/internal/domain/run"
	"github.com/multidom/domainsync/internal/interfaces/http/middleware"
	"github.com/multidom/domainsync/internal/interfaces/http/session"
	"github.com/multidom/domainsync/pkg/logger"
	"github.com/multidom/domainsync/pkg/token"
)

// SyncHandler implements the four sync endpoints: the runners sequencing a
// run on the home domain and the receivers applying the session effect on
// each target domain.
type SyncHandler struct {
	sync *services.SyncService
	sink session.Sink
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync *services.SyncService, sink session.Sink) *SyncHandler {
	return &SyncHandler{
		sync: sync,
		sink: sink,
	}
}

// RunLogin handles GET /_ms-run.
func (h *SyncHandler) RunLogin(c *gin.Context) {
	h.runner(c, token.ModeLogin)
}

// RunLogout handles GET /_ms-run-logout.
func (h *SyncHandler) RunLogout(c *gin.Context) {
	h.runner(c, token.ModeLogout)
}

// ReceiveLogin handles GET /_ms-sso.
func (h *SyncHandler) ReceiveLogin(c *gin.Context) {
	h.receiver(c, token.ModeLogin)
}

// ReceiveLogout handles GET /_ms-sso-logout.
func (h *SyncHandler) ReceiveLogout(c *gin.Context) {
	h.receiver(c, token.ModeLogout)
}

// runner advances the redirect chain one step per request. Each request
// either bounces the browser to the next target's receiver, or terminates
// the run (done page, final ret redirect, or plan-not-found).
func (h *SyncHandler) runner(c *gin.Context, mode string) {
	middleware.NoStore(c)

	runID := c.Query("run")
	index, _ := strconv.Atoi(c.DefaultQuery("i", "0"))
	if index < 0 {
		index = 0
	}
	ret := c.Query("ret")
	slow := c.Query("slow") != ""

	ctx := c.Request.Context()
	plan, action, err := h.sync.Advance(ctx, runID, index)
	if err != nil {
		logger.FromContext(ctx).Error("runner storage failure",
			logger.Component("runner"),
			logger.RunID(runID),
			logger.Error(err),
		)
		c.String(http.StatusInternalServerError, "Synchronization unavailable")
		return
	}

	switch action.Kind {
	case run.ActionNotFound:
		notFoundPage(c)

	case run.ActionDone:
		if ret != "" {
			redirectPage(c, ret)
		} else {
			donePage(c)
		}

	case run.ActionStep:
		next := h.sync.RunnerURL(requestScheme(c), plan.Home, mode, runID, action.Index+1, ret, slow)
		target := h.sync.ReceiverURL(action.Step, mode, next, slow)
		if slow {
			heading := fmt.Sprintf("Step %d/%d → %s", action.Index+1, len(plan.Steps), action.Step.Host)
			delayedRedirectPage(c, heading, target, 800)
		} else {
			redirectPage(c, target)
		}
	}
}

// receiver consumes a one-shot token and applies the propagated session
// effect on the serving domain, then bounces back to the runner. Invalid
// tokens fail closed: 400, no state change, no redirect. The body never
// reveals which check failed.
func (h *SyncHandler) receiver(c *gin.Context, mode string) {
	raw := c.Query("c")
	returnURL := c.DefaultQuery("return", "/")
	slow := c.Query("slow") != ""
	host := requestHost(c)

	ctx := c.Request.Context()
	claims, err := h.sync.ConsumeToken(ctx, raw, mode, host)
	if err != nil {
		logger.FromContext(ctx).Warn("receiver rejected token",
			logger.Component("receiver"),
			logger.Host(host),
			logger.Error(err),
		)
		middleware.NoStore(c)
		c.String(http.StatusBadRequest, "Invalid/expired")
		return
	}

	middleware.NoStore(c)
	if mode == token.ModeLogin {
		h.sink.SetSessionID(c, claims.SessionID)
	} else {
		h.sink.ClearSessionID(c)
	}

	if slow {
		verb := "set"
		if mode == token.ModeLogout {
			verb = "cleared"
		}
		delayedRedirectPage(c, fmt.Sprintf("Session %s on %s", verb, host), returnURL, 500)
		return
	}

	c.Redirect(http.StatusSeeOther, returnURL)
}
