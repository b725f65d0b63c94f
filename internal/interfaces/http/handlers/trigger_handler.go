package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/application/services"
	"github.com/multidom/domainsync/internal/interfaces/http/middleware"
	"github.com/multidom/domainsync/pkg/errors"
	"github.com/multidom/domainsync/pkg/logger"
	"github.com/multidom/domainsync/pkg/token"
)

// TriggerHandler exposes the propagation triggers the host CMS calls after
// a Manager login/logout, plus the kickoff page that starts a run's
// redirect chain in the browser.
type TriggerHandler struct {
	sync *services.SyncService
	cfg  *config.Config
}

// NewTriggerHandler creates a new trigger handler.
func NewTriggerHandler(sync *services.SyncService, cfg *config.Config) *TriggerHandler {
	return &TriggerHandler{
		sync: sync,
		cfg:  cfg,
	}
}

type triggerRequest struct {
	SessionID string `json:"session_id"`
	ReturnURL string `json:"return_url"`
}

type triggerResponse struct {
	RunID      string `json:"run_id"`
	KickoffURL string `json:"kickoff_url"`
}

// TriggerLogin handles POST /sync/login. The session id comes from the
// request body, falling back to the configured session cookie.
func (h *TriggerHandler) TriggerLogin(c *gin.Context) {
	var req triggerRequest
	_ = c.ShouldBindJSON(&req)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID, _ = c.Cookie(h.cfg.SSO.SessionCookie)
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "session_id is required",
		})
		return
	}

	runID, err := h.sync.PlanLogin(c.Request.Context(), requestHost(c), sessionID)
	h.respond(c, token.ModeLogin, runID, req.ReturnURL, err)
}

// TriggerLogout handles POST /sync/logout.
func (h *TriggerHandler) TriggerLogout(c *gin.Context) {
	var req triggerRequest
	_ = c.ShouldBindJSON(&req)

	runID, err := h.sync.PlanLogout(c.Request.Context(), requestHost(c))
	h.respond(c, token.ModeLogout, runID, req.ReturnURL, err)
}

func (h *TriggerHandler) respond(c *gin.Context, mode, runID, returnURL string, err error) {
	if err != nil {
		if errors.Is(err, errors.ErrNoTargets) {
			c.Status(http.StatusNoContent)
			return
		}
		// Planning failure must not block the login/logout that triggered
		// it; the caller proceeds without cross-domain propagation.
		logger.FromContext(c.Request.Context()).Error("failed to plan sync run",
			logger.Component("trigger"),
			logger.String("mode", mode),
			logger.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"propagated": false})
		return
	}

	q := url.Values{}
	q.Set("run", runID)
	q.Set("mode", mode)
	if returnURL != "" {
		q.Set("ret", returnURL)
	}
	kickoff := requestScheme(c) + "://" + c.Request.Host + "/sync/kickoff?" + q.Encode()

	c.JSON(http.StatusCreated, triggerResponse{
		RunID:      runID,
		KickoffURL: kickoff,
	})
}

// Kickoff handles GET /sync/kickoff: renders the overlay page that jumps
// to the first receiver of the run.
func (h *TriggerHandler) Kickoff(c *gin.Context) {
	middleware.NoStore(c)

	runID := c.Query("run")
	mode := c.DefaultQuery("mode", token.ModeLogin)
	ret := c.Query("ret")
	slow := c.Query("slow") != ""

	if mode != token.ModeLogin && mode != token.ModeLogout {
		c.String(http.StatusBadRequest, "invalid mode")
		return
	}
	if ret == "" {
		// Default the final return to the home Manager origin.
		ret = requestScheme(c) + "://" + c.Request.Host + "/"
	}

	startURL, err := h.sync.StartURL(c.Request.Context(), runID, mode, requestScheme(c), ret, slow)
	if err != nil {
		notFoundPage(c)
		return
	}

	overlayPage(c, startURL)
}
