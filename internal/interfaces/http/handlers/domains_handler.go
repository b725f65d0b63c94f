package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/multidom/domainsync/internal/domain/directory"
)

// DomainsHandler lists the registered domains. Read-only; the registry is
// managed by the host CMS.
type DomainsHandler struct {
	dirRepo directory.Repository
}

// NewDomainsHandler creates a new domains handler.
func NewDomainsHandler(dirRepo directory.Repository) *DomainsHandler {
	return &DomainsHandler{dirRepo: dirRepo}
}

type domainView struct {
	Key      string `json:"key"`
	Host     string `json:"host"`
	SiteName string `json:"site_name"`
	Current  bool   `json:"current"`
}

// List handles GET /domains.
func (h *DomainsHandler) List(c *gin.Context) {
	domains, err := h.dirRepo.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "failed to list domains",
		})
		return
	}

	current := directory.CanonicalHost(requestHost(c))
	views := make([]domainView, 0, len(domains))
	for _, d := range domains {
		views = append(views, domainView{
			Key:      d.Key,
			Host:     d.Host,
			SiteName: d.SiteName,
			Current:  directory.CanonicalHost(d.Host) == current,
		})
	}

	c.JSON(http.StatusOK, gin.H{"domains": views})
}
