package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type healthHandler struct {
	checks map[string]func() bool
}

// NewHealthHandler reports the named dependency checks. A failing check marks the
// status degraded and still answers 200.
func NewHealthHandler(checks map[string]func() bool) IHealthHandler {
	return &healthHandler{checks: checks}
}

func (h *healthHandler) Healthz(ctx *gin.Context) {
	status := "ok"
	results := make(map[string]bool, len(h.checks))
	for name, check := range h.checks {
		results[name] = check()
		if !results[name] {
			status = "degraded"
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": status, "checks": results})
}
