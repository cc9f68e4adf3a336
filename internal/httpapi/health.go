package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// health reports each dependency as "up" or "down". Failure details are
// omitted in production.
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := gin.H{}
	errs := gin.H{}
	for _, hc := range s.checks {
		if err := hc.Check(ctx); err != nil {
			status = "degraded"
			deps[hc.Name] = "down"
			errs[hc.Name] = err.Error()
			continue
		}
		deps[hc.Name] = "up"
	}

	body := gin.H{
		"status":       status,
		"dependencies": deps,
		"env":          s.cfg.Env,
		"time":         time.Now().UTC().Format(time.RFC3339),
	}
	if len(errs) > 0 && !s.cfg.IsProduction() {
		body["error"] = errs
	}
	c.JSON(http.StatusOK, body)
}
