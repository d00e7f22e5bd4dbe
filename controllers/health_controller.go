package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	apiName    = "SafeTravels Motors API"
	apiVersion = "1.0.0"
)

// Sections lists the resource roots, shared by the API index and the
// not-found response.
var Sections = gin.H{
	"auth":         "/api/auth",
	"cars":         "/api/cars",
	"blog":         "/api/blog",
	"testimonials": "/api/testimonials",
	"contact":      "/api/contact",
}

type HealthController struct {
	environment string
	ping        func(ctx context.Context) error
	started     time.Time
}

func NewHealthController(environment string, ping func(ctx context.Context) error) *HealthController {
	return &HealthController{
		environment: environment,
		ping:        ping,
		started:     time.Now(),
	}
}

// Health reports process uptime and database reachability; it answers 503
// when the database does not respond within two seconds.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code, database := "OK", http.StatusOK, "up"
	if err := hc.ping(ctx); err != nil {
		status, code, database = "DEGRADED", http.StatusServiceUnavailable, "down"
		_ = c.Error(err)
	}

	c.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":      time.Since(hc.started).Seconds(),
		"environment": hc.environment,
		"database":    database,
	})
}

func (hc *HealthController) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   apiName,
		"version":   apiVersion,
		"endpoints": Sections,
	})
}
