// Package httpapi exposes the attendance, summary and user operations over
// HTTP with gin.
package httpapi

import (
	"context"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jjc-attendance/internal/attendance"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/config"
	"jjc-attendance/internal/httpmiddleware"
	"jjc-attendance/internal/identity"
	"jjc-attendance/internal/locale"
	"jjc-attendance/internal/summary"
)

// HealthCheck is one dependency probed by /api/health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the services the router dispatches to.
type Deps struct {
	Config     config.App
	Attendance *attendance.Service
	Summary    *summary.Service
	Users      *identity.Service
	// Limiter is optional; requests are not rate limited when nil.
	Limiter httpmiddleware.Limiter
	Checks  []HealthCheck
	Locale  *locale.Bundle
}

// Server holds the handlers.
type Server struct {
	cfg        config.App
	attendance *attendance.Service
	summary    *summary.Service
	users      *identity.Service
	checks     []HealthCheck
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	s := &Server{
		cfg:        d.Config,
		attendance: d.Attendance,
		summary:    d.Summary,
		users:      d.Users,
		checks:     d.Checks,
	}
	bundle := d.Locale
	if bundle == nil {
		bundle = locale.MustBundle()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.CORS(d.Config.CORSOrigins, d.Config.CORSAllowPreviews))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(bundle.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.liveness)

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(httpmiddleware.RateLimit(d.Limiter))
	}
	api.GET("/health", s.health)

	store := auth.NewStore(d.Config.SessionSecret, d.Config.SessionTTL, d.Config.IsProduction())
	resolve := auth.Resolve(d.Config.JWTSigningKey, d.Config.JWTIssuer)

	admin := api.Group("/admin", auth.Sessions(auth.AdminCookie, store), resolve)
	s.mountAuth(admin.Group("/auth"))
	users := admin.Group("/users", auth.RequireAuth(), auth.RequireAdmin())
	{
		users.GET("", s.listUsers)
		users.POST("", s.createUser)
		users.PATCH("/:id", s.updateUser)
		users.POST("/:id/reset-password", s.resetPassword)
		users.DELETE("/:id", s.deleteUser)
	}

	user := api.Group("", auth.Sessions(auth.UserCookie, store), resolve)
	s.mountAuth(user.Group("/auth"))
	att := user.Group("/attendance")
	{
		att.GET("", auth.RequireAuth(), auth.RequireAdmin(), s.getAll)
		att.GET("/my", s.getMine)
		att.GET("/my/summary", s.summarizeMine)
		att.GET("/my/rekap", s.exportMonthlyReport)
		att.POST("/checkin", s.checkIn)
		att.PUT("/checkout/:id", s.checkOut)
		att.GET("/summary", s.summarizeAll)
	}
	return r
}

func (s *Server) mountAuth(g *gin.RouterGroup) {
	g.POST("/login", s.login)
	g.GET("/me", s.me)
	g.POST("/logout", s.logout)
	g.POST("/register", s.register)
	g.POST("/change-password", auth.RequireAuth(), s.changePassword)
}
