package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/http/handlers"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/geocoder89/commenthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Resolver middlewares.IdentityResolver
	Auth     handlers.Authenticator
	Users    handlers.UserAccounts
	Comments handlers.CommentBoard

	// Ping checks the store for /readyz; Draining reports a shutdown in progress.
	Ping     func(ctx context.Context) error
	Draining func() bool
}

func NewRouter(d Deps) *gin.Engine {
	if !d.Config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	var metrics handlers.AuthRecorder
	if d.Prom != nil {
		metrics = d.Prom
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(!d.Config.IsDev()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))

	h := handlers.NewHealthHandler(d.Ping, d.Draining)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Routes open to anyone never look at Authorization, so a stale token cannot
	// block login or a password reset.
	resolve := middlewares.NewAuthMiddleware(d.Resolver, d.Log).ResolveIdentity()

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	authHandler := handlers.NewAuthHandler(d.Auth, metrics)
	usersHandler := handlers.NewUsersHandler(d.Users, metrics)
	commentsHandler := handlers.NewCommentsHandler(d.Comments)

	// identity and changePassword answer a missing token with 400
	tokenOr400 := middlewares.RequireToken(http.StatusBadRequest)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/identity", resolve, tokenOr400, authHandler.Identity)
	authGroup.PUT("/changePassword", resolve, tokenOr400, authHandler.ChangePassword)
	authGroup.POST("/forgotPassword", authHandler.ForgotPassword)
	authGroup.PUT("/resetPassword", authHandler.ResetPassword)

	requireToken := middlewares.RequireToken(http.StatusUnauthorized)
	requireAdmin := middlewares.RequireAdmin()

	users := api.Group("/users")
	users.GET("", resolve, requireAdmin, usersHandler.List)
	users.POST("", usersHandler.Register)
	users.PUT("", resolve, requireToken, usersHandler.UpdateUsername)
	users.DELETE("", resolve, requireToken, usersHandler.DeleteSelf)
	users.PUT("/:id", resolve, requireAdmin, usersHandler.SetBanned)
	users.DELETE("/:id", resolve, requireAdmin, usersHandler.Delete)

	comments := api.Group("/comments")
	comments.GET("", commentsHandler.List)
	// the bearer is optional here; a guest posts anonymously
	comments.POST("", resolve, commentsHandler.Create)
	comments.PUT("/:id", resolve, requireToken, commentsHandler.Edit)
	comments.DELETE("/:id", resolve, requireToken, commentsHandler.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	return r
}
