package server

import (
	"net/http"
	"strings"

	"github.com/boxline/boxline-backend/internal/config"
	"github.com/boxline/boxline-backend/internal/handler"
	"github.com/boxline/boxline-backend/internal/logger"
	appmw "github.com/boxline/boxline-backend/internal/middleware"
	"github.com/boxline/boxline-backend/internal/policy"
	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(db *gorm.DB, cfg *config.Config, log *logger.Logger, cache *redis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			return strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:"), nil
		},
	}))

	engine := policy.NewEngine(policy.DefaultRules())

	authSvc := service.NewAuthService(db, log, cfg.JWTSecret, cfg.AccessTTL)
	boxSvc := service.NewBoxService(db, engine, log)
	pickupSvc := service.NewPickupService(db, engine, log)
	vouchSvc := service.NewVouchService(db, engine, log)
	rateSvc := service.NewRateService(db, engine, log, cache, cfg.RateCacheTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	boxHandler := handler.NewBoxHandler(boxSvc)
	pickupHandler := handler.NewPickupHandler(pickupSvc)
	vouchHandler := handler.NewVouchHandler(vouchSvc)
	rateHandler := handler.NewRateHandler(rateSvc)

	authMw := appmw.NewAuthMiddleware(authSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/me", authHandler.Me, authMw.RequireAuth)

	api.POST("/boxes", boxHandler.Create, authMw.RequireAuth)
	api.GET("/boxes", boxHandler.List, authMw.RequireAuth)
	api.GET("/boxes/:id", boxHandler.Get, authMw.RequireAuth)
	api.PUT("/boxes/:id", boxHandler.Update, authMw.RequireAuth)
	api.POST("/boxes/:id/pickups", boxHandler.AddPickups, authMw.RequireAuth)
	api.DELETE("/boxes/:id/pickups/:pickupId", boxHandler.RemovePickup, authMw.RequireAuth)
	api.POST("/boxes/:id/items", boxHandler.ManageItems, authMw.RequireAuth)
	api.POST("/boxes/:id/transfer", boxHandler.Transfer, authMw.RequireAuth)

	api.POST("/pickups", pickupHandler.Create, authMw.RequireAuth)
	api.GET("/pickups", pickupHandler.List, authMw.RequireAuth)
	api.GET("/pickups/:id", pickupHandler.Get, authMw.RequireAuth)

	api.GET("/vouches/pending", vouchHandler.ListPending, authMw.RequireAuth)
	api.GET("/vouches/history", vouchHandler.History, authMw.RequireAuth)
	api.POST("/vouches/:id/approve", vouchHandler.Approve, authMw.RequireAuth)
	api.POST("/vouches/:id/decline", vouchHandler.Decline, authMw.RequireAuth)

	api.POST("/rates", rateHandler.Create, authMw.RequireAuth)
	api.GET("/rates/latest", rateHandler.Latest, authMw.RequireAuth)
	api.GET("/rates", rateHandler.History, authMw.RequireAuth)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
