package web

import (
	"watthome/auth"
	"watthome/internal/assist"
	"watthome/internal/store"
	"watthome/internal/web/api"
	"watthome/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
}

// New assembles the HTTP API: auth, devices, automations, users and the
// assist chat relay.
func New(
	authModule *auth.Module,
	devices *store.DeviceStore,
	automations *store.AutomationStore,
	assistSvc *assist.Service,
	sessions api.SessionControl,
	logger *zap.Logger,
) *Server {
	router := gin.Default()

	mw := middleware.NewManager(authModule, logger)

	api.RegisterAuthRoutes(router, authModule, mw, sessions)
	api.RegisterDeviceRoutes(router, mw, devices)
	api.RegisterAutomationRoutes(router, mw, automations)
	api.RegisterUserRoutes(router, authModule, mw)
	api.RegisterAssistRoutes(router, mw, assistSvc)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return &Server{router: router}
}

func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
