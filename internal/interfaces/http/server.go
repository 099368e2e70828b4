// Package http provides the HTTP adapter for the application layer. It is a
// thin translation layer between requests and application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/application/service"
	"github.com/finly-app/expense-service/internal/domain/entity"
	"github.com/finly-app/expense-service/internal/infrastructure/auth"
	"github.com/finly-app/expense-service/internal/infrastructure/export"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	tokens     *auth.TokenManager
	metrics    *Metrics
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	expenseService service.ExpenseService,
	ruleService service.RuleService,
	authService service.AuthService,
	exporter *export.ExcelWriter,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(expenseService, ruleService, authService, exporter, logger),
		tokens:   tokens,
		metrics:  NewMetrics(),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.metrics.Middleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)
	s.router.GET("/metrics", s.metrics.Handler())

	api := s.router.Group("/api")
	api.POST("/auth/login", s.handlers.Login)

	authed := api.Group("")
	authed.Use(AuthMiddleware(s.tokens))
	{
		authed.POST("/expenses", s.handlers.CreateExpense)
		authed.GET("/expenses", s.handlers.ListExpenses)
		authed.GET("/expenses/:id", s.handlers.GetExpense)
		authed.POST("/expenses/:id/submit", s.handlers.SubmitExpense)
		authed.POST("/expenses/:id/actions", s.handlers.ActOnExpense)
		authed.POST("/expenses/:id/paid",
			RequireRoles(entity.RoleFinance, entity.RoleAdmin), s.handlers.MarkExpensePaid)
		authed.GET("/expenses/:id/history", s.handlers.ExpenseHistory)

		authed.GET("/reports/expenses", s.handlers.ExportExpenses)

		authed.GET("/rules", s.handlers.ListRules)
		authed.GET("/rules/:id", s.handlers.GetRule)
		authed.POST("/rules/resolve", s.handlers.ResolveRules)

		admin := authed.Group("/rules")
		admin.Use(RequireRoles(entity.RoleAdmin))
		{
			admin.POST("", s.handlers.CreateRule)
			admin.PUT("/:id", s.handlers.UpdateRule)
			admin.DELETE("/:id", s.handlers.DeleteRule)
		}
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
