// Package httpapi exposes the REST surface over the task, completion,
// timer and report services.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"taskagent/internal/service"
)

// Server is the HTTP API server.
type Server struct {
	echo     *echo.Echo
	log      zerolog.Logger
	tasks    *service.TaskService
	overlay  *service.CompletionService
	timers   *service.TimerService
	watchdog *service.TimerWatchdog
	clients  *service.ClientService
	projects *service.ProjectService
	reports  *service.ReportService
}

func NewServer(
	log zerolog.Logger,
	tasks *service.TaskService,
	overlay *service.CompletionService,
	timers *service.TimerService,
	watchdog *service.TimerWatchdog,
	clients *service.ClientService,
	projects *service.ProjectService,
	reports *service.ReportService,
) *Server {
	s := &Server{
		echo:     echo.New(),
		log:      log,
		tasks:    tasks,
		overlay:  overlay,
		timers:   timers,
		watchdog: watchdog,
		clients:  clients,
		projects: projects,
		reports:  reports,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(s.requestLogger)

	s.routes()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/healthz", s.handleHealth)

	e.GET("/clients", s.handleListClients)
	e.POST("/clients", s.handleCreateClient)
	e.PUT("/clients/:id", s.handleUpdateClient)
	e.DELETE("/clients/:id", s.handleDeleteClient)

	e.GET("/projects", s.handleListProjects)
	e.POST("/projects", s.handleCreateProject)
	e.PUT("/projects/:id", s.handleUpdateProject)
	e.DELETE("/projects/:id", s.handleDeleteProject)

	e.GET("/tasks", s.handleListTasks)
	e.POST("/tasks", s.handleCreateTask)
	e.PUT("/tasks/:id", s.handleUpdateTask)
	e.DELETE("/tasks/:id", s.handleDeleteTask)
	e.PUT("/tasks/:id/move", s.handleMoveTask)
	e.POST("/tasks/:id/copy", s.handleCopyTask)

	e.POST("/tasks/:id/start", s.handleStartTask)
	e.POST("/tasks/:id/stop", s.handleStopTask)
	e.POST("/tasks/:id/start-recurring", s.handleStartRecurring)
	e.POST("/tasks/:id/stop-recurring", s.handleStopRecurring)
	e.POST("/tasks/:id/continue-timer", s.handleContinueTimer)

	e.POST("/tasks/:id/complete", s.handleCompleteTask)
	e.POST("/tasks/:id/uncomplete", s.handleUncompleteTask)
	e.POST("/tasks/:id/complete-recurring", s.handleCompleteRecurring)
	e.POST("/tasks/:id/uncomplete-recurring", s.handleUncompleteRecurring)
	e.POST("/tasks/:id/hide-recurring", s.handleHideRecurring)
	e.DELETE("/tasks/:id/end-recurrence", s.handleEndRecurrence)

	e.GET("/recurring-completions", s.handleListCompletions)
	e.GET("/hidden-dates", s.handleListHiddenDates)

	e.GET("/reports/time", s.handleTimeReport)
	e.GET("/reports/projects", s.handleProjectReport)
	e.GET("/reports/clients", s.handleClientReport)
	e.GET("/reports/productivity", s.handleProductivityReport)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Info().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("took", time.Since(start)).
			Msg("request")
		return nil
	}
}
