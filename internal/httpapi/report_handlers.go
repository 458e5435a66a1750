package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleTimeReport(c echo.Context) error {
	rows, err := s.reports.TimeReport(
		c.Request().Context(),
		c.QueryParam("period"),
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
	)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleProjectReport(c echo.Context) error {
	rows, err := s.reports.ProjectReport(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleClientReport(c echo.Context) error {
	rows, err := s.reports.ClientReport(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleProductivityReport(c echo.Context) error {
	report, err := s.reports.Productivity(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
