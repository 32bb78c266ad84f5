package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"goleet/internal/auditlog"
	"goleet/internal/core"
)

const (
	routeStatsDefaultHours = 24
	routeStatsMaxHours     = 24 * 30
)

// AdminRequests handles GET /admin/api/v1/requests. Filters map directly
// onto the audit reader's query parameters.
func (h *Handler) AdminRequests(c echo.Context) error {
	if h.audit == nil {
		return handleError(c, core.NewNotFoundError("request logging is disabled"))
	}

	params := auditlog.LogQueryParams{
		Route:     c.QueryParam("route"),
		Method:    c.QueryParam("method"),
		Problem:   c.QueryParam("problem"),
		ErrorType: c.QueryParam("error_type"),
		Search:    c.QueryParam("search"),
	}

	if raw := c.QueryParam("status"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return handleError(c, core.NewInvalidRequestError("status must be an integer"))
		}
		params.StatusCode = &v
	}
	since, err := timeParam(c, "since")
	if err != nil {
		return handleError(c, err)
	}
	params.Since = since
	until, err := timeParam(c, "until")
	if err != nil {
		return handleError(c, err)
	}
	params.Until = until
	if params.Limit, err = intParam(c, "limit", 0); err != nil {
		return handleError(c, err)
	}
	if params.Offset, err = intParam(c, "offset", 0); err != nil {
		return handleError(c, err)
	}

	result, err := h.audit.Logs(c.Request().Context(), params)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdminRequestByID handles GET /admin/api/v1/requests/:id.
func (h *Handler) AdminRequestByID(c echo.Context) error {
	if h.audit == nil {
		return handleError(c, core.NewNotFoundError("request logging is disabled"))
	}

	entry, err := h.audit.LogByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	if entry == nil {
		return handleError(c, core.NewNotFoundError("Request log not found"))
	}
	return c.JSON(http.StatusOK, entry)
}

type routeStatsResponse struct {
	Hours  int                  `json:"hours"`
	Routes []auditlog.RouteStat `json:"routes"`
}

// AdminRouteStats handles GET /admin/api/v1/stats/routes.
func (h *Handler) AdminRouteStats(c echo.Context) error {
	if h.audit == nil {
		return handleError(c, core.NewNotFoundError("request logging is disabled"))
	}

	hours, err := intParam(c, "hours", routeStatsDefaultHours)
	if err != nil {
		return handleError(c, err)
	}
	if hours < 1 || hours > routeStatsMaxHours {
		return handleError(c, core.NewInvalidRequestError("hours must be between 1 and 720"))
	}

	stats, err := h.audit.RouteStats(c.Request().Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		return handleError(c, err)
	}
	if stats == nil {
		stats = []auditlog.RouteStat{}
	}
	return c.JSON(http.StatusOK, routeStatsResponse{Hours: hours, Routes: stats})
}

// AdminRefresh handles POST /admin/api/v1/refresh. The refresh runs in the
// background; the snapshot in use keeps serving until it completes.
func (h *Handler) AdminRefresh(c echo.Context) error {
	h.cache.ForceRefresh()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}

func timeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, core.NewInvalidRequestError(name + " must be an RFC 3339 timestamp")
	}
	return t, nil
}
