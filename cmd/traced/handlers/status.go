package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/idtrace/traceability-controller/pkg/api/types/errors"
	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/traction"
)

// LiveHandler answers GET /status/live . It only proves the process is up.
func LiveHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "live"})
	}
}

// ReadyHandler answers GET /status/ready : 200 when both the database and
// the agent admin API are reachable, 503 naming the broken dependency.
func ReadyHandler(database kdb.ControllerDatabase, agent traction.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := database.Ping(ctx); err != nil {
			return apierr.ServiceUnavailable("database is not reachable", err)
		}
		if err := agent.Ready(ctx); err != nil {
			return apierr.ServiceUnavailable("agent is not reachable", err)
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
}
