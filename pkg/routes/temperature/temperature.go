package temperature

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/supplychain"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Register registers temperature log routes. Readings are recorded and
// listed under their transport; single reads go through /temperatures.
func Register(g *echo.Group) {
	g.POST("/transports/:id/temperatures", Record)
	g.GET("/transports/:id/temperatures", List)
	g.GET("/temperatures/:id", Get)
}

// Record appends a cold-chain reading to a transport. Out-of-range
// readings are accepted and flagged, not rejected.
func Record(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "temperature_handler.Record")
	defer span.End()

	transportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid transport id")
	}

	var req models.RecordTemperatureRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	created, err := svc.RecordTemperature(ctx, transportID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.TemperatureLogResponse{TemperatureLog: *created})
}

// List returns a transport's readings, optionally violations only
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "temperature_handler.List")
	defer span.End()

	transportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid transport id")
	}

	violationsOnly, _ := strconv.ParseBool(c.QueryParam("violations_only"))

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, err := svc.ListTemperatureLogs(ctx, transportID, violationsOnly)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TemperatureLogListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Get returns a single temperature log by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "temperature_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid temperature log id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	log, err := svc.GetTemperatureLog(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TemperatureLogResponse{TemperatureLog: *log})
}
