package lifecycle

import (
	"net/http"

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

// Register registers lifecycle event routes. Events are recorded and
// listed under their batch; single reads go through /events.
func Register(g *echo.Group) {
	g.POST("/batches/:id/events", Record)
	g.GET("/batches/:id/events", List)
	g.GET("/events/:id", Get)
}

// Record appends a lifecycle event to a batch's timeline
func Record(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lifecycle_handler.Record")
	defer span.End()

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	var req models.RecordLifecycleEventRequest
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

	created, err := svc.RecordLifecycleEvent(ctx, batchID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.LifecycleEventResponse{LifecycleEvent: *created})
}

// List returns a batch's lifecycle events oldest first
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lifecycle_handler.List")
	defer span.End()

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, err := svc.ListLifecycleEvents(ctx, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LifecycleEventListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Get returns a single lifecycle event by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lifecycle_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	event, err := svc.GetLifecycleEvent(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LifecycleEventResponse{LifecycleEvent: *event})
}
