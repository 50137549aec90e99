package transport

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

// Register registers transport routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.POST("/:id/status", UpdateStatus)
}

// List returns the transports for a batch
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "transport_handler.List")
	defer span.End()

	batchParam := c.QueryParam("batch_id")
	if batchParam == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "batch_id query parameter is required")
	}
	batchID, err := uuid.Parse(batchParam)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch_id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, err := svc.ListTransportsByBatch(ctx, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TransportListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates a new transport manifest
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "transport_handler.Create")
	defer span.End()

	var req models.CreateTransportRequest
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

	created, err := svc.CreateTransport(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.TransportResponse{Transport: *created})
}

// Get returns a single transport by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "transport_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid transport id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	transport, err := svc.GetTransport(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TransportResponse{Transport: *transport})
}

// UpdateStatus moves a transport to IN_TRANSIT or COMPLETED
func UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "transport_handler.UpdateStatus")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid transport id")
	}

	var req models.UpdateTransportStatusRequest
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

	updated, err := svc.UpdateTransportStatus(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.TransportResponse{Transport: *updated})
}
