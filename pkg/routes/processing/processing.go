package processing

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

// Register registers processing record routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
}

// List returns the processing records for a batch
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "processing_handler.List")
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

	items, err := svc.ListProcessingByBatch(ctx, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProcessingRecordListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create records what a facility produced from a batch
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "processing_handler.Create")
	defer span.End()

	var req models.RecordProcessingRequest
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

	created, err := svc.RecordProcessing(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.ProcessingRecordResponse{ProcessingRecord: *created})
}

// Get returns a single processing record by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "processing_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid processing record id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	record, err := svc.GetProcessingRecord(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProcessingRecordResponse{ProcessingRecord: *record})
}
