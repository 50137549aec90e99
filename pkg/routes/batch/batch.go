package batch

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

// Register registers batch routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.POST("/:id/status", UpdateStatus)
	g.POST("/:id/complete", Complete)
	g.GET("/:id/trace", Trace)
	g.GET("/:id/ledger", LedgerRecord)
	g.GET("/:id/provenance", Provenance)
	g.GET("/:id/compliance", Compliance)
}

// List returns batches matching the filter with paging
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	filter := models.BatchFilter{Page: page, PageSize: pageSize}
	if farmerID := c.QueryParam("farmer_id"); farmerID != "" {
		filter.FarmerID = &farmerID
	}
	if status := c.QueryParam("status"); status != "" {
		batchStatus := models.BatchStatus(status)
		filter.Status = &batchStatus
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, totalCount, err := svc.ListBatches(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new batch
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Create")
	defer span.End()

	var req models.CreateBatchRequest
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

	created, err := svc.CreateBatch(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.BatchResponse{Batch: *created})
}

// Get returns a single batch by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	batch, err := svc.GetBatch(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *batch})
}

// UpdateStatus transitions a batch through its status machine
func UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.UpdateStatus")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	var req models.UpdateBatchStatusRequest
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

	updated, err := svc.UpdateBatchStatus(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *updated})
}

// Complete marks a batch COMPLETED and stamps the actual end date
func Complete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Complete")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	var req models.CompleteBatchRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	completed, err := svc.CompleteBatch(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.BatchResponse{Batch: *completed})
}

// Trace composes the batch's full lineage from the operational store
func Trace(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Trace")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	trace, err := svc.TraceBatch(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trace)
}

// LedgerRecord reads the batch's record straight from the ledger network
func LedgerRecord(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.LedgerRecord")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	payload, err := svc.BatchLedgerRecord(ctx, id)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, payload)
}

// Provenance returns the batch's lineage as projected into the graph store
func Provenance(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Provenance")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	trace, err := svc.BatchProvenance(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trace)
}

// Compliance summarizes the batch's regulatory standing
func Compliance(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Compliance")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid batch id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	status, err := svc.ComplianceStatus(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}
