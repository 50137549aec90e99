package regulatory

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

// Register registers regulatory record routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.POST("/:id/approve", Approve)
	g.POST("/:id/reject", Reject)
	g.POST("/:id/flags", AddFlag)
}

// List returns the regulatory records for a batch
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "regulatory_handler.List")
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

	items, err := svc.ListRegulatoryByBatch(ctx, batchID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RegulatoryRecordListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create opens a PENDING regulatory record against a batch
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "regulatory_handler.Create")
	defer span.End()

	var req models.CreateRegulatoryRecordRequest
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

	created, err := svc.CreateRegulatoryRecord(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.RegulatoryRecordResponse{RegulatoryRecord: *created})
}

// Get returns a single regulatory record by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "regulatory_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid regulatory record id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	record, err := svc.GetRegulatoryRecord(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RegulatoryRecordResponse{RegulatoryRecord: *record})
}

// Approve decides a pending record as APPROVED
func Approve(c echo.Context) error {
	return decide(c, models.RegulatoryStatusApproved, "regulatory_handler.Approve")
}

// Reject decides a pending record as REJECTED. The body must carry the
// rejection reason.
func Reject(c echo.Context) error {
	return decide(c, models.RegulatoryStatusRejected, "regulatory_handler.Reject")
}

func decide(c echo.Context, to models.RegulatoryStatus, spanName string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid regulatory record id")
	}

	var req models.RegulatoryDecisionRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	decided, err := svc.DecideRegulatoryRecord(ctx, id, to, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RegulatoryRecordResponse{RegulatoryRecord: *decided})
}

// AddFlag appends an audit flag to a record. Flags stay local and never
// reach the ledger.
func AddFlag(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "regulatory_handler.AddFlag")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid regulatory record id")
	}

	var req models.AddAuditFlagRequest
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

	updated, err := svc.AddAuditFlag(ctx, id, req.Flag)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RegulatoryRecordResponse{RegulatoryRecord: *updated})
}
