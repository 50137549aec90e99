package syncops

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/supplychain"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Register registers ledger sync operations routes
func Register(g *echo.Group) {
	g.GET("/failures", ListFailures)
	g.GET("/summary", Summary)
	g.POST("/:kind/:id/retry", Retry)
}

// ListFailures returns records whose ledger sync ended in FAILED
func ListFailures(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "syncops_handler.ListFailures")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var kind *models.EntityKind
	if kindParam := c.QueryParam("kind"); kindParam != "" {
		entityKind := models.EntityKind(kindParam)
		kind = &entityKind
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, totalCount, err := svc.ListSyncFailures(ctx, kind, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.SyncFailureListResponse{
		Items:      items,
		TotalCount: totalCount,
	})
}

// Summary reports per-kind sync status counts for reconciliation
func Summary(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "syncops_handler.Summary")
	defer span.End()

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, err := svc.SyncSummary(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.SyncSummaryResponse{Items: items})
}

// Retry re-dispatches a FAILED record's ledger submission
func Retry(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "syncops_handler.Retry")
	defer span.End()

	kind := models.EntityKind(c.Param("kind"))
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	ref, err := svc.RetrySync(ctx, kind, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, ref)
}
