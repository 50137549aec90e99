package certification

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

// Register registers certification routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.POST("/:id/approve", Approve)
	g.POST("/:id/reject", Reject)
}

// List returns the certifications issued against a processing record
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "certification_handler.List")
	defer span.End()

	processingParam := c.QueryParam("processing_id")
	if processingParam == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "processing_id query parameter is required")
	}
	processingID, err := uuid.Parse(processingParam)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid processing_id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, err := svc.ListCertificationsByProcessing(ctx, processingID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CertificationListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create issues a new certification in PENDING status
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "certification_handler.Create")
	defer span.End()

	var req models.IssueCertificationRequest
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

	created, err := svc.IssueCertification(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.CertificationResponse{Certification: *created})
}

// Get returns a single certification by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "certification_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid certification id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	cert, err := svc.GetCertification(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CertificationResponse{Certification: *cert})
}

// Approve moves a pending certification to APPROVED
func Approve(c echo.Context) error {
	return decide(c, models.CertificationStatusApproved, "certification_handler.Approve")
}

// Reject moves a pending certification to REJECTED
func Reject(c echo.Context) error {
	return decide(c, models.CertificationStatusRejected, "certification_handler.Reject")
}

func decide(c echo.Context, to models.CertificationStatus, spanName string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid certification id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	decided, err := svc.DecideCertification(ctx, id, to)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CertificationResponse{Certification: *decided})
}
