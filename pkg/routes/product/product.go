package product

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

// Register registers product routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.POST("/:id/activate", Activate)
	g.POST("/:id/deactivate", Deactivate)
}

// List returns products, optionally restricted to active ones
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.List")
	defer span.End()

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active_only"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	items, totalCount, err := svc.ListProducts(ctx, activeOnly, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new product
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Create")
	defer span.End()

	var req models.CreateProductRequest
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

	created, err := svc.CreateProduct(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.ProductResponse{Product: *created})
}

// Get returns a single product by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Get")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	product, err := svc.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *product})
}

// Update updates a product's name or description
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Update")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	updated, err := svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *updated})
}

// Activate marks a product as active
func Activate(c echo.Context) error {
	return setActive(c, true, "product_handler.Activate")
}

// Deactivate marks a product as inactive so no new batches reference it
func Deactivate(c echo.Context) error {
	return setActive(c, false, "product_handler.Deactivate")
}

func setActive(c echo.Context, active bool, spanName string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	ctx, svc, err := ectoinject.GetContext[*supplychain.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get service")
	}

	updated, err := svc.SetProductActive(ctx, id, active)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *updated})
}
